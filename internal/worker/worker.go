package worker

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"concurrent-static-server/internal/logger"
)

// Job はワーカーが実行するジョブを表す
type Job func()

// Hooks はプールのライフサイクルを観測するコールバック
type Hooks struct {
	OnSubmit func()
	OnStart  func()
	OnFinish func(elapsed time.Duration, err error)
}

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers int    // ワーカー数（1以上）
	Name       string // ログに出すコンポーネント名
	Hooks      Hooks
}

// DefaultPoolConfig はデフォルト設定を返す
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers: 4,
		Name:       "pool",
	}
}

// Pool はゴルーチンのプールを管理する
type Pool struct {
	name       string
	numWorkers int
	hooks      Hooks
	jobs       *queue
	wg         sync.WaitGroup

	mu       sync.Mutex
	stopped  bool
	stopping atomic.Bool

	alive     atomic.Int64
	active    atomic.Int64
	completed atomic.Uint64
	panics    atomic.Uint64
}

// NewPool は size 個のワーカーを持つプールを作成し、すぐに起動する
// size が 0 以下の場合は panic する
func NewPool(size int) *Pool {
	config := DefaultPoolConfig()
	config.NumWorkers = size
	return NewPoolWithConfig(config)
}

// NewPoolWithConfig は設定を指定してワーカープールを作成し、起動する
func NewPoolWithConfig(config PoolConfig) *Pool {
	if config.NumWorkers <= 0 {
		panic(fmt.Sprintf("worker: pool size must be positive, got %d", config.NumWorkers))
	}
	if config.Name == "" {
		config.Name = "pool"
	}

	p := &Pool{
		name:       config.Name,
		numWorkers: config.NumWorkers,
		hooks:      config.Hooks,
		jobs:       newQueue(),
	}

	for i := range p.numWorkers {
		p.wg.Add(1)
		p.alive.Add(1)
		go p.worker(i)
	}

	logger.Info(p.name, "WorkerPool started with %d workers", p.numWorkers)
	return p
}

// worker は個々のワーカーゴルーチン
func (p *Pool) worker(id int) {
	defer p.wg.Done()
	defer p.alive.Add(-1)

	for {
		it, ok := p.jobs.pop()
		if !ok || it.poison {
			logger.Debug(p.name, "worker %d exiting", id)
			return
		}
		p.run(id, it.job)
	}
}

// run はジョブを実行する。panic はワーカーに伝播させない
func (p *Pool) run(id int, job Job) {
	p.active.Add(1)
	if p.hooks.OnStart != nil {
		p.hooks.OnStart()
	}

	start := time.Now()
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				err = fmt.Errorf("job panic: %v", r)
				p.panics.Add(1)
				logger.Error(p.name, "worker %d recovered from panic: %v\n%s", id, r, buf[:n])
			}
		}()
		job()
	}()

	p.active.Add(-1)
	p.completed.Add(1)
	if p.hooks.OnFinish != nil {
		p.hooks.OnFinish(time.Since(start), err)
	}
}

// Submit はジョブをキューに追加する。ブロックしない
// 停止処理が始まった後は黙って破棄し false を返す
func (p *Pool) Submit(job Job) bool {
	if job == nil || p.stopping.Load() {
		return false
	}
	if !p.jobs.push(item{job: job}) {
		return false
	}
	if p.hooks.OnSubmit != nil {
		p.hooks.OnSubmit()
	}
	return true
}

// Stop はワーカーごとにポイズントークンを送り、全ワーカーの終了を待つ
// 2回目以降の呼び出しは何もしない
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.stopping.Store(true)
	for range p.numWorkers {
		p.jobs.push(item{poison: true})
	}
	p.wg.Wait()

	if dropped := p.jobs.close(); dropped > 0 {
		logger.Warn(p.name, "dropped %d jobs queued behind shutdown", dropped)
	}

	logger.Info(p.name, "WorkerPool stopped (%d jobs completed)", p.completed.Load())
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Alive はまだ終了していないワーカーゴルーチン数を返す
func (p *Pool) Alive() int {
	return int(p.alive.Load())
}

// QueueSize は現在キューに積まれている要素数を返す
func (p *Pool) QueueSize() int {
	return p.jobs.len()
}

// Active は実行中のジョブ数を返す
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Completed は完了したジョブ数を返す（panic したジョブを含む）
func (p *Pool) Completed() uint64 {
	return p.completed.Load()
}

// Panics は panic したジョブ数を返す
func (p *Pool) Panics() uint64 {
	return p.panics.Load()
}
