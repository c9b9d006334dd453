package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"concurrent-static-server/internal/logger"
)

// Executor は遅延タスクを専用のゴルーチンで実行する
// プールの容量は消費せず、同時実行数に上限はない
type Executor struct {
	wg        sync.WaitGroup
	pending   atomic.Int64
	scheduled atomic.Uint64
}

// NewExecutor は新しいExecutorを作成する
func NewExecutor() *Executor {
	return &Executor{}
}

// Schedule は delay 経過後に task を実行する
func (e *Executor) Schedule(delay time.Duration, task Job) {
	if task == nil {
		return
	}

	e.wg.Add(1)
	e.pending.Add(1)
	e.scheduled.Add(1)

	time.AfterFunc(delay, func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("executor", "detached task panic: %v", r)
			}
			e.pending.Add(-1)
			e.wg.Done()
		}()
		task()
	})
}

// Pending は未完了のタスク数を返す
func (e *Executor) Pending() int {
	return int(e.pending.Load())
}

// Scheduled はこれまでにスケジュールされたタスク数を返す
func (e *Executor) Scheduled() uint64 {
	return e.scheduled.Load()
}

// Wait は全タスクの完了を待つ
func (e *Executor) Wait() {
	e.wg.Wait()
}
