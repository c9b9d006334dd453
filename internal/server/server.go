package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"concurrent-static-server/internal/events"
	"concurrent-static-server/internal/handler"
	"concurrent-static-server/internal/jobstore"
	"concurrent-static-server/internal/logger"
	"concurrent-static-server/internal/metrics"
	"concurrent-static-server/internal/protocol"
	"concurrent-static-server/internal/static"
	"concurrent-static-server/internal/worker"
)

// ErrBind wraps every failure to open the listening socket.
var ErrBind = errors.New("bind failed")

// ErrServerStarted is returned by a second call to ListenAndServe.
var ErrServerStarted = errors.New("server already started")

// Config はサーバーの設定
type Config struct {
	Addr            string        // 待ち受けアドレス
	Root            string        // 静的ファイルのルート
	DefaultDocument string        // "/" に対応するファイル名
	Workers         int           // ワーカー数（1未満は1に補正）
	PollInterval    time.Duration // accept の待機間隔
	ReusePort       bool          // SO_REUSEPORT を設定する
	Handler         handler.Config
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:7878",
		Root:            "./static",
		DefaultDocument: static.DefaultDocument,
		Workers:         4,
		PollInterval:    20 * time.Millisecond,
		Handler:         handler.DefaultConfig(),
	}
}

// Server はacceptループとワーカープールを管理する
type Server struct {
	config   Config
	store    *jobstore.Store
	executor *worker.Executor
	metrics  *metrics.Metrics

	collector *metrics.Collector
	eventBus  *events.Bus

	started  atomic.Bool
	shutdown atomic.Bool
	ready    chan struct{}

	mu   sync.RWMutex
	addr net.Addr
	pool *worker.Pool
}

// New は新しいServerを作成する
func New(config Config) *Server {
	defaults := DefaultConfig()
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}
	if config.Root == "" {
		config.Root = defaults.Root
	}
	if config.DefaultDocument == "" {
		config.DefaultDocument = defaults.DefaultDocument
	}
	config.Workers = max(config.Workers, 1)
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}

	return &Server{
		config:   config,
		store:    jobstore.New(),
		executor: worker.NewExecutor(),
		metrics:  metrics.New(),
		ready:    make(chan struct{}),
	}
}

// SetCollector はPrometheusコレクタを設定する（ListenAndServe の前に呼ぶ）
func (s *Server) SetCollector(c *metrics.Collector) {
	s.collector = c
}

// SetEventBus はイベントバスを設定する（ListenAndServe の前に呼ぶ）
func (s *Server) SetEventBus(bus *events.Bus) {
	s.eventBus = bus
	s.store.SetEventBus(bus)
}

// ListenAndServe はバインドしてacceptループを実行する
// Shutdown が呼ばれるか、致命的なエラーが起きるまでブロックする
// 呼べるのは1回だけで、2回目以降は ErrServerStarted を返す
func (s *Server) ListenAndServe() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrServerStarted
	}

	root, err := static.Canonical(s.config.Root)
	if err != nil {
		return err
	}

	ln, err := listen(s.config.Addr, s.config.ReusePort)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBind, s.config.Addr, err)
	}

	pool := worker.NewPoolWithConfig(worker.PoolConfig{
		NumWorkers: s.config.Workers,
		Name:       "pool",
		Hooks:      s.poolHooks(),
	})

	h := handler.New(static.Dir{Root: root, DefaultDocument: s.config.DefaultDocument},
		s.store, s.executor, s.config.Handler)
	h.SetMetrics(s.metrics, s.collector)
	h.SetEventBus(s.eventBus)

	s.mu.Lock()
	s.addr = ln.Addr()
	s.pool = pool
	s.mu.Unlock()
	close(s.ready)

	addr := ln.Addr().String()
	logger.Info("", "Server listening on http://%s (root: %s, workers: %d)", addr, root, s.config.Workers)
	s.eventBus.Publish(events.NewServerStartedEvent(addr))

	err = s.acceptLoop(ln, pool, h)

	_ = ln.Close()
	pool.Stop()

	if err != nil {
		logger.Error("", "Server stopped: %v", err)
	} else {
		logger.Info("", "Server stopped")
	}
	s.eventBus.Publish(events.NewServerStoppedEvent(addr, err))
	return err
}

type deadlineListener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// acceptLoop はシャットダウンフラグが立つまで接続を受け付ける
func (s *Server) acceptLoop(ln net.Listener, pool *worker.Pool, h *handler.Handler) error {
	dl, ok := ln.(deadlineListener)
	if !ok {
		return fmt.Errorf("listener %T does not support deadlines", ln)
	}

	for {
		if s.shutdown.Load() {
			return nil
		}

		if err := dl.SetDeadline(time.Now().Add(s.config.PollInterval)); err != nil {
			return fmt.Errorf("set accept deadline: %w", err)
		}

		conn, err := dl.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		if !pool.Submit(func() { serveConn(h, conn) }) {
			_ = conn.Close()
		}
	}
}

// serveConn はワーカー上で1コネクションを処理する
func serveConn(h *handler.Handler, conn net.Conn) {
	source := conn.RemoteAddr().String()
	err := h.Handle(conn)
	switch {
	case err == nil:
	case protocol.IsProtocolError(err):
		logger.Warn(source, "dropped: %v", err)
	default:
		logger.Error(source, "connection error: %v", err)
	}
}

func (s *Server) poolHooks() worker.Hooks {
	if s.collector == nil {
		return worker.Hooks{}
	}
	return worker.Hooks{
		OnSubmit: s.collector.JobSubmitted,
		OnStart:  s.collector.JobStarted,
		OnFinish: s.collector.JobFinished,
	}
}

// Shutdown はシャットダウンフラグを立てる。何度呼んでもよい
func (s *Server) Shutdown() {
	if s.shutdown.CompareAndSwap(false, true) {
		logger.Info("", "Shutdown requested")
	}
}

// ShuttingDown はシャットダウンフラグの状態を返す
func (s *Server) ShuttingDown() bool {
	return s.shutdown.Load()
}

// Ready はリッスン開始時にクローズされるチャネルを返す
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr はリッスン中のアドレスを返す（開始前は nil）
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Executor は遅延タスクのExecutorを返す
func (s *Server) Executor() *worker.Executor {
	return s.executor
}

// Metrics はリクエストメトリクスを返す
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// PoolStats はワーカープールの状態
type PoolStats struct {
	Workers   int    `json:"workers"`
	Alive     int    `json:"alive"`
	Queued    int    `json:"queued"`
	Active    int    `json:"active"`
	Completed uint64 `json:"completed"`
	Panics    uint64 `json:"panics"`
}

// PoolStats はワーカープールの状態を返す（開始前はゼロ値）
func (s *Server) PoolStats() PoolStats {
	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()

	if pool == nil {
		return PoolStats{}
	}
	return PoolStats{
		Workers:   pool.NumWorkers(),
		Alive:     pool.Alive(),
		Queued:    pool.QueueSize(),
		Active:    pool.Active(),
		Completed: pool.Completed(),
		Panics:    pool.Panics(),
	}
}

// Results はジョブストアのスナップショットを返す
func (s *Server) Results() ([]string, bool) {
	return s.store.Snapshot()
}
