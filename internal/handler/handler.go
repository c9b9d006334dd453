package handler

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"time"

	"concurrent-static-server/internal/events"
	"concurrent-static-server/internal/jobstore"
	"concurrent-static-server/internal/logger"
	"concurrent-static-server/internal/metrics"
	"concurrent-static-server/internal/protocol"
	"concurrent-static-server/internal/static"
	"concurrent-static-server/internal/worker"
)

const endpointStatic = "static"

// Config はコネクションハンドラの設定
type Config struct {
	ReadTimeout time.Duration // リクエスト行の読み込みタイムアウト
	AsyncDelay  time.Duration // /async の遅延タスクの待機時間
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		ReadTimeout: 5 * time.Second,
		AsyncDelay:  4 * time.Second,
	}
}

// Handler は1コネクション1リクエストを処理する
type Handler struct {
	config   Config
	dir      static.Dir
	store    *jobstore.Store
	executor *worker.Executor

	metrics   *metrics.Metrics
	collector *metrics.Collector
	eventBus  *events.Bus
}

// New は新しいHandlerを作成する
func New(dir static.Dir, store *jobstore.Store, executor *worker.Executor, config Config) *Handler {
	defaults := DefaultConfig()
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.AsyncDelay < 0 {
		config.AsyncDelay = defaults.AsyncDelay
	}
	return &Handler{
		config:   config,
		dir:      dir,
		store:    store,
		executor: executor,
	}
}

// SetMetrics はメトリクスの出力先を設定する（どちらも nil 可）
func (h *Handler) SetMetrics(m *metrics.Metrics, c *metrics.Collector) {
	h.metrics = m
	h.collector = c
}

// SetEventBus はイベントバスを設定する
func (h *Handler) SetEventBus(bus *events.Bus) {
	h.eventBus = bus
}

// Handle はコネクションを処理して閉じる
// /async で接続の所有権を遅延タスクに渡した場合のみ、ここでは閉じない
func (h *Handler) Handle(conn net.Conn) error {
	owned := true
	defer func() {
		if owned {
			_ = conn.Close()
		}
	}()

	source := conn.RemoteAddr().String()

	if err := conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout)); err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}

	req, err := protocol.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		if protocol.IsProtocolError(err) {
			h.collector.ProtocolError()
		}
		return err
	}
	start := time.Now()

	var resp protocol.Response
	endpoint := req.Path

	switch {
	case req.Method != protocol.MethodGet:
		endpoint = "method_not_allowed"
		resp = protocol.HTML(405, "<h1>405</h1>")
		logger.Warn(source, "[405] %s %s", req.Method, req.Path)

	case req.Path == PathAsync:
		var handedOff bool
		handedOff, err = h.serveAsync(conn, source)
		owned = !handedOff
		if err != nil {
			return err
		}
		h.observe(source, req, endpoint, 202, start)
		return nil

	default:
		var ok bool
		resp, ok = h.demoEndpoint(req.Path, source)
		if !ok {
			endpoint = endpointStatic
			resp = h.serveFile(req.Path, source)
		}
	}

	if _, err := resp.WriteTo(conn); err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	h.observe(source, req, endpoint, resp.Status, start)
	return nil
}

// serveFile は静的ファイルを返す
func (h *Handler) serveFile(path, source string) protocol.Response {
	filePath, content, err := h.dir.Resolve(path)
	switch {
	case err == nil:
		logger.Info(source, "[200] %s", path)
		return protocol.Response{Status: 200, ContentType: static.ContentType(filePath), Body: content}
	case errors.Is(err, static.ErrNotFound):
		logger.Warn(source, "[404] %s", path)
		return protocol.HTML(404, "<h1>404</h1>")
	default:
		logger.Error(source, "[500] %s: %v", path, err)
		return protocol.HTML(500, "<h1>500</h1>")
	}
}

// observe はメトリクスとイベントに記録する
func (h *Handler) observe(source string, req protocol.Request, endpoint string, status int, start time.Time) {
	latency := time.Since(start)
	if h.metrics != nil {
		h.metrics.RecordResponse(status, latency)
	}
	h.collector.ObserveResponse(endpoint, status, latency)
	h.eventBus.Publish(events.NewRequestServedEvent(source, req.Method, req.Path, status))
}
