package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"concurrent-static-server/internal/events"
	"concurrent-static-server/internal/logger"
	"concurrent-static-server/internal/metrics"
	"concurrent-static-server/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/websocket"
)

// Source は管理APIが参照する静的サーバーの状態
type Source interface {
	Addr() net.Addr
	ShuttingDown() bool
	PoolStats() server.PoolStats
	Metrics() *metrics.Metrics
	Results() ([]string, bool)
}

// Server は管理用APIサーバー
type Server struct {
	addr     string
	source   Source
	gatherer prometheus.Gatherer
	eventBus *events.Bus

	statusInterval time.Duration

	mu        sync.RWMutex
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しいAPIサーバーを作成する
// gatherer と bus は nil でもよい
func NewServer(addr string, source Source, gatherer prometheus.Gatherer, bus *events.Bus) *Server {
	return &Server{
		addr:           addr,
		source:         source,
		gatherer:       gatherer,
		eventBus:       bus,
		statusInterval: time.Second,
		wsClients:      make(map[*websocket.Conn]bool),
	}
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/results", s.handleResults)

	// Prometheus
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// WebSocket
	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	return mux
}

// Start はサーバーを開始する。ctx がキャンセルされると停止する
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// バックグラウンドでイベント配信
	go s.broadcastLoop(ctx)

	logger.Info("admin", "API Server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	Addr         string           `json:"addr,omitempty"`
	ShuttingDown bool             `json:"shutting_down"`
	Pool         server.PoolStats `json:"pool"`
	Requests     metrics.Snapshot `json:"requests"`
	Results      int              `json:"results"`
	WSClients    int              `json:"ws_clients"`
}

func (s *Server) status() StatusResponse {
	resp := StatusResponse{
		ShuttingDown: s.source.ShuttingDown(),
		Pool:         s.source.PoolStats(),
		Requests:     s.source.Metrics().Snapshot(),
		WSClients:    s.WSClientCount(),
	}
	if addr := s.source.Addr(); addr != nil {
		resp.Addr = addr.String()
	}
	if entries, ok := s.source.Results(); ok {
		resp.Results = len(entries)
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, s.status())
}

// ResultsResponse はジョブストアの内容
type ResultsResponse struct {
	Recorded bool     `json:"recorded"`
	Entries  []string `json:"entries"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, ok := s.source.Results()
	if entries == nil {
		entries = []string{}
	}
	s.writeJSON(w, ResultsResponse{Recorded: ok, Entries: entries})
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

// WSClientCount は接続中のWebSocketクライアント数を返す
func (s *Server) WSClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wsClients)
}

func (s *Server) broadcast(data any) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// broadcastLoop はバスのイベントと定期的なステータスを配信する
func (s *Server) broadcastLoop(ctx context.Context) {
	var eventCh <-chan events.Event
	if s.eventBus != nil {
		eventCh = s.eventBus.Subscribe()
		defer s.eventBus.Unsubscribe(eventCh)
	}

	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			s.broadcast(map[string]any{
				"type":  "event",
				"event": event,
			})
		case <-ticker.C:
			if s.WSClientCount() > 0 {
				s.broadcast(map[string]any{
					"type":   "status",
					"status": s.status(),
				})
			}
			// RPS とパーセンタイルは直近の配信間隔で計測する
			s.source.Metrics().Reset()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("admin", "Failed to encode JSON: %v", err)
	}
}
