package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"concurrent-static-server/internal/logger"
	"concurrent-static-server/internal/metrics"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrNoResponse はサーバーが何も返さずに接続を閉じた場合のエラー
var ErrNoResponse = errors.New("connection closed without response")

// Config はClientの設定
type Config struct {
	Addr     string        // サーバーアドレス
	Workers  int           // 同時接続数
	Requests int           // 総リクエスト数
	RPS      float64       // 秒間リクエスト数（0で無制限）
	Paths    []string      // リクエストパス（順番に使用）
	Timeout  time.Duration // 1リクエストのタイムアウト

	Progress io.Writer // 進捗バーの出力先（nil で非表示）
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Addr:     "127.0.0.1:7878",
		Workers:  4,
		Requests: 100,
		Paths:    []string{"/ok", "/bad", "/fail", "/result", "/"},
		Timeout:  5 * time.Second,
	}
}

// Response はサーバーからの1レスポンス
type Response struct {
	Status int
	Body   []byte
}

// Result は1リクエストの結果
type Result struct {
	Path      string
	Responses []Response
	Latency   time.Duration
	Err       error
}

// Status は最後のレスポンスのステータスを返す（レスポンスなしは0）
func (r Result) Status() int {
	if len(r.Responses) == 0 {
		return 0
	}
	return r.Responses[len(r.Responses)-1].Status
}

// Client は負荷生成器
type Client struct {
	config  Config
	dialer  net.Dialer
	metrics *metrics.Metrics

	mu    sync.Mutex
	paths map[string]*PathStats
}

// New は新しいClientを作成する
func New(config Config) *Client {
	defaults := DefaultConfig()
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}
	config.Workers = max(config.Workers, 1)
	if config.Requests < 0 {
		config.Requests = 0
	}
	if len(config.Paths) == 0 {
		config.Paths = defaults.Paths
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &Client{
		config:  config,
		metrics: metrics.New(),
		paths:   make(map[string]*PathStats),
	}
}

// Do は1リクエストを送り、接続が閉じられるまでレスポンスを読む
func (c *Client) Do(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Path: path}
	res.Responses, res.Err = c.do(ctx, path)
	res.Latency = time.Since(start)
	return res
}

func (c *Client) do(ctx context.Context, path string) ([]Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.config.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.config.Addr, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := fmt.Fprintf(conn, "GET %s HTTP/1.1\r\n", path); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	var responses []Response
	r := bufio.NewReader(conn)
	for {
		resp, err := http.ReadResponse(r, nil)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if len(responses) == 0 {
					return nil, ErrNoResponse
				}
				return responses, nil
			}
			return responses, fmt.Errorf("read response: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return responses, fmt.Errorf("read body: %w", err)
		}
		responses = append(responses, Response{Status: resp.StatusCode, Body: body})
	}
}

// Run は設定されたリクエスト数を送信してレポートを返す
// 個々のリクエストの失敗はレポートに集計され、エラーにはならない
func (c *Client) Run(ctx context.Context) (*Report, error) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.config.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.config.RPS), 1)
	}

	var bar *progressbar.ProgressBar
	if c.config.Progress != nil {
		bar = progressbar.NewOptions(c.config.Requests,
			progressbar.OptionSetWriter(c.config.Progress),
			progressbar.OptionSetDescription("Sending requests"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
		)
	}

	logger.Info("loadgen", "Sending %d requests to %s (workers: %d)",
		c.config.Requests, c.config.Addr, c.config.Workers)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Workers)

	for i := 0; i < c.config.Requests; i++ {
		if err := limiter.Wait(gctx); err != nil {
			break
		}
		path := c.config.Paths[i%len(c.config.Paths)]
		g.Go(func() error {
			c.record(c.Do(gctx, path))
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if bar != nil {
		_ = bar.Finish()
	}

	report := c.report(time.Since(start))
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// record は結果を集計する
func (c *Client) record(res Result) {
	if res.Err != nil {
		c.metrics.RecordFailure(res.Latency)
		if logger.Default.Enabled(logger.LevelDebug) {
			logger.Debug("loadgen", "%s failed after %s: %v", res.Path, res.Latency.Round(time.Millisecond), res.Err)
		}
	} else {
		c.metrics.RecordResponse(res.Status(), res.Latency)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ps, ok := c.paths[res.Path]
	if !ok {
		ps = &PathStats{Path: res.Path, StatusCounts: make(map[int]int)}
		c.paths[res.Path] = ps
	}
	ps.Requests++
	ps.TotalLatency += res.Latency
	if res.Err != nil {
		ps.Errors++
		return
	}
	ps.StatusCounts[res.Status()]++
}

func (c *Client) report(elapsed time.Duration) *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]PathStats, 0, len(c.paths))
	for _, ps := range c.paths {
		cp := *ps
		cp.StatusCounts = make(map[int]int, len(ps.StatusCounts))
		for k, v := range ps.StatusCounts {
			cp.StatusCounts[k] = v
		}
		paths = append(paths, cp)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Path < paths[j].Path })

	return &Report{
		Addr:     c.config.Addr,
		Elapsed:  elapsed,
		Snapshot: c.metrics.Snapshot(),
		Paths:    paths,
	}
}

// Metrics はメトリクスを返す
func (c *Client) Metrics() *metrics.Metrics {
	return c.metrics
}
