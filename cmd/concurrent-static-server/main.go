// Package main is the entry point for the concurrent static server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"concurrent-static-server/internal/api"
	"concurrent-static-server/internal/config"
	"concurrent-static-server/internal/events"
	"concurrent-static-server/internal/logger"
	"concurrent-static-server/internal/metrics"
	"concurrent-static-server/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
)

// options はコマンドラインフラグの値
type options struct {
	configFile string
	addr       string
	root       string
	workers    int
	admin      string
	logLevel   string
}

// appConfig はフラグと設定ファイルを統合した実行時設定
type appConfig struct {
	server    server.Config
	adminAddr string // 空なら管理サーバーを起動しない
	logLevel  logger.Level
	logColor  bool
}

func main() {
	var opts options

	// フラグ定義
	flag.StringVar(&opts.configFile, "config", "", "設定ファイルパス (YAML/JSON)")
	flag.StringVar(&opts.addr, "addr", "", "待ち受けアドレス (デフォルト: 127.0.0.1:7878)")
	flag.StringVar(&opts.root, "root", "", "静的ファイルのルートディレクトリ (デフォルト: ./static)")
	flag.IntVar(&opts.workers, "workers", 0, "ワーカー数 (デフォルト: 4)")
	flag.StringVar(&opts.admin, "admin", "", "管理APIのアドレス (例: 127.0.0.1:9090)")
	flag.StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "バージョンを表示")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `concurrent-static-server - worker-pool HTTP server with demo endpoints

Usage:
  concurrent-static-server [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # デフォルト設定で起動 (127.0.0.1:7878, ./static, 4 workers)
  concurrent-static-server

  # 設定ファイルから起動
  concurrent-static-server --config server.yaml

  # 管理API付きで起動
  concurrent-static-server --workers 8 --admin 127.0.0.1:9090
`)
	}

	flag.Parse()

	// バージョン表示
	if *showVersion {
		fmt.Printf("concurrent-static-server version %s\n", version)
		return
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(1)
	}

	logger.Default.SetLevel(cfg.logLevel)
	logger.Default.SetColor(cfg.logColor)

	if err := run(cfg); err != nil {
		logger.Error("", "サーバーエラー: %v", err)
		os.Exit(1)
	}
}

// buildConfig は設定ファイルを読み込み、フラグでオーバーライドする
func buildConfig(opts options) (appConfig, error) {
	fileConfig := &config.FileConfig{}

	// 1. 設定ファイルから読み込み
	if opts.configFile != "" {
		var err error
		fileConfig, err = config.LoadFile(opts.configFile)
		if err != nil {
			return appConfig{}, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
	}

	// 2. フラグでオーバーライド
	if opts.addr != "" {
		fileConfig.Server.Addr = opts.addr
	}
	if opts.root != "" {
		fileConfig.Server.Root = opts.root
	}
	if opts.workers != 0 {
		fileConfig.Server.Workers = opts.workers
	}
	if opts.admin != "" {
		fileConfig.Admin.Enabled = true
		fileConfig.Admin.Addr = opts.admin
	}
	if opts.logLevel != "" {
		fileConfig.Log.Level = opts.logLevel
	}

	if err := fileConfig.Validate(); err != nil {
		return appConfig{}, fmt.Errorf("設定検証エラー: %w", err)
	}

	serverConfig, err := fileConfig.ToServerConfig()
	if err != nil {
		return appConfig{}, fmt.Errorf("設定変換エラー: %w", err)
	}
	level, err := fileConfig.LogLevel()
	if err != nil {
		return appConfig{}, err
	}

	cfg := appConfig{
		server:   serverConfig,
		logLevel: level,
		logColor: fileConfig.Log.Color,
	}
	if fileConfig.Admin.Enabled {
		cfg.adminAddr = fileConfig.AdminAddr()
	}
	return cfg, nil
}

// run はサーバーと（有効なら）管理APIを実行し、シグナルで停止する
func run(cfg appConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	defer bus.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(cfg.server)
	srv.SetCollector(metrics.NewCollector(registry))
	srv.SetEventBus(bus)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		srv.Shutdown()
		return nil
	})

	g.Go(func() error {
		defer stop()
		return srv.ListenAndServe()
	})

	if cfg.adminAddr != "" {
		admin := api.NewServer(cfg.adminAddr, srv, registry, bus)
		g.Go(func() error {
			return admin.Start(gctx)
		})
	}

	err := g.Wait()

	// 遅延タスクは待たない
	if n := srv.Executor().Pending(); n > 0 {
		logger.Warn("", "%d async tasks abandoned at exit", n)
	}
	return err
}
