// Package main is a load generator for the concurrent static server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"concurrent-static-server/internal/client"
	"concurrent-static-server/internal/logger"

	"github.com/fatih/color"
)

func main() {
	defaults := client.DefaultConfig()

	var (
		presetName  = flag.String("preset", "", "プリセット名 (quick, static, async, stress)")
		listPresets = flag.Bool("list-presets", false, "利用可能なプリセットを表示")
		addr        = flag.String("addr", defaults.Addr, "サーバーアドレス")
		requests    = flag.Int("requests", defaults.Requests, "総リクエスト数")
		workers     = flag.Int("workers", defaults.Workers, "同時接続数")
		rps         = flag.Float64("rps", 0, "秒間リクエスト数 (0で無制限)")
		paths       = flag.String("paths", strings.Join(defaults.Paths, ","), "リクエストパス (カンマ区切り)")
		timeout     = flag.Duration("timeout", defaults.Timeout, "1リクエストのタイムアウト")
		ciMode      = flag.Bool("ci", false, "CIモード (進捗・色なし、通信エラーで終了コード1)")
	)
	flag.Parse()

	if *listPresets {
		printPresets()
		return
	}

	config := defaults
	if *presetName != "" {
		preset, ok := client.GetPreset(*presetName)
		if !ok {
			logger.Error("loadgen", "不明なプリセット: %s", *presetName)
			os.Exit(1)
		}
		config = preset
	}

	// 明示的に指定されたフラグのみオーバーライド
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			config.Addr = *addr
		case "requests":
			config.Requests = *requests
		case "workers":
			config.Workers = *workers
		case "rps":
			config.RPS = *rps
		case "paths":
			config.Paths = parsePaths(*paths)
		case "timeout":
			config.Timeout = *timeout
		}
	})

	if *ciMode {
		color.NoColor = true
	} else {
		config.Progress = os.Stderr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	report, err := client.New(config).Run(ctx)
	if err != nil {
		logger.Warn("loadgen", "中断されました (%v経過): %v", time.Since(start).Round(time.Millisecond), err)
	}

	if err := report.Render(os.Stdout); err != nil {
		logger.Error("loadgen", "レポート出力エラー: %v", err)
	}

	if *ciMode && (err != nil || report.Errors() > 0) {
		fmt.Fprintf(os.Stderr, "loadgen: %d requests failed\n", report.Errors())
		os.Exit(1)
	}
}

// parsePaths はカンマ区切りのパスを分割する
func parsePaths(s string) []string {
	var paths []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		paths = append(paths, p)
	}
	return paths
}

// printPresets は利用可能なプリセットを表示する
func printPresets() {
	fmt.Println("利用可能なプリセット:")
	fmt.Println()

	for _, p := range client.Presets() {
		fmt.Printf("  %-8s %s (%d requests, %d workers)\n",
			p.Name, p.Description, p.Config.Requests, p.Config.Workers)
	}

	fmt.Println()
	fmt.Println("使用例: loadgen --preset quick")
}
