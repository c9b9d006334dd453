package client

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"concurrent-static-server/internal/metrics"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

// PathStats はパスごとの集計
type PathStats struct {
	Path         string
	Requests     int
	Errors       int
	StatusCounts map[int]int
	TotalLatency time.Duration
}

// AverageLatency は平均レイテンシを返す
func (p PathStats) AverageLatency() time.Duration {
	if p.Requests == 0 {
		return 0
	}
	return p.TotalLatency / time.Duration(p.Requests)
}

// Report は負荷生成の結果
type Report struct {
	Addr     string
	Elapsed  time.Duration
	Snapshot metrics.Snapshot
	Paths    []PathStats
}

// Errors は通信エラーの総数を返す
func (r *Report) Errors() int {
	total := 0
	for _, p := range r.Paths {
		total += p.Errors
	}
	return total
}

// Render はレポートを表形式で出力する
func (r *Report) Render(w io.Writer) error {
	_, _ = bold.Fprintf(w, "\nLoad test against %s\n", r.Addr)
	fmt.Fprintf(w, "  Requests: %d  Elapsed: %s  RPS: %.1f\n",
		r.Snapshot.TotalRequests, r.Elapsed.Round(time.Millisecond), r.Snapshot.OverallRPS)
	fmt.Fprintf(w, "  Latency: avg %s  p50 %s  p99 %s\n\n",
		r.Snapshot.AverageLatency.Round(time.Microsecond),
		r.Snapshot.P50Latency.Round(time.Microsecond),
		r.Snapshot.P99Latency.Round(time.Microsecond))

	table := tablewriter.NewWriter(w)
	table.Header("Path", "Requests", "Statuses", "Errors", "Avg Latency")

	for _, p := range r.Paths {
		errs := fmt.Sprintf("%d", p.Errors)
		if p.Errors > 0 {
			errs = red.Sprint(errs)
		}
		_ = table.Append(
			p.Path,
			fmt.Sprintf("%d", p.Requests),
			formatStatuses(p.StatusCounts),
			errs,
			p.AverageLatency().Round(time.Microsecond).String(),
		)
	}

	return table.Render()
}

// formatStatuses は "200×3 404×1" の形式に整形する
func formatStatuses(counts map[int]int) string {
	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, statusColor(code).Sprintf("%d×%d", code, counts[code]))
	}
	return strings.Join(parts, " ")
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 500:
		return red
	case code >= 400:
		return yellow
	default:
		return green
	}
}
