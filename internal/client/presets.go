package client

import (
	"time"
)

// Preset は名前付きの負荷パターン
type Preset struct {
	Name        string
	Description string
	Config      Config
}

// QuickPreset は動作確認用の設定を返す
// 全デモエンドポイントを1巡する
func QuickPreset() Config {
	config := DefaultConfig()
	config.Requests = 10
	config.Workers = 2
	return config
}

// StaticPreset は静的ファイル配信の負荷テスト設定を返す
func StaticPreset() Config {
	config := DefaultConfig()
	config.Requests = 1000
	config.Workers = 16
	config.Paths = []string{"/"}
	return config
}

// AsyncPreset は /async と /result を混ぜた設定を返す
// 各 /async は遅延タスク完了まで接続を保持する
func AsyncPreset() Config {
	config := DefaultConfig()
	config.Requests = 20
	config.Workers = 10
	config.RPS = 5
	config.Paths = []string{"/async", "/result"}
	config.Timeout = 10 * time.Second
	return config
}

// StressPreset は高負荷の設定を返す
func StressPreset() Config {
	config := DefaultConfig()
	config.Requests = 10000
	config.Workers = 64
	return config
}

// Presets は利用可能なプリセットを返す
func Presets() []Preset {
	return []Preset{
		{"quick", "全デモエンドポイントの動作確認（デフォルト）", QuickPreset()},
		{"static", "静的ファイル配信の負荷テスト", StaticPreset()},
		{"async", "遅延レスポンスと結果取得の混在", AsyncPreset()},
		{"stress", "高負荷ストレステスト", StressPreset()},
	}
}

// GetPreset は名前からプリセットを取得する
func GetPreset(name string) (Config, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p.Config, true
		}
	}
	return Config{}, false
}
