package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"concurrent-static-server/internal/logger"
	"concurrent-static-server/internal/server"

	"gopkg.in/yaml.v3"
)

// DefaultAdminAddr は管理サーバーのデフォルトアドレス
const DefaultAdminAddr = "127.0.0.1:9090"

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Admin  AdminConfig  `yaml:"admin" json:"admin"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Addr            string `yaml:"addr" json:"addr"`
	Root            string `yaml:"root" json:"root"`
	DefaultDocument string `yaml:"default_document" json:"default_document"`
	Workers         int    `yaml:"workers" json:"workers"`
	ReadTimeout     string `yaml:"read_timeout" json:"read_timeout"`
	PollInterval    string `yaml:"poll_interval" json:"poll_interval"`
	AsyncDelay      string `yaml:"async_delay" json:"async_delay"`
	ReusePort       bool   `yaml:"reuse_port" json:"reuse_port"`
}

// AdminConfig は管理サーバー設定
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// LogConfig はログ設定
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	Color bool   `yaml:"color" json:"color"`
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// ToServerConfig はFileConfigをserver.Configに変換する
func (f *FileConfig) ToServerConfig() (server.Config, error) {
	sc := f.Server

	// デフォルト値の設定
	config := server.DefaultConfig()

	if sc.Addr != "" {
		config.Addr = sc.Addr
	}
	if sc.Root != "" {
		config.Root = sc.Root
	}
	if sc.DefaultDocument != "" {
		config.DefaultDocument = sc.DefaultDocument
	}
	if sc.Workers > 0 {
		config.Workers = sc.Workers
	}
	config.ReusePort = sc.ReusePort

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"read_timeout", sc.ReadTimeout, &config.Handler.ReadTimeout},
		{"poll_interval", sc.PollInterval, &config.PollInterval},
		{"async_delay", sc.AsyncDelay, &config.Handler.AsyncDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return config, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = v
	}

	return config, nil
}

// AdminAddr は管理サーバーのアドレスを返す
func (f *FileConfig) AdminAddr() string {
	if f.Admin.Addr == "" {
		return DefaultAdminAddr
	}
	return f.Admin.Addr
}

// LogLevel はログレベルを返す
func (f *FileConfig) LogLevel() (logger.Level, error) {
	return logger.ParseLevel(f.Log.Level)
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	sc := f.Server

	if sc.Workers < 0 {
		return fmt.Errorf("server.workers must be non-negative")
	}

	if strings.ContainsAny(sc.DefaultDocument, `/\`) {
		return fmt.Errorf("server.default_document must be a file name")
	}

	c, err := f.ToServerConfig()
	if err != nil {
		return err
	}
	if c.Handler.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("server.poll_interval must be positive")
	}
	if c.Handler.AsyncDelay < 0 {
		return fmt.Errorf("server.async_delay must be non-negative")
	}

	if _, err := f.LogLevel(); err != nil {
		return err
	}

	return nil
}
