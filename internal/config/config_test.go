package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"concurrent-static-server/internal/logger"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return path
}

func TestLoadFileYAML(t *testing.T) {
	content := `
server:
  addr: 0.0.0.0:8080
  root: /srv/www
  workers: 8
  read_timeout: 2s
  async_delay: 500ms
  reuse_port: true
admin:
  enabled: true
  addr: 127.0.0.1:9191
log:
  level: debug
  color: true
`
	cfg, err := LoadFile(writeConfig(t, "config.yaml", content))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("expected addr '0.0.0.0:8080', got '%s'", cfg.Server.Addr)
	}
	if cfg.Server.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Server.Workers)
	}
	if !cfg.Server.ReusePort {
		t.Error("expected reuse_port to be enabled")
	}
	if !cfg.Admin.Enabled {
		t.Error("expected admin to be enabled")
	}
	if cfg.AdminAddr() != "127.0.0.1:9191" {
		t.Errorf("expected admin addr '127.0.0.1:9191', got '%s'", cfg.AdminAddr())
	}
	if !cfg.Log.Color {
		t.Error("expected log color to be enabled")
	}
}

func TestLoadFileJSON(t *testing.T) {
	content := `{
  "server": {
    "root": "public",
    "workers": 2
  },
  "log": {
    "level": "warn"
  }
}`
	cfg, err := LoadFile(writeConfig(t, "config.json", content))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Root != "public" {
		t.Errorf("expected root 'public', got '%s'", cfg.Server.Root)
	}
	if cfg.Admin.Enabled {
		t.Error("expected admin to be disabled")
	}
	level, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level != logger.LevelWarn {
		t.Errorf("expected level WARN, got %s", level)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "config.txt", "test"))
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "config.yaml", "server: [unclosed"))
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestToServerConfig(t *testing.T) {
	cfg := &FileConfig{
		Server: ServerConfig{
			Addr:            "127.0.0.1:9000",
			Root:            "www",
			DefaultDocument: "home.html",
			Workers:         16,
			ReadTimeout:     "3s",
			PollInterval:    "50ms",
			AsyncDelay:      "1s",
			ReusePort:       true,
		},
	}

	serverCfg, err := cfg.ToServerConfig()
	if err != nil {
		t.Fatalf("failed to convert config: %v", err)
	}

	if serverCfg.Addr != "127.0.0.1:9000" {
		t.Errorf("expected addr '127.0.0.1:9000', got '%s'", serverCfg.Addr)
	}
	if serverCfg.Root != "www" {
		t.Errorf("expected root 'www', got '%s'", serverCfg.Root)
	}
	if serverCfg.DefaultDocument != "home.html" {
		t.Errorf("expected default document 'home.html', got '%s'", serverCfg.DefaultDocument)
	}
	if serverCfg.Workers != 16 {
		t.Errorf("expected workers 16, got %d", serverCfg.Workers)
	}
	if serverCfg.Handler.ReadTimeout != 3*time.Second {
		t.Errorf("expected read timeout 3s, got %v", serverCfg.Handler.ReadTimeout)
	}
	if serverCfg.PollInterval != 50*time.Millisecond {
		t.Errorf("expected poll interval 50ms, got %v", serverCfg.PollInterval)
	}
	if serverCfg.Handler.AsyncDelay != time.Second {
		t.Errorf("expected async delay 1s, got %v", serverCfg.Handler.AsyncDelay)
	}
	if !serverCfg.ReusePort {
		t.Error("expected reuse port to be enabled")
	}
}

func TestToServerConfigDefaults(t *testing.T) {
	cfg := &FileConfig{}

	serverCfg, err := cfg.ToServerConfig()
	if err != nil {
		t.Fatalf("failed to convert config: %v", err)
	}

	if serverCfg.Addr != "127.0.0.1:7878" {
		t.Errorf("expected default addr, got '%s'", serverCfg.Addr)
	}
	if serverCfg.Root != "./static" {
		t.Errorf("expected default root, got '%s'", serverCfg.Root)
	}
	if serverCfg.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", serverCfg.Workers)
	}
	if serverCfg.Handler.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", serverCfg.Handler.ReadTimeout)
	}
	if serverCfg.Handler.AsyncDelay != 4*time.Second {
		t.Errorf("expected async delay 4s, got %v", serverCfg.Handler.AsyncDelay)
	}
	if cfg.AdminAddr() != DefaultAdminAddr {
		t.Errorf("expected default admin addr, got '%s'", cfg.AdminAddr())
	}
}

func TestToServerConfigInvalidDuration(t *testing.T) {
	tests := []struct {
		name   string
		server ServerConfig
	}{
		{"read_timeout", ServerConfig{ReadTimeout: "invalid"}},
		{"poll_interval", ServerConfig{PollInterval: "soon"}},
		{"async_delay", ServerConfig{AsyncDelay: "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &FileConfig{Server: tt.server}
			if _, err := cfg.ToServerConfig(); err == nil {
				t.Error("expected error for invalid duration")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  FileConfig
		wantErr bool
	}{
		{
			name:    "empty config",
			config:  FileConfig{},
			wantErr: false,
		},
		{
			name:    "valid config",
			config:  FileConfig{Server: ServerConfig{Workers: 4, AsyncDelay: "0s"}, Log: LogConfig{Level: "error"}},
			wantErr: false,
		},
		{
			name:    "negative workers",
			config:  FileConfig{Server: ServerConfig{Workers: -1}},
			wantErr: true,
		},
		{
			name:    "default document with separator",
			config:  FileConfig{Server: ServerConfig{DefaultDocument: "../index.html"}},
			wantErr: true,
		},
		{
			name:    "zero read timeout",
			config:  FileConfig{Server: ServerConfig{ReadTimeout: "0s"}},
			wantErr: true,
		},
		{
			name:    "negative poll interval",
			config:  FileConfig{Server: ServerConfig{PollInterval: "-1ms"}},
			wantErr: true,
		},
		{
			name:    "negative async delay",
			config:  FileConfig{Server: ServerConfig{AsyncDelay: "-1s"}},
			wantErr: true,
		},
		{
			name:    "unparseable duration",
			config:  FileConfig{Server: ServerConfig{ReadTimeout: "x"}},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			config:  FileConfig{Log: LogConfig{Level: "verbose"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
