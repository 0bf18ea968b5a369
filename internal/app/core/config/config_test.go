package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GRPC.Addr != ":50051" || cfg.Storage.Driver != DriverMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.MySQL.MaxOpenConns != 100 || cfg.MySQL.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("unexpected mysql defaults: %+v", cfg.MySQL)
	}
}

func TestParseFull(t *testing.T) {
	data := `
grpc:
  addr: ":6000"
  reflection: true
storage:
  driver: mysql
  wal_path: data/wal.log
mysql:
  host: db
  port: 3307
  user: ledger
  password: secret
  db_name: accounts
  conn_max_lifetime: 5m
  log_level: warn
log:
  level: debug
  format: text
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GRPC.Addr != ":6000" || !cfg.GRPC.Reflection {
		t.Fatalf("grpc=%+v", cfg.GRPC)
	}
	if cfg.Storage.Driver != DriverMySQL || cfg.Storage.WALPath != "data/wal.log" {
		t.Fatalf("storage=%+v", cfg.Storage)
	}
	if cfg.MySQL.Host != "db" || cfg.MySQL.Port != 3307 || cfg.MySQL.DBName != "accounts" {
		t.Fatalf("mysql=%+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 5*time.Minute || cfg.MySQL.LogLevel != "warn" {
		t.Fatalf("mysql=%+v", cfg.MySQL)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":         "grpc: [",
		"unknown driver":   "storage: {driver: redis}",
		"mysql without db": "storage: {driver: mysql}",
		"seed without db":  "storage: {seed_from_mysql: true}",
		"unknown level":    "log: {level: loud}",
		"unknown format":   "log: {format: xml}",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Fatalf("want error for %q", data)
			}
		})
	}
}

func TestLoadAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("grpc: {addr: \":7000\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)
	if Path() != path {
		t.Fatalf("Path()=%q want %q", Path(), path)
	}
	cfg, err := Load(Path())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GRPC.Addr != ":7000" {
		t.Fatalf("addr=%q", cfg.GRPC.Addr)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	logger = LogConfig{Level: "debug", Format: "text"}.NewLogger(&buf)
	if !logger.Enabled(context.Background(), -4) {
		t.Fatal("debug should be enabled")
	}
	logger.Debug("dbg")
	if !strings.Contains(buf.String(), "msg=dbg") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
