package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-account-ledger/pkg/mysql"
)

// EnvConfigPath 可覆寫設定檔路徑的環境變數
const EnvConfigPath = "LEDGER_CONFIG"

// DefaultPath 預設設定檔路徑
const DefaultPath = "config/config.yaml"

// 儲存後端
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

type Config struct {
	GRPC    GRPCConfig    `yaml:"grpc"`
	Storage StorageConfig `yaml:"storage"`
	MySQL   mysql.Config  `yaml:"mysql"`
	Log     LogConfig     `yaml:"log"`
}

type GRPCConfig struct {
	Addr       string `yaml:"addr"`
	Reflection bool   `yaml:"reflection"`
}

// StorageConfig 帳戶儲存設定
//
//	Driver: "memory" (預設) 或 "mysql"
//	WALPath: memory 使用的 WAL 檔案，空字串表示不寫 WAL
//	SeedFromMySQL: memory 啟動時先從 MySQL 載入所有帳戶
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	WALPath       string `yaml:"wal_path"`
	SeedFromMySQL bool   `yaml:"seed_from_mysql"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Path 回傳設定檔路徑，環境變數優先
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load 讀取 YAML 設定檔並補全預設值
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults 補全未設定的欄位
func (c *Config) ApplyDefaults() {
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	c.MySQL.ApplyDefaults()
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
		if c.Storage.SeedFromMySQL {
			if err := c.MySQL.Validate(); err != nil {
				return fmt.Errorf("storage.seed_from_mysql: %w", err)
			}
		}
	case DriverMySQL:
		if err := c.MySQL.Validate(); err != nil {
			return fmt.Errorf("storage.driver=mysql: %w", err)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// NewLogger 依設定建立 slog.Logger
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
