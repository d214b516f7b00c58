package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr         string `yaml:"addr" json:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" json:"maxBodyBytes"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type AuthzConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	PolicyPath string `yaml:"policy_path" json:"policyPath"`
}

// ReportConfig drives PDF generation.
type ReportConfig struct {
	CompanyName    string `yaml:"company_name" json:"companyName"`
	ChromeBin      string `yaml:"chrome_bin" json:"chromeBin"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeoutSeconds"`
}

// AppConfig holds the business settings editable from the settings screen.
type AppConfig struct {
	PageSize               int `yaml:"page_size" json:"pageSize"`
	MaxUnitsPerTransaction int `yaml:"max_units_per_transaction" json:"maxUnitsPerTransaction"`
	ExpiringSoonDays       int `yaml:"expiring_soon_days" json:"expiringSoonDays"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Authz    AuthzConfig    `yaml:"authz" json:"authz"`
	Report   ReportConfig   `yaml:"report" json:"report"`
	App      AppConfig      `yaml:"app" json:"app"`
}

var (
	cfg        = Default()
	mu         sync.RWMutex
	configPath = "./atec.yaml"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080", MaxBodyBytes: 4 << 20},
		Database: DatabaseConfig{Driver: "sqlite3", DSN: "./atec.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=1"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Authz:    AuthzConfig{Mode: "enforce"},
		Report:   ReportConfig{CompanyName: "Atec", TimeoutSeconds: 30},
		App:      AppConfig{PageSize: 10, MaxUnitsPerTransaction: 10000, ExpiringSoonDays: 30},
	}
}

// SetPath changes the file used by LoadConfig and SaveConfig.
func SetPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	if path != "" {
		configPath = path
	}
}

func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	_ = godotenv.Load()

	next := Default()
	file, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &next); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	applyEnv(&next)
	applyDefaults(&next)
	cfg = next
	return cfg, nil
}

// SaveConfig persists the editable sections and keeps the rest as loaded.
func SaveConfig(app AppConfig, report ReportConfig) error {
	mu.Lock()
	defer mu.Unlock()

	next := cfg
	next.App = app
	next.Report = report
	applyDefaults(&next)

	file, err := yaml.Marshal(next)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, file, 0644); err != nil {
		return err
	}
	cfg = next
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func applyEnv(c *Config) {
	if v := os.Getenv("ATEC_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("ATEC_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("ATEC_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ATEC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ATEC_CHROME_BIN"); v != "" {
		c.Report.ChromeBin = v
	}
	if v := os.Getenv("ATEC_AUTHZ_MODE"); v != "" {
		c.Authz.Mode = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("ATEC_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.App.PageSize = n
		}
	}
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Database.DSN == "" && c.Database.Driver == d.Database.Driver {
		c.Database.DSN = d.Database.DSN
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Authz.Mode == "" {
		c.Authz.Mode = d.Authz.Mode
	}
	if c.Report.TimeoutSeconds <= 0 {
		c.Report.TimeoutSeconds = d.Report.TimeoutSeconds
	}
	if c.App.PageSize <= 0 {
		c.App.PageSize = d.App.PageSize
	}
	if c.App.MaxUnitsPerTransaction <= 0 {
		c.App.MaxUnitsPerTransaction = d.App.MaxUnitsPerTransaction
	}
	if c.App.ExpiringSoonDays <= 0 {
		c.App.ExpiringSoonDays = d.App.ExpiringSoonDays
	}
}
