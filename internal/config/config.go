package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
		Format string `yaml:"format" validate:"oneof=json text"`
		File   string `yaml:"file"`
	} `yaml:"log"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base" validate:"required,url"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"data_source"`
	Analysis struct {
		Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
		Gemini  Provider      `yaml:"gemini"`
		OpenAI  Provider      `yaml:"openai"`
		Claude  Provider      `yaml:"claude"`
	} `yaml:"analysis"`
	Watchlist struct {
		File string `yaml:"file" validate:"required"`
	} `yaml:"watchlist"`
	Report struct {
		Dir      string `yaml:"dir" validate:"required"`
		FontPath string `yaml:"font_path"`
	} `yaml:"report"`
	Schedule struct {
		Timezone    string `yaml:"timezone" validate:"required"`
		MiddayCron  string `yaml:"midday_cron" validate:"required"`
		CloseCron   string `yaml:"close_cron" validate:"required"`
		RefreshCron string `yaml:"refresh_cron" validate:"required"`
	} `yaml:"schedule"`
	Pacing struct {
		Fetch  time.Duration `yaml:"fetch" validate:"gte=0"`
		Symbol time.Duration `yaml:"symbol" validate:"gte=0"`
	} `yaml:"pacing"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
	Proxy string `yaml:"proxy"`
}

// Provider holds credentials and model selection for one text-generation API.
type Provider struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	MaxTokens int    `yaml:"max_tokens" validate:"gte=0"`
}

const (
	DefaultMiddayCron  = "0 0 12 * * *"
	DefaultCloseCron   = "0 15 15 * * *"
	DefaultRefreshCron = "@every 30m"

	DefaultFetchPacing  = time.Second
	DefaultSymbolPacing = 2 * time.Second
)

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	override("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	override("STOCK_API_BASE_URL", &cfg.DataSource.BaseURL)
	override("STOCK_API_KEY", &cfg.DataSource.APIKey)
	override("GOOGLE_API_KEY", &cfg.Analysis.Gemini.APIKey)
	override("OPENAI_API_KEY", &cfg.Analysis.OpenAI.APIKey)
	override("ANTHROPIC_API_KEY", &cfg.Analysis.Claude.APIKey)
	override("HTTPS_PROXY", &cfg.Proxy)
	override("WATCHLIST_FILE", &cfg.Watchlist.File)
	override("REPORT_DIR", &cfg.Report.Dir)
	override("REPORT_FONT_PATH", &cfg.Report.FontPath)
	override("SQLITE_PATH", &cfg.Database.SQLitePath)
	override("LOG_LEVEL", &cfg.Log.Level)
	override("LOG_FILE", &cfg.Log.File)
	override("SCHEDULE_TIMEZONE", &cfg.Schedule.Timezone)

	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
}

func applyDefaults(cfg *Config) {
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "stock_reporter.log"
	}
	if cfg.Telegram.APIBase == "" {
		cfg.Telegram.APIBase = "https://api.telegram.org"
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.Analysis.Timeout == 0 {
		cfg.Analysis.Timeout = 2 * time.Minute
	}
	if cfg.Analysis.Gemini.Model == "" {
		cfg.Analysis.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Analysis.OpenAI.Model == "" {
		cfg.Analysis.OpenAI.Model = "gpt-4o"
	}
	if cfg.Analysis.Claude.Model == "" {
		cfg.Analysis.Claude.Model = "claude-sonnet-4-5"
	}
	if cfg.Analysis.Claude.MaxTokens == 0 {
		cfg.Analysis.Claude.MaxTokens = 4096
	}
	if cfg.Watchlist.File == "" {
		cfg.Watchlist.File = "monitored_stocks.json"
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "reports"
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Asia/Shanghai"
	}
	if cfg.Schedule.MiddayCron == "" {
		cfg.Schedule.MiddayCron = DefaultMiddayCron
	}
	if cfg.Schedule.CloseCron == "" {
		cfg.Schedule.CloseCron = DefaultCloseCron
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = DefaultRefreshCron
	}
	if cfg.Pacing.Fetch == 0 {
		cfg.Pacing.Fetch = DefaultFetchPacing
	}
	if cfg.Pacing.Symbol == 0 {
		cfg.Pacing.Symbol = DefaultSymbolPacing
	}
}

// Validate checks field constraints, the schedule expressions and the
// timezone. Credentials are all optional.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"schedule.midday_cron":  c.Schedule.MiddayCron,
		"schedule.close_cron":   c.Schedule.CloseCron,
		"schedule.refresh_cron": c.Schedule.RefreshCron,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}

// Location returns the scheduling timezone, falling back to local time.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
