package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidNow is returned when run.now cannot be parsed.
var ErrInvalidNow = errors.New("run.now must be an RFC3339 timestamp")

// Config holds all application configuration.
type Config struct {
	Run struct {
		Now          string `yaml:"now"` // RFC3339; empty means the wall clock at scan time
		LookbackDays int    `yaml:"lookback_days" default:"90" validate:"gte=1,lte=365"`
		Workers      int    `yaml:"workers" default:"4" validate:"gte=1,lte=256"`
		OnStart      bool   `yaml:"on_start"`
	} `yaml:"run"`
	Sources struct {
		Subreddits []string `yaml:"subreddits"`
		Files      []string `yaml:"files"`
		HTTP       struct {
			BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
			APIKey   string `yaml:"api_key"`
			PageSize int    `yaml:"page_size" default:"500" validate:"gte=1,lte=5000"`
			MaxPages int    `yaml:"max_pages" default:"20" validate:"gte=1,lte=1000"`
		} `yaml:"http"`
	} `yaml:"sources"`
	Directory struct {
		NasdaqListedURL string        `yaml:"nasdaq_listed_url" default:"https://www.nasdaqtrader.com/dynamic/symdir/nasdaqlisted.txt" validate:"url"`
		OtherListedURL  string        `yaml:"other_listed_url" default:"https://www.nasdaqtrader.com/dynamic/symdir/otherlisted.txt" validate:"url"`
		CacheFile       string        `yaml:"cache_file" default:"data/directory.json"`
		CacheTTL        time.Duration `yaml:"cache_ttl" default:"24h" validate:"gte=0"`
		RedisAddr       string        `yaml:"redis_addr" validate:"omitempty,hostname_port"`
		RedisPassword   string        `yaml:"redis_password"`
		RedisDB         int           `yaml:"redis_db" validate:"gte=0"`
		RedisPrefix     string        `yaml:"redis_prefix" default:"prebloom"`
	} `yaml:"directory"`
	Extractor struct {
		ExtraStopwords []string `yaml:"extra_stopwords"`
		AllowWords     []string `yaml:"allow_words"` // removed from the default stoplist
	} `yaml:"extractor"`
	Exclusions struct {
		LargeCaps       []string `yaml:"large_caps"` // empty keeps the built-in list
		IncludeETFs     bool     `yaml:"include_etfs"`
		IncludeADRs     bool     `yaml:"include_adrs"`
		IncludeBiotech  bool     `yaml:"include_biotech"`
		BiotechKeywords []string `yaml:"biotech_keywords"` // empty keeps the built-in list
	} `yaml:"exclusions"`
	Scoring struct {
		BaselineSpanDays float64 `yaml:"baseline_span_days" default:"59" validate:"gt=0"`
		MaxBaseline      float64 `yaml:"max_baseline" default:"3" validate:"gte=0"`
		MinRecent        int     `yaml:"min_recent" default:"1" validate:"gte=1"`
		MaxTotal         int     `yaml:"max_total" validate:"gte=0"`
		MinMomentumRatio float64 `yaml:"min_momentum_ratio" validate:"gte=0"`
		TopN             int     `yaml:"top_n" validate:"gte=0"`
		EvidenceCapacity int     `yaml:"evidence_capacity" default:"3" validate:"gte=1,lte=20"`
	} `yaml:"scoring"`
	Report struct {
		CSVPath    string `yaml:"csv_path" default:"output/prebloom_candidates.csv"`
		NotifyTopN int    `yaml:"notify_top_n" default:"10" validate:"gte=1,lte=50"`
	} `yaml:"report"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron" default:"0 0 13 * * *"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/prebloom_scout.db"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"` // empty disables the /metrics listener
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, applies environment variable overrides,
// then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
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

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SCOUT_HTTP_BASE_URL"); v != "" {
		cfg.Sources.HTTP.BaseURL = v
	}
	if v := os.Getenv("SCOUT_HTTP_API_KEY"); v != "" {
		cfg.Sources.HTTP.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SCOUT_NOW"); v != "" {
		cfg.Run.Now = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Directory.RedisAddr = v
	}
	if v := os.Getenv("REPORT_CSV_PATH"); v != "" {
		cfg.Report.CSVPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(c.Sources.Files) == 0 && c.Sources.HTTP.BaseURL == "" {
		return fmt.Errorf("sources: at least one of files or http.base_url is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, _, err := c.FixedNow(); err != nil {
		return err
	}
	return nil
}

// FixedNow parses run.now. The boolean is false when no override is set.
func (c *Config) FixedNow() (time.Time, bool, error) {
	if strings.TrimSpace(c.Run.Now) == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Run.Now))
	if err != nil || t.IsZero() {
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidNow, c.Run.Now)
	}
	return t.UTC(), true, nil
}

// TelegramEnabled reports whether bot credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
