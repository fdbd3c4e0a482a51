package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the guru service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Router    RouterConfig    `mapstructure:"router"`
	Lesson    LessonConfig    `mapstructure:"lesson"`
	Databases DatabasesConfig `mapstructure:"databases"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	AppName        string        `mapstructure:"app_name"`
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type    string              `mapstructure:"type"` // openai (or any OpenAI-compatible endpoint)
	APIKey  string              `mapstructure:"api_key"`
	BaseURL string              `mapstructure:"base_url"`
	Models  map[string]LLMModel `mapstructure:"models"`
	Timeout time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name            string  `mapstructure:"name"`
	APIName         string  `mapstructure:"api_name"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	CostPer1K       float64 `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64 `mapstructure:"cost_per_1k_output"`
}

// LLMRoutingConfig selects which model each agent role uses. Default is
// consumed by every role unless a role names its own model.
type LLMRoutingConfig struct {
	Default string `mapstructure:"default"`
	Lesson  string `mapstructure:"lesson"`
	Pattern string `mapstructure:"pattern"`
	Raga    string `mapstructure:"raga"`
}

// ModelFor returns the configured model for a role, falling back to Default.
func (r LLMRoutingConfig) ModelFor(role string) string {
	switch role {
	case "lesson":
		if r.Lesson != "" {
			return r.Lesson
		}
	case "pattern":
		if r.Pattern != "" {
			return r.Pattern
		}
	case "raga":
		if r.Raga != "" {
			return r.Raga
		}
	}
	return r.Default
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	CostTracking bool `mapstructure:"cost_tracking"`
	PeriodicLogs bool `mapstructure:"periodic_logs"`
}

// RouterConfig holds the keyword sets the query router matches against.
// Defaults are applied in LoadConfig, so a bare config file still routes.
type RouterConfig struct {
	RagaKeywords    []string `mapstructure:"raga_keywords"`
	PatternKeywords []string `mapstructure:"pattern_keywords"`
	LessonKeywords  []string `mapstructure:"lesson_keywords"`
	Default         string   `mapstructure:"default"`
}

// LessonConfig describes the lesson document and retrieval bounds.
type LessonConfig struct {
	Path       string        `mapstructure:"path"`
	SkipChars  int           `mapstructure:"skip_chars"`  // front-matter region excluded from matches
	MaxExcerpt int           `mapstructure:"max_excerpt"` // excerpt cap in characters
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

func (l LessonConfig) Validate() error {
	if strings.TrimSpace(l.Path) == "" {
		return fmt.Errorf("lesson.path required")
	}
	if l.MaxExcerpt <= 0 {
		return fmt.Errorf("lesson.max_excerpt must be > 0")
	}
	if l.SkipChars < 0 {
		return fmt.Errorf("lesson.skip_chars must be >= 0")
	}
	return nil
}

// DatabasesConfig groups the backing stores.
type DatabasesConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DSN builds a Postgres connection string, preferring an explicit URL.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (databases.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Addr() string {
	host := r.Host
	if host == "" {
		host = "localhost"
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", host, port)
}

// LoadConfig reads config.json (or the given file) and environment overrides.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.app_name", "carnatic_guru")
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", "30s")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.cost_tracking", true)
	viper.SetDefault("router.raga_keywords", []string{"raga", "raag"})
	viper.SetDefault("router.pattern_keywords", []string{"swara", "pattern"})
	viper.SetDefault("router.lesson_keywords", []string{"lesson"})
	viper.SetDefault("router.default", "lesson")
	viper.SetDefault("lesson.path", "carnatic_basics.pdf")
	viper.SetDefault("lesson.skip_chars", 1200)
	viper.SetDefault("lesson.max_excerpt", 2000)
	viper.SetDefault("lesson.cache_ttl", "1h")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("GURU")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}

	// Credential comes from the environment when the file omits it.
	for name, p := range cfg.LLM.Providers {
		if p.APIKey == "" {
			p.APIKey = os.Getenv("LLM_API_KEY")
			cfg.LLM.Providers[name] = p
		}
	}

	return &cfg
}
