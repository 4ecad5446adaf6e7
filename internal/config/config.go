package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "DAILY_EDITION_CONFIG"
	envPrefix       = "EDITION"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig            `yaml:"logging"`
	Store         StoreConfig              `yaml:"store"`
	Judge         JudgeConfig              `yaml:"judge"`
	Orchestrator  OrchestratorConfig       `yaml:"orchestrator"`
	Server        ServerConfig             `yaml:"server"`
	Scheduler     SchedulerConfig          `yaml:"scheduler"`
	Notifications NotificationConfig       `yaml:"notifications"`
	Telemetry     TelemetryConfig          `yaml:"telemetry"`
	Feeds         FeedConfig               `yaml:"feeds"`
	Market        MarketConfig             `yaml:"market"`
	Images        ImagesConfig             `yaml:"images"`
	Sections      map[string]SectionConfig `yaml:"sections" validate:"required,dive"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver        string              `yaml:"driver" validate:"required,oneof=memory postgres elasticsearch"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
}

// PostgresConfig describes Postgres connection details.
type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// ElasticsearchConfig describes the search-backed store.
type ElasticsearchConfig struct {
	Addresses   []string `yaml:"addresses" validate:"dive,url"`
	IndexPrefix string   `yaml:"indexPrefix"`
	Pipeline    string   `yaml:"pipeline"`
}

// JudgeConfig defines how to reach the generative model.
type JudgeConfig struct {
	Provider          string        `yaml:"provider" validate:"required,oneof=openai anthropic"`
	Model             string        `yaml:"model" validate:"required"`
	APIKey            string        `yaml:"apiKey"`
	BaseURL           string        `yaml:"baseUrl" validate:"omitempty,url"`
	Temperature       float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int64         `yaml:"maxTokens" validate:"gt=0"`
	RequestsPerMinute int           `yaml:"requestsPerMinute" validate:"gte=0"`
	MaxCalls          int           `yaml:"maxCalls" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout"`
}

// OrchestratorConfig lists the daily tasks in execution order.
type OrchestratorConfig struct {
	Tasks       []string      `yaml:"tasks" validate:"min=1"`
	TaskTimeout time.Duration `yaml:"taskTimeout" validate:"gt=0"`
	InProcess   bool          `yaml:"inProcess"`
}

// RunsInProcess reports whether tasks must share the parent process. A memory
// store only lives as long as its process, so child tasks would lose every write.
func (c Config) RunsInProcess() bool {
	return c.Orchestrator.InProcess || c.Store.Driver == "memory"
}

// ServerConfig configures the trigger surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
}

// SchedulerConfig defines when the daily run fires on its own.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	RunAt    string         `yaml:"runAt" validate:"omitempty,datetime=15:04"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound report channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase" validate:"omitempty,url"`
}

// KafkaConfig points run reports at a topic.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// TelemetryConfig toggles tracing and metrics.
type TelemetryConfig struct {
	ServiceName   string  `yaml:"serviceName"`
	Tracing       bool    `yaml:"tracing"`
	TraceExporter string  `yaml:"traceExporter" validate:"omitempty,oneof=stdout none"`
	SampleRatio   float64 `yaml:"sampleRatio" validate:"gte=0,lte=1"`
	Metrics       bool    `yaml:"metrics"`
}

// FeedConfig tunes outbound feed requests.
type FeedConfig struct {
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// MarketConfig lists the symbols used by quantitative sections.
type MarketConfig struct {
	QuotesURL  string         `yaml:"quotesUrl" validate:"omitempty,url"`
	Ticker     []SymbolConfig `yaml:"ticker" validate:"dive"`
	Indicators []SymbolConfig `yaml:"indicators" validate:"dive"`
}

// SymbolConfig maps a display label to a market symbol.
type SymbolConfig struct {
	Label  string `yaml:"label" validate:"required"`
	Symbol string `yaml:"symbol" validate:"required"`
}

// ImagesConfig carries image fallbacks and the illustration endpoint.
type ImagesConfig struct {
	HeroFallbacks        []string `yaml:"heroFallbacks" validate:"dive,url"`
	CampusFallback       string   `yaml:"campusFallback" validate:"omitempty,url"`
	IllustrationEndpoint string   `yaml:"illustrationEndpoint" validate:"omitempty,url"`
}

// SectionConfig describes one section's sources and selection limits.
type SectionConfig struct {
	Document       string         `yaml:"document" validate:"required"`
	Sources        []SourceConfig `yaml:"sources" validate:"dive"`
	PerSourceLimit int            `yaml:"perSourceLimit" validate:"gte=0"`
	MaxSelect      int            `yaml:"maxSelect" validate:"gte=0"`
	WriteFeatured  bool           `yaml:"writeFeatured"`
	// Prompt replaces the built-in instruction template for the section.
	Prompt string `yaml:"prompt"`
}

// SourceConfig describes a single source with its fetch strategy.
type SourceConfig struct {
	Name      string            `yaml:"name" validate:"required"`
	Kind      string            `yaml:"kind" validate:"required,oneof=rss html quotes"`
	URL       string            `yaml:"url" validate:"omitempty,url"`
	Desk      string            `yaml:"desk"`
	Selectors map[string]string `yaml:"selectors"`
}

type envOverrides struct {
	LogLevel         string        `envconfig:"LOG_LEVEL"`
	LogFormat        string        `envconfig:"LOG_FORMAT"`
	StoreDriver      string        `envconfig:"STORE_DRIVER"`
	DatabaseDSN      string        `envconfig:"DATABASE_DSN"`
	ElasticAddresses []string      `envconfig:"ELASTICSEARCH_ADDRESSES"`
	JudgeProvider    string        `envconfig:"JUDGE_PROVIDER"`
	JudgeModel       string        `envconfig:"JUDGE_MODEL"`
	OpenAIAPIKey     string        `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey  string        `envconfig:"ANTHROPIC_API_KEY"`
	TelegramToken    string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string        `envconfig:"TELEGRAM_CHAT_ID"`
	KafkaBrokers     []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic       string        `envconfig:"KAFKA_TOPIC"`
	ServerAddr       string        `envconfig:"SERVER_ADDR"`
	TaskTimeout      time.Duration `envconfig:"TASK_TIMEOUT"`
}

// Load reads YAML configuration (if present), applies environment overrides and validates the result.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var errs []error
	for key, section := range c.Sections {
		for _, src := range section.Sources {
			if src.Kind != "quotes" && src.URL == "" {
				errs = append(errs, fmt.Errorf("section %s: source %s needs a url", key, src.Name))
			}
		}
	}
	if c.Store.Driver == "postgres" && c.Store.Postgres.DSN == "" {
		errs = append(errs, errors.New("store: postgres driver needs a dsn"))
	}
	if c.Store.Driver == "elasticsearch" && len(c.Store.Elasticsearch.Addresses) == 0 {
		errs = append(errs, errors.New("store: elasticsearch driver needs addresses"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}

	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		c.Logging.Format = env.LogFormat
	}
	if env.StoreDriver != "" {
		c.Store.Driver = env.StoreDriver
	}
	if env.DatabaseDSN != "" {
		c.Store.Postgres.DSN = env.DatabaseDSN
	}
	if len(env.ElasticAddresses) > 0 {
		c.Store.Elasticsearch.Addresses = env.ElasticAddresses
	}
	if env.JudgeProvider != "" {
		c.Judge.Provider = env.JudgeProvider
	}
	if env.JudgeModel != "" {
		c.Judge.Model = env.JudgeModel
	}
	if c.Judge.APIKey == "" {
		switch c.Judge.Provider {
		case "openai":
			c.Judge.APIKey = env.OpenAIAPIKey
		case "anthropic":
			c.Judge.APIKey = env.AnthropicAPIKey
		}
	}
	if env.TelegramToken != "" {
		c.Notifications.Telegram.BotToken = env.TelegramToken
	}
	if env.TelegramChatID != "" {
		c.Notifications.Telegram.ChatID = env.TelegramChatID
	}
	if len(env.KafkaBrokers) > 0 {
		c.Notifications.Kafka.Brokers = env.KafkaBrokers
	}
	if env.KafkaTopic != "" {
		c.Notifications.Kafka.Topic = env.KafkaTopic
	}
	if env.ServerAddr != "" {
		c.Server.Addr = env.ServerAddr
	}
	if env.TaskTimeout > 0 {
		c.Orchestrator.TaskTimeout = env.TaskTimeout
	}
	return nil
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("config: unknown timezone %s: %w", tz, err)
	}
	c.Scheduler.location = loc
	return nil
}
