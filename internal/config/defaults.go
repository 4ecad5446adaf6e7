package config

import "time"

// Section keys double as task identifiers for the daily run.
const (
	SectionMarketTicker    = "market-ticker"
	SectionWhatsNews       = "whats-news"
	SectionHeroStory       = "hero-story"
	SectionFeaturedStories = "featured-stories"
	SectionOpinions        = "opinions"
	SectionDeepDive        = "deep-dive"
	SectionGlobalBriefing  = "global-briefing"
	SectionCampusNews      = "campus-news"
)

const (
	feedFinancialPost = "https://financialpost.com/feed"
	feedCBCBusiness   = "https://www.cbc.ca/webfeed/rss/rss-business"
	feedCBCWorld      = "https://www.cbc.ca/webfeed/rss/rss-world"
	feedBBCBusiness   = "https://feeds.bbci.co.uk/news/business/rss.xml"
	feedBBCWorld      = "https://feeds.bbci.co.uk/news/world/rss.xml"
	feedCNBC          = "https://www.cnbc.com/id/100003114/device/rss/rss.html"
	feedAlJazeera     = "https://www.aljazeera.com/xml/rss/all.xml"
	feedYFile         = "https://www.yorku.ca/yfile/feed/"
	feedYorkNews      = "https://news.yorku.ca/feed/"
)

func rss(name, url string) SourceConfig {
	return SourceConfig{Name: name, Kind: "rss", URL: url}
}

func deskRSS(desk, name, url string) SourceConfig {
	return SourceConfig{Name: name, Kind: "rss", URL: url, Desk: desk}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Driver:   "memory",
			Postgres: PostgresConfig{Table: "section_documents"},
			Elasticsearch: ElasticsearchConfig{
				IndexPrefix: "edition-",
				Pipeline:    "edition-last-updated",
			},
		},
		Judge: JudgeConfig{
			Provider:          "openai",
			Model:             "gpt-4o-mini",
			Temperature:       0.7,
			MaxTokens:         2048,
			RequestsPerMinute: 30,
			MaxCalls:          20,
			Timeout:           60 * time.Second,
		},
		Orchestrator: OrchestratorConfig{
			Tasks: []string{
				SectionMarketTicker,
				SectionWhatsNews,
				SectionHeroStory,
				SectionFeaturedStories,
				SectionOpinions,
				SectionDeepDive,
				SectionGlobalBriefing,
				SectionCampusNews,
			},
			TaskTimeout: 120 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Scheduler: SchedulerConfig{RunAt: "06:00", Timezone: defaultTimezone, location: tz},
		Telemetry: TelemetryConfig{
			ServiceName:   "dailyedition",
			TraceExporter: "none",
			SampleRatio:   1,
			Metrics:       true,
		},
		Feeds: FeedConfig{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:   20 * time.Second,
		},
		Market: MarketConfig{
			QuotesURL: "https://query1.finance.yahoo.com/v8/finance/chart/",
			Ticker: []SymbolConfig{
				{Label: "S&P/TSX", Symbol: "^GSPTSE"},
				{Label: "S&P 500", Symbol: "^GSPC"},
				{Label: "WTI Crude", Symbol: "CL=F"},
				{Label: "CAD/USD", Symbol: "CADUSD=X"},
				{Label: "Bitcoin", Symbol: "BTC-USD"},
			},
			Indicators: []SymbolConfig{
				{Label: "US 10Y Bond", Symbol: "^TNX"},
				{Label: "VIX (Fear Index)", Symbol: "^VIX"},
				{Label: "CAD/USD", Symbol: "CADUSD=X"},
				{Label: "Crude Oil", Symbol: "CL=F"},
				{Label: "TSX Composite", Symbol: "^GSPTSE"},
			},
		},
		Images: ImagesConfig{
			HeroFallbacks: []string{
				"https://images.unsplash.com/photo-1611974765270-ca12586343bb?q=80&w=1920&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1590283603385-17ffb3a7f29f?q=80&w=1920&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1486406146926-c627a92ad1ab?q=80&w=1920&auto=format&fit=crop",
			},
			CampusFallback:       "https://www.yorku.ca/brand/wp-content/uploads/sites/18/2020/09/YorkU-VariHall-Summer.jpg",
			IllustrationEndpoint: "https://image.pollinations.ai/prompt/",
		},
		Sections: defaultSections(),
	}
}

func defaultSections() map[string]SectionConfig {
	return map[string]SectionConfig{
		SectionMarketTicker: {Document: "system/market_ticker"},
		SectionWhatsNews: {
			Document: "daily_edition/whats_news",
			Sources: []SourceConfig{
				deskRSS("business", "financialpost", feedFinancialPost),
				deskRSS("business", "cbc-business", feedCBCBusiness),
				deskRSS("world", "bbc-world", feedBBCWorld),
				deskRSS("world", "cbc-world", feedCBCWorld),
			},
			PerSourceLimit: 5,
			MaxSelect:      4,
		},
		SectionHeroStory: {
			Document:       "daily_edition/hero_story",
			Sources:        []SourceConfig{rss("financialpost", feedFinancialPost)},
			PerSourceLimit: 1,
			MaxSelect:      1,
		},
		SectionFeaturedStories: {
			Document: "daily_edition/featured_stories",
			Sources: []SourceConfig{
				rss("financialpost", feedFinancialPost),
				rss("cbc-business", feedCBCBusiness),
				rss("bbc-business", feedBBCBusiness),
				rss("cnbc", feedCNBC),
			},
			PerSourceLimit: 3,
			MaxSelect:      4,
		},
		SectionOpinions: {
			Document: "daily_edition/opinions",
			Sources: []SourceConfig{
				rss("financialpost", feedFinancialPost),
				rss("cbc-business", feedCBCBusiness),
				rss("bbc-world", feedBBCWorld),
			},
			PerSourceLimit: 4,
			MaxSelect:      3,
		},
		SectionDeepDive: {
			Document:  "daily_edition/deep_dive",
			Sources:   []SourceConfig{{Name: "indicators", Kind: "quotes"}},
			MaxSelect: 3,
		},
		SectionGlobalBriefing: {
			Document: "daily_edition/global_briefing",
			Sources: []SourceConfig{
				rss("aljazeera", feedAlJazeera),
				rss("bbc-world", feedBBCWorld),
				rss("cnbc", feedCNBC),
			},
			PerSourceLimit: 3,
			MaxSelect:      3,
		},
		SectionCampusNews: {
			Document: "daily_edition/campus_news",
			Sources: []SourceConfig{
				rss("yfile", feedYFile),
				rss("yorku-news", feedYorkNews),
			},
			PerSourceLimit: 6,
			MaxSelect:      4,
		},
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Store.Driver != "" {
		base.Store.Driver = override.Store.Driver
	}
	if override.Store.Postgres.DSN != "" {
		base.Store.Postgres.DSN = override.Store.Postgres.DSN
	}
	if override.Store.Postgres.Table != "" {
		base.Store.Postgres.Table = override.Store.Postgres.Table
	}
	if len(override.Store.Elasticsearch.Addresses) > 0 {
		base.Store.Elasticsearch.Addresses = override.Store.Elasticsearch.Addresses
	}
	if override.Store.Elasticsearch.IndexPrefix != "" {
		base.Store.Elasticsearch.IndexPrefix = override.Store.Elasticsearch.IndexPrefix
	}
	if override.Store.Elasticsearch.Pipeline != "" {
		base.Store.Elasticsearch.Pipeline = override.Store.Elasticsearch.Pipeline
	}

	if override.Judge.Provider != "" {
		base.Judge.Provider = override.Judge.Provider
	}
	if override.Judge.Model != "" {
		base.Judge.Model = override.Judge.Model
	}
	if override.Judge.APIKey != "" {
		base.Judge.APIKey = override.Judge.APIKey
	}
	if override.Judge.BaseURL != "" {
		base.Judge.BaseURL = override.Judge.BaseURL
	}
	if override.Judge.Temperature != 0 {
		base.Judge.Temperature = override.Judge.Temperature
	}
	if override.Judge.MaxTokens != 0 {
		base.Judge.MaxTokens = override.Judge.MaxTokens
	}
	if override.Judge.RequestsPerMinute != 0 {
		base.Judge.RequestsPerMinute = override.Judge.RequestsPerMinute
	}
	if override.Judge.MaxCalls != 0 {
		base.Judge.MaxCalls = override.Judge.MaxCalls
	}
	if override.Judge.Timeout != 0 {
		base.Judge.Timeout = override.Judge.Timeout
	}

	if len(override.Orchestrator.Tasks) > 0 {
		base.Orchestrator.Tasks = override.Orchestrator.Tasks
	}
	if override.Orchestrator.TaskTimeout != 0 {
		base.Orchestrator.TaskTimeout = override.Orchestrator.TaskTimeout
	}
	if override.Orchestrator.InProcess {
		base.Orchestrator.InProcess = true
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ShutdownTimeout != 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = override.Server.AllowedOrigins
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.RunAt != "" {
		base.Scheduler.RunAt = override.Scheduler.RunAt
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIBase != "" {
		base.Notifications.Telegram.APIBase = override.Notifications.Telegram.APIBase
	}
	if len(override.Notifications.Kafka.Brokers) > 0 {
		base.Notifications.Kafka.Brokers = override.Notifications.Kafka.Brokers
	}
	if override.Notifications.Kafka.Topic != "" {
		base.Notifications.Kafka.Topic = override.Notifications.Kafka.Topic
	}

	if override.Telemetry.ServiceName != "" {
		base.Telemetry.ServiceName = override.Telemetry.ServiceName
	}
	if override.Telemetry.Tracing {
		base.Telemetry.Tracing = true
	}
	if override.Telemetry.TraceExporter != "" {
		base.Telemetry.TraceExporter = override.Telemetry.TraceExporter
	}
	if override.Telemetry.SampleRatio != 0 {
		base.Telemetry.SampleRatio = override.Telemetry.SampleRatio
	}

	if override.Feeds.UserAgent != "" {
		base.Feeds.UserAgent = override.Feeds.UserAgent
	}
	if override.Feeds.Timeout != 0 {
		base.Feeds.Timeout = override.Feeds.Timeout
	}

	if override.Market.QuotesURL != "" {
		base.Market.QuotesURL = override.Market.QuotesURL
	}
	if len(override.Market.Ticker) > 0 {
		base.Market.Ticker = override.Market.Ticker
	}
	if len(override.Market.Indicators) > 0 {
		base.Market.Indicators = override.Market.Indicators
	}

	if len(override.Images.HeroFallbacks) > 0 {
		base.Images.HeroFallbacks = override.Images.HeroFallbacks
	}
	if override.Images.CampusFallback != "" {
		base.Images.CampusFallback = override.Images.CampusFallback
	}
	if override.Images.IllustrationEndpoint != "" {
		base.Images.IllustrationEndpoint = override.Images.IllustrationEndpoint
	}

	for key, section := range override.Sections {
		base.Sections[key] = mergeSection(base.Sections[key], section)
	}

	return base
}

func mergeSection(base, override SectionConfig) SectionConfig {
	if override.Document != "" {
		base.Document = override.Document
	}
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}
	if override.PerSourceLimit != 0 {
		base.PerSourceLimit = override.PerSourceLimit
	}
	if override.MaxSelect != 0 {
		base.MaxSelect = override.MaxSelect
	}
	if override.WriteFeatured {
		base.WriteFeatured = true
	}
	if override.Prompt != "" {
		base.Prompt = override.Prompt
	}
	return base
}

// Default returns the built-in edition configuration without reading files or env.
func Default() Config {
	return defaultConfig()
}
