package ports

import (
	"context"
	"time"

	"DailyEdition/internal/domain"
)

// Judge is the generative model that selects and reshapes candidates.
type Judge interface {
	// GenerateStructured returns the parsed JSON value (object or array) produced for prompt.
	GenerateStructured(ctx context.Context, prompt string) (any, error)
	// GenerateText returns cleaned free text produced for prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// DocumentStore persists section documents. The store assigns lastUpdated.
type DocumentStore interface {
	Upsert(ctx context.Context, path domain.DocumentPath, doc map[string]any) error
	Get(ctx context.Context, path domain.DocumentPath) (domain.SectionDocument, error)
}

// QuoteProvider returns the latest price and previous close for a symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (domain.Quote, error)
}

// ReportSink receives the report of each finished run (Telegram, Kafka, etc.).
type ReportSink interface {
	PublishReport(ctx context.Context, report domain.RunReport) error
}

// Scheduler controls when daily runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
