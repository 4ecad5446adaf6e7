package sections

import (
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/market"
	"DailyEdition/internal/source"
	"DailyEdition/internal/usecase"
)

// Producer builds and persists one section of the edition.
type Producer interface {
	// ID is the task identifier used on the command line.
	ID() string
	// Name is the human readable task name shown in reports.
	Name() string
	// Documents lists every document the producer writes.
	Documents() []domain.DocumentPath
	Produce(ctx context.Context) error
}

// Registry keeps producers by task id.
type Registry struct {
	order     []string
	producers map[string]Producer
	writers   map[string][]string
	logger    *slog.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Registry{producers: map[string]Producer{}, writers: map[string][]string{}, logger: logger}
}

// Register adds a producer. Two producers writing the same document are
// allowed but reported.
func (r *Registry) Register(p Producer) {
	if _, exists := r.producers[p.ID()]; !exists {
		r.order = append(r.order, p.ID())
	}
	r.producers[p.ID()] = p
	for _, doc := range p.Documents() {
		key := doc.String()
		r.writers[key] = append(r.writers[key], p.ID())
		if len(r.writers[key]) > 1 {
			r.logger.Warn("document has more than one writer", "document", key, "tasks", r.writers[key])
		}
	}
}

// Lookup returns the producer for id.
func (r *Registry) Lookup(id string) (Producer, bool) {
	p, ok := r.producers[id]
	return p, ok
}

// IDs lists registered task ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// SharedDocuments reports documents with more than one writer.
func (r *Registry) SharedDocuments() map[string][]string {
	out := map[string][]string{}
	for doc, tasks := range r.writers {
		if len(tasks) > 1 {
			out[doc] = append([]string(nil), tasks...)
		}
	}
	return out
}

// Deps are the collaborators shared by every producer.
type Deps struct {
	Pipeline    *usecase.Pipeline
	Market      *market.Service
	Illustrator usecase.EnrichStrategy
	Config      config.Config
	Logger      *slog.Logger
}

// Build registers the eight edition producers from configuration.
func Build(deps Deps) (*Registry, error) {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	reg := NewRegistry(deps.Logger.With("component", "sections"))

	builders := []func(Deps) (Producer, error){
		newTicker,
		newWhatsNews,
		newHero,
		newFeatured,
		newOpinions,
		newDeepDive,
		newGlobalBriefing,
		newCampusNews,
	}
	for _, build := range builders {
		p, err := build(deps)
		if err != nil {
			return nil, err
		}
		reg.Register(p)
	}
	return reg, nil
}

// section turns a configured section into a pipeline descriptor.
func section(cfg config.Config, key string, prompt *template.Template) (usecase.Section, error) {
	sc, ok := cfg.Sections[key]
	if !ok {
		return usecase.Section{}, fmt.Errorf("section %s is not configured", key)
	}
	path, err := domain.ParsePath(sc.Document)
	if err != nil {
		return usecase.Section{}, fmt.Errorf("section %s: %w", key, err)
	}
	if sc.Prompt != "" {
		prompt, err = usecase.NewPrompt(key, sc.Prompt)
		if err != nil {
			return usecase.Section{}, err
		}
	}
	return usecase.Section{
		Key:            key,
		Path:           path,
		Sources:        source.FromConfig(sc.Sources),
		PerSourceLimit: sc.PerSourceLimit,
		MaxSelect:      sc.MaxSelect,
		Prompt:         prompt,
	}, nil
}

func itemsOf(items []domain.CuratedItem) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item.Fields)
	}
	return out
}
