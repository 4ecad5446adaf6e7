package source

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
)

// Kinds understood by the default registry.
const (
	KindRSS    = "rss"
	KindHTML   = "html"
	KindQuotes = "quotes"
)

// Source describes a concrete feed or data endpoint provided by config.
type Source struct {
	Name      string
	Kind      string
	URL       string
	Desk      string
	Selectors map[string]string
}

// Tag returns the short origin label attached to candidates, the URL host when present.
func (s Source) Tag() string {
	if s.URL != "" {
		if parsed, err := url.Parse(s.URL); err == nil && parsed.Host != "" {
			return parsed.Host
		}
	}
	return s.Name
}

// ErrUnknownKind is returned for a source whose kind has no fetcher.
var ErrUnknownKind = errors.New("unknown source kind")

// Fetcher reads candidates from one kind of source: rss, html or quotes.
type Fetcher interface {
	Kind() string
	Fetch(ctx context.Context, src Source, limit int) ([]domain.Candidate, error)
}

// Registry picks the fetcher for a configured source by its kind.
type Registry struct {
	byKind map[string]Fetcher
}

// NewRegistry indexes fetchers by kind; a later fetcher replaces an earlier one.
func NewRegistry(fetchers ...Fetcher) *Registry {
	r := &Registry{byKind: make(map[string]Fetcher, len(fetchers))}
	for _, f := range fetchers {
		r.Register(f)
	}
	return r
}

// Register installs f for its kind.
func (r *Registry) Register(f Fetcher) {
	if r.byKind == nil {
		r.byKind = map[string]Fetcher{}
	}
	r.byKind[f.Kind()] = f
}

// Resolve finds the fetcher for kind.
func (r *Registry) Resolve(kind string) (Fetcher, error) {
	f, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return f, nil
}

// Kinds is sorted.
func (r *Registry) Kinds() []string {
	return slices.Sorted(maps.Keys(r.byKind))
}

// FromConfig converts configured sources, keeping their order.
func FromConfig(cfg []config.SourceConfig) []Source {
	sources := make([]Source, 0, len(cfg))
	for _, c := range cfg {
		sources = append(sources, Source{
			Name:      c.Name,
			Kind:      c.Kind,
			URL:       c.URL,
			Desk:      c.Desk,
			Selectors: c.Selectors,
		})
	}
	return sources
}

// ByDesk keeps the sources assigned to desk.
func ByDesk(sources []Source, desk string) []Source {
	var out []Source
	for _, s := range sources {
		if s.Desk == desk {
			out = append(out, s)
		}
	}
	return out
}
