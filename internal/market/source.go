package market

import (
	"context"
	"fmt"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/source"
)

// QuoteSource exposes named symbol sets as candidates, one line per indicator.
type QuoteSource struct {
	service *Service
	sets    map[string][]Symbol
}

var _ source.Fetcher = (*QuoteSource)(nil)

// NewQuoteSource binds symbol sets to source names.
func NewQuoteSource(service *Service, sets map[string][]Symbol) *QuoteSource {
	return &QuoteSource{service: service, sets: sets}
}

// Kind identifies the strategy inside the registry.
func (q *QuoteSource) Kind() string {
	return source.KindQuotes
}

// Fetch returns one candidate per symbol that produced data.
func (q *QuoteSource) Fetch(ctx context.Context, src source.Source, limit int) ([]domain.Candidate, error) {
	symbols, ok := q.sets[src.Name]
	if !ok {
		return nil, fmt.Errorf("no symbol set named %s", src.Name)
	}

	entries := q.service.Snapshot(ctx, symbols)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	candidates := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, domain.Candidate{
			Title:     e.Line(),
			SourceTag: "Yahoo Finance Data",
		})
	}
	return candidates, nil
}
