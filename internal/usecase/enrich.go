package usecase

import (
	"context"

	"DailyEdition/internal/domain"
)

// EnrichStrategy produces a value for a missing field. An empty result means "try the next one".
type EnrichStrategy interface {
	Name() string
	Resolve(ctx context.Context, item domain.CuratedItem) (string, error)
}

// EnrichmentRule fills Field through Strategies in order, then Fallback.
type EnrichmentRule struct {
	Field      string
	Strategies []EnrichStrategy
	Fallback   string
}

// SourceValue restores a value from the candidate the item was matched to.
type SourceValue struct {
	Field string
}

func (s SourceValue) Name() string { return "source-value" }

func (s SourceValue) Resolve(_ context.Context, item domain.CuratedItem) (string, error) {
	if item.Origin == nil {
		return "", nil
	}
	return item.Origin.Field(s.Field), nil
}

// StrategyFunc adapts a function to EnrichStrategy.
type StrategyFunc struct {
	Label string
	Fn    func(ctx context.Context, item domain.CuratedItem) (string, error)
}

func (s StrategyFunc) Name() string { return s.Label }

func (s StrategyFunc) Resolve(ctx context.Context, item domain.CuratedItem) (string, error) {
	return s.Fn(ctx, item)
}
