package sections

import (
	"context"
	"errors"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/market"
	"DailyEdition/internal/usecase"
)

// ticker persists the market strip. It needs no judge.
type ticker struct {
	pipeline *usecase.Pipeline
	market   *market.Service
	symbols  []market.Symbol
	path     domain.DocumentPath
}

func newTicker(deps Deps) (Producer, error) {
	sec, err := section(deps.Config, config.SectionMarketTicker, nil)
	if err != nil {
		return nil, err
	}
	return &ticker{
		pipeline: deps.Pipeline,
		market:   deps.Market,
		symbols:  market.SymbolsFromConfig(deps.Config.Market.Ticker),
		path:     sec.Path,
	}, nil
}

func (t *ticker) ID() string                       { return config.SectionMarketTicker }
func (t *ticker) Name() string                     { return "Market Ticker" }
func (t *ticker) Documents() []domain.DocumentPath { return []domain.DocumentPath{t.path} }

func (t *ticker) Produce(ctx context.Context) error {
	if t.market == nil {
		return errors.New("market ticker: no quote service configured")
	}
	entries := t.market.Snapshot(ctx, t.symbols)
	if len(entries) == 0 {
		return errors.New("market ticker: no quotes available")
	}

	items := make([]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.TickerItem())
	}
	return t.pipeline.Persist(ctx, t.path, map[string]any{"items": items})
}
