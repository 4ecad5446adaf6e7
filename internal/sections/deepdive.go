package sections

import (
	"context"
	"fmt"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/usecase"
)

const statSource = "Yahoo Finance Data"

// deepDive asks for analysis cards and a highlight stat over macro indicators.
type deepDive struct {
	pipeline *usecase.Pipeline
	sec      usecase.Section
}

func newDeepDive(deps Deps) (Producer, error) {
	sec, err := section(deps.Config, config.SectionDeepDive, deepDivePrompt)
	if err != nil {
		return nil, err
	}
	sec.Mode = usecase.ModeObject
	sec.Required = []string{"cards"}
	return &deepDive{pipeline: deps.Pipeline, sec: sec}, nil
}

func (d *deepDive) ID() string                       { return config.SectionDeepDive }
func (d *deepDive) Name() string                     { return "Deep Dive" }
func (d *deepDive) Documents() []domain.DocumentPath { return []domain.DocumentPath{d.sec.Path} }

func (d *deepDive) Produce(ctx context.Context) error {
	items, _, err := d.pipeline.Run(ctx, d.sec)
	if err != nil {
		return fmt.Errorf("deep dive: %w", err)
	}

	cards, ok := items[0].Fields["cards"].([]any)
	if !ok || len(cards) == 0 {
		return &domain.JudgeError{Section: d.sec.Key, Reason: "cards must be a non-empty array"}
	}
	if d.sec.MaxSelect > 0 && len(cards) > d.sec.MaxSelect {
		cards = cards[:d.sec.MaxSelect]
	}

	stat, _ := items[0].Fields["stat"].(map[string]any)
	if stat == nil {
		stat = map[string]any{}
	}
	if _, ok := stat["source"]; !ok && len(stat) > 0 {
		stat["source"] = statSource
	}

	return d.pipeline.Persist(ctx, d.sec.Path, map[string]any{"cards": cards, "stat": stat})
}
