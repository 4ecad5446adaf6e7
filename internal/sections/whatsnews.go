package sections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/source"
	"DailyEdition/internal/usecase"
)

const (
	deskBusiness = "business"
	deskWorld    = "world"
)

// whatsNews writes two bullet columns. Both must be filled or nothing is saved.
type whatsNews struct {
	pipeline *usecase.Pipeline
	desks    map[string]usecase.Section
	path     domain.DocumentPath
	logger   *slog.Logger
}

func newWhatsNews(deps Deps) (Producer, error) {
	sec, err := section(deps.Config, config.SectionWhatsNews, whatsNewsPrompt)
	if err != nil {
		return nil, err
	}
	sec.Mode = usecase.ModeText

	desks := map[string]usecase.Section{}
	for _, desk := range []string{deskBusiness, deskWorld} {
		d := sec
		d.Key = sec.Key + "/" + desk
		d.Sources = source.ByDesk(sec.Sources, desk)
		desks[desk] = d
	}
	return &whatsNews{
		pipeline: deps.Pipeline,
		desks:    desks,
		path:     sec.Path,
		logger:   deps.Logger,
	}, nil
}

func (w *whatsNews) ID() string                       { return config.SectionWhatsNews }
func (w *whatsNews) Name() string                     { return "What's News" }
func (w *whatsNews) Documents() []domain.DocumentPath { return []domain.DocumentPath{w.path} }

func (w *whatsNews) Produce(ctx context.Context) error {
	business, errBusiness := w.bullets(ctx, deskBusiness)
	world, errWorld := w.bullets(ctx, deskWorld)
	if len(business) == 0 || len(world) == 0 {
		return fmt.Errorf("whats news: business=%d world=%d bullets, not saved: %w",
			len(business), len(world), errors.Join(errBusiness, errWorld))
	}
	return w.pipeline.Persist(ctx, w.path, map[string]any{
		deskBusiness: business,
		deskWorld:    world,
	})
}

func (w *whatsNews) bullets(ctx context.Context, desk string) ([]string, error) {
	items, _, err := w.pipeline.Run(ctx, w.desks[desk])
	if err != nil {
		w.logger.Warn("desk produced no bullets", "desk", desk, "error", err)
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String("text"))
	}
	return out, nil
}
