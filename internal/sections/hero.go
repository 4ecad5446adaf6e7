package sections

import (
	"context"
	"fmt"
	"log/slog"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/usecase"
)

const (
	heroAuthor       = "The Editorial Board"
	heroFeatureCount = 2
)

// hero writes the lead story from the first entry of its feed. With
// writeFeatured it also turns the next entries into featured cards.
type hero struct {
	pipeline      *usecase.Pipeline
	sec           usecase.Section
	feature       usecase.Section
	fallbacks     []string
	writeFeatured bool
	featuredPath  domain.DocumentPath
	logger        *slog.Logger
}

func newHero(deps Deps) (Producer, error) {
	sec, err := section(deps.Config, config.SectionHeroStory, heroPrompt)
	if err != nil {
		return nil, err
	}
	sec.Mode = usecase.ModeObject
	sec.Required = []string{"title"}
	sec.PassThrough = []string{"imageUrl"}

	h := &hero{
		pipeline:      deps.Pipeline,
		sec:           sec,
		fallbacks:     deps.Config.Images.HeroFallbacks,
		writeFeatured: deps.Config.Sections[config.SectionHeroStory].WriteFeatured,
		logger:        deps.Logger,
	}
	if h.writeFeatured {
		featured, err := section(deps.Config, config.SectionFeaturedStories, heroFeaturePrompt)
		if err != nil {
			return nil, err
		}
		h.featuredPath = featured.Path
		h.feature = usecase.Section{
			Key:      sec.Key + "/featured",
			Mode:     usecase.ModeObject,
			Prompt:   heroFeaturePrompt,
			Required: []string{"title"},
		}
	}
	return h, nil
}

func (h *hero) ID() string   { return config.SectionHeroStory }
func (h *hero) Name() string { return "Hero Story" }

func (h *hero) Documents() []domain.DocumentPath {
	docs := []domain.DocumentPath{h.sec.Path}
	if h.writeFeatured {
		docs = append(docs, h.featuredPath)
	}
	return docs
}

func (h *hero) Produce(ctx context.Context) error {
	limit := h.sec.PerSourceLimit
	if h.writeFeatured && limit < 1+heroFeatureCount {
		limit = 1 + heroFeatureCount
	}
	candidates := h.pipeline.Collect(ctx, h.sec.Key, h.sec.Sources, limit)
	if len(candidates) == 0 {
		return fmt.Errorf("hero story: %w", domain.ErrNoCandidates)
	}

	sec := h.sec
	sec.Enrichment = &usecase.EnrichmentRule{
		Field:      "imageUrl",
		Strategies: []usecase.EnrichStrategy{usecase.SourceValue{Field: "image"}},
		Fallback:   h.fallback(),
	}
	items, err := h.pipeline.Curate(ctx, sec, candidates[:1])
	if err != nil {
		return err
	}
	items = h.pipeline.Enrich(ctx, sec, items)

	payload := items[0].Fields
	payload["type"] = "hero"
	payload["author"] = heroAuthor
	if err := h.pipeline.Persist(ctx, sec.Path, payload); err != nil {
		return err
	}

	if !h.writeFeatured || len(candidates) < 2 {
		return nil
	}
	return h.features(ctx, candidates[1:min(len(candidates), 1+heroFeatureCount)])
}

func (h *hero) features(ctx context.Context, candidates []domain.Candidate) error {
	var cards []any
	for _, c := range candidates {
		items, err := h.pipeline.Curate(ctx, h.feature, []domain.Candidate{c})
		if err != nil {
			h.logger.Warn("featured card skipped", "title", c.Title, "error", err)
			continue
		}
		card := items[0]
		card.Set("id", c.Link)
		card.Set("date", "TODAY")
		card.Set("author", "Staff")
		cards = append(cards, card.Fields)
	}
	if len(cards) == 0 {
		return nil
	}
	return h.pipeline.Persist(ctx, h.featuredPath, map[string]any{"items": cards})
}

// fallback picks a stable image from the pool for the current day.
func (h *hero) fallback() string {
	if len(h.fallbacks) == 0 {
		return ""
	}
	return h.fallbacks[h.pipeline.Now().YearDay()%len(h.fallbacks)]
}
