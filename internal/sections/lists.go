package sections

import (
	"context"
	"fmt"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/usecase"
)

// listSection persists curated items as {"items": [...]}.
type listSection struct {
	id       string
	name     string
	pipeline *usecase.Pipeline
	sec      usecase.Section
	// finish adjusts curated items before they are saved.
	finish func(items []domain.CuratedItem)
}

func (l *listSection) ID() string                       { return l.id }
func (l *listSection) Name() string                     { return l.name }
func (l *listSection) Documents() []domain.DocumentPath { return []domain.DocumentPath{l.sec.Path} }

func (l *listSection) Produce(ctx context.Context) error {
	items, _, err := l.pipeline.Run(ctx, l.sec)
	if err != nil {
		return fmt.Errorf("%s: %w", l.name, err)
	}
	if l.finish != nil {
		l.finish(items)
	}
	return l.pipeline.Persist(ctx, l.sec.Path, map[string]any{"items": itemsOf(items)})
}

func newFeatured(deps Deps) (Producer, error) {
	sec, err := section(deps.Config, config.SectionFeaturedStories, featuredPrompt)
	if err != nil {
		return nil, err
	}
	sec.Categories = featuredCategories
	sec.Required = []string{"title", "summary"}

	p := deps.Pipeline
	return &listSection{
		id:       config.SectionFeaturedStories,
		name:     "Featured Stories",
		pipeline: p,
		sec:      sec,
		finish: func(items []domain.CuratedItem) {
			date := p.Now().Format("Jan 02, 2006")
			for i := range items {
				items[i].Set("id", fmt.Sprintf("featured-%d", i))
				items[i].Set("date", date)
				items[i].Set("author", "Staff")
			}
		},
	}, nil
}

func newOpinions(deps Deps) (Producer, error) {
	sec, err := section(deps.Config, config.SectionOpinions, opinionsPrompt)
	if err != nil {
		return nil, err
	}
	sec.Required = []string{"title", "author", "snippet"}
	return &listSection{id: config.SectionOpinions, name: "Opinions", pipeline: deps.Pipeline, sec: sec}, nil
}

func newGlobalBriefing(deps Deps) (Producer, error) {
	sec, err := section(deps.Config, config.SectionGlobalBriefing, globalBriefingPrompt)
	if err != nil {
		return nil, err
	}
	sec.Required = []string{"headline", "context"}
	return &listSection{id: config.SectionGlobalBriefing, name: "Global Briefing", pipeline: deps.Pipeline, sec: sec}, nil
}

func newCampusNews(deps Deps) (Producer, error) {
	sec, err := section(deps.Config, config.SectionCampusNews, campusPrompt)
	if err != nil {
		return nil, err
	}
	sec.Required = []string{"title"}
	sec.PassThrough = []string{"link", "image", "author"}
	sec.MatchField = "link"

	strategies := []usecase.EnrichStrategy{usecase.SourceValue{Field: "image"}}
	if deps.Illustrator != nil {
		strategies = append(strategies, deps.Illustrator)
	}
	sec.Enrichment = &usecase.EnrichmentRule{
		Field:      "image",
		Strategies: strategies,
		Fallback:   deps.Config.Images.CampusFallback,
	}
	return &listSection{id: config.SectionCampusNews, name: "Campus News", pipeline: deps.Pipeline, sec: sec}, nil
}
