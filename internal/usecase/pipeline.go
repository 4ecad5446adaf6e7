package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/ports"
	"DailyEdition/internal/source"
)

// TracerName identifies pipeline spans.
const TracerName = "dailyedition/pipeline"

const maxConcurrentFetches = 4

// Mode selects how the judge response is interpreted.
type Mode int

const (
	// ModeList expects a JSON array of objects.
	ModeList Mode = iota
	// ModeObject expects a single JSON object.
	ModeObject
	// ModeText expects "- " bullet lines.
	ModeText
)

// Section is the small descriptor that parameterizes one run of the pipeline.
type Section struct {
	Key            string
	Path           domain.DocumentPath
	Sources        []source.Source
	PerSourceLimit int
	MaxSelect      int
	Mode           Mode
	Prompt         *template.Template
	Categories     []string
	// PassThrough fields must be copied verbatim from the matched candidate.
	PassThrough []string
	// MatchField links a curated item back to its candidate (e.g. "link").
	MatchField string
	// Required fields; items missing any of them are dropped.
	Required   []string
	Enrichment *EnrichmentRule
}

// PipelineDeps wires the driven adapters into the pipeline.
type PipelineDeps struct {
	Sources *source.Registry
	Judge   ports.Judge
	Store   ports.DocumentStore
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Now     func() time.Time
}

// Pipeline implements Collect, Curate, Enrich and Persist for every section.
type Pipeline struct {
	sources *source.Registry
	judge   ports.Judge
	store   ports.DocumentStore
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewPipeline constructs the curation pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		sources: deps.Sources,
		judge:   deps.Judge,
		store:   deps.Store,
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		now:     deps.Now,
	}
	if p.sources == nil {
		p.sources = source.NewRegistry()
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(TracerName)
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Now returns the pipeline clock.
func (p *Pipeline) Now() time.Time {
	return p.now()
}

// Judge exposes the judge for producers that post-process curated items.
func (p *Pipeline) Judge() ports.Judge {
	return p.judge
}

// Run collects, curates and enriches one section. Candidates are returned for
// producers that reuse them.
func (p *Pipeline) Run(ctx context.Context, sec Section) ([]domain.CuratedItem, []domain.Candidate, error) {
	candidates := p.Collect(ctx, sec.Key, sec.Sources, sec.PerSourceLimit)
	items, err := p.Curate(ctx, sec, candidates)
	if err != nil {
		return nil, candidates, err
	}
	return p.Enrich(ctx, sec, items), candidates, nil
}

// Collect reads every source independently. A failing source contributes nothing.
// Result order is source order, then feed order.
func (p *Pipeline) Collect(ctx context.Context, key string, sources []source.Source, perSourceLimit int) []domain.Candidate {
	ctx, span := p.tracer.Start(ctx, "pipeline.collect", trace.WithAttributes(
		attribute.String("section", key),
		attribute.Int("sources", len(sources)),
	))
	defer span.End()

	batches := make([][]domain.Candidate, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, src := range sources {
		g.Go(func() error {
			items, err := p.fetch(gctx, src, perSourceLimit)
			if err != nil {
				p.logger.Warn("source skipped", "section", key, "error", &domain.SourceFetchError{Source: src.Name, Err: err})
				return nil
			}
			batches[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.Candidate
	for _, batch := range batches {
		out = append(out, batch...)
	}
	span.SetAttributes(attribute.Int("candidates", len(out)))
	p.logger.Info("collected candidates", "section", key, "count", len(out))
	return out
}

func (p *Pipeline) fetch(ctx context.Context, src source.Source, limit int) ([]domain.Candidate, error) {
	fetcher, err := p.sources.Resolve(src.Kind)
	if err != nil {
		return nil, err
	}
	items, err := fetcher.Fetch(ctx, src, limit)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Curate asks the judge to select and reshape candidates. It never calls the
// judge when there is nothing to curate.
func (p *Pipeline) Curate(ctx context.Context, sec Section, candidates []domain.Candidate) ([]domain.CuratedItem, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.curate", trace.WithAttributes(
		attribute.String("section", sec.Key),
		attribute.Int("candidates", len(candidates)),
	))
	defer span.End()

	items, err := p.curate(ctx, sec, candidates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("items", len(items)))
	return items, nil
}

func (p *Pipeline) curate(ctx context.Context, sec Section, candidates []domain.Candidate) ([]domain.CuratedItem, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("curate %s: %w", sec.Key, domain.ErrNoCandidates)
	}
	if p.judge == nil {
		return nil, &domain.JudgeError{Section: sec.Key, Reason: "no judge configured"}
	}

	req, err := p.request(sec, candidates)
	if err != nil {
		return nil, err
	}
	prompt := req.Instruction()

	if sec.Mode == ModeText {
		text, err := p.judge.GenerateText(ctx, prompt)
		if err != nil {
			return nil, &domain.JudgeError{Section: sec.Key, Reason: "generate text", Err: err}
		}
		lines := Bullets(text, req.MaxSelect())
		if len(lines) == 0 {
			return nil, &domain.JudgeError{Section: sec.Key, Reason: "response has no lines"}
		}
		items := make([]domain.CuratedItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, domain.CuratedItem{Fields: map[string]any{"text": line}})
		}
		return items, nil
	}

	raw, err := p.judge.GenerateStructured(ctx, prompt)
	if err != nil {
		return nil, &domain.JudgeError{Section: sec.Key, Reason: "generate structured", Err: err}
	}

	var elements []any
	switch sec.Mode {
	case ModeObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, &domain.JudgeError{Section: sec.Key, Reason: fmt.Sprintf("expected an object, got %s", jsonKind(raw))}
		}
		elements = []any{obj}
	default:
		list, ok := raw.([]any)
		if !ok {
			return nil, &domain.JudgeError{Section: sec.Key, Reason: fmt.Sprintf("expected an array, got %s", jsonKind(raw))}
		}
		elements = list
	}

	pool := req.Candidates()
	items := make([]domain.CuratedItem, 0, len(elements))
	for i, el := range elements {
		fields, ok := el.(map[string]any)
		if !ok {
			return nil, &domain.JudgeError{Section: sec.Key, Reason: fmt.Sprintf("element %d is %s, not an object", i, jsonKind(el))}
		}
		item := domain.CuratedItem{Fields: fields}
		if missing := missingField(item, sec.Required); missing != "" {
			p.logger.Warn("curated item dropped", "section", sec.Key, "index", i, "missing", missing)
			continue
		}
		item.Origin = matchOrigin(sec, item, pool)
		item.NeedsEnrichment = !passThroughIntact(sec, item)
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, &domain.JudgeError{Section: sec.Key, Reason: "no usable items"}
	}
	if limit := req.MaxSelect(); sec.Mode == ModeList && limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// request renders the section prompt over candidates and freezes both.
func (p *Pipeline) request(sec Section, candidates []domain.Candidate) (domain.CurationRequest, error) {
	data, err := buildPromptData(sec, candidates, p.now())
	if err != nil {
		return domain.CurationRequest{}, err
	}
	prompt, err := renderPrompt(sec, data)
	if err != nil {
		return domain.CurationRequest{}, err
	}
	return domain.NewCurationRequest(candidates, prompt, sec.MaxSelect), nil
}

// Enrich fills fields for flagged items or items missing the rule's field.
// Satisfied items are returned untouched and trigger no strategy call.
func (p *Pipeline) Enrich(ctx context.Context, sec Section, items []domain.CuratedItem) []domain.CuratedItem {
	ctx, span := p.tracer.Start(ctx, "pipeline.enrich", trace.WithAttributes(attribute.String("section", sec.Key)))
	defer span.End()

	rule := sec.Enrichment
	out := make([]domain.CuratedItem, len(items))
	enriched := 0
	for i, item := range items {
		out[i] = item
		if !item.NeedsEnrichment && (rule == nil || item.String(rule.Field) != "") {
			continue
		}
		enriched++

		fixed := domain.CuratedItem{Fields: cloneFields(item.Fields), Origin: item.Origin}
		if item.Origin != nil {
			for _, field := range sec.PassThrough {
				if v := item.Origin.Field(field); v != "" {
					fixed.Set(field, v)
				}
			}
		}
		if rule != nil && fixed.String(rule.Field) == "" {
			fixed.Set(rule.Field, p.resolve(ctx, sec.Key, rule, fixed))
		}
		out[i] = fixed
	}
	span.SetAttributes(attribute.Int("enriched", enriched))
	return out
}

func (p *Pipeline) resolve(ctx context.Context, key string, rule *EnrichmentRule, item domain.CuratedItem) string {
	for _, strategy := range rule.Strategies {
		value, err := strategy.Resolve(ctx, item)
		if err != nil {
			p.logger.Warn("enrichment strategy failed", "section", key,
				"error", &domain.EnrichmentError{Field: rule.Field, Strategy: strategy.Name(), Err: err})
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return rule.Fallback
}

// Persist replaces the document at path. The store assigns lastUpdated.
func (p *Pipeline) Persist(ctx context.Context, path domain.DocumentPath, payload map[string]any) error {
	ctx, span := p.tracer.Start(ctx, "pipeline.persist", trace.WithAttributes(attribute.String("document", path.String())))
	defer span.End()

	if p.store == nil {
		return &domain.StoreError{Path: path, Op: "upsert", Err: errors.New("no document store configured")}
	}
	if err := p.store.Upsert(ctx, path, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var storeErr *domain.StoreError
		if errors.As(err, &storeErr) {
			return err
		}
		return &domain.StoreError{Path: path, Op: "upsert", Err: err}
	}
	p.logger.Info("document persisted", "document", path.String())
	return nil
}

// Bullets extracts "- " lines from judge text. Without any bullet it falls
// back to non-empty lines. limit <= 0 keeps everything.
func Bullets(text string, limit int) []string {
	var bullets, plain []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "- "); ok {
			if rest = strings.TrimSpace(rest); rest != "" {
				bullets = append(bullets, rest)
			}
			continue
		}
		plain = append(plain, line)
	}
	out := bullets
	if len(out) == 0 {
		out = plain
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func matchOrigin(sec Section, item domain.CuratedItem, candidates []domain.Candidate) *domain.Candidate {
	if sec.MatchField != "" {
		if want := item.String(sec.MatchField); want != "" {
			for i := range candidates {
				if candidates[i].Field(sec.MatchField) == want {
					return &candidates[i]
				}
			}
		}
	}
	if len(candidates) == 1 {
		return &candidates[0]
	}
	return nil
}

func passThroughIntact(sec Section, item domain.CuratedItem) bool {
	if len(sec.PassThrough) == 0 {
		return true
	}
	if item.Origin == nil {
		return false
	}
	for _, field := range sec.PassThrough {
		want := item.Origin.Field(field)
		if want != "" && item.String(field) != want {
			return false
		}
	}
	return true
}

func missingField(item domain.CuratedItem, required []string) string {
	for _, field := range required {
		v, ok := item.Fields[field]
		if !ok || v == nil {
			return field
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return field
		}
	}
	return ""
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
