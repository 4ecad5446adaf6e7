package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/ports"
)

const (
	// DefaultEndpoint is a prompt-to-image service addressed by path.
	DefaultEndpoint = "https://image.pollinations.ai/prompt/"
	renderParams    = "?nologo=true&width=1024&height=600&seed=42"
	maxDescWords    = 10
)

// Illustrator asks the judge for a short visual description of a headline and
// turns it into an image URL.
type Illustrator struct {
	judge    ports.Judge
	endpoint string
	keywords []string
}

// NewIllustrator builds the strategy. Empty endpoint uses DefaultEndpoint.
func NewIllustrator(judge ports.Judge, endpoint string, keywords ...string) *Illustrator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &Illustrator{judge: judge, endpoint: endpoint, keywords: keywords}
}

// Name identifies the strategy in enrichment logs.
func (i *Illustrator) Name() string { return "illustration" }

// Resolve returns an illustration URL for the item's title.
func (i *Illustrator) Resolve(ctx context.Context, item domain.CuratedItem) (string, error) {
	title := item.String("title")
	if title == "" {
		title = item.String("headline")
	}
	if title == "" {
		return "", errors.New("item has no title to illustrate")
	}
	if i.judge == nil {
		return "", errors.New("no judge configured")
	}

	desc, err := i.judge.GenerateText(ctx, i.prompt(title))
	if err != nil {
		return "", fmt.Errorf("describe illustration: %w", err)
	}
	desc = trimWords(desc, maxDescWords)
	if desc == "" {
		return "", errors.New("empty illustration description")
	}
	return i.URL(desc), nil
}

// URL renders the image address for a description.
func (i *Illustrator) URL(desc string) string {
	return i.endpoint + url.PathEscape(desc) + renderParams
}

func (i *Illustrator) prompt(title string) string {
	keywords := append([]string{"photorealistic", "4k", "cinematic"}, i.keywords...)
	for idx, k := range keywords {
		keywords[idx] = "'" + k + "'"
	}
	return fmt.Sprintf("Write a 5-word visual description for an image representing this news headline: '%s'. "+
		"Use keywords like %s. Output ONLY the 5-10 words.", title, strings.Join(keywords, ", "))
}

func trimWords(text string, limit int) string {
	words := strings.Fields(strings.Trim(strings.TrimSpace(text), `"'.`))
	if len(words) > limit {
		words = words[:limit]
	}
	return strings.Join(words, " ")
}
