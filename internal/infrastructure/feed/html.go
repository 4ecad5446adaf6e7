package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/source"
)

var defaultSelectors = map[string]string{
	"item":    "article",
	"title":   "h2, h3",
	"link":    "a[href]",
	"summary": "p",
	"image":   "img[src]",
	"author":  ".author, [rel=author]",
}

// HTMLFetcher scrapes listing pages that have no feed, driven by CSS selectors.
type HTMLFetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ source.Fetcher = (*HTMLFetcher)(nil)

// NewHTMLFetcher wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLFetcher(client *http.Client, userAgent string, logger *slog.Logger) *HTMLFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTMLFetcher{client: client, userAgent: userAgent, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (h *HTMLFetcher) Kind() string {
	return source.KindHTML
}

// Fetch walks the listing page and returns up to limit entries.
func (h *HTMLFetcher) Fetch(ctx context.Context, src source.Source, limit int) ([]domain.Candidate, error) {
	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing url %s: %w", src.URL, err)
	}

	doc, err := h.fetchDocument(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	sel := selectors(src.Selectors)
	tag := src.Tag()
	var collected []domain.Candidate

	doc.Find(sel["item"]).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		candidate, ok := parseEntry(node, sel, base)
		if !ok {
			return true
		}
		candidate.SourceTag = tag
		collected = append(collected, candidate)
		return limit <= 0 || len(collected) < limit
	})

	h.logger.Debug("listing read", "source", src.Name, "kept", len(collected))
	return collected, nil
}

func (h *HTMLFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := get(ctx, h.client, pageURL, h.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func parseEntry(node *goquery.Selection, sel map[string]string, base *url.URL) (domain.Candidate, bool) {
	title := collapse(node.Find(sel["title"]).First().Text())
	if title == "" {
		return domain.Candidate{}, false
	}

	var link string
	if href, ok := node.Find(sel["link"]).First().Attr("href"); ok {
		link = resolve(base, href)
	}

	var image string
	if src, ok := node.Find(sel["image"]).First().Attr("src"); ok && !strings.Contains(src, "pixel") {
		image = resolve(base, src)
	}

	author := collapse(node.Find(sel["author"]).First().Text())

	return domain.Candidate{
		Title:   title,
		Summary: Truncate(collapse(node.Find(sel["summary"]).First().Text()), SummaryLimit),
		Link:    link,
		Image:   image,
		Author:  AuthorName(author),
	}, true
}

func selectors(overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaultSelectors))
	for k, v := range defaultSelectors {
		merged[k] = v
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) != "" {
			merged[k] = v
		}
	}
	return merged
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
