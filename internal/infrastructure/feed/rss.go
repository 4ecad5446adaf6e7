package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/source"
)

// RSSFetcher reads RSS and Atom feeds.
type RSSFetcher struct {
	client     *http.Client
	userAgent  string
	strategies []ImageStrategy
	logger     *slog.Logger
}

var _ source.Fetcher = (*RSSFetcher)(nil)

// NewRSSFetcher wires an HTTP client; a nil client gets a 20s timeout.
func NewRSSFetcher(client *http.Client, userAgent string, logger *slog.Logger) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RSSFetcher{
		client:     client,
		userAgent:  userAgent,
		strategies: DefaultImageStrategies,
		logger:     logger,
	}
}

// Kind identifies the strategy inside the registry.
func (f *RSSFetcher) Kind() string {
	return source.KindRSS
}

// Fetch returns at most limit entries from the top of the feed.
func (f *RSSFetcher) Fetch(ctx context.Context, src source.Source, limit int) ([]domain.Candidate, error) {
	body, err := get(ctx, f.client, src.URL, f.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	parsed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := parsed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	tag := src.Tag()
	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		candidates = append(candidates, toCandidate(item, tag, f.strategies))
	}

	f.logger.Debug("feed read", "source", src.Name, "entries", len(parsed.Items), "kept", len(candidates))
	return candidates, nil
}

func toCandidate(item *gofeed.Item, tag string, strategies []ImageStrategy) domain.Candidate {
	return domain.Candidate{
		Title:     strings.TrimSpace(item.Title),
		Summary:   Truncate(PlainText(item.Description), SummaryLimit),
		SourceTag: tag,
		Link:      strings.TrimSpace(item.Link),
		Image:     FirstImage(item, strategies...),
		Author:    AuthorName(itemAuthor(item)),
	}
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return item.DublinCoreExt.Creator[0]
	}
	return ""
}

func get(ctx context.Context, client *http.Client, target, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned %s", target, resp.Status)
	}
	return resp.Body, nil
}
