package quotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/ports"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// YahooClient reads last price and previous close from the chart API.
type YahooClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

var _ ports.QuoteProvider = (*YahooClient)(nil)

// NewYahooClient builds a client; empty baseURL uses the public endpoint.
func NewYahooClient(baseURL, userAgent string, client *http.Client) *YahooClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &YahooClient{baseURL: baseURL, userAgent: userAgent, client: client}
}

// Quote fetches one symbol. Missing price or previous close yields domain.ErrMissingQuote.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	endpoint := c.baseURL + url.PathEscape(symbol) + "?range=5d&interval=1d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("new request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("read quote %s: %w", symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Quote{}, fmt.Errorf("quote %s: %s", symbol, resp.Status)
	}

	return parseChart(symbol, body)
}

func parseChart(symbol string, body []byte) (domain.Quote, error) {
	if !gjson.ValidBytes(body) {
		return domain.Quote{}, fmt.Errorf("quote %s: invalid json", symbol)
	}
	if msg := gjson.GetBytes(body, "chart.error.description"); msg.Exists() && msg.String() != "" {
		return domain.Quote{}, fmt.Errorf("quote %s: %s", symbol, msg.String())
	}

	meta := gjson.GetBytes(body, "chart.result.0.meta")
	price := meta.Get("regularMarketPrice").Float()
	prev := meta.Get("chartPreviousClose").Float()
	if prev == 0 {
		prev = meta.Get("previousClose").Float()
	}

	if price == 0 || prev == 0 {
		return domain.Quote{}, fmt.Errorf("quote %s: %w", symbol, domain.ErrMissingQuote)
	}
	return domain.Quote{Symbol: symbol, Price: price, PreviousClose: prev}, nil
}
