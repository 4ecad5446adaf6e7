package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"DailyEdition/internal/config"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/ports"
)

const defaultSystemPrompt = "You are a senior editor at The Keele Street Journal, a financial newspaper for university economics students."

// ErrBudgetExhausted is returned once the per-process call budget is spent.
var ErrBudgetExhausted = errors.New("judge call budget exhausted")

// Client implements ports.Judge on top of a Completer, with pacing and a call budget.
type Client struct {
	completer Completer
	system    string
	limiter   *rate.Limiter
	maxCalls  int64
	calls     atomic.Int64
	timeout   time.Duration
	logger    *slog.Logger
}

var _ ports.Judge = (*Client)(nil)

// ClientOptions tune pacing and limits.
type ClientOptions struct {
	SystemPrompt      string
	RequestsPerMinute int
	MaxCalls          int
	Timeout           time.Duration
	Logger            *slog.Logger
}

// NewClient wraps a completer. Zero RequestsPerMinute or MaxCalls disables that limit.
func NewClient(completer Completer, opts ClientOptions) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		completer: completer,
		system:    safePrompt(opts.SystemPrompt),
		limiter:   limiter,
		maxCalls:  int64(opts.MaxCalls),
		timeout:   opts.Timeout,
		logger:    logger,
	}
}

// NewFromConfig selects the provider named in cfg.
func NewFromConfig(cfg config.JudgeConfig, logger *slog.Logger) (*Client, error) {
	withCfg := func(o *Options) {
		o.Model = cfg.Model
		o.Temperature = cfg.Temperature
		o.MaxTokens = cfg.MaxTokens
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.BaseURL
	}

	var completer Completer
	switch cfg.Provider {
	case "openai":
		completer = NewOpenAICompleter(withCfg)
	case "anthropic":
		completer = NewAnthropicCompleter(withCfg)
	default:
		return nil, fmt.Errorf("unknown judge provider %q", cfg.Provider)
	}

	return NewClient(completer, ClientOptions{
		RequestsPerMinute: cfg.RequestsPerMinute,
		MaxCalls:          cfg.MaxCalls,
		Timeout:           cfg.Timeout,
		Logger:            logger,
	}), nil
}

// GenerateStructured asks for JSON and returns the decoded object or array.
func (c *Client) GenerateStructured(ctx context.Context, prompt string) (any, error) {
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	value, err := ParseJSON(raw)
	if err != nil {
		c.logger.Warn("judge returned invalid json", "error", err, "length", len(raw))
		return nil, err
	}
	return value, nil
}

// GenerateText returns the response with emphasis markers removed.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := CleanText(raw)
	if text == "" {
		return "", errors.New("judge returned empty text")
	}
	return text, nil
}

// Calls reports how many requests were sent.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

// reserve claims one call from the budget.
func (c *Client) reserve() bool {
	for {
		n := c.calls.Load()
		if c.maxCalls > 0 && n >= c.maxCalls {
			return false
		}
		if c.calls.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.completer == nil {
		return "", errors.New("judge is not configured")
	}
	if !c.reserve() {
		return "", ErrBudgetExhausted
	}
	if err := c.limiter.Wait(ctx); err != nil {
		c.calls.Add(-1)
		return "", fmt.Errorf("judge rate limit: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.completer.Complete(ctx, c.system, prompt)
	if err != nil {
		return "", err
	}
	c.logger.Debug("judge call", "duration", time.Since(start), "chars", len(out))
	return out, nil
}

// ParseJSON strips optional markdown fences and decodes the payload.
func ParseJSON(raw string) (any, error) {
	body := stripFences(raw)
	if body == "" {
		return nil, errors.New("empty judge response")
	}
	var value any
	if err := json.Unmarshal([]byte(body), &value); err != nil {
		return nil, fmt.Errorf("decode judge json: %w", err)
	}
	return value, nil
}

// CleanText removes asterisks and surrounding whitespace.
func CleanText(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "*", ""))
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return defaultSystemPrompt
	}
	return prompt
}
