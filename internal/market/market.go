// Package market turns raw quotes into display-ready ticker entries.
package market

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/ports"
)

const maxConcurrentQuotes = 4

var printer = message.NewPrinter(language.English)

// Symbol maps a display label to a provider symbol.
type Symbol struct {
	Label string
	Code  string
}

// SymbolsFromConfig keeps configured order.
func SymbolsFromConfig(cfg []config.SymbolConfig) []Symbol {
	out := make([]Symbol, 0, len(cfg))
	for _, c := range cfg {
		out = append(out, Symbol{Label: c.Label, Code: c.Symbol})
	}
	return out
}

// Entry is a normalized quote.
type Entry struct {
	Label   string
	Price   float64
	Change  float64
	Percent float64
	IsUp    bool
}

// Normalize derives change figures from a quote.
func Normalize(label string, q domain.Quote) Entry {
	change := q.Price - q.PreviousClose
	return Entry{
		Label:   label,
		Price:   q.Price,
		Change:  change,
		Percent: change / q.PreviousClose * 100,
		IsUp:    change >= 0,
	}
}

// PriceText renders the price with thousands grouping and two decimals.
func (e Entry) PriceText() string {
	return printer.Sprintf("%.2f", e.Price)
}

// ChangeText renders "+1.23 (+0.45%)".
func (e Entry) ChangeText() string {
	return fmt.Sprintf("%+.2f (%+.2f%%)", e.Change, e.Percent)
}

// Line renders the compact form used in judge prompts.
func (e Entry) Line() string {
	return fmt.Sprintf("%s: %s (Change: %+.2f%%)", e.Label, e.PriceText(), e.Percent)
}

// TickerItem is the persisted ticker record.
func (e Entry) TickerItem() map[string]any {
	return map[string]any{
		"symbol": e.Label,
		"price":  e.PriceText(),
		"change": e.ChangeText(),
		"isUp":   e.IsUp,
	}
}

// Service fetches and normalizes quotes for symbol lists.
type Service struct {
	provider ports.QuoteProvider
	logger   *slog.Logger
}

// NewService wires a quote provider.
func NewService(provider ports.QuoteProvider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{provider: provider, logger: logger}
}

// Snapshot fetches every symbol independently and returns entries in input order.
// Symbols whose quote fails or lacks data are dropped and logged.
func (s *Service) Snapshot(ctx context.Context, symbols []Symbol) []Entry {
	results := make([]*Entry, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQuotes)
	for i, sym := range symbols {
		g.Go(func() error {
			q, err := s.provider.Quote(gctx, sym.Code)
			if err != nil {
				s.logger.Warn("quote dropped", "label", sym.Label, "symbol", sym.Code, "error", err)
				return nil
			}
			if q.Price == 0 || q.PreviousClose == 0 {
				s.logger.Warn("quote dropped", "label", sym.Label, "symbol", sym.Code, "error", domain.ErrMissingQuote)
				return nil
			}
			entry := Normalize(sym.Label, q)
			results[i] = &entry
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]Entry, 0, len(symbols))
	for _, e := range results {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries
}
