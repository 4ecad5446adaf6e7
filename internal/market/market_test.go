package market

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"DailyEdition/internal/domain"
)

type fakeQuotes map[string]domain.Quote

func (f fakeQuotes) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	q, ok := f[symbol]
	if !ok {
		return domain.Quote{}, fmt.Errorf("%s: unknown symbol", symbol)
	}
	return q, nil
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	up := Normalize("S&P 500", domain.Quote{Price: 5050, PreviousClose: 5000})
	require.InDelta(t, 50.0, up.Change, 1e-9)
	require.InDelta(t, 1.0, up.Percent, 1e-9)
	require.True(t, up.IsUp)
	require.Equal(t, "5,050.00", up.PriceText())
	require.Equal(t, "+50.00 (+1.00%)", up.ChangeText())

	down := Normalize("CAD/USD", domain.Quote{Price: 0.72, PreviousClose: 0.75})
	require.False(t, down.IsUp)
	require.Equal(t, "0.72", down.PriceText())
	require.Equal(t, "-0.03 (-4.00%)", down.ChangeText())

	flat := Normalize("Gold", domain.Quote{Price: 10, PreviousClose: 10})
	require.True(t, flat.IsUp)
	require.Equal(t, "+0.00 (+0.00%)", flat.ChangeText())
}

func TestEntryLineAndTickerItem(t *testing.T) {
	t.Parallel()

	e := Normalize("TSX Composite", domain.Quote{Price: 21987.456, PreviousClose: 22000})
	require.Equal(t, "TSX Composite: 21,987.46 (Change: -0.06%)", e.Line())

	item := e.TickerItem()
	require.Equal(t, "TSX Composite", item["symbol"])
	require.Equal(t, "21,987.46", item["price"])
	require.Equal(t, false, item["isUp"])
}

func TestSnapshotDropsMissingSymbols(t *testing.T) {
	t.Parallel()

	provider := fakeQuotes{
		"^GSPTSE":  {Price: 22000, PreviousClose: 21900},
		"^GSPC":    {Price: 5000, PreviousClose: 4990},
		"CL=F":     {Price: 80, PreviousClose: 0},
		"CADUSD=X": {Price: 0.73, PreviousClose: 0.74},
		"BTC-USD":  {Price: 61000, PreviousClose: 60000},
		"^VIX":     {},
	}
	symbols := []Symbol{
		{Label: "S&P/TSX", Code: "^GSPTSE"},
		{Label: "S&P 500", Code: "^GSPC"},
		{Label: "WTI Crude", Code: "CL=F"},
		{Label: "CAD/USD", Code: "CADUSD=X"},
		{Label: "VIX", Code: "^VIX"},
		{Label: "Bitcoin", Code: "BTC-USD"},
		{Label: "Gold", Code: "GC=F"},
	}

	entries := NewService(provider, nil).Snapshot(context.Background(), symbols)

	require.Len(t, entries, 4)
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Label)
	}
	require.Equal(t, []string{"S&P/TSX", "S&P 500", "CAD/USD", "Bitcoin"}, labels)
}
