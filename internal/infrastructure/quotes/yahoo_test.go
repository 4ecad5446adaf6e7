package quotes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"DailyEdition/internal/domain"
)

func TestYahooClientQuote(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/chart/%5EGSPC":
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":5000.5,"chartPreviousClose":4950.25}}],"error":null}}`))
		case "/chart/BTC-USD":
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":61000}}],"error":null}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
		}
	}))
	defer server.Close()

	client := NewYahooClient(server.URL+"/chart", "edition-test", server.Client())

	q, err := client.Quote(context.Background(), "^GSPC")
	require.NoError(t, err)
	require.Equal(t, 5000.5, q.Price)
	require.Equal(t, 4950.25, q.PreviousClose)

	_, err = client.Quote(context.Background(), "BTC-USD")
	require.True(t, errors.Is(err, domain.ErrMissingQuote))

	_, err = client.Quote(context.Background(), "NOPE")
	require.Error(t, err)
}

func TestParseChartFallsBackToPreviousClose(t *testing.T) {
	t.Parallel()

	q, err := parseChart("CL=F", []byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":80,"previousClose":82}}]}}`))
	require.NoError(t, err)
	require.Equal(t, 82.0, q.PreviousClose)

	_, err = parseChart("CL=F", []byte(`not json`))
	require.Error(t, err)
}
