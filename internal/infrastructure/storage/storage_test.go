package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"DailyEdition/internal/domain"
)

var heroPath = domain.DocumentPath{"daily_edition", "hero_story"}

func TestMemoryStoreReplacesDocument(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	tick := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return tick }

	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, heroPath, map[string]any{"title": "old", "subtitle": "gone"}))

	tick = tick.Add(time.Hour)
	require.NoError(t, store.Upsert(ctx, heroPath, map[string]any{"title": "new", "lastUpdated": "client value"}))

	doc, err := store.Get(ctx, heroPath)
	require.NoError(t, err)
	require.Equal(t, "new", doc.Payload["title"])
	require.NotContains(t, doc.Payload, "subtitle")
	require.Equal(t, tick, doc.LastUpdated)
	require.Equal(t, tick, doc.Payload["lastUpdated"])
	require.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, domain.DocumentPath{"daily_edition", "missing"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStoreIsolatesCallerMaps(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	items := []any{map[string]any{"title": "a"}}
	doc := map[string]any{"items": items}
	require.NoError(t, store.Upsert(context.Background(), heroPath, doc))

	items[0].(map[string]any)["title"] = "mutated"

	got, err := store.Get(context.Background(), heroPath)
	require.NoError(t, err)
	require.Equal(t, "a", got.Payload["items"].([]any)[0].(map[string]any)["title"])
}

func TestPostgresQueries(t *testing.T) {
	t.Parallel()

	query, args, err := upsertQuery("section_documents", heroPath, []byte(`{"title":"x"}`))
	require.NoError(t, err)
	require.Contains(t, query, `INSERT INTO "section_documents" (path,payload,last_updated) VALUES ($1,$2,NOW())`)
	require.Contains(t, query, "ON CONFLICT (path) DO UPDATE SET payload = EXCLUDED.payload, last_updated = NOW()")
	require.Equal(t, []interface{}{"daily_edition/hero_story", `{"title":"x"}`}, args)

	query, args, err = selectQuery("section_documents", heroPath)
	require.NoError(t, err)
	require.Equal(t, `SELECT payload, last_updated FROM "section_documents" WHERE path = $1`, query)
	require.Equal(t, []interface{}{"daily_edition/hero_story"}, args)

	require.Contains(t, schemaDDL("section_documents"), `CREATE TABLE IF NOT EXISTS "section_documents"`)
}

type esRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func TestElasticStoreUpsertAndGet(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []esRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		mu.Lock()
		seen = append(seen, esRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body})
		mu.Unlock()

		switch {
		case r.URL.Path == "/":
			_, _ = w.Write([]byte(`{"version":{"number":"8.19.0","build_flavor":"default"},"tagline":"You Know, for Search"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/edition-daily_edition/_doc/hero_story":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/edition-daily_edition/_doc/hero_story":
			_, _ = w.Write([]byte(`{"found":true,"_source":{"title":"t","lastUpdated":"2026-03-01T06:00:00.123Z"}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/_ingest/pipeline/edition-last-updated":
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"found":false}`))
		}
	}))
	defer server.Close()

	es, err := NewElasticClient([]string{server.URL})
	require.NoError(t, err)
	store := NewElasticStore(es, "edition-", "edition-last-updated")

	ctx := context.Background()
	require.NoError(t, store.EnsurePipeline(ctx))
	require.NoError(t, store.Upsert(ctx, heroPath, map[string]any{"title": "t", "lastUpdated": "ignored"}))

	doc, err := store.Get(ctx, heroPath)
	require.NoError(t, err)
	require.Equal(t, "t", doc.Payload["title"])
	require.Equal(t, 2026, doc.LastUpdated.Year())

	_, err = store.Get(ctx, domain.DocumentPath{"daily_edition", "opinions"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	mu.Lock()
	defer mu.Unlock()
	var index *esRequest
	for i := range seen {
		if seen[i].method == http.MethodPut && seen[i].path == "/edition-daily_edition/_doc/hero_story" {
			index = &seen[i]
		}
	}
	require.NotNil(t, index)
	require.Contains(t, index.query, "pipeline=edition-last-updated")
	require.Equal(t, "t", index.body["title"])
	require.NotContains(t, index.body, "lastUpdated")
}
