package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/ports"
)

// ElasticStore keeps one index per collection; an ingest pipeline stamps lastUpdated.
type ElasticStore struct {
	es       *elasticsearch.Client
	prefix   string
	pipeline string
}

var _ ports.DocumentStore = (*ElasticStore)(nil)

// NewElasticClient instantiates the Elasticsearch client.
func NewElasticClient(addresses []string) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return es, nil
}

// NewElasticStore wires an Elasticsearch client.
func NewElasticStore(es *elasticsearch.Client, indexPrefix, pipeline string) *ElasticStore {
	return &ElasticStore{es: es, prefix: indexPrefix, pipeline: pipeline}
}

// EnsurePipeline installs the ingest pipeline that sets lastUpdated from the cluster clock.
func (s *ElasticStore) EnsurePipeline(ctx context.Context) error {
	if s.pipeline == "" {
		return nil
	}
	body := map[string]any{
		"description": "stamp section documents with the ingest time",
		"processors": []map[string]any{
			{"set": map[string]any{"field": lastUpdatedField, "value": "{{{_ingest.timestamp}}}"}},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal pipeline: %w", err)
	}

	req := esapi.IngestPutPipelineRequest{
		PipelineID: s.pipeline,
		Body:       bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("put pipeline: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("put pipeline failed: %s", strings.TrimSpace(string(data)))
	}
	return nil
}

// Upsert indexes the full document under its path, replacing any prior version.
func (s *ElasticStore) Upsert(ctx context.Context, path domain.DocumentPath, doc map[string]any) error {
	payload, err := json.Marshal(withoutTimestamp(doc))
	if err != nil {
		return &domain.StoreError{Path: path, Op: "upsert", Err: fmt.Errorf("marshal doc: %w", err)}
	}

	req := esapi.IndexRequest{
		Index:      s.index(path),
		DocumentID: documentID(path),
		Body:       bytes.NewReader(payload),
		Pipeline:   s.pipeline,
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return &domain.StoreError{Path: path, Op: "upsert", Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return &domain.StoreError{Path: path, Op: "upsert", Err: fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))}
	}
	return nil
}

// Get fetches the document source.
func (s *ElasticStore) Get(ctx context.Context, path domain.DocumentPath) (domain.SectionDocument, error) {
	req := esapi.GetRequest{
		Index:      s.index(path),
		DocumentID: documentID(path),
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return domain.SectionDocument{}, &domain.StoreError{Path: path, Op: "get", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return domain.SectionDocument{}, domain.ErrNotFound
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return domain.SectionDocument{}, &domain.StoreError{Path: path, Op: "get", Err: fmt.Errorf("get doc failed: %s", strings.TrimSpace(string(body)))}
	}

	var parsed struct {
		Found  bool           `json:"found"`
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return domain.SectionDocument{}, &domain.StoreError{Path: path, Op: "get", Err: fmt.Errorf("decode doc: %w", err)}
	}
	if !parsed.Found {
		return domain.SectionDocument{}, domain.ErrNotFound
	}

	doc := domain.SectionDocument{Path: path, Payload: parsed.Source}
	if raw, ok := parsed.Source[lastUpdatedField].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			doc.LastUpdated = ts
		}
	}
	return doc, nil
}

func (s *ElasticStore) index(path domain.DocumentPath) string {
	return strings.ToLower(s.prefix + path.Collection())
}

func documentID(path domain.DocumentPath) string {
	return strings.ReplaceAll(path.Document(), "/", ":")
}
