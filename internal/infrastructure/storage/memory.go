package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/ports"
)

const lastUpdatedField = "lastUpdated"

// MemoryStore keeps documents in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]domain.SectionDocument
	now  func() time.Time
}

var _ ports.DocumentStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]domain.SectionDocument{}, now: time.Now}
}

// Upsert replaces the document and stamps lastUpdated.
func (m *MemoryStore) Upsert(_ context.Context, path domain.DocumentPath, doc map[string]any) error {
	payload, err := deepCopy(withoutTimestamp(doc))
	if err != nil {
		return &domain.StoreError{Path: path, Op: "upsert", Err: err}
	}
	now := m.now().UTC()
	payload[lastUpdatedField] = now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path.String()] = domain.SectionDocument{Path: path, LastUpdated: now, Payload: payload}
	return nil
}

// Get returns a copy of the stored document.
func (m *MemoryStore) Get(_ context.Context, path domain.DocumentPath) (domain.SectionDocument, error) {
	m.mu.RLock()
	doc, ok := m.docs[path.String()]
	m.mu.RUnlock()
	if !ok {
		return domain.SectionDocument{}, domain.ErrNotFound
	}
	return doc, nil
}

// Len reports the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func withoutTimestamp(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == lastUpdatedField {
			continue
		}
		out[k] = v
	}
	return out
}

func deepCopy(doc map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("copy payload: %w", err)
	}
	return out, nil
}
