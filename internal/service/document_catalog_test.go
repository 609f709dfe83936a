package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
)

type documentStoreStub struct {
	docs  map[int64]models.Document
	calls int
}

func (d *documentStoreStub) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	d.calls++
	doc, ok := d.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &doc, nil
}

func (d *documentStoreStub) List(ctx context.Context) ([]models.Document, error) {
	d.calls++
	var docs []models.Document
	for _, doc := range d.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

type memoryCache struct {
	values map[string][]byte
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestDocumentCatalogReadThrough(t *testing.T) {
	store := &documentStoreStub{docs: map[int64]models.Document{3: {ID: 3, Name: "Transcript of Records"}}}
	cache := newMemoryCache()
	catalog := NewDocumentCatalog(store, cache, time.Minute, NewMetricsService(), nil)
	ctx := context.Background()

	doc, err := catalog.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Transcript of Records", doc.Name)

	doc, err = catalog.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Transcript of Records", doc.Name)
	assert.Equal(t, 1, store.calls)

	catalog.Invalidate(ctx, 3)
	_, err = catalog.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestDocumentCatalogNotFound(t *testing.T) {
	catalog := NewDocumentCatalog(&documentStoreStub{docs: map[int64]models.Document{}}, nil, 0, nil, nil)

	_, err := catalog.FindByID(context.Background(), 9)
	assertCode(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "document 9 not found", err.Error())
}

func TestDocumentCatalogFallsBackWhenCacheFails(t *testing.T) {
	store := &documentStoreStub{docs: map[int64]models.Document{3: {ID: 3, Name: "TOR"}}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis unreachable")
	catalog := NewDocumentCatalog(store, cache, time.Minute, nil, nil)

	docs, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = catalog.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, 2, store.calls)
}
