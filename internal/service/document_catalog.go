package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
)

// DocumentStore reads the document catalog.
type DocumentStore interface {
	FindByID(ctx context.Context, id int64) (*models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
}

// CacheStore abstracts persistence for cached payloads.
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const documentListCacheKey = "documents:all"

// DocumentCatalog serves catalog lookups with an optional read-through cache.
// Cache failures degrade to the store and are never surfaced.
type DocumentCatalog struct {
	store   DocumentStore
	cache   CacheStore
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewDocumentCatalog constructs a catalog. A nil cache disables caching.
func NewDocumentCatalog(store DocumentStore, cache CacheStore, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *DocumentCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DocumentCatalog{store: store, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

func documentCacheKey(id int64) string {
	return "documents:" + strconv.FormatInt(id, 10)
}

// FindByID returns the document or a NOT_FOUND error.
func (c *DocumentCatalog) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	var cached models.Document
	if c.lookup(ctx, documentCacheKey(id), &cached) {
		return &cached, nil
	}

	doc, err := c.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("document", id)
		}
		return nil, appErrors.Internal(err, "failed to load document")
	}
	c.remember(ctx, documentCacheKey(id), doc)
	return doc, nil
}

// List returns the whole catalog.
func (c *DocumentCatalog) List(ctx context.Context) ([]models.Document, error) {
	var cached []models.Document
	if c.lookup(ctx, documentListCacheKey, &cached) {
		return cached, nil
	}

	docs, err := c.store.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list documents")
	}
	if docs == nil {
		docs = []models.Document{}
	}
	c.remember(ctx, documentListCacheKey, docs)
	return docs, nil
}

// Invalidate evicts a document and the list from the cache.
func (c *DocumentCatalog) Invalidate(ctx context.Context, id int64) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, documentCacheKey(id), documentListCacheKey); err != nil {
		c.logger.Warn("catalog cache invalidate failed", zap.Int64("document_id", id), zap.Error(err))
	}
}

func (c *DocumentCatalog) lookup(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	start := time.Now()
	err := c.cache.Get(ctx, key, dest)
	c.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		c.logger.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

func (c *DocumentCatalog) remember(ctx context.Context, key string, value interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
}
