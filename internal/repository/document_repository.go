package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/pkg/database"
)

// DocumentRepository reads the document catalog.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// FindByID returns sql.ErrNoRows when the document is unknown.
func (r *DocumentRepository) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	const query = `SELECT document_id, name, description, fee, created_at FROM documents WHERE document_id = $1`
	var doc models.Document
	if err := database.Conn(ctx, r.db).GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// List returns the catalog ordered by name.
func (r *DocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	const query = `SELECT document_id, name, description, fee, created_at FROM documents ORDER BY name ASC`
	var docs []models.Document
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &docs, query); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
