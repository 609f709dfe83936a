package models

import "time"

// Document is a requestable document type from the catalog.
type Document struct {
	ID          int64     `db:"document_id" json:"documentId"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Fee         float64   `db:"fee" json:"fee"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
