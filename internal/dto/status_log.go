package dto

import "github.com/noah-isme/registrar-api/internal/models"

// StatusLogDetail adds the registrar's display name to an audit entry.
type StatusLogDetail struct {
	models.StatusLogEntry
	ChangedByName *string `json:"changedByName,omitempty"`
}

// CorrectStatusLogPayload amends the remarks of an audit entry.
type CorrectStatusLogPayload struct {
	Remarks *string `json:"remarks"`
}

// StatusLogQuery mirrors supported listing filters.
type StatusLogQuery struct {
	RequestID *int64
	UserID    *int64
}
