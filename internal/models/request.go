package models

import (
	"strings"
	"time"
)

// RequestStatus captures the lifecycle states of a document request.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusProcessing RequestStatus = "PROCESSING"
	RequestStatusApproved   RequestStatus = "APPROVED"
	RequestStatusRejected   RequestStatus = "REJECTED"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
)

// RequestStatuses lists every known status in display order.
var RequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusProcessing,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusCompleted,
}

// ParseRequestStatus matches raw case-insensitively against the known statuses.
func ParseRequestStatus(raw string) (RequestStatus, bool) {
	candidate := RequestStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, status := range RequestStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// Request is a student's petition for copies of one catalog document.
type Request struct {
	ID         int64         `db:"request_id" json:"requestId"`
	UserID     int64         `db:"user_id" json:"userId"`
	DocumentID int64         `db:"document_id" json:"documentId"`
	Status     RequestStatus `db:"status" json:"status"`
	Copies     int           `db:"copies" json:"copies"`
	DateNeeded *Date         `db:"date_needed" json:"dateNeeded,omitempty"`
	DateReady  *time.Time    `db:"date_ready" json:"dateReady,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updatedAt"`
}

// RequestFilter constrains listing queries.
type RequestFilter struct {
	UserID *int64
	Status []RequestStatus
}
