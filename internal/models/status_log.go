package models

import "time"

// StatusLogEntry records one status transition of a request.
type StatusLogEntry struct {
	ID        int64     `db:"log_id" json:"logId"`
	RequestID int64     `db:"request_id" json:"requestId"`
	OldStatus *string   `db:"old_status" json:"oldStatus"`
	NewStatus string    `db:"new_status" json:"newStatus"`
	ChangedBy int64     `db:"changed_by" json:"changedBy"`
	Remarks   *string   `db:"remarks" json:"remarks,omitempty"`
	ChangedAt time.Time `db:"changed_at" json:"changedAt"`
}

// StatusLogFilter constrains audit log listing. OwnerID selects logs of
// requests belonging to that user.
type StatusLogFilter struct {
	RequestID *int64
	OwnerID   *int64
}
