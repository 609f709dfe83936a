package models

import "time"

// ClaimSlip proves a request is ready for pickup. One per request.
type ClaimSlip struct {
	ID          int64     `db:"claim_slip_id" json:"claimSlipId"`
	RequestID   int64     `db:"request_id" json:"requestId"`
	ClaimNumber string    `db:"claim_number" json:"claimNumber"`
	DateReady   Date      `db:"date_ready" json:"dateReady"`
	IssuedBy    int64     `db:"issued_by" json:"issuedBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
