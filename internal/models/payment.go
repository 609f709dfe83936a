package models

import "time"

// Payment references an uploaded proof of payment for a request.
type Payment struct {
	ID             int64     `db:"payment_id" json:"paymentId"`
	RequestID      int64     `db:"request_id" json:"requestId"`
	ProofOfPayment string    `db:"proof_of_payment" json:"proofOfPayment"`
	Remarks        *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
