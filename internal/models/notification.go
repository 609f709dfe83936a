package models

import "time"

// Notification is a message addressed to a single user.
type Notification struct {
	ID        int64     `db:"notification_id" json:"notificationId"`
	UserID    int64     `db:"user_id" json:"userId"`
	RequestID *int64    `db:"request_id" json:"requestId,omitempty"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
