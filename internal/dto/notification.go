package dto

// UnreadCount reports how many notifications await the caller.
type UnreadCount struct {
	Unread int `json:"unread"`
}
