package models

import "time"

// NotificationTask represents a queued outbound message in the outbox.
type NotificationTask struct {
	ID          int64      `json:"id"`
	BookingID   string     `json:"booking_id"`
	Channel     string     `json:"channel"`
	To          string     `json:"to"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}
