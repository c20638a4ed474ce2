package models

import (
	"encoding/json"
	"time"
)

// QuoteRequestStatus tracks delivery of a submitted quote to the sales desk.
type QuoteRequestStatus string

const (
	QuoteStatusPending    QuoteRequestStatus = "pending"
	QuoteStatusDispatched QuoteRequestStatus = "dispatched"
	QuoteStatusFailed     QuoteRequestStatus = "failed"
	QuoteStatusCancelled  QuoteRequestStatus = "cancelled"
)

// QuoteRequest is a submitted quote. Payload holds the backend-format request body.
type QuoteRequest struct {
	ID               int                `db:"id" json:"id"`
	RequestID        string             `db:"request_id" json:"requestId"`
	UserID           string             `db:"user_id" json:"userId"`
	Payload          json.RawMessage    `db:"payload" json:"payload"`
	ProductCount     int                `db:"product_count" json:"productCount"`
	ServiceCount     int                `db:"service_count" json:"serviceCount"`
	Status           QuoteRequestStatus `db:"status" json:"status"`
	DispatchAttempts int                `db:"dispatch_attempts" json:"dispatchAttempts"`
	NextDispatchAt   *time.Time         `db:"next_dispatch_at" json:"nextDispatchAt,omitempty"`
	DispatchedAt     *time.Time         `db:"dispatched_at" json:"dispatchedAt,omitempty"`
	LastError        *string            `db:"last_error" json:"lastError,omitempty"`
	CreatedAt        time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updatedAt"`
}
