package fleetdesk

import (
	"encoding/json"
	"time"
)

// envelope is the response wrapper every API endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID  string      `json:"requestId"`
		Pagination *Pagination `json:"pagination"`
	} `json:"meta"`
}

// Pagination is returned by list endpoints that page by limit.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// LoginResult is a signed admin session.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

// ActivityChanges carries the before/after snapshots of a change.
type ActivityChanges struct {
	OldData json.RawMessage `json:"oldData"`
	NewData json.RawMessage `json:"newData"`
	Context json.RawMessage `json:"context,omitempty"`
}

// ActivityRecord is one entry of the change log.
type ActivityRecord struct {
	ID         string          `json:"_id"`
	ActionType string          `json:"actionType"`
	ItemType   string          `json:"itemType"`
	UserID     string          `json:"userId"`
	Changes    ActivityChanges `json:"changes"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// HistoryPage is a page of activity records.
type HistoryPage struct {
	Data       []ActivityRecord `json:"data"`
	TotalCount int              `json:"totalCount"`
	TotalPages int              `json:"totalPages"`
}

// HistoryQuery filters a history listing. Dates are yyyy-MM-dd.
type HistoryQuery struct {
	Page      int
	Size      int
	StartDate string
	EndDate   string
}

// Change is one changed field of a sub-table item.
type Change struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// SubTableItem groups the changes of one affected record.
type SubTableItem struct {
	Label   string   `json:"label"`
	Changes []Change `json:"changes"`
}

// SubTable is the expanded view of one activity record.
type SubTable struct {
	Kind    string         `json:"kind"`
	Title   string         `json:"title"`
	Columns []string       `json:"columns"`
	Items   []SubTableItem `json:"items"`
}

// FlowView summarizes one wizard.
type FlowView struct {
	Step       int    `json:"step"`
	StepName   string `json:"stepName"`
	TotalSteps int    `json:"totalSteps"`
	CanProceed bool   `json:"canProceed"`
}

// StoreView is the caller's quote store. Items are kept raw so callers can
// render them without tracking every draft field.
type StoreView struct {
	Products    []json.RawMessage `json:"products"`
	Services    []json.RawMessage `json:"services"`
	State       json.RawMessage   `json:"state"`
	ProductFlow FlowView          `json:"productFlow"`
	ServiceFlow FlowView          `json:"serviceFlow"`
}

// QuoteRequest is a submitted quote and its delivery status.
type QuoteRequest struct {
	ID               int             `json:"id"`
	RequestID        string          `json:"requestId"`
	UserID           string          `json:"userId"`
	Payload          json.RawMessage `json:"payload"`
	ProductCount     int             `json:"productCount"`
	ServiceCount     int             `json:"serviceCount"`
	Status           string          `json:"status"`
	DispatchAttempts int             `json:"dispatchAttempts"`
	NextDispatchAt   *time.Time      `json:"nextDispatchAt,omitempty"`
	DispatchedAt     *time.Time      `json:"dispatchedAt,omitempty"`
	LastError        *string         `json:"lastError,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}
