package models

import (
	"encoding/json"
	"time"
)

// ItemType is the kind of record an activity entry refers to.
type ItemType string

const (
	ItemAssets    ItemType = "assets"
	ItemMembers   ItemType = "members"
	ItemTeams     ItemType = "teams"
	ItemShipments ItemType = "shipments"
	ItemOffices   ItemType = "offices"
	ItemQuotes    ItemType = "quotes"
)

// ActionType is what happened to the record.
type ActionType string

const (
	ActionCreate         ActionType = "create"
	ActionUpdate         ActionType = "update"
	ActionDelete         ActionType = "delete"
	ActionBulkCreate     ActionType = "bulk-create"
	ActionBulkDelete     ActionType = "bulk-delete"
	ActionReassign       ActionType = "reassign"
	ActionReturn         ActionType = "return"
	ActionOffboarding    ActionType = "offboarding"
	ActionAssignMember   ActionType = "assign-member"
	ActionUnassignMember ActionType = "unassign-member"
	ActionCancel         ActionType = "cancel"
	ActionConsolidate    ActionType = "consolidate"
)

// ActivityChanges carries the before/after snapshots of a change.
// OldData and NewData are objects for single-record actions and arrays for bulk ones.
type ActivityChanges struct {
	OldData json.RawMessage `json:"oldData"`
	NewData json.RawMessage `json:"newData"`
	Context json.RawMessage `json:"context,omitempty"`
}

// ActivityRecord is one entry of the change log. Records are append-only.
type ActivityRecord struct {
	ID         string          `json:"_id"`
	ActionType ActionType      `json:"actionType"`
	ItemType   ItemType        `json:"itemType"`
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
