package models

import "time"

// AssetStatus enumerates the lifecycle states of a fleet product.
type AssetStatus string

const (
	AssetInStock     AssetStatus = "in-stock"
	AssetInUse       AssetStatus = "in-use"
	AssetInTransit   AssetStatus = "in-transit"
	AssetUnavailable AssetStatus = "unavailable"
	AssetSold        AssetStatus = "sold"
	AssetDeprecated  AssetStatus = "deprecated"
)

var assetStatuses = map[AssetStatus]bool{
	AssetInStock: true, AssetInUse: true, AssetInTransit: true,
	AssetUnavailable: true, AssetSold: true, AssetDeprecated: true,
}

// Valid reports whether s is a known status.
func (s AssetStatus) Valid() bool { return assetStatuses[s] }

// Product is a fleet asset owned by the tenant.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID             int         `db:"id" json:"id"`
	Name           string      `db:"name" json:"name"`
	Category       string      `db:"category" json:"category"`
	Brand          string      `db:"brand" json:"brand"`
	Model          string      `db:"model" json:"model"`
	SerialNumber   string      `db:"serial_number" json:"serialNumber"`
	Status         AssetStatus `db:"status" json:"status"`
	AssignedMember *string     `db:"assigned_member" json:"assignedMember,omitempty"`
	Location       *string     `db:"location" json:"location,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}
