package history

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

func record(item models.ItemType, action models.ActionType, oldData, newData, ctx string) models.ActivityRecord {
	rec := models.ActivityRecord{ID: "rec-1", ItemType: item, ActionType: action}
	if oldData != "" {
		rec.Changes.OldData = json.RawMessage(oldData)
	}
	if newData != "" {
		rec.Changes.NewData = json.RawMessage(newData)
	}
	if ctx != "" {
		rec.Changes.Context = json.RawMessage(ctx)
	}
	return rec
}

func TestDiff_FlattensNestedObjects(t *testing.T) {
	oldData := map[string]any{"name": "MacBook", "specs": map[string]any{"ram": "16GB", "cpu": "M1"}, "tags": []any{"a"}}
	newData := map[string]any{"name": "MacBook", "specs": map[string]any{"ram": "32GB", "cpu": "M1"}, "tags": []any{"a", "b"}}

	changes := Diff(oldData, newData)

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Field: "specs.ram", Old: "16GB", New: "32GB"}, changes[0])
	assert.Equal(t, "tags", changes[1].Field)
}

func TestDiff_AddedAndRemovedFields(t *testing.T) {
	changes := Diff(map[string]any{"a": 1.0}, map[string]any{"b": 2.0})
	assert.Equal(t, []Change{
		{Field: "a", Old: 1.0, New: nil},
		{Field: "b", Old: nil, New: 2.0},
	}, changes)

	assert.Empty(t, Diff(nil, nil))
}

func TestRender_AssetUpdateShowsOnlyChangedFields(t *testing.T) {
	rec := record(models.ItemAssets, models.ActionUpdate,
		`{"name":"ThinkPad","status":"in-stock","location":"Buenos Aires"}`,
		`{"name":"ThinkPad","status":"in-use","location":"Buenos Aires"}`, "")

	table, err := Render(rec)
	require.NoError(t, err)

	assert.Equal(t, "asset-update", table.Kind)
	require.Len(t, table.Items, 1)
	assert.Equal(t, "ThinkPad", table.Items[0].Label)
	assert.Equal(t, []Change{{Field: "status", Old: "in-stock", New: "in-use"}}, table.Items[0].Changes)
}

func TestRender_BulkCreateOneItemPerElement(t *testing.T) {
	rec := record(models.ItemMembers, models.ActionBulkCreate, "",
		`[{"name":"Ana","email":"ana@x.io"},{"name":"Bo","email":"bo@x.io"}]`, "")

	table, err := Render(rec)
	require.NoError(t, err)

	require.Len(t, table.Items, 2)
	assert.Equal(t, "Ana", table.Items[0].Label)
	assert.Equal(t, "Bo", table.Items[1].Label)
	assert.Len(t, table.Items[1].Changes, 2)
}

func TestRender_ReassignRestrictsFields(t *testing.T) {
	rec := record(models.ItemAssets, models.ActionReassign,
		`{"name":"iPad","assignedMember":"ana","updatedAt":"2025-01-01"}`,
		`{"name":"iPad","assignedMember":"bo","updatedAt":"2025-02-01"}`, "")

	table, err := Render(rec)
	require.NoError(t, err)
	assert.Equal(t, []Change{{Field: "assignedMember", Old: "ana", New: "bo"}}, table.Items[0].Changes)
}

func TestRender_TeamMembership(t *testing.T) {
	rec := record(models.ItemTeams, models.ActionUnassignMember,
		`{"name":"Platform"}`, `{"name":"Platform"}`, `{"member":{"name":"Ana"}}`)

	table, err := Render(rec)
	require.NoError(t, err)
	require.Len(t, table.Items, 1)
	assert.Equal(t, "Platform", table.Items[0].Label)
	assert.Equal(t, []Change{{Field: "member", Old: "Ana"}}, table.Items[0].Changes)
}

func TestRender_QuoteCreate(t *testing.T) {
	rec := record(models.ItemQuotes, models.ActionCreate, "",
		`{"products":[{"category":"computer","quantity":2}],"services":[{"serviceType":"cleaning","assetIds":["a1"]}]}`, "")

	table, err := Render(rec)
	require.NoError(t, err)
	require.Len(t, table.Items, 2)
	assert.Equal(t, "product 1 (computer)", table.Items[0].Label)
	assert.Equal(t, "service 1 (cleaning)", table.Items[1].Label)
	assert.Equal(t, []string{"field", "value"}, table.Columns)
}

func TestRender_ShipmentConsolidate(t *testing.T) {
	rec := record(models.ItemShipments, models.ActionConsolidate,
		`[{"trackingNumber":"T1"},{"trackingNumber":"T2"}]`, `{"trackingNumber":"T3"}`, "")

	table, err := Render(rec)
	require.NoError(t, err)
	require.Len(t, table.Items, 3)
	assert.Equal(t, "T3", table.Items[2].Label)
}

func TestRender_UnknownCombinationFallsBack(t *testing.T) {
	assert.False(t, Supported(models.ItemOffices, models.ActionConsolidate))
	rec := record(models.ItemOffices, models.ActionConsolidate, `{"city":"Lima"}`, `{"city":"Quito"}`, "")

	table, err := Render(rec)
	require.NoError(t, err)
	assert.Equal(t, "generic", table.Kind)
	assert.Equal(t, []string{"field", "old", "new"}, table.Columns)
	assert.Equal(t, []Change{{Field: "city", Old: "Lima", New: "Quito"}}, table.Items[0].Changes)
}

func TestRender_MalformedPayload(t *testing.T) {
	_, err := Render(record(models.ItemAssets, models.ActionUpdate, `{"name":`, `{}`, ""))
	assert.Error(t, err)
}

func TestDispatchTableCoverage(t *testing.T) {
	combos := map[models.ItemType][]models.ActionType{
		models.ItemAssets:    {models.ActionCreate, models.ActionUpdate, models.ActionDelete, models.ActionBulkCreate, models.ActionBulkDelete, models.ActionReassign, models.ActionReturn},
		models.ItemMembers:   {models.ActionCreate, models.ActionUpdate, models.ActionDelete, models.ActionBulkCreate, models.ActionOffboarding},
		models.ItemTeams:     {models.ActionCreate, models.ActionUpdate, models.ActionDelete, models.ActionAssignMember, models.ActionUnassignMember},
		models.ItemShipments: {models.ActionCreate, models.ActionUpdate, models.ActionCancel, models.ActionConsolidate},
		models.ItemOffices:   {models.ActionCreate, models.ActionUpdate, models.ActionDelete},
		models.ItemQuotes:    {models.ActionCreate, models.ActionCancel},
	}
	for item, actions := range combos {
		for _, action := range actions {
			assert.True(t, Supported(item, action), "%s/%s", item, action)
		}
	}
}
