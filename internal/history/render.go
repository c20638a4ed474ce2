// Package history turns activity records into sub-tables: one item per
// affected record, each listing the fields that changed.
package history

import (
	"encoding/json"
	"fmt"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

// Item is one row group of a sub-table, usually one affected record.
type Item struct {
	Label   string   `json:"label"`
	Changes []Change `json:"changes"`
}

// SubTable is the expanded view of one activity record.
type SubTable struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Items   []Item   `json:"items"`
}

// Renderer builds the sub-table of a decoded record.
type Renderer func(snap Snapshot) SubTable

// Snapshot is a record with its change payload decoded.
type Snapshot struct {
	Record  models.ActivityRecord
	OldData any
	NewData any
	Context map[string]any
}

type key struct {
	item   models.ItemType
	action models.ActionType
}

var defaultColumns = []string{"field", "old", "new"}

// renderers is the (itemType, actionType) dispatch table. Combinations not
// listed fall back to the generic diff.
var renderers = map[key]Renderer{
	{models.ItemAssets, models.ActionCreate}:     created("asset"),
	{models.ItemAssets, models.ActionUpdate}:     updated("asset"),
	{models.ItemAssets, models.ActionDelete}:     deleted("asset"),
	{models.ItemAssets, models.ActionBulkCreate}: bulkCreated("asset"),
	{models.ItemAssets, models.ActionBulkDelete}: bulkDeleted("asset"),
	{models.ItemAssets, models.ActionReassign}:   restricted("asset-reassign", "assignedMember", "location", "status"),
	{models.ItemAssets, models.ActionReturn}:     restricted("asset-return", "assignedMember", "location", "status"),

	{models.ItemMembers, models.ActionCreate}:      created("member"),
	{models.ItemMembers, models.ActionUpdate}:      updated("member"),
	{models.ItemMembers, models.ActionDelete}:      deleted("member"),
	{models.ItemMembers, models.ActionBulkCreate}:  bulkCreated("member"),
	{models.ItemMembers, models.ActionOffboarding}: offboarding,

	{models.ItemTeams, models.ActionCreate}:         created("team"),
	{models.ItemTeams, models.ActionUpdate}:         updated("team"),
	{models.ItemTeams, models.ActionDelete}:         deleted("team"),
	{models.ItemTeams, models.ActionAssignMember}:   membership("team-assign-member", true),
	{models.ItemTeams, models.ActionUnassignMember}: membership("team-unassign-member", false),

	{models.ItemShipments, models.ActionCreate}:      created("shipment"),
	{models.ItemShipments, models.ActionUpdate}:      updated("shipment"),
	{models.ItemShipments, models.ActionCancel}:      restricted("shipment-cancel", "status", "cancelReason"),
	{models.ItemShipments, models.ActionConsolidate}: consolidated,

	{models.ItemOffices, models.ActionCreate}: created("office"),
	{models.ItemOffices, models.ActionUpdate}: updated("office"),
	{models.ItemOffices, models.ActionDelete}: deleted("office"),

	{models.ItemQuotes, models.ActionCreate}: quoteCreated,
	{models.ItemQuotes, models.ActionCancel}: restricted("quote-cancel", "status"),
}

// Supported reports whether a dedicated renderer exists for the combination.
func Supported(item models.ItemType, action models.ActionType) bool {
	_, ok := renderers[key{item, action}]
	return ok
}

// Render decodes rec and dispatches it to its renderer.
func Render(rec models.ActivityRecord) (SubTable, error) {
	snap, err := decodeRecord(rec)
	if err != nil {
		return SubTable{}, err
	}
	render, ok := renderers[key{rec.ItemType, rec.ActionType}]
	if !ok {
		render = generic
	}
	t := render(snap)
	if t.Columns == nil {
		t.Columns = defaultColumns
	}
	if t.Items == nil {
		t.Items = []Item{}
	}
	return t, nil
}

func decodeRecord(rec models.ActivityRecord) (Snapshot, error) {
	snap := Snapshot{Record: rec}
	var err error
	if snap.OldData, err = decode(rec.Changes.OldData); err != nil {
		return Snapshot{}, fmt.Errorf("record %s oldData: %w", rec.ID, err)
	}
	if snap.NewData, err = decode(rec.Changes.NewData); err != nil {
		return Snapshot{}, fmt.Errorf("record %s newData: %w", rec.ID, err)
	}
	ctx, err := decode(rec.Changes.Context)
	if err != nil {
		return Snapshot{}, fmt.Errorf("record %s context: %w", rec.ID, err)
	}
	snap.Context, _ = ctx.(map[string]any)
	return snap, nil
}

func generic(snap Snapshot) SubTable {
	return SubTable{
		Kind:  "generic",
		Title: fmt.Sprintf("%s %s", snap.Record.ItemType, snap.Record.ActionType),
		Items: []Item{{Label: label(snap.NewData, snap.OldData), Changes: Diff(snap.OldData, snap.NewData)}},
	}
}

func created(noun string) Renderer {
	return func(snap Snapshot) SubTable {
		return SubTable{
			Kind:  noun + "-create",
			Title: "Created " + noun,
			Items: []Item{{Label: label(snap.NewData), Changes: Diff(nil, snap.NewData)}},
		}
	}
}

func updated(noun string) Renderer {
	return func(snap Snapshot) SubTable {
		return SubTable{
			Kind:  noun + "-update",
			Title: "Updated " + noun,
			Items: []Item{{Label: label(snap.NewData, snap.OldData), Changes: Diff(snap.OldData, snap.NewData)}},
		}
	}
}

func deleted(noun string) Renderer {
	return func(snap Snapshot) SubTable {
		return SubTable{
			Kind:  noun + "-delete",
			Title: "Deleted " + noun,
			Items: []Item{{Label: label(snap.OldData), Changes: Diff(snap.OldData, nil)}},
		}
	}
}

func bulkCreated(noun string) Renderer {
	return func(snap Snapshot) SubTable {
		t := SubTable{Kind: noun + "-bulk-create", Title: "Created " + noun + "s"}
		for _, el := range elements(snap.NewData) {
			t.Items = append(t.Items, Item{Label: label(el), Changes: Diff(nil, el)})
		}
		return t
	}
}

func bulkDeleted(noun string) Renderer {
	return func(snap Snapshot) SubTable {
		t := SubTable{Kind: noun + "-bulk-delete", Title: "Deleted " + noun + "s"}
		for _, el := range elements(snap.OldData) {
			t.Items = append(t.Items, Item{Label: label(el), Changes: Diff(el, nil)})
		}
		return t
	}
}

// restricted diffs a single record but shows only the listed fields.
func restricted(kind string, fields ...string) Renderer {
	return func(snap Snapshot) SubTable {
		return SubTable{
			Kind:  kind,
			Title: kind,
			Items: []Item{{
				Label:   label(snap.NewData, snap.OldData),
				Changes: only(Diff(snap.OldData, snap.NewData), fields...),
			}},
		}
	}
}

// offboarding shows the member's own changes followed by one item per asset
// listed under context.assets.
func offboarding(snap Snapshot) SubTable {
	t := SubTable{
		Kind:  "member-offboarding",
		Title: "Offboarded member",
		Items: []Item{{Label: label(snap.NewData, snap.OldData), Changes: Diff(snap.OldData, snap.NewData)}},
	}
	for _, asset := range elements(snap.Context["assets"]) {
		t.Items = append(t.Items, Item{Label: label(asset), Changes: only(Diff(nil, asset), "status", "location", "assignedMember")})
	}
	return t
}

// membership renders a member joining or leaving a team. The member comes
// from context.member.
func membership(kind string, joined bool) Renderer {
	return func(snap Snapshot) SubTable {
		member := snap.Context["member"]
		c := Change{Field: "member"}
		if joined {
			c.New = labelOrValue(member)
		} else {
			c.Old = labelOrValue(member)
		}
		return SubTable{
			Kind:  kind,
			Title: kind,
			Items: []Item{{Label: label(snap.NewData, snap.OldData), Changes: []Change{c}}},
		}
	}
}

// consolidated lists every merged shipment followed by the resulting one.
func consolidated(snap Snapshot) SubTable {
	t := SubTable{Kind: "shipment-consolidate", Title: "Consolidated shipments"}
	for _, el := range elements(snap.OldData) {
		t.Items = append(t.Items, Item{Label: label(el), Changes: Diff(el, nil)})
	}
	t.Items = append(t.Items, Item{Label: label(snap.NewData), Changes: Diff(nil, snap.NewData)})
	return t
}

// quoteCreated shows one item per requested product and service.
func quoteCreated(snap Snapshot) SubTable {
	t := SubTable{
		Kind:    "quote-create",
		Title:   "Quote requested",
		Columns: []string{"field", "value"},
	}
	obj, _ := snap.NewData.(map[string]any)
	for i, p := range elements(obj["products"]) {
		t.Items = append(t.Items, Item{Label: fmt.Sprintf("product %d (%s)", i+1, stringField(p, "category")), Changes: Diff(nil, p)})
	}
	for i, s := range elements(obj["services"]) {
		t.Items = append(t.Items, Item{Label: fmt.Sprintf("service %d (%s)", i+1, stringField(s, "serviceType")), Changes: Diff(nil, s)})
	}
	return t
}

func elements(v any) []any {
	arr, _ := v.([]any)
	return arr
}

// label picks a human name for the first snapshot that has one.
func label(candidates ...any) string {
	for _, c := range candidates {
		for _, f := range []string{"name", "title", "serialNumber", "trackingNumber", "email", "requestId", "id", "_id"} {
			if s := stringField(c, f); s != "" {
				return s
			}
		}
	}
	return ""
}

func labelOrValue(v any) any {
	if l := label(v); l != "" {
		return l
	}
	return v
}

func stringField(v any, field string) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	switch x := obj[field].(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	case json.Number:
		return x.String()
	}
	return ""
}
