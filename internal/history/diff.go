package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Change is one field that differs between the old and new snapshot.
// Nested object fields use dotted paths; arrays are compared whole.
type Change struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// decode parses a raw snapshot. Empty input and JSON null both yield nil.
func decode(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return v, nil
}

// flatten turns nested objects into a dotted-path map. Non-object values
// are stored under prefix itself.
func flatten(prefix string, v any, out map[string]any) {
	obj, ok := v.(map[string]any)
	if !ok {
		if prefix != "" {
			out[prefix] = v
		}
		return
	}
	for k, child := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		flatten(key, child, out)
	}
}

// Diff returns the changed fields between two decoded snapshots, sorted by path.
func Diff(oldData, newData any) []Change {
	before := map[string]any{}
	after := map[string]any{}
	flatten("", oldData, before)
	flatten("", newData, after)

	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	changes := make([]Change, 0, len(keys))
	for k := range keys {
		o, n := before[k], after[k]
		if reflect.DeepEqual(o, n) {
			continue
		}
		changes = append(changes, Change{Field: k, Old: o, New: n})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

// only keeps the changes whose field is in fields or nested under one of them.
func only(changes []Change, fields ...string) []Change {
	out := changes[:0:0]
	for _, c := range changes {
		for _, f := range fields {
			if c.Field == f || (len(c.Field) > len(f) && c.Field[:len(f)+1] == f+".") {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
