package piaware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jpalmerr/piaware-exporter/state"
)

// Document is a parsed PiAware status.json, keyed by top-level field.
//
// Only the five subsystem fields are interpreted; everything else in the
// document is ignored.
type Document map[string]json.RawMessage

// ParseDocument decodes a status.json body.
//
// The body must be a JSON object. Returns an error for any other JSON value
// or for malformed input.
func ParseDocument(body []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse status.json: %w", err)
	}
	if doc == nil {
		return nil, errors.New("failed to parse status.json: document is not a JSON object")
	}
	return doc, nil
}

// subsystemStatus is the part of a subsystem object the exporter reads.
type subsystemStatus struct {
	Status json.RawMessage `json:"status"`
}

// Status reports the raw status string of sub and whether the subsystem
// is present in the document. A key holding JSON null counts as absent.
//
// A present subsystem whose value is not an object, or whose status field
// is missing or not a string, yields an empty status.
func (d Document) Status(sub state.Subsystem) (string, bool) {
	raw, ok := d[sub.Key()]
	if !ok || isNull(raw) {
		return "", false
	}

	var obj subsystemStatus
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", true
	}

	var status string
	if err := json.Unmarshal(obj.Status, &status); err != nil {
		return "", true
	}
	return status, true
}

// States interprets every subsystem present in the document.
//
// Each subsystem folds independently: "green" and "amber" map to
// themselves and any other value maps to red. Subsystems missing from the
// document are not included in the result.
func (d Document) States() map[state.Subsystem]state.State {
	states := make(map[state.Subsystem]state.State, len(state.Subsystems))
	for _, sub := range state.Subsystems {
		status, ok := d.Status(sub)
		if !ok {
			continue
		}
		states[sub] = state.FromStatus(status)
	}
	return states
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
