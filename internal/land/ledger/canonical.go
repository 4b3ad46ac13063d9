// Package ledger implements the append-only, hash-chained event log.
package ledger

import (
	"encoding/json"

	"github.com/hydrib/landregistry-backend/internal/land/model"
)

// Canonicalize serializes an event into deterministic bytes for hashing. The
// payload is flattened through a key-sorted JSON object, so two semantically
// identical payloads produce byte-identical output regardless of field
// insertion order.
func Canonicalize(event model.Event) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, &model.EncodingError{Kind: event.Kind(), Err: err}
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &model.EncodingError{Kind: event.Kind(), Err: err}
	}

	// encoding/json emits map keys in sorted order.
	out, err := json.Marshal(map[string]any{
		"kind":   string(event.Kind()),
		"fields": fields,
	})
	if err != nil {
		return nil, &model.EncodingError{Kind: event.Kind(), Err: err}
	}
	return out, nil
}
