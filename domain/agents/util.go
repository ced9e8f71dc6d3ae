package agents

import "encoding/json"

// mustJSON marshals a value built entirely from maps, slices, strings and
// numbers — which cannot fail to marshal — into a json.RawMessage for
// RawDocument.Metadata.
func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}

func strPtr(s string) *string {
	return &s
}
