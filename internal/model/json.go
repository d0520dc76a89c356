package model

import (
	"encoding/json"
)

// marshalWithExtra encodes v and then adds the opaque fields that v does not
// already define. Known fields always win over a stale copy in extra.
func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, known := fields[k]; !known {
			fields[k] = raw
		}
	}
	return json.Marshal(fields)
}

// splitExtra returns the members of the JSON object data whose keys are not
// in known, or nil when there are none.
func splitExtra(data []byte, known []string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(fields, k)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}
