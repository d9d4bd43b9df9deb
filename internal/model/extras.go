package model

import (
	"encoding/json"
	"fmt"
)

// decodeWithExtras decodes data into dst and returns every top-level member
// whose key is not listed in known.
func decodeWithExtras(data []byte, dst any, known []string) (map[string]any, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, key := range known {
		knownSet[key] = struct{}{}
	}

	var extras map[string]any
	for key, raw := range members {
		if _, ok := knownSet[key]; ok {
			continue
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		if extras == nil {
			extras = map[string]any{}
		}
		extras[key] = value
	}

	return extras, nil
}

// encodeWithExtras marshals src and merges extras into the resulting object.
// Declared fields win over extras with the same key.
func encodeWithExtras(src any, extras map[string]any) ([]byte, error) {
	data, err := json.Marshal(src)
	if err != nil || len(extras) == 0 {
		return data, err
	}

	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}

	for key, value := range extras {
		if _, exists := merged[key]; exists {
			continue
		}
		merged[key] = value
	}

	return json.Marshal(merged)
}
