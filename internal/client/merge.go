package client

import (
	"encoding/json"
	"fmt"
)

// canonicalMap round-trips a mapping through JSON so both sides of a merge
// use one fixed representation (string keys, float64 numbers) regardless
// of how the caller built their value types.
func canonicalMap(m map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing update data: %w", err)
	}

	var canonical map[string]interface{}

	err = json.Unmarshal(data, &canonical)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing update data: %w", err)
	}

	return canonical, nil
}

// mergeMaps deep-merges src over dst and returns a new mapping. Keys from
// src win; when both sides hold mappings the merge recurses key-wise;
// any other value is replaced wholesale. Neither input is mutated.
func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(dst)+len(src))

	for key, value := range dst {
		merged[key] = value
	}

	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]interface{})
		dstMap, dstIsMap := merged[key].(map[string]interface{})

		if srcIsMap && dstIsMap {
			merged[key] = mergeMaps(dstMap, srcMap)

			continue
		}

		merged[key] = value
	}

	return merged
}
