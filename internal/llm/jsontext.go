package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject recovers a single JSON object from free-form model
// output. The model is asked for bare JSON but routinely wraps it in prose or
// code fences, so: slice from the first '{' to the last '}' and decode; if
// that fails, decode the whole response verbatim. Both failing is an error.
//
// This is deliberately the only place malformed external output is tolerated.
// The slice heuristic can be confused by stray braces in surrounding prose;
// accepted, since the verbatim fallback then gets its turn.
func ExtractJSONObject(s string) ([]byte, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start != -1 && end != -1 && start < end {
		candidate := s[start : end+1]
		if raw, err := decodeObject(candidate); err == nil {
			return raw, nil
		}
	}

	if raw, err := decodeObject(s); err == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("no JSON object found in %d bytes of output", len(s))
}

// decodeObject checks that s is exactly one JSON object and returns it
// re-compacted, so downstream storage is stable regardless of model
// whitespace.
func decodeObject(s string) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	out, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return out, nil
}
