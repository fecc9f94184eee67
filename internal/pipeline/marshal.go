package pipeline

import "encoding/json"

// mustMarshal is safe for StructuredDocument: the type contains nothing
// json.Marshal can reject.
func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
