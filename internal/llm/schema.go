package llm

// BuildDocumentJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is sent to the model as a formatting constraint and reused
// locally to validate whatever comes back.
func BuildDocumentJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"description": map[string]any{"type": "string", "minLength": 1},
			"qty":         map[string]any{"type": "number"},
			"rate":        map[string]any{"type": "number"},
			"line_total":  map[string]any{"type": "number"},
			"unit":        map[string]any{"type": "string"},
		},
		"required": []string{"description"},
	}
	tax := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"type":   map[string]any{"type": "string"},
			"amount": map[string]any{"type": "number"},
		},
		"required": []string{"type", "amount"},
	}

	props := map[string]any{
		"doc_type":     map[string]any{"type": "string", "enum": []string{"PO", "INVOICE", "DELIVERY", "UNKNOWN"}},
		"doc_number":   map[string]any{"type": "string"},
		"date":         map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"vendor_name":  map[string]any{"type": "string"},
		"vendor_gstin": map[string]any{"type": "string"},
		"items":        map[string]any{"type": "array", "items": item},
		"subtotal":     map[string]any{"type": "number"},
		"taxes":        map[string]any{"type": "array", "items": tax},
		"grand_total":  map[string]any{"type": "number"},
		"currency":     map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"doc_type"},
	}
}
