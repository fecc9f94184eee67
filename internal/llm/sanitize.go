package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"github.com/apmatch/invoice-matcher/constants"
	"github.com/apmatch/invoice-matcher/internal/entity"
)

// NormalizeDocumentJSON
// - Uppercases doc_type and currency; unknown doc_type values become UNKNOWN
// - Coerces numeric fields delivered as strings ("9,000.00") to numbers
// - Drops nulls, empty strings, and unknown keys (additionalProperties = false friendliness)
// - Trims obvious string fields
func NormalizeDocumentJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	// 1) doc_type: uppercase, collapse anything off-enum to UNKNOWN
	if v, ok := m["doc_type"].(string); ok {
		dt, known := constants.ParseDocType(v)
		if !known {
			dropped = append(dropped, "doc_type("+v+")")
			dt = constants.DocTypeUnknown
		}
		m["doc_type"] = string(dt)
	} else {
		m["doc_type"] = string(constants.DocTypeUnknown)
	}

	// 2) currency: uppercase if present
	if v, ok := m["currency"].(string); ok {
		cur := strings.ToUpper(strings.TrimSpace(v))
		if cur == "" {
			delete(m, "currency")
			dropped = append(dropped, "currency(empty)")
		} else {
			m["currency"] = cur
		}
	}

	// 3) top-level money fields: accept numbers or numeric strings
	for _, k := range []string{"subtotal", "grand_total"} {
		coerceNumber(m, k, &dropped)
	}

	// 4) items and taxes: per-element cleanup; drop elements that are not objects
	if arr, ok := m["items"].([]any); ok {
		m["items"] = sanitizeItems(arr, &dropped)
	}
	if arr, ok := m["taxes"].([]any); ok {
		m["taxes"] = sanitizeTaxes(arr, &dropped)
	}

	// 5) trim obvious strings
	for _, k := range []string{"doc_number", "date", "vendor_name", "vendor_gstin"} {
		if v, ok := m[k].(string); ok {
			s := strings.TrimSpace(v)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}

	// 6) remove nulls and unknown keys
	allowed := map[string]struct{}{
		"doc_type": {}, "doc_number": {}, "date": {}, "vendor_name": {},
		"vendor_gstin": {}, "items": {}, "subtotal": {}, "taxes": {},
		"grand_total": {}, "currency": {},
	}
	for k, v := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		if v == nil {
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeItems(arr []any, dropped *[]string) []any {
	out := make([]any, 0, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			*dropped = append(*dropped, fmt.Sprintf("items[%d](type)", i))
			continue
		}
		if v, ok := obj["description"].(string); ok {
			obj["description"] = strings.TrimSpace(v)
		}
		if s, _ := obj["description"].(string); s == "" {
			*dropped = append(*dropped, fmt.Sprintf("items[%d](no_description)", i))
			continue
		}
		for _, k := range []string{"qty", "rate", "line_total"} {
			coerceNumber(obj, k, dropped)
		}
		if v, ok := obj["unit"].(string); ok {
			obj["unit"] = strings.TrimSpace(v)
		}
		for k, v := range maps.Clone(obj) {
			switch k {
			case "description", "qty", "rate", "line_total", "unit":
				if v == nil {
					delete(obj, k)
				}
			default:
				delete(obj, k)
			}
		}
		out = append(out, obj)
	}
	return out
}

func sanitizeTaxes(arr []any, dropped *[]string) []any {
	out := make([]any, 0, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			*dropped = append(*dropped, fmt.Sprintf("taxes[%d](type)", i))
			continue
		}
		if v, ok := obj["type"].(string); ok {
			obj["type"] = strings.TrimSpace(v)
		}
		coerceNumber(obj, "amount", dropped)
		if _, ok := obj["amount"]; !ok {
			*dropped = append(*dropped, fmt.Sprintf("taxes[%d](no_amount)", i))
			continue
		}
		for k, v := range maps.Clone(obj) {
			switch k {
			case "type", "amount":
				if v == nil {
					delete(obj, k)
				}
			default:
				delete(obj, k)
			}
		}
		out = append(out, obj)
	}
	return out
}

// coerceNumber turns "9,000.00" / "450" into float64 in place. Anything
// unparseable is dropped rather than guessed at.
func coerceNumber(m map[string]any, k string, dropped *[]string) {
	v, ok := m[k]
	if !ok {
		return
	}
	switch t := v.(type) {
	case float64:
		return
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		s = strings.Trim(s, "₹$£€ ")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			m[k] = f
			return
		}
		delete(m, k)
		*dropped = append(*dropped, k+"(unparseable)")
	case nil:
		delete(m, k)
		*dropped = append(*dropped, k+"(null)")
	default:
		delete(m, k)
		*dropped = append(*dropped, k+"(type)")
	}
}

// DecodeDocument unmarshals sanitized JSON into the typed document.
func DecodeDocument(raw []byte) (*entity.StructuredDocument, error) {
	var doc entity.StructuredDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}
