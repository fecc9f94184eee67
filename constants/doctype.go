package constants

import "strings"

// DocType is the canonical document classification.
type DocType string

// Stable values (store these exact strings in DB and expect them from the model).
const (
	DocTypePO       DocType = "PO"
	DocTypeInvoice  DocType = "INVOICE"
	DocTypeDelivery DocType = "DELIVERY"
	DocTypeUnknown  DocType = "UNKNOWN"
)

// UploadableDocTypes are the types accepted at the upload boundary.
var UploadableDocTypes = []DocType{DocTypePO, DocTypeInvoice, DocTypeDelivery}

// ParseDocType maps free-form input onto a DocType. Unrecognized values
// report ok=false rather than being coerced to UNKNOWN, so callers can
// distinguish "bad request" from "model could not classify".
func ParseDocType(s string) (DocType, bool) {
	switch DocType(strings.ToUpper(strings.TrimSpace(s))) {
	case DocTypePO:
		return DocTypePO, true
	case DocTypeInvoice:
		return DocTypeInvoice, true
	case DocTypeDelivery:
		return DocTypeDelivery, true
	case DocTypeUnknown:
		return DocTypeUnknown, true
	}
	return "", false
}

// IsUploadable reports whether t may be attached to an uploaded file.
func IsUploadable(t DocType) bool {
	for _, u := range UploadableDocTypes {
		if t == u {
			return true
		}
	}
	return false
}
