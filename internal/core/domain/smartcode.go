package domain

import "encoding/json"

// SmartCodeEntry is a registry row declaring cross-cutting behavior for a smart-code
// family, keyed by code prefix (e.g. "HERA.FIN.GL").
type SmartCodeEntry struct {
	Prefix   string          `json:"prefix"`
	Metadata json.RawMessage `json:"metadata"`
	AuditFields
}

// SmartCodeBehavior is the decoded behavior descriptor consulted by validators.
// The engine stays domain-agnostic: which transactions must balance and which
// relationship types are exclusive is data, not control flow.
type SmartCodeBehavior struct {
	LedgerTyped       bool     `json:"ledger_typed"`       // Σdebit must equal Σcredit before posting
	DocType           string   `json:"doc_type"`           // required document type, if any
	RequiredFields    []string `json:"required_fields"`    // dynamic fields the family expects
	ExclusiveRelTypes []string `json:"exclusive_rel_types"` // relationship types with single-active-edge semantics
}
