// Package smartcode parses and validates the dotted, versioned code strings that
// tag every entity and transaction, e.g. HERA.CRM.CUST.ENTITY.v1. The code family
// governs behavior (ledger typing, required fields) via the registry; this package
// only knows the grammar and the advisory alignment checks.
package smartcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
)

// Grammar: HERA.<SEGMENT>(.<SEGMENT>)+.v<digits>, at least three segments
// between the HERA root and the version suffix (HERA.CRM.CUST.ENTITY.v1 is the
// shortest canonical form; longer codes add a document-type segment).
var codePattern = regexp.MustCompile(`^HERA(\.[A-Z0-9_]+){3,}\.v(\d+)$`)

// ErrMalformedPrefix indicates a registry prefix outside the smart-code grammar.
var ErrMalformedPrefix = fmt.Errorf("%w: malformed registry prefix", apperrors.ErrValidation)

// SmartCode is the parsed form of a smart code string.
type SmartCode struct {
	Raw      string
	Industry string // first segment after HERA
	Module   string // second segment
	Function string // third segment
	DocType  string // fourth segment, empty for three-segment codes
	Version  int
	Segments []string // all segments between HERA and the version
}

// Parse validates and decomposes a smart code. Segment case is normalized to
// upper-case before matching; malformed codes fail with ErrValidation.
func Parse(code string) (SmartCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return SmartCode{}, fmt.Errorf("%w: smart_code is required", apperrors.ErrValidation)
	}
	// The version suffix keeps its lower-case v in the canonical form.
	if idx := strings.LastIndex(normalized, ".V"); idx >= 0 {
		normalized = normalized[:idx] + ".v" + normalized[idx+2:]
	}

	if !codePattern.MatchString(normalized) {
		return SmartCode{}, fmt.Errorf("%w: malformed smart code %q (expected HERA.<INDUSTRY>.<MODULE>.<FUNCTION>[.<TYPE>].vN)", apperrors.ErrValidation, code)
	}

	parts := strings.Split(normalized, ".")
	segments := parts[1 : len(parts)-1]
	version, err := strconv.Atoi(strings.TrimPrefix(parts[len(parts)-1], "v"))
	if err != nil {
		return SmartCode{}, fmt.Errorf("%w: malformed smart code version in %q", apperrors.ErrValidation, code)
	}

	parsed := SmartCode{
		Raw:      normalized,
		Industry: segments[0],
		Module:   segments[1],
		Function: segments[2],
		Version:  version,
		Segments: segments,
	}
	// Three-segment codes carry no separate document-type segment.
	if len(segments) > 3 {
		parsed.DocType = segments[3]
	}
	return parsed, nil
}

// IsValid reports whether code matches the smart-code grammar. Used by the gin
// binding validator so malformed codes are rejected at the request boundary.
func IsValid(code string) bool {
	_, err := Parse(code)
	return err == nil
}

// Prefix returns the first n segments joined with the HERA root, for registry
// lookups by code family (e.g. Prefix(2) of HERA.FIN.GL.TXN.JE.v1 is "HERA.FIN.GL").
func (c SmartCode) Prefix(n int) string {
	if n > len(c.Segments) {
		n = len(c.Segments)
	}
	return "HERA." + strings.Join(c.Segments[:n], ".")
}

// discriminators maps well-known entity/transaction types to the segment
// vocabulary their codes usually carry. Domains extend the vocabulary freely,
// so misalignment is a warning, never a failure.
var discriminators = map[string][]string{
	"customer":      {"CUST", "CUSTOMER", "CLIENT"},
	"vendor":        {"VEND", "VENDOR", "SUPPLIER"},
	"product":       {"PROD", "PRODUCT", "ITEM", "SKU"},
	"employee":      {"EMP", "EMPLOYEE", "STAFF"},
	"gl_account":    {"GL", "ACCOUNT", "COA"},
	"sale":          {"SALE", "SALES", "TXN"},
	"purchase":      {"PUR", "PURCHASE", "PO"},
	"payment":       {"PAY", "PAYMENT", "PMT"},
	"journal_entry": {"JE", "JOURNAL", "GL"},
}

// Align returns advisory warnings when a code's segments carry no discriminator
// matching the declared entity or transaction type.
func Align(c SmartCode, declaredType string) []string {
	wanted, known := discriminators[strings.ToLower(declaredType)]
	if !known {
		return nil
	}
	for _, seg := range c.Segments {
		for _, w := range wanted {
			if seg == w {
				return nil
			}
		}
	}
	return []string{fmt.Sprintf("smart code %s carries no %s discriminator (expected one of %s)",
		c.Raw, declaredType, strings.Join(wanted, "/"))}
}
