package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus tracks the state machine of a business transaction:
// draft -> posted (terminal for normal flow) -> reversed (terminal, reached only
// by emitting a compensating transaction, never by mutating lines in place).
type TransactionStatus string

const (
	TxnDraft    TransactionStatus = "draft"
	TxnPosted   TransactionStatus = "posted"
	TxnReversed TransactionStatus = "reversed"
)

// Transaction is an append-only business event header.
type Transaction struct {
	TransactionID   string            `json:"transactionID"` // Primary Key (UUID)
	OrganizationID  string            `json:"organizationID"`
	TransactionType string            `json:"transactionType"` // e.g. sale, journal_entry, payment
	TransactionCode string            `json:"transactionCode"` // Human-facing document number
	TransactionDate time.Time         `json:"transactionDate"`
	PostingDate     time.Time         `json:"postingDate"`
	SourceEntityID  *string           `json:"sourceEntityID,omitempty"`
	TargetEntityID  *string           `json:"targetEntityID,omitempty"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	Status          TransactionStatus `json:"status"`
	SmartCode       string            `json:"smartCode"`
	Metadata        json.RawMessage   `json:"metadata,omitempty"`

	// Reversal links. A posted transaction reversed by a compensating entry keeps a
	// forward link; the compensating entry keeps a back link to its original.
	OriginalTransactionID  *string `json:"originalTransactionID,omitempty"`
	ReversingTransactionID *string `json:"reversingTransactionID,omitempty"`

	AuditFields

	Lines []TransactionLine `json:"lines,omitempty"`
}

// TransactionLine is one ordered, itemized component of a transaction. Lines are
// immutable once the parent transaction is posted.
type TransactionLine struct {
	LineID         string          `json:"lineID"` // Primary Key (UUID)
	OrganizationID string          `json:"organizationID"`
	TransactionID  string          `json:"transactionID"`
	LineNumber     int             `json:"lineNumber"`
	LineEntityID   *string         `json:"lineEntityID,omitempty"` // e.g. product or GL account entity
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	LineAmount     decimal.Decimal `json:"lineAmount"`
	SmartCode      string          `json:"smartCode"`
	AuditFields
}

// DuplicateMatch is an advisory hit from duplicate-transaction detection. Confidence
// policy is configured, not hardcoded; callers decide whether to block posting.
type DuplicateMatch struct {
	TransactionID string          `json:"transactionID"`
	Confidence    float64         `json:"confidence"`
	Reason        string          `json:"reason"` // exact_amount_and_reference | amount_and_near_date
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Date          time.Time       `json:"date"`
}
