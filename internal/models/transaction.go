package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus tracks the state machine of a transaction header.
type TransactionStatus string

const (
	TxnDraft    TransactionStatus = "draft"
	TxnPosted   TransactionStatus = "posted"
	TxnReversed TransactionStatus = "reversed"
)

// Transaction maps to the universal_transactions table.
type Transaction struct {
	TransactionID          string            `json:"transactionID"`
	OrganizationID         string            `json:"organizationID"`
	TransactionType        string            `json:"transactionType"`
	TransactionCode        string            `json:"transactionCode"`
	TransactionDate        time.Time         `json:"transactionDate"`
	PostingDate            time.Time         `json:"postingDate"`
	SourceEntityID         *string           `json:"sourceEntityID"`
	TargetEntityID         *string           `json:"targetEntityID"`
	TotalAmount            decimal.Decimal   `json:"totalAmount"`
	Status                 TransactionStatus `json:"transactionStatus"`
	SmartCode              string            `json:"smartCode"`
	Metadata               json.RawMessage   `json:"metadata"`
	OriginalTransactionID  *string           `json:"originalTransactionID"`
	ReversingTransactionID *string           `json:"reversingTransactionID"`
	AuditFields
}

// TransactionLine maps to the universal_transaction_lines table.
type TransactionLine struct {
	LineID         string          `json:"lineID"`
	OrganizationID string          `json:"organizationID"`
	TransactionID  string          `json:"transactionID"`
	LineNumber     int             `json:"lineNumber"`
	LineEntityID   *string         `json:"lineEntityID"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	LineAmount     decimal.Decimal `json:"lineAmount"`
	SmartCode      string          `json:"smartCode"`
	AuditFields
}

// SmartCodeEntry maps to the core_smart_codes registry table.
type SmartCodeEntry struct {
	Prefix   string          `json:"prefix"`
	Metadata json.RawMessage `json:"metadata"`
	AuditFields
}
