package dto

import (
	"encoding/json"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Transaction actions multiplexed through the transactions entry point.
const (
	ActionEmit    = "EMIT"
	ActionQuery   = "QUERY"
	ActionReverse = "REVERSE"
)

// TransactionActionRequest is the multiplexed envelope for the transactions
// entry point. EMIT is the default for POST bodies without an action.
type TransactionActionRequest struct {
	Action         string `json:"action,omitempty" binding:"omitempty,oneof=EMIT QUERY REVERSE"`
	ActorUserID    string `json:"actor_user_id,omitempty"`
	OrganizationID string `json:"organization_id" binding:"required,uuid"`

	// EMIT fields.
	TransactionType string                 `json:"transaction_type,omitempty"`
	SmartCode       string                 `json:"smart_code,omitempty" binding:"omitempty,smartcode"`
	TransactionCode string                 `json:"transaction_code,omitempty"`
	TransactionDate *time.Time             `json:"transaction_date,omitempty"`
	PostingDate     *time.Time             `json:"posting_date,omitempty"`
	SourceEntityID  *string                `json:"source_entity_id,omitempty"`
	TargetEntityID  *string                `json:"target_entity_id,omitempty"`
	TotalAmount     *decimal.Decimal       `json:"total_amount,omitempty"`
	Status          string                 `json:"transaction_status,omitempty" binding:"omitempty,oneof=draft posted"`
	BusinessContext json.RawMessage        `json:"business_context,omitempty"`
	Lines           []TransactionLineInput `json:"lines,omitempty"`
	CheckDuplicates bool                   `json:"check_duplicates,omitempty"`

	// REVERSE fields.
	TransactionID     string `json:"transaction_id,omitempty"`
	ReversalReason    string `json:"reversal_reason,omitempty"`
	ReversalSmartCode string `json:"reversal_smart_code,omitempty" binding:"omitempty,smartcode"`

	// QUERY fields.
	Query *TransactionQueryParams `json:"query,omitempty"`
}

// TransactionLineInput is one ordered line of an emit request.
type TransactionLineInput struct {
	LineEntityID *string          `json:"line_entity_id,omitempty"`
	LineNumber   int              `json:"line_number,omitempty"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	DebitAmount  *decimal.Decimal `json:"debit_amount,omitempty"`
	CreditAmount *decimal.Decimal `json:"credit_amount,omitempty"`
	LineAmount   decimal.Decimal  `json:"line_amount"`
	SmartCode    string           `json:"smart_code,omitempty" binding:"omitempty,smartcode"`
}

// TransactionQueryParams filters transaction reads; also bound from GET query strings.
type TransactionQueryParams struct {
	OrganizationID  string     `json:"organization_id,omitempty" form:"organization_id"`
	TransactionType string     `json:"transaction_type,omitempty" form:"transaction_type"`
	EntityID        string     `json:"entity_id,omitempty" form:"entity_id" binding:"omitempty,uuid"`
	DateFrom        *time.Time `json:"date_from,omitempty" form:"date_from" time_format:"2006-01-02"`
	DateTo          *time.Time `json:"date_to,omitempty" form:"date_to" time_format:"2006-01-02"`
	Status          string     `json:"status,omitempty" form:"status" binding:"omitempty,oneof=draft posted reversed"`
	IncludeLines    bool       `json:"include_lines,omitempty" form:"include_lines"`
	Limit           int        `json:"limit,omitempty" form:"limit"`
	NextToken       *string    `json:"next_token,omitempty" form:"next_token"`
}

// TransactionLineResponse is the wire shape of one line.
type TransactionLineResponse struct {
	LineID       string          `json:"id"`
	LineNumber   int             `json:"line_number"`
	LineEntityID *string         `json:"line_entity_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	LineAmount   decimal.Decimal `json:"line_amount"`
	SmartCode    string          `json:"smart_code"`
}

// TransactionResponse is the wire shape of a transaction header plus lines.
type TransactionResponse struct {
	TransactionID          string                    `json:"id"`
	OrganizationID         string                    `json:"organization_id"`
	TransactionType        string                    `json:"transaction_type"`
	TransactionCode        string                    `json:"transaction_code,omitempty"`
	TransactionDate        time.Time                 `json:"transaction_date"`
	PostingDate            time.Time                 `json:"posting_date"`
	SourceEntityID         *string                   `json:"source_entity_id,omitempty"`
	TargetEntityID         *string                   `json:"target_entity_id,omitempty"`
	TotalAmount            decimal.Decimal           `json:"total_amount"`
	Status                 string                    `json:"transaction_status"`
	SmartCode              string                    `json:"smart_code"`
	Metadata               json.RawMessage           `json:"metadata,omitempty"`
	OriginalTransactionID  *string                   `json:"original_transaction_id,omitempty"`
	ReversingTransactionID *string                   `json:"reversing_transaction_id,omitempty"`
	Lines                  []TransactionLineResponse `json:"lines,omitempty"`
	DuplicateMatches       []DuplicateMatchResponse  `json:"duplicate_matches,omitempty"`
	Warnings               []string                  `json:"warnings,omitempty"`
	CreatedAt              time.Time                 `json:"created_at"`
}

// DuplicateMatchResponse is one advisory duplicate-detection hit.
type DuplicateMatchResponse struct {
	TransactionID string          `json:"transaction_id"`
	Confidence    float64         `json:"confidence"`
	Reason        string          `json:"reason"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Date          time.Time       `json:"date"`
}

// ListTransactionsResponse carries one page and the cursor for the next.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"next_token,omitempty"`
}

// ToTransactionResponse converts a domain transaction to its wire shape.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:          t.TransactionID,
		OrganizationID:         t.OrganizationID,
		TransactionType:        t.TransactionType,
		TransactionCode:        t.TransactionCode,
		TransactionDate:        t.TransactionDate,
		PostingDate:            t.PostingDate,
		SourceEntityID:         t.SourceEntityID,
		TargetEntityID:         t.TargetEntityID,
		TotalAmount:            t.TotalAmount,
		Status:                 string(t.Status),
		SmartCode:              t.SmartCode,
		Metadata:               t.Metadata,
		OriginalTransactionID:  t.OriginalTransactionID,
		ReversingTransactionID: t.ReversingTransactionID,
		CreatedAt:              t.CreatedAt,
	}
	if len(t.Lines) > 0 {
		resp.Lines = make([]TransactionLineResponse, len(t.Lines))
		for i, l := range t.Lines {
			resp.Lines[i] = TransactionLineResponse{
				LineID:       l.LineID,
				LineNumber:   l.LineNumber,
				LineEntityID: l.LineEntityID,
				Quantity:     l.Quantity,
				UnitPrice:    l.UnitPrice,
				DebitAmount:  l.DebitAmount,
				CreditAmount: l.CreditAmount,
				LineAmount:   l.LineAmount,
				SmartCode:    l.SmartCode,
			}
		}
	}
	return resp
}

// ToDuplicateMatchResponses converts advisory duplicate hits.
func ToDuplicateMatchResponses(matches []domain.DuplicateMatch) []DuplicateMatchResponse {
	out := make([]DuplicateMatchResponse, len(matches))
	for i, m := range matches {
		out[i] = DuplicateMatchResponse{
			TransactionID: m.TransactionID,
			Confidence:    m.Confidence,
			Reason:        m.Reason,
			TotalAmount:   m.TotalAmount,
			Date:          m.Date,
		}
	}
	return out
}
