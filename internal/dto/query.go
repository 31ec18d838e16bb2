package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DuplicateCheckParams describes a candidate transaction for advisory
// duplicate detection.
type DuplicateCheckParams struct {
	OrganizationID       string          `json:"organization_id" binding:"required,uuid"`
	CounterpartyEntityID *string         `json:"counterparty_entity_id,omitempty"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	TransactionDate      time.Time       `json:"transaction_date"`
	Reference            string          `json:"reference,omitempty"`
}

// EntityActivityResponse is the cross-store composed view of one entity: its
// header, current relationships, and recent transactions touching it.
type EntityActivityResponse struct {
	Entity        EntityResponse         `json:"entity"`
	Relationships []RelationshipResponse `json:"relationships,omitempty"`
	Transactions  []TransactionResponse  `json:"transactions,omitempty"`
}
