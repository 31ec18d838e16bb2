package repositories

import (
	"context"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows transaction queries.
type TransactionFilter struct {
	TransactionType string
	EntityID        string // matches source, target or any line entity
	DateFrom        *time.Time
	DateTo          *time.Time
	Status          []domain.TransactionStatus
}

// DuplicateProbe describes a candidate transaction for duplicate detection.
type DuplicateProbe struct {
	CounterpartyEntityID *string
	TotalAmount          decimal.Decimal
	Date                 time.Time
	Reference            string // external document reference, matched against transaction_code
	DateWindowDays       int
}

// TransactionRepositoryFacade defines persistence for the append-only ledger of
// business events.
type TransactionRepositoryFacade interface {
	// SaveTransaction persists header and ordered lines atomically, re-checking
	// the balance invariant for ledger-typed transactions inside the unit.
	SaveTransaction(ctx context.Context, txn domain.Transaction, lines []domain.TransactionLine, requireBalanced bool) error

	FindTransactionByID(ctx context.Context, organizationID, transactionID string) (*domain.Transaction, error)
	FindLinesByTransactionID(ctx context.Context, organizationID, transactionID string) ([]domain.TransactionLine, error)
	FindLinesByTransactionIDs(ctx context.Context, organizationID string, transactionIDs []string) (map[string][]domain.TransactionLine, error)
	ListTransactions(ctx context.Context, organizationID string, filter TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// SaveReversal locks the original header, re-validates that it is posted and
	// unreversed, inserts the compensating transaction with its lines, and flips
	// the original to reversed, all in one atomic unit.
	SaveReversal(ctx context.Context, originalID string, reversing domain.Transaction, lines []domain.TransactionLine) error

	// FindCandidateDuplicates returns posted transactions matching the probe's
	// amount within its date window, for advisory confidence scoring.
	FindCandidateDuplicates(ctx context.Context, organizationID string, probe DuplicateProbe) ([]domain.Transaction, error)
}

// TransactionRepositoryWithTx combines the transaction repository with
// database-transaction management.
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	RepositoryWithTx
}
