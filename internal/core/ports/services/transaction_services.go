package services

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/dto"
)

// TransactionSvcFacade is the append-only transaction engine:
// draft -> posted -> reversed, with reversal as a compensating entry.
type TransactionSvcFacade interface {
	// EmitTransaction persists header plus ordered lines atomically. Ledger-typed
	// smart codes require balanced debits and credits before posting. Returns
	// advisory duplicate matches when requested, plus alignment warnings.
	EmitTransaction(ctx context.Context, req dto.TransactionActionRequest, actorUserID string) (*domain.Transaction, []domain.DuplicateMatch, []string, error)

	GetTransactionByID(ctx context.Context, organizationID, transactionID string, actorUserID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params dto.TransactionQueryParams, actorUserID string) ([]domain.Transaction, *string, error)

	// ReverseTransaction emits the sign-inverted mirror of a posted transaction
	// and marks the original reversed. Never mutates posted lines in place.
	ReverseTransaction(ctx context.Context, organizationID, transactionID, reason, reversalSmartCode, actorUserID string) (*domain.Transaction, error)

	// ScoreDuplicates returns advisory confidence-scored candidates; callers
	// decide whether to block posting.
	ScoreDuplicates(ctx context.Context, params dto.DuplicateCheckParams, actorUserID string) ([]domain.DuplicateMatch, error)
}
