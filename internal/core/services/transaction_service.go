package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
	"github.com/herafoundry/hera_data_engine/internal/utils/ledger"
	"github.com/herafoundry/hera_data_engine/internal/utils/smartcode"
)

var (
	ErrTransactionTypeMissing = errors.New("transaction_type is required")
	ErrTransactionIDMissing   = errors.New("transaction_id is required")
	ErrUnbalanced             = errors.New("ledger-typed transaction debits and credits do not balance")
	ErrLedgerMinLines         = errors.New("ledger-typed transaction must have at least two lines")
	ErrNotPosted              = errors.New("only posted transactions can be reversed")
	ErrAlreadyReversed        = errors.New("transaction is already reversed")
	ErrLineNumbersNotDense    = errors.New("transaction line numbers must be unique and sequential from 1")
)

// DuplicatePolicy is the configured scoring for advisory duplicate detection.
// Nothing here blocks posting; callers decide what to do with the scores.
type DuplicatePolicy struct {
	ExactConfidence float64
	NearConfidence  float64
	DateWindowDays  int
}

// transactionService is the append-only transaction engine. Posted headers and
// lines are never mutated; correction happens by compensating reversal.
type transactionService struct {
	BaseService
	txnRepo      portsrepo.TransactionRepositoryFacade
	smartCodeSvc portssvc.SmartCodeSvcFacade
	dupPolicy    DuplicatePolicy
	maxReadLimit int
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, smartCodeSvc portssvc.SmartCodeSvcFacade, orgSvc portssvc.OrganizationSvcFacade, dupPolicy DuplicatePolicy, maxReadLimit int) portssvc.TransactionSvcFacade {
	if dupPolicy.ExactConfidence == 0 {
		dupPolicy.ExactConfidence = 0.95
	}
	if dupPolicy.NearConfidence == 0 {
		dupPolicy.NearConfidence = 0.75
	}
	if dupPolicy.DateWindowDays == 0 {
		dupPolicy.DateWindowDays = 3
	}
	if maxReadLimit <= 0 {
		maxReadLimit = 100
	}
	return &transactionService{
		BaseService:  BaseService{OrgAuthorizer: orgSvc},
		txnRepo:      txnRepo,
		smartCodeSvc: smartCodeSvc,
		dupPolicy:    dupPolicy,
		maxReadLimit: maxReadLimit,
	}
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validateLineNumbers enforces density for caller-supplied line numbers. Lines
// left at zero everywhere are assigned in request order instead.
func validateLineNumbers(inputs []dto.TransactionLineInput) error {
	assignAll := true
	for _, in := range inputs {
		if in.LineNumber != 0 {
			assignAll = false
			break
		}
	}
	if assignAll {
		return nil
	}
	seen := make(map[int]bool, len(inputs))
	for i, in := range inputs {
		if in.LineNumber < 1 || in.LineNumber > len(inputs) || seen[in.LineNumber] {
			return fmt.Errorf("%w: line %d has line_number %d", ErrLineNumbersNotDense, i+1, in.LineNumber)
		}
		seen[in.LineNumber] = true
	}
	return nil
}

func buildLines(req dto.TransactionActionRequest, transactionID, userID string, now time.Time) []domain.TransactionLine {
	lines := make([]domain.TransactionLine, len(req.Lines))
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	for i, in := range req.Lines {
		lineNumber := in.LineNumber
		if lineNumber == 0 {
			lineNumber = i + 1
		}
		line := domain.TransactionLine{
			LineID:         uuid.NewString(),
			OrganizationID: req.OrganizationID,
			TransactionID:  transactionID,
			LineNumber:     lineNumber,
			LineEntityID:   in.LineEntityID,
			LineAmount:     in.LineAmount,
			SmartCode:      in.SmartCode,
			AuditFields:    audit,
		}
		if in.Quantity != nil {
			line.Quantity = *in.Quantity
		}
		if in.UnitPrice != nil {
			line.UnitPrice = *in.UnitPrice
		}
		if in.DebitAmount != nil {
			line.DebitAmount = *in.DebitAmount
		}
		if in.CreditAmount != nil {
			line.CreditAmount = *in.CreditAmount
		}
		if line.SmartCode == "" {
			line.SmartCode = req.SmartCode
		}
		// A line that only carries debit/credit legs gets its signed amount derived.
		if line.LineAmount.IsZero() && (!line.DebitAmount.IsZero() || !line.CreditAmount.IsZero()) {
			line.LineAmount = line.DebitAmount.Sub(line.CreditAmount)
		}
		lines[i] = line
	}
	return lines
}

func (s *transactionService) EmitTransaction(ctx context.Context, req dto.TransactionActionRequest, actorUserID string) (*domain.Transaction, []domain.DuplicateMatch, []string, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, req.OrganizationID, domain.RoleMember); err != nil {
		return nil, nil, nil, err
	}
	if req.TransactionType == "" {
		return nil, nil, nil, ErrTransactionTypeMissing
	}

	parsed, err := smartcode.Parse(req.SmartCode)
	if err != nil {
		return nil, nil, nil, err
	}
	warnings := smartcode.Align(parsed, req.TransactionType)

	behavior, err := s.smartCodeSvc.Behavior(ctx, parsed.Raw)
	if err != nil {
		return nil, nil, nil, err
	}

	status := domain.TxnPosted
	if req.Status != "" {
		status = domain.TransactionStatus(req.Status)
	}

	now := time.Now()
	transactionDate := now
	if req.TransactionDate != nil {
		transactionDate = *req.TransactionDate
	}
	postingDate := transactionDate
	if req.PostingDate != nil {
		postingDate = *req.PostingDate
	}

	if err := validateLineNumbers(req.Lines); err != nil {
		return nil, nil, nil, err
	}
	transactionID := uuid.NewString()
	lines := buildLines(req, transactionID, actorUserID, now)

	// The balance invariant binds at posting time; drafts may be lopsided.
	requireBalanced := behavior.LedgerTyped && status == domain.TxnPosted
	if requireBalanced {
		if len(lines) < 2 {
			return nil, nil, nil, ErrLedgerMinLines
		}
		if !ledger.IsBalanced(lines) {
			debits, credits := ledger.Totals(lines)
			return nil, nil, nil, fmt.Errorf("%w: debits %s, credits %s", ErrUnbalanced, debits.String(), credits.String())
		}
	}

	totalAmount := decimal.Zero
	if req.TotalAmount != nil {
		totalAmount = *req.TotalAmount
	}
	if totalAmount.IsZero() {
		totalAmount = ledger.TotalAmount(lines)
	}

	txn := domain.Transaction{
		TransactionID:   transactionID,
		OrganizationID:  req.OrganizationID,
		TransactionType: req.TransactionType,
		TransactionCode: req.TransactionCode,
		TransactionDate: transactionDate,
		PostingDate:     postingDate,
		SourceEntityID:  req.SourceEntityID,
		TargetEntityID:  req.TargetEntityID,
		TotalAmount:     totalAmount,
		Status:          status,
		SmartCode:       parsed.Raw,
		Metadata:        req.BusinessContext,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		},
	}

	var matches []domain.DuplicateMatch
	if req.CheckDuplicates {
		counterparty := req.SourceEntityID
		if counterparty == nil {
			counterparty = req.TargetEntityID
		}
		matches, err = s.scoreDuplicates(ctx, req.OrganizationID, counterparty, totalAmount, transactionDate, req.TransactionCode)
		if err != nil {
			// Duplicate detection is advisory; a probe failure never blocks the emit.
			s.LogError(ctx, err, "Duplicate probe failed", slog.String("organization_id", req.OrganizationID))
			matches = nil
		}
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn, lines, requireBalanced); err != nil {
		s.LogError(ctx, err, "Failed to save transaction",
			slog.String("organization_id", req.OrganizationID),
			slog.String("transaction_type", req.TransactionType))
		return nil, nil, nil, err
	}

	txn.Lines = lines
	s.LogInfo(ctx, "Transaction emitted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("organization_id", txn.OrganizationID),
		slog.String("status", string(txn.Status)),
		slog.String("total_amount", txn.TotalAmount.String()))
	return &txn, matches, warnings, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, organizationID, transactionID string, actorUserID string) (*domain.Transaction, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, organizationID, transactionID)
	if err != nil {
		return nil, err
	}
	lines, err := s.txnRepo.FindLinesByTransactionID(ctx, organizationID, transactionID)
	if err != nil {
		return nil, err
	}
	txn.Lines = lines
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, params dto.TransactionQueryParams, actorUserID string) ([]domain.Transaction, *string, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, params.OrganizationID, domain.RoleReadOnly); err != nil {
		return nil, nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > s.maxReadLimit {
		limit = s.maxReadLimit
	}
	filter := portsrepo.TransactionFilter{
		TransactionType: params.TransactionType,
		EntityID:        params.EntityID,
		DateFrom:        params.DateFrom,
		DateTo:          params.DateTo,
	}
	if params.Status != "" {
		filter.Status = []domain.TransactionStatus{domain.TransactionStatus(params.Status)}
	}

	txns, nextToken, err := s.txnRepo.ListTransactions(ctx, params.OrganizationID, filter, limit, params.NextToken)
	if err != nil {
		return nil, nil, err
	}

	if params.IncludeLines && len(txns) > 0 {
		txnIDs := make([]string, len(txns))
		for i := range txns {
			txnIDs[i] = txns[i].TransactionID
		}
		linesByTxn, err := s.txnRepo.FindLinesByTransactionIDs(ctx, params.OrganizationID, txnIDs)
		if err != nil {
			return nil, nil, err
		}
		for i := range txns {
			txns[i].Lines = linesByTxn[txns[i].TransactionID]
		}
	}
	return txns, nextToken, nil
}

// ReverseTransaction emits the sign-inverted mirror of a posted transaction and
// marks the original reversed. The original's lines are never touched.
func (s *transactionService) ReverseTransaction(ctx context.Context, organizationID, transactionID, reason, reversalSmartCode, actorUserID string) (*domain.Transaction, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}
	if transactionID == "" {
		return nil, ErrTransactionIDMissing
	}

	original, err := s.txnRepo.FindTransactionByID(ctx, organizationID, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.TxnReversed || original.ReversingTransactionID != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, transactionID)
	}
	if original.Status != domain.TxnPosted {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPosted, transactionID, original.Status)
	}

	originalLines, err := s.txnRepo.FindLinesByTransactionID(ctx, organizationID, transactionID)
	if err != nil {
		return nil, err
	}

	smartCode := original.SmartCode
	if reversalSmartCode != "" {
		parsed, err := smartcode.Parse(reversalSmartCode)
		if err != nil {
			return nil, err
		}
		smartCode = parsed.Raw
	}

	now := time.Now()
	reversingID := uuid.NewString()
	metadata := original.Metadata
	if reason != "" {
		// The reason is merged into the copied business context, not substituted
		// for it.
		merged := map[string]any{}
		if len(original.Metadata) > 0 {
			_ = json.Unmarshal(original.Metadata, &merged)
		}
		merged["reversal_reason"] = reason
		if annotated, err := json.Marshal(merged); err == nil {
			metadata = annotated
		}
	}

	// The document code is unique per organization, so the reversing entry gets
	// a derived code instead of a colliding copy of the original's.
	reversalCode := ""
	if original.TransactionCode != "" {
		reversalCode = original.TransactionCode + "-REV"
	}

	reversing := domain.Transaction{
		TransactionID:         reversingID,
		OrganizationID:        organizationID,
		TransactionType:       original.TransactionType,
		TransactionCode:       reversalCode,
		TransactionDate:       now,
		PostingDate:           now,
		SourceEntityID:        original.SourceEntityID,
		TargetEntityID:        original.TargetEntityID,
		TotalAmount:           original.TotalAmount,
		Status:                domain.TxnPosted,
		SmartCode:             smartCode,
		Metadata:              metadata,
		OriginalTransactionID: &original.TransactionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		},
	}

	lines := ledger.InvertLines(originalLines)
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].TransactionID = reversingID
		lines[i].AuditFields = reversing.AuditFields
	}

	if err := s.txnRepo.SaveReversal(ctx, original.TransactionID, reversing, lines); err != nil {
		s.LogError(ctx, err, "Failed to reverse transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	reversing.Lines = lines
	s.LogInfo(ctx, "Transaction reversed",
		slog.String("original_transaction_id", original.TransactionID),
		slog.String("reversing_transaction_id", reversingID))
	return &reversing, nil
}

func (s *transactionService) ScoreDuplicates(ctx context.Context, params dto.DuplicateCheckParams, actorUserID string) ([]domain.DuplicateMatch, error) {
	if err := s.AuthorizeOrg(ctx, actorUserID, params.OrganizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.scoreDuplicates(ctx, params.OrganizationID, params.CounterpartyEntityID, params.TotalAmount, params.TransactionDate, params.Reference)
}

// scoreDuplicates sweeps posted transactions matching amount and window, then
// scores each candidate: same external reference on the same amount is a
// near-certain duplicate, a matching amount close in date a probable one.
func (s *transactionService) scoreDuplicates(ctx context.Context, organizationID string, counterparty *string, totalAmount decimal.Decimal, date time.Time, reference string) ([]domain.DuplicateMatch, error) {
	candidates, err := s.txnRepo.FindCandidateDuplicates(ctx, organizationID, portsrepo.DuplicateProbe{
		CounterpartyEntityID: counterparty,
		TotalAmount:          totalAmount,
		Date:                 date,
		Reference:            reference,
		DateWindowDays:       s.dupPolicy.DateWindowDays,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]domain.DuplicateMatch, 0, len(candidates))
	for _, c := range candidates {
		match := domain.DuplicateMatch{
			TransactionID: c.TransactionID,
			TotalAmount:   c.TotalAmount,
			Date:          c.TransactionDate,
		}
		if reference != "" && c.TransactionCode == reference {
			match.Confidence = s.dupPolicy.ExactConfidence
			match.Reason = "exact_amount_and_reference"
		} else {
			match.Confidence = s.dupPolicy.NearConfidence
			match.Reason = "amount_and_near_date"
		}
		matches = append(matches, match)
	}
	return matches, nil
}
