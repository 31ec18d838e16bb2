package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	"github.com/herafoundry/hera_data_engine/internal/models"
	"github.com/herafoundry/hera_data_engine/internal/utils/ledger"
	"github.com/herafoundry/hera_data_engine/internal/utils/mapping"
	"github.com/herafoundry/hera_data_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction headers and lines.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

const transactionSelectColumns = `
	transaction_id, organization_id, transaction_type, transaction_code, transaction_date, posting_date,
	source_entity_id, target_entity_id, total_amount, status, smart_code, metadata,
	original_transaction_id, reversing_transaction_id,
	created_at, created_by, last_updated_at, last_updated_by
`

const transactionInsertQuery = `
	INSERT INTO universal_transactions (` + transactionSelectColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
`

const lineInsertQuery = `
	INSERT INTO universal_transaction_lines (
		line_id, organization_id, transaction_id, line_number, line_entity_id,
		quantity, unit_price, debit_amount, credit_amount, line_amount, smart_code,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`

func execInsertTransaction(ctx context.Context, tx pgx.Tx, m models.Transaction) error {
	_, err := tx.Exec(ctx, transactionInsertQuery,
		m.TransactionID,
		m.OrganizationID,
		m.TransactionType,
		m.TransactionCode,
		m.TransactionDate,
		m.PostingDate,
		m.SourceEntityID,
		m.TargetEntityID,
		m.TotalAmount,
		m.Status,
		m.SmartCode,
		m.Metadata,
		m.OriginalTransactionID,
		m.ReversingTransactionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return err
}

func queueLineInserts(batch *pgx.Batch, lines []domain.TransactionLine) {
	for _, line := range lines {
		m := mapping.ToModelTransactionLine(line)
		batch.Queue(lineInsertQuery,
			m.LineID,
			m.OrganizationID,
			m.TransactionID,
			m.LineNumber,
			m.LineEntityID,
			m.Quantity,
			m.UnitPrice,
			m.DebitAmount,
			m.CreditAmount,
			m.LineAmount,
			m.SmartCode,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
}

// SaveTransaction persists the header and its ordered lines within a single
// database transaction. The balance invariant is re-checked inside the unit so
// no unbalanced ledger-typed transaction can reach the table, whatever the
// caller did.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, lines []domain.TransactionLine, requireBalanced bool) error {
	if requireBalanced && !ledger.IsBalanced(lines) {
		return apperrors.NewAppError(400, "transaction debits and credits do not balance", apperrors.ErrValidation)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransaction(txn)
	if err := execInsertTransaction(ctx, tx, m); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewAppError(409, "transaction ID "+m.TransactionID+" already exists", apperrors.ErrDuplicate)
			}
			if pgErr.Code == "23503" { // foreign_key_violation: referenced entity missing
				return apperrors.NewNotFoundError("transaction references a missing entity")
			}
		}
		return storageError("failed to insert transaction "+m.TransactionID, err)
	}

	batch := &pgx.Batch{}
	queueLineInserts(batch, lines)
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return apperrors.NewNotFoundError("transaction line references a missing entity")
			}
			return storageError("failed to insert lines for transaction "+m.TransactionID, err)
		}
	}

	return r.Commit(ctx, tx)
}

func scanTransactionRow(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.OrganizationID,
		&m.TransactionType,
		&m.TransactionCode,
		&m.TransactionDate,
		&m.PostingDate,
		&m.SourceEntityID,
		&m.TargetEntityID,
		&m.TotalAmount,
		&m.Status,
		&m.SmartCode,
		&m.Metadata,
		&m.OriginalTransactionID,
		&m.ReversingTransactionID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, organizationID, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionSelectColumns + `
		FROM universal_transactions
		WHERE organization_id = $1 AND transaction_id = $2;
	`
	m, err := scanTransactionRow(r.Pool.QueryRow(ctx, query, organizationID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError("failed to find transaction "+transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

func scanLineRows(rows pgx.Rows) ([]models.TransactionLine, error) {
	defer rows.Close()
	result := []models.TransactionLine{}
	for rows.Next() {
		var m models.TransactionLine
		err := rows.Scan(
			&m.LineID,
			&m.OrganizationID,
			&m.TransactionID,
			&m.LineNumber,
			&m.LineEntityID,
			&m.Quantity,
			&m.UnitPrice,
			&m.DebitAmount,
			&m.CreditAmount,
			&m.LineAmount,
			&m.SmartCode,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, storageError("failed to scan transaction line row", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating transaction line rows", err)
	}
	return result, nil
}

const lineSelectColumns = `
	line_id, organization_id, transaction_id, line_number, line_entity_id,
	quantity, unit_price, debit_amount, credit_amount, line_amount, smart_code,
	created_at, created_by, last_updated_at, last_updated_by
`

func (r *PgxTransactionRepository) FindLinesByTransactionID(ctx context.Context, organizationID, transactionID string) ([]domain.TransactionLine, error) {
	query := `
		SELECT ` + lineSelectColumns + `
		FROM universal_transaction_lines
		WHERE organization_id = $1 AND transaction_id = $2
		ORDER BY line_number;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, transactionID)
	if err != nil {
		return nil, storageError("failed to query lines for transaction "+transactionID, err)
	}
	modelLines, err := scanLineRows(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainTransactionLineSlice(modelLines), nil
}

func (r *PgxTransactionRepository) FindLinesByTransactionIDs(ctx context.Context, organizationID string, transactionIDs []string) (map[string][]domain.TransactionLine, error) {
	result := make(map[string][]domain.TransactionLine, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return result, nil
	}
	query := `
		SELECT ` + lineSelectColumns + `
		FROM universal_transaction_lines
		WHERE organization_id = $1 AND transaction_id = ANY($2)
		ORDER BY transaction_id, line_number;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, transactionIDs)
	if err != nil {
		return nil, storageError("failed to query transaction lines", err)
	}
	modelLines, err := scanLineRows(rows)
	if err != nil {
		return nil, err
	}
	for _, m := range modelLines {
		result[m.TransactionID] = append(result[m.TransactionID], mapping.ToDomainTransactionLine(m))
	}
	return result, nil
}

// ListTransactions retrieves a page of transactions using token-based cursor
// pagination ordered by transaction_date DESC, created_at DESC.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, organizationID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to learn whether a next page exists.
	fetchLimit := limit + 1

	query := `
		SELECT ` + transactionSelectColumns + `
		FROM universal_transactions
		WHERE organization_id = $1
	`
	args := []any{organizationID}

	if filter.TransactionType != "" {
		args = append(args, filter.TransactionType)
		query += ` AND transaction_type = $` + strconv.Itoa(len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		n := strconv.Itoa(len(args))
		query += ` AND (source_entity_id = $` + n + ` OR target_entity_id = $` + n + ` OR transaction_id IN (
			SELECT transaction_id FROM universal_transaction_lines
			WHERE organization_id = $1 AND line_entity_id = $` + n + `))`
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += ` AND transaction_date >= $` + strconv.Itoa(len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += ` AND transaction_date <= $` + strconv.Itoa(len(args))
	}
	if len(filter.Status) > 0 {
		args = append(args, filter.Status)
		query += ` AND status = ANY($` + strconv.Itoa(len(args)) + `)`
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		// Tuple comparison keeps the cursor stable across equal dates.
		query += ` AND (transaction_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	query += ` ORDER BY transaction_date DESC, created_at DESC`
	args = append(args, fetchLimit)
	query += ` LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, storageError("failed to query transactions for organization "+organizationID, err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		m, err := scanTransactionRow(rows)
		if err != nil {
			return nil, nil, storageError("failed to scan transaction row", err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageError("error iterating transaction rows", err)
	}

	var nextTokenVal *string
	if len(modelTxns) > limit {
		last := modelTxns[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		nextTokenVal = &token
		modelTxns = modelTxns[:limit]
	}

	txns := make([]domain.Transaction, len(modelTxns))
	for i, m := range modelTxns {
		txns[i] = mapping.ToDomainTransaction(m)
	}
	return txns, nextTokenVal, nil
}

// SaveReversal locks the original header, re-validates it is posted and not yet
// reversed, inserts the compensating transaction with its lines, and flips the
// original to reversed, all within one database transaction. The lock makes
// concurrent reversals of the same original serialize; the loser fails the
// status re-check.
func (r *PgxTransactionRepository) SaveReversal(ctx context.Context, originalID string, reversing domain.Transaction, lines []domain.TransactionLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `
		SELECT status, reversing_transaction_id
		FROM universal_transactions
		WHERE organization_id = $1 AND transaction_id = $2
		FOR UPDATE;
	`
	var status models.TransactionStatus
	var reversingID *string
	err = tx.QueryRow(ctx, lockQuery, reversing.OrganizationID, originalID).Scan(&status, &reversingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return storageError("failed to lock transaction "+originalID, err)
	}
	if status != models.TxnPosted || reversingID != nil {
		return apperrors.NewAppError(409, "transaction "+originalID+" is not posted or already reversed", apperrors.ErrConflict)
	}

	m := mapping.ToModelTransaction(reversing)
	if err := execInsertTransaction(ctx, tx, m); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewAppError(409, "reversing transaction ID "+m.TransactionID+" already exists", apperrors.ErrDuplicate)
		}
		return storageError("failed to insert reversing transaction "+m.TransactionID, err)
	}

	batch := &pgx.Batch{}
	queueLineInserts(batch, lines)
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return storageError("failed to insert lines for reversing transaction "+m.TransactionID, err)
		}
	}

	flipQuery := `
		UPDATE universal_transactions
		SET status = $1, reversing_transaction_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE organization_id = $5 AND transaction_id = $6;
	`
	_, err = tx.Exec(ctx, flipQuery,
		models.TxnReversed,
		m.TransactionID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.OrganizationID,
		originalID,
	)
	if err != nil {
		return storageError("failed to mark transaction "+originalID+" as reversed", err)
	}

	return r.Commit(ctx, tx)
}

// FindCandidateDuplicates returns posted transactions whose total matches the
// probe exactly and whose date falls within the probe's window. A document
// reference on the probe also sweeps matching codes outside the window, since
// a reference match signals a duplicate regardless of date. Confidence scoring
// happens in the service; this is only the candidate sweep.
func (r *PgxTransactionRepository) FindCandidateDuplicates(ctx context.Context, organizationID string, probe portsrepo.DuplicateProbe) ([]domain.Transaction, error) {
	query, args := duplicateCandidateQuery(organizationID, probe)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to query duplicate candidates", err)
	}
	defer rows.Close()

	candidates := []domain.Transaction{}
	for rows.Next() {
		m, err := scanTransactionRow(rows)
		if err != nil {
			return nil, storageError("failed to scan duplicate candidate row", err)
		}
		candidates = append(candidates, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating duplicate candidate rows", err)
	}
	return candidates, nil
}

// duplicateCandidateQuery builds the candidate sweep. The date window always
// applies, but a probe reference widens the sweep to code matches on any date.
func duplicateCandidateQuery(organizationID string, probe portsrepo.DuplicateProbe) (string, []any) {
	windowDays := probe.DateWindowDays
	if windowDays <= 0 {
		windowDays = 3
	}
	window := time.Duration(windowDays) * 24 * time.Hour
	from := probe.Date.Add(-window)
	to := probe.Date.Add(window)

	query := `
		SELECT ` + transactionSelectColumns + `
		FROM universal_transactions
		WHERE organization_id = $1
		  AND status = $2
		  AND total_amount = $3
	`
	args := []any{organizationID, models.TxnPosted, probe.TotalAmount, from, to}
	query += `  AND (transaction_date BETWEEN $4 AND $5`
	if probe.Reference != "" {
		args = append(args, probe.Reference)
		query += ` OR transaction_code = $` + strconv.Itoa(len(args))
	}
	query += `)`

	if probe.CounterpartyEntityID != nil {
		args = append(args, *probe.CounterpartyEntityID)
		n := strconv.Itoa(len(args))
		query += ` AND (source_entity_id = $` + n + ` OR target_entity_id = $` + n + `)`
	}
	query += ` ORDER BY transaction_date DESC, created_at DESC;`
	return query, args
}
