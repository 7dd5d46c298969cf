package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IntentRepository implements usecase.IntentRepository.
type IntentRepository struct {
	pool querier
}

// NewIntentRepository creates a new IntentRepository.
func NewIntentRepository(pool *pgxpool.Pool) *IntentRepository {
	return &IntentRepository{pool: pool}
}

func newIntentRepositoryWithQuerier(q querier) *IntentRepository {
	return &IntentRepository{pool: q}
}

const intentColumns = `
	instruction_id, transaction_reference, payer, payee,
	amount, currency, value_date,
	ordering_institution, beneficiary_institution,
	status, settled_amount, dispute_reason, created_at, updated_at
`

// Create inserts a new intent. The instruction id is the primary key, so a
// second insert for the same id fails with ErrDuplicateInstruction no matter
// how far the first intent has progressed since.
func (r *IntentRepository) Create(ctx context.Context, tx usecase.Transaction, intent *domain.SettlementIntent) error {
	query := `
		INSERT INTO settlement_intents (` + intentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		intent.InstructionID,
		intent.TransactionReference,
		intent.Payer,
		intent.Payee,
		decimalToNumeric(intent.Amount),
		intent.Currency,
		timeToPgTimestamptz(intent.ValueDate),
		intent.OrderingInstitution,
		intent.BeneficiaryInstitution,
		string(intent.Status),
		optionalDecimalToNumeric(intent.SettledAmount),
		intent.DisputeReason,
		timeToPgTimestamptz(intent.CreatedAt),
		timeToPgTimestamptz(intent.UpdatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateInstruction
		}
		return err
	}

	return nil
}

// GetByInstructionID retrieves an intent by instruction id.
func (r *IntentRepository) GetByInstructionID(ctx context.Context, instructionID string) (*domain.SettlementIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM settlement_intents WHERE instruction_id = $1`

	return scanIntent(r.pool.QueryRow(ctx, query, instructionID))
}

// GetByInstructionIDForUpdate retrieves an intent under a row lock, so the
// caller's status guard and update are serialized against other writers on
// the same instruction id.
func (r *IntentRepository) GetByInstructionIDForUpdate(ctx context.Context, tx usecase.Transaction, instructionID string) (*domain.SettlementIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM settlement_intents WHERE instruction_id = $1 FOR UPDATE`

	return scanIntent(txQuerier(tx).QueryRow(ctx, query, instructionID))
}

// UpdateStatus updates the lifecycle fields of an intent.
func (r *IntentRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, instructionID string, status domain.IntentStatus, settledAmount *decimal.Decimal, disputeReason string, updatedAt time.Time) error {
	query := `
		UPDATE settlement_intents
		SET status = $2, settled_amount = $3, dispute_reason = $4, updated_at = $5
		WHERE instruction_id = $1
	`

	tag, err := txQuerier(tx).Exec(ctx, query,
		instructionID,
		string(status),
		optionalDecimalToNumeric(settledAmount),
		disputeReason,
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrIntentNotFound
	}

	return nil
}

// List retrieves intents in creation order.
func (r *IntentRepository) List(ctx context.Context, limit, offset int) ([]*domain.SettlementIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM settlement_intents
		ORDER BY created_at, instruction_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []*domain.SettlementIntent
	for rows.Next() {
		intent, err := scanIntent(rows)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}

	return intents, rows.Err()
}

// CountByStatus returns intent counts per lifecycle status.
func (r *IntentRepository) CountByStatus(ctx context.Context) (map[domain.IntentStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM settlement_intents GROUP BY status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.IntentStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.IntentStatus(status)] = count
	}

	return counts, rows.Err()
}

func scanIntent(row pgx.Row) (*domain.SettlementIntent, error) {
	var (
		intent        domain.SettlementIntent
		status        string
		amount        pgtype.Numeric
		settledAmount pgtype.Numeric
		valueDate     pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&intent.InstructionID,
		&intent.TransactionReference,
		&intent.Payer,
		&intent.Payee,
		&amount,
		&intent.Currency,
		&valueDate,
		&intent.OrderingInstitution,
		&intent.BeneficiaryInstitution,
		&status,
		&settledAmount,
		&intent.DisputeReason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIntentNotFound
		}
		return nil, err
	}

	intent.Status = domain.IntentStatus(status)
	intent.Amount = numericToDecimal(amount)
	if settledAmount.Valid {
		d := numericToDecimal(settledAmount)
		intent.SettledAmount = &d
	}
	intent.ValueDate = valueDate.Time
	intent.CreatedAt = createdAt.Time
	intent.UpdatedAt = updatedAt.Time

	return &intent, nil
}

func txQuerier(tx usecase.Transaction) querier {
	return tx.(*Tx).PgxTx()
}
