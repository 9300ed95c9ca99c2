package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"itn-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// DefaultApplicationTable is the registration table payments settle.
const DefaultApplicationTable = "mentorship_applications_2026"

const applicationColumns = `id::text, COALESCE(paid, FALSE), payfast_method, payment_reference, payfast_token, payment_date, notes`

// ApplicationRepo implements ports.ApplicationRepository. Every method is a
// single UPDATE; the WHERE clause carries any guard so concurrent writers
// need no lock.
type ApplicationRepo struct {
	pool  Pool
	table string
}

// NewApplicationRepo creates a new ApplicationRepo over table.
func NewApplicationRepo(pool Pool, table string) *ApplicationRepo {
	if table == "" {
		table = DefaultApplicationTable
	}
	return &ApplicationRepo{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}
}

// ApplyPayment writes notification metadata. Only a COMPLETE update names
// the paid column, and then only to set it.
func (r *ApplicationRepo) ApplyPayment(ctx context.Context, id string, u domain.PaymentUpdate) (*domain.ApplicationRecord, error) {
	set := `payfast_method = $2, payment_reference = $3, payfast_token = $4, payment_date = $5, notes = $6`
	if u.Complete {
		set = `paid = TRUE, ` + set
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id::text = $1 RETURNING %s`, r.table, set, applicationColumns)

	rec, err := scanApplication(r.pool.QueryRow(ctx, query,
		id, u.PaymentMethod, u.PaymentReference, u.PaymentToken, u.PaymentDate, u.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("apply payment to application %s: %w", id, err)
	}
	return rec, nil
}

// MarkPaid is the manual override.
func (r *ApplicationRepo) MarkPaid(ctx context.Context, id string) (*domain.ApplicationRecord, error) {
	query := fmt.Sprintf(`UPDATE %s SET paid = TRUE WHERE id::text = $1 RETURNING %s`, r.table, applicationColumns)

	rec, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mark application %s paid: %w", id, err)
	}
	return rec, nil
}

// ApplyReturn annotates an unpaid row. Cancel also clears gateway metadata.
func (r *ApplicationRepo) ApplyReturn(ctx context.Context, id string, outcome domain.ReturnOutcome, at time.Time) (bool, error) {
	var (
		query string
		args  []any
	)
	note := outcome.ReturnNote(at)

	switch outcome {
	case domain.ReturnCancel:
		query = fmt.Sprintf(`UPDATE %s
			SET paid = FALSE, payfast_token = NULL, payfast_method = NULL, payment_reference = NULL,
			    payment_date = $2, notes = $3
			WHERE id::text = $1 AND paid IS NOT TRUE`, r.table)
		args = []any{id, at.UTC(), note}
	case domain.ReturnSuccess:
		query = fmt.Sprintf(`UPDATE %s SET notes = $2 WHERE id::text = $1 AND paid IS NOT TRUE`, r.table)
		args = []any{id, note}
	default:
		return false, fmt.Errorf("unsupported return outcome %q", outcome)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("apply %s return to application %s: %w", outcome, id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanApplication(row pgx.Row) (*domain.ApplicationRecord, error) {
	rec := &domain.ApplicationRecord{}
	err := row.Scan(
		&rec.ID, &rec.Paid, &rec.PaymentMethod, &rec.PaymentReference,
		&rec.PaymentToken, &rec.PaymentDate, &rec.Notes,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
