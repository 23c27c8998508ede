package receipts

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-retail-store/internal/store"
)

var ErrNotFound = errors.New("receipt not found")

// Journal is an append-only record of completed orders. Catalog state itself
// is never stored.
type Journal struct{ DB *pgxpool.Pool }

// Record stores r and its lines in one transaction. Recording the same
// external id twice keeps the first receipt.
func (j *Journal) Record(ctx context.Context, r *store.Receipt, externalID string) error {
	tx, err := j.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ext, failKind, failMsg *string
	if externalID != "" {
		ext = &externalID
	}
	if r.Failure != nil {
		failKind, failMsg = &r.Failure.Kind, &r.Failure.Message
	}
	ct, err := tx.Exec(ctx, `
		INSERT INTO receipts(id, external_id, policy, total, created_at, failure_kind, failure_message)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		ON CONFLICT (external_id) DO NOTHING`,
		r.ID, ext, string(r.Policy), r.Total.String(), r.CreatedAt, failKind, failMsg)
	if err != nil {
		return errors.Wrap(err, "insert receipt")
	}
	if ct.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, l := range r.Lines {
		batch.Queue(`
			INSERT INTO receipt_lines(receipt_id, line_no, product_id, product_name, qty, price)
			VALUES ($1, $2, $3, $4, $5, $6::numeric)`,
			r.ID, i+1, l.ProductID, l.Name, l.Quantity, l.Price.String())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "insert receipt lines")
	}
	return tx.Commit(ctx)
}

func (j *Journal) Get(ctx context.Context, id string) (*store.Receipt, error) {
	var (
		r                 store.Receipt
		total             string
		failKind, failMsg *string
	)
	err := j.DB.QueryRow(ctx, `
		SELECT id::text, policy, total::text, created_at, failure_kind, failure_message
		FROM receipts WHERE id::text=$1`, id).
		Scan(&r.ID, &r.Policy, &total, &r.CreatedAt, &failKind, &failMsg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.Total, err = decimal.NewFromString(total); err != nil {
		return nil, errors.Wrap(err, "parse total")
	}
	if failMsg != nil {
		r.Failure = &store.Failure{Message: *failMsg}
		if failKind != nil {
			r.Failure.Kind = *failKind
		}
	}

	rows, err := j.DB.Query(ctx, `
		SELECT product_id, product_name, qty, price::text
		FROM receipt_lines WHERE receipt_id::text=$1 ORDER BY line_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	r.Lines = []store.ReceiptLine{}
	for rows.Next() {
		var (
			l     store.ReceiptLine
			price string
		)
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &price); err != nil {
			return nil, err
		}
		if l.Price, err = decimal.NewFromString(price); err != nil {
			return nil, errors.Wrap(err, "parse price")
		}
		r.Lines = append(r.Lines, l)
	}
	return &r, rows.Err()
}

// ByExternalID returns the receipt id recorded for an external id.
func (j *Journal) ByExternalID(ctx context.Context, externalID string) (string, error) {
	var id string
	err := j.DB.QueryRow(ctx, `SELECT id::text FROM receipts WHERE external_id=$1`, externalID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}
