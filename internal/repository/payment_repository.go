package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/uni-academic-api/internal/models"
	"github.com/noah-isme/uni-academic-api/pkg/database"
)

// ErrPaymentExceedsBalance is returned when a payment would push a fee past its amount.
var ErrPaymentExceedsBalance = errors.New("payment exceeds remaining balance")

// PaymentRepository persists payments against fees.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListByStudent returns payments for every fee of a student, newest first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	const query = `SELECT p.id, p.fee_id, p.amount, p.payment_method, p.reference, p.payment_date, p.notes, p.recorded_by, p.created_at
        FROM payments p
        JOIN fees f ON f.id = p.fee_id
        WHERE f.student_id = $1
        ORDER BY p.payment_date DESC, p.created_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// CreateWithinBalance locks the fee row, re-sums its payments and inserts the payment only
// when it fits the remaining balance. It returns the fee's total paid including the new payment.
// A missing fee surfaces as sql.ErrNoRows and an overpayment as ErrPaymentExceedsBalance.
func (r *PaymentRepository) CreateWithinBalance(ctx context.Context, payment *models.Payment) (decimal.Decimal, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = payment.CreatedAt
	}

	var totalPaid decimal.Decimal
	err := database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var amount decimal.Decimal
		if err := tx.GetContext(ctx, &amount, `SELECT amount FROM fees WHERE id = $1 FOR UPDATE`, payment.FeeID); err != nil {
			return err
		}

		var paid decimal.Decimal
		if err := tx.GetContext(ctx, &paid, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE fee_id = $1`, payment.FeeID); err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}

		if payment.Amount.GreaterThan(amount.Sub(paid)) {
			return ErrPaymentExceedsBalance
		}

		const insert = `INSERT INTO payments (id, fee_id, amount, payment_method, reference, payment_date, notes, recorded_by, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		if _, err := tx.ExecContext(ctx, insert,
			payment.ID, payment.FeeID, payment.Amount, payment.PaymentMethod, payment.Reference,
			payment.PaymentDate, payment.Notes, payment.RecordedBy, payment.CreatedAt); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		totalPaid = paid.Add(payment.Amount)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return totalPaid, nil
}
