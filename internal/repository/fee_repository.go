package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-academic-api/internal/models"
)

const feeColumns = "id, student_id, amount, due_date, fee_type, academic_year, semester, description, created_at, updated_at"

// FeeRepository persists fees billed to students.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// FindByID returns a fee by ID. sql.ErrNoRows is returned untouched.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, "SELECT "+feeColumns+" FROM fees WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// ListByStudent returns a student's fees ordered by due date.
func (r *FeeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error) {
	var fees []models.Fee
	query := "SELECT " + feeColumns + " FROM fees WHERE student_id = $1 ORDER BY due_date, created_at"
	if err := r.db.SelectContext(ctx, &fees, query, studentID); err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	return fees, nil
}

// Create inserts a fee.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	fee.CreatedAt = now
	fee.UpdatedAt = now
	const query = `INSERT INTO fees (id, student_id, amount, due_date, fee_type, academic_year, semester, description, created_at, updated_at)
        VALUES (:id, :student_id, :amount, :due_date, :fee_type, :academic_year, :semester, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// ListOverdue returns fees of active students that are past due with an outstanding balance.
func (r *FeeRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]models.OverdueFee, error) {
	const query = `SELECT f.id, f.student_id, f.amount, f.due_date, f.fee_type, f.academic_year, f.semester, f.description, f.created_at, f.updated_at,
        COALESCE(p.total_paid, 0) AS total_paid, s.full_name AS student_name, s.email AS student_email, s.user_id
        FROM fees f
        JOIN students s ON s.id = f.student_id
        LEFT JOIN (SELECT fee_id, SUM(amount) AS total_paid FROM payments GROUP BY fee_id) p ON p.fee_id = f.id
        WHERE f.due_date < $1 AND f.amount > COALESCE(p.total_paid, 0) AND s.active = TRUE
        ORDER BY f.due_date, f.id`
	var fees []models.OverdueFee
	if err := r.db.SelectContext(ctx, &fees, query, asOf); err != nil {
		return nil, fmt.Errorf("list overdue fees: %w", err)
	}
	return fees, nil
}
