package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-academic-api/internal/models"
)

const studentColumns = "id, user_id, student_number, full_name, email, program, active, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var where whereBuilder
	if filter.Program != "" {
		where.add("program = $%d", filter.Program)
	}
	if filter.Active != nil {
		where.add("active = $%d", *filter.Active)
	}
	if filter.Search != "" {
		where.add("(LOWER(full_name) LIKE $%[1]d OR LOWER(student_number) LIKE $%[1]d)", "%"+strings.ToLower(filter.Search)+"%")
	}

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"full_name":      "full_name",
		"student_number": "student_number",
		"created_at":     "created_at",
	}, "created_at")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM students%s ORDER BY %s LIMIT %d OFFSET %d", studentColumns, where.clause(), order, limit, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"+where.clause(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID. sql.ErrNoRows is returned untouched.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID fetches the student profile linked to a login account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE user_id = $1", userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByStudentNumber checks for a student number optionally excluding an ID.
func (r *StudentRepository) ExistsByStudentNumber(ctx context.Context, number string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE student_number = $1"
	args := []interface{}{number}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student number: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, user_id, student_number, full_name, email, program, active, created_at, updated_at)
        VALUES (:id, :user_id, :student_number, :full_name, :email, :program, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET user_id = :user_id, student_number = :student_number, full_name = :full_name, email = :email, program = :program, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}
