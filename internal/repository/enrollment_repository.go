package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-academic-api/internal/models"
)

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.course_id, e.semester, e.academic_year, e.status, e.enrolled_at,
        c.code AS course_code, c.title AS course_title, c.credits
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository handles persistence of course enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var where whereBuilder
	if filter.StudentID != "" {
		where.add("e.student_id = $%d", filter.StudentID)
	}
	if filter.CourseID != "" {
		where.add("e.course_id = $%d", filter.CourseID)
	}
	if filter.AcademicYear != "" {
		where.add("e.academic_year = $%d", filter.AcademicYear)
	}
	if filter.Status != "" {
		where.add("e.status = $%d", filter.Status)
	}

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"enrolled_at":   "e.enrolled_at",
		"academic_year": "e.academic_year",
		"course_code":   "c.code",
	}, "enrolled_at")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT %d OFFSET %d", enrollmentDetailSelect, where.clause(), order, limit, offset)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enrollments e"+where.clause(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListByStudent returns every enrollment of a student with course credits.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var enrollments []models.EnrollmentDetail
	query := enrollmentDetailSelect + " WHERE e.student_id = $1 ORDER BY e.enrolled_at"
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, semester, academic_year, status, enrolled_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExistsActive checks for an active enrollment in the same course and term.
func (r *EnrollmentRepository) ExistsActive(ctx context.Context, studentID, courseID string, semester int, academicYear string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND semester = $3 AND academic_year = $4 AND status = $5 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID, semester, academicYear, models.EnrollmentStatusActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, semester, academic_year, status, enrolled_at)
        VALUES (:id, :student_id, :course_id, :semester, :academic_year, :status, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus changes the status of an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE enrollments SET status = $2 WHERE id = $1`, id, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// CompleteForRecord marks the active enrollment matching a graded record as completed.
func (r *EnrollmentRepository) CompleteForRecord(ctx context.Context, studentID, courseID string, semester int, academicYear string) error {
	const query = `UPDATE enrollments SET status = $5 WHERE student_id = $1 AND course_id = $2 AND semester = $3 AND academic_year = $4 AND status = $6`
	if _, err := r.db.ExecContext(ctx, query, studentID, courseID, semester, academicYear, models.EnrollmentStatusCompleted, models.EnrollmentStatusActive); err != nil {
		return fmt.Errorf("complete enrollment: %w", err)
	}
	return nil
}
