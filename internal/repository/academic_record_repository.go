package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-academic-api/internal/models"
)

// AcademicRecordRepository persists per-course grades.
type AcademicRecordRepository struct {
	db *sqlx.DB
}

// NewAcademicRecordRepository constructs the repository.
func NewAcademicRecordRepository(db *sqlx.DB) *AcademicRecordRepository {
	return &AcademicRecordRepository{db: db}
}

// ListByStudent returns a student's records joined with course credits, in insertion order.
func (r *AcademicRecordRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecordDetail, error) {
	const query = `SELECT ar.id, ar.student_id, ar.course_id, ar.grade, ar.status, ar.semester, ar.academic_year, ar.posted_by, ar.created_at, ar.updated_at,
        c.code AS course_code, c.title AS course_title, c.credits
        FROM academic_records ar
        JOIN courses c ON c.id = ar.course_id
        WHERE ar.student_id = $1
        ORDER BY ar.created_at, ar.id`
	var records []models.AcademicRecordDetail
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list academic records: %w", err)
	}
	return records, nil
}

// Upsert inserts a record or replaces grade and status for the same student, course and term.
func (r *AcademicRecordRepository) Upsert(ctx context.Context, record *models.AcademicRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.UpdatedAt = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	const query = `INSERT INTO academic_records (id, student_id, course_id, grade, status, semester, academic_year, posted_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (student_id, course_id, semester, academic_year)
        DO UPDATE SET grade = EXCLUDED.grade, status = EXCLUDED.status, posted_by = EXCLUDED.posted_by, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		record.ID, record.StudentID, record.CourseID, record.Grade, record.Status,
		record.Semester, record.AcademicYear, record.PostedBy, record.CreatedAt, record.UpdatedAt)
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return fmt.Errorf("upsert academic record: %w", err)
	}
	return nil
}
