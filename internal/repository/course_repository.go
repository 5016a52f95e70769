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

// CourseRepository provides access to the course catalogue.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var where whereBuilder
	if filter.Search != "" {
		where.add("(LOWER(code) LIKE $%[1]d OR LOWER(title) LIKE $%[1]d)", "%"+strings.ToLower(filter.Search)+"%")
	}
	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"code":       "code",
		"title":      "title",
		"created_at": "created_at",
	}, "code")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT id, code, title, credits, created_at, updated_at FROM courses%s ORDER BY %s LIMIT %d OFFSET %d", where.clause(), order, limit, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses"+where.clause(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID returns a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, "SELECT id, code, title, credits, created_at, updated_at FROM courses WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByCode reports whether a course code is taken.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM courses WHERE code = $1 LIMIT 1", code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, code, title, credits, created_at, updated_at) VALUES (:id, :code, :title, :credits, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}
