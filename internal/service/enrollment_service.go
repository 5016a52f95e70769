package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	"github.com/noah-isme/uni-academic-api/internal/repository"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ExistsActive(ctx context.Context, studentID, courseID string, semester int, academicYear string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
}

// EnrollmentService orchestrates course registration.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentFinder
	courses   courseFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentFinder, courses courseFinder, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, validator: validate, logger: logger}
}

// List returns enrollments matching the filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.DataAccess(err, "failed to list enrollments")
	}
	return items, newPagination(filter.Page, filter.PageSize, total), nil
}

// Enroll registers a student to a course for a term. A student holds at most one
// active enrollment per course, semester and academic year.
func (s *EnrollmentService) Enroll(ctx context.Context, req dto.EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	student, err := loadStudent(ctx, s.students, req.StudentID)
	if err != nil {
		return nil, err
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is inactive")
	}
	if _, err := loadCourse(ctx, s.courses, req.CourseID); err != nil {
		return nil, err
	}

	year := strings.TrimSpace(req.AcademicYear)
	exists, err := s.repo.ExistsActive(ctx, req.StudentID, req.CourseID, req.Semester, year)
	if err != nil {
		return nil, appErrors.DataAccess(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this course for the term")
	}

	enrollment := &models.Enrollment{
		StudentID:    req.StudentID,
		CourseID:     req.CourseID,
		Semester:     req.Semester,
		AcademicYear: year,
		Status:       models.EnrollmentStatusActive,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this course for the term")
		}
		return nil, appErrors.DataAccess(err, "failed to create enrollment")
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", enrollment.StudentID),
		zap.String("course_id", enrollment.CourseID),
		zap.String("academic_year", enrollment.AcademicYear),
		zap.Int("semester", enrollment.Semester),
	)
	return enrollment, nil
}

// Drop withdraws an active enrollment.
func (s *EnrollmentService) Drop(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.DataAccess(err, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only active enrollments can be dropped")
	}

	if err := s.repo.UpdateStatus(ctx, id, models.EnrollmentStatusDropped); err != nil {
		return nil, appErrors.DataAccess(err, "failed to drop enrollment")
	}
	enrollment.Status = models.EnrollmentStatusDropped
	return enrollment, nil
}
