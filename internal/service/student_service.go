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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	ExistsByStudentNumber(ctx context.Context, number string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.DataAccess(err, "failed to list students")
	}
	return students, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get fetches a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	return loadStudent(ctx, s.repo, id)
}

// ResolveByUser returns the student profile linked to a login account.
func (s *StudentService) ResolveByUser(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no student profile linked to this account")
		}
		return nil, appErrors.DataAccess(err, "failed to resolve student")
	}
	return student, nil
}

// Create registers a student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	number := strings.ToUpper(strings.TrimSpace(req.StudentNumber))
	if err := s.ensureNumberFree(ctx, number, ""); err != nil {
		return nil, err
	}

	student := &models.Student{
		UserID:        req.UserID,
		StudentNumber: number,
		FullName:      strings.TrimSpace(req.FullName),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Program:       strings.TrimSpace(req.Program),
		Active:        true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student number or account already registered")
		}
		return nil, appErrors.DataAccess(err, "failed to create student")
	}
	return student, nil
}

// Update modifies a student profile.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := loadStudent(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	number := strings.ToUpper(strings.TrimSpace(req.StudentNumber))
	if err := s.ensureNumberFree(ctx, number, id); err != nil {
		return nil, err
	}

	student.UserID = req.UserID
	student.StudentNumber = number
	student.FullName = strings.TrimSpace(req.FullName)
	student.Email = strings.ToLower(strings.TrimSpace(req.Email))
	student.Program = strings.TrimSpace(req.Program)
	if req.Active != nil {
		student.Active = *req.Active
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student number or account already registered")
		}
		return nil, appErrors.DataAccess(err, "failed to update student")
	}
	return student, nil
}

func (s *StudentService) ensureNumberFree(ctx context.Context, number, excludeID string) error {
	exists, err := s.repo.ExistsByStudentNumber(ctx, number, excludeID)
	if err != nil {
		return appErrors.DataAccess(err, "failed to check student number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "student number already registered")
	}
	return nil
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// loadStudent maps a missing row to NotFound and any other failure to DataAccess.
func loadStudent(ctx context.Context, repo studentFinder, id string) (*models.Student, error) {
	student, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.DataAccess(err, "failed to load student")
	}
	return student, nil
}
