package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

type academicRecordRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecordDetail, error)
	Upsert(ctx context.Context, record *models.AcademicRecord) error
}

type recordEnrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	CompleteForRecord(ctx context.Context, studentID, courseID string, semester int, academicYear string) error
}

// AcademicRecordService posts grades and lists a student's records.
type AcademicRecordService struct {
	records     academicRecordRepository
	enrollments recordEnrollmentRepository
	students    studentFinder
	audit       auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAcademicRecordService constructs AcademicRecordService.
func NewAcademicRecordService(records academicRecordRepository, enrollments recordEnrollmentRepository, students studentFinder, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *AcademicRecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicRecordService{
		records:     records,
		enrollments: enrollments,
		students:    students,
		audit:       audit,
		validator:   validate,
		logger:      logger,
	}
}

// ListByStudent returns the student's records with course details.
func (s *AcademicRecordService) ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecordDetail, error) {
	if _, err := loadStudent(ctx, s.students, studentID); err != nil {
		return nil, err
	}
	records, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.DataAccess(err, "failed to list academic records")
	}
	return records, nil
}

// PostGrade creates or replaces the record for a student's course attempt in a term.
// The student must hold a non-dropped enrollment for that attempt.
func (s *AcademicRecordService) PostGrade(ctx context.Context, actor *models.JWTClaims, req dto.PostGradeRequest, meta models.SessionMeta) (*models.AcademicRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	status, err := resolveRecordStatus(req.Grade, req.Status)
	if err != nil {
		return nil, err
	}

	if _, err := loadStudent(ctx, s.students, req.StudentID); err != nil {
		return nil, err
	}

	year := strings.TrimSpace(req.AcademicYear)
	enrollments, err := s.enrollments.ListByStudent(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.DataAccess(err, "failed to load enrollments")
	}
	if !hasEnrollment(enrollments, req.CourseID, req.Semester, year) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in this course for the term")
	}

	record := &models.AcademicRecord{
		StudentID:    req.StudentID,
		CourseID:     req.CourseID,
		Grade:        req.Grade,
		Status:       status,
		Semester:     req.Semester,
		AcademicYear: year,
	}
	actorID := ""
	if actor != nil {
		actorID = actor.UserID
		record.PostedBy = &actorID
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, appErrors.DataAccess(err, "failed to save academic record")
	}

	if status != models.RecordStatusInProgress {
		if err := s.enrollments.CompleteForRecord(ctx, record.StudentID, record.CourseID, record.Semester, record.AcademicYear); err != nil {
			s.logger.Warn("failed to complete enrollment", zap.String("record_id", record.ID), zap.Error(err))
		}
	}

	recordAudit(ctx, s.audit, s.logger, actorID, models.AuditActionGradePost, "academic_records", record.ID,
		map[string]interface{}{"grade": record.Grade, "status": record.Status}, meta)
	return record, nil
}

// resolveRecordStatus applies the default status for a posted grade and rejects
// combinations the transcript cannot interpret.
func resolveRecordStatus(grade *float64, requested models.RecordStatus) (models.RecordStatus, error) {
	if requested != "" && !requested.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "status must be one of IN_PROGRESS, PASSED, COMPLETED, FAILED")
	}
	if grade == nil {
		if requested == "" || requested == models.RecordStatusInProgress {
			return models.RecordStatusInProgress, nil
		}
		return "", appErrors.Clone(appErrors.ErrValidation, "a final status requires a grade")
	}
	if requested == "" {
		if *grade >= PassingGrade {
			return models.RecordStatusPassed, nil
		}
		return models.RecordStatusFailed, nil
	}
	if requested == models.RecordStatusInProgress {
		return "", appErrors.Clone(appErrors.ErrValidation, "a graded record cannot be in progress")
	}
	if requested.Passed() && *grade < PassingGrade {
		return "", appErrors.Clone(appErrors.ErrValidation, "grade is below the passing threshold")
	}
	return requested, nil
}

func hasEnrollment(enrollments []models.EnrollmentDetail, courseID string, semester int, year string) bool {
	for _, e := range enrollments {
		if e.CourseID == courseID && e.Semester == semester && e.AcademicYear == year && e.Status != models.EnrollmentStatusDropped {
			return true
		}
	}
	return false
}
