package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

type transcriptRecordReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecordDetail, error)
}

type transcriptEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// TranscriptService aggregates a student's academic records into a transcript.
type TranscriptService struct {
	students    studentFinder
	records     transcriptRecordReader
	enrollments transcriptEnrollmentReader
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(students studentFinder, records transcriptRecordReader, enrollments transcriptEnrollmentReader, metrics *MetricsService, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		students:    students,
		records:     records,
		enrollments: enrollments,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Transcript computes the student's transcript. Nothing is cached; every call reads fresh data.
func (s *TranscriptService) Transcript(ctx context.Context, studentID string) (*dto.TranscriptResponse, error) {
	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.DataAccess(err, "failed to load academic records")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.DataAccess(err, "failed to load enrollments")
	}

	summary, lines := BuildTranscript(records, enrollments)
	s.metrics.RecordTranscript()
	s.logger.Debug("transcript computed",
		zap.String("student_id", studentID),
		zap.Int("records", len(lines)),
		zap.Float64("gpa", summary.GPA),
	)

	return &dto.TranscriptResponse{
		Student: dto.TranscriptStudent{
			ID:            student.ID,
			StudentNumber: student.StudentNumber,
			FullName:      student.FullName,
			Email:         student.Email,
			Program:       student.Program,
		},
		Summary:     summary,
		Records:     lines,
		GeneratedAt: s.now(),
	}, nil
}
