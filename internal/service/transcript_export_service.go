package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
	"github.com/noah-isme/uni-academic-api/pkg/export"
)

type transcriptProvider interface {
	Transcript(ctx context.Context, studentID string) (*dto.TranscriptResponse, error)
}

type exportStorage interface {
	Save(name string, data []byte) error
	Open(name string) (io.ReadCloser, error)
}

type exportSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

type tableRenderer interface {
	Render(t export.Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is an opened export ready to stream.
type ExportFile struct {
	Name        string
	ContentType string
	Body        io.ReadCloser
}

// TranscriptExportService renders transcripts to files and hands out signed download links.
type TranscriptExportService struct {
	transcripts  transcriptProvider
	storage      exportStorage
	signer       exportSigner
	renderers    map[string]tableRenderer
	downloadBase string
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewTranscriptExportService constructs the service. downloadBase is the URL prefix the token is appended to.
func NewTranscriptExportService(transcripts transcriptProvider, storage exportStorage, signer exportSigner, downloadBase string, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TranscriptExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := export.NewCSVExporter()
	pdf := export.NewPDFExporter("Official academic transcript")
	return &TranscriptExportService{
		transcripts: transcripts,
		storage:     storage,
		signer:      signer,
		renderers: map[string]tableRenderer{
			csv.Extension(): csv,
			pdf.Extension(): pdf,
		},
		downloadBase: strings.TrimRight(downloadBase, "/"),
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Export renders the student's current transcript in the requested format and returns a signed link.
func (s *TranscriptExportService) Export(ctx context.Context, studentID string, req dto.TranscriptExportRequest) (*dto.TranscriptExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	renderer := s.renderers[req.Format]

	transcript, err := s.transcripts.Transcript(ctx, studentID)
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(transcriptTable(transcript))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}

	id := uuid.NewString()
	name := path.Join("transcripts", fmt.Sprintf("%s-%s-%s.%s",
		safeFileComponent(transcript.Student.StudentNumber), s.now().Format("20060102T150405"), id[:8], renderer.Extension()))
	if err := s.storage.Save(name, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store transcript export")
	}

	token, expiresAt, err := s.signer.Generate(id, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.metrics.RecordExport(req.Format)
	s.logger.Info("transcript exported",
		zap.String("student_id", studentID),
		zap.String("format", req.Format),
		zap.String("file", name),
		zap.Int("bytes", len(data)),
	)
	return &dto.TranscriptExportResponse{
		Format:    req.Format,
		URL:       s.downloadBase + "/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// Open verifies a download token and opens the referenced file.
func (s *TranscriptExportService) Open(ctx context.Context, token string) (*ExportFile, error) {
	_, name, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "download link is invalid or expired")
	}

	body, err := s.storage.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}

	contentType := "application/octet-stream"
	if renderer, ok := s.renderers[strings.TrimPrefix(path.Ext(name), ".")]; ok {
		contentType = renderer.ContentType()
	}
	return &ExportFile{Name: path.Base(name), ContentType: contentType, Body: body}, nil
}

func transcriptTable(t *dto.TranscriptResponse) export.Table {
	table := export.Table{
		Title: "Academic Transcript",
		Fields: []export.Field{
			{Label: "Student", Value: t.Student.FullName},
			{Label: "Student number", Value: t.Student.StudentNumber},
			{Label: "Program", Value: t.Student.Program},
			{Label: "GPA", Value: strconv.FormatFloat(t.Summary.GPA, 'f', 2, 64)},
			{Label: "Credits attempted", Value: strconv.Itoa(t.Summary.TotalCredits)},
			{Label: "Credits earned", Value: strconv.Itoa(t.Summary.TotalCreditsEarned)},
			{Label: "Generated", Value: t.GeneratedAt.Format(time.RFC3339)},
		},
		Columns: []string{"Year", "Sem", "Code", "Course", "Credits", "Grade", "Letter", "Points", "Status"},
		Widths:  []float64{2, 1, 1.6, 4.6, 1.2, 1.2, 1.2, 1.2, 2},
	}
	for _, r := range t.Records {
		table.Rows = append(table.Rows, []string{
			r.AcademicYear,
			strconv.Itoa(r.Semester),
			r.CourseCode,
			r.CourseTitle,
			strconv.Itoa(r.Credits),
			formatOptional(r.Grade),
			r.LetterGrade,
			formatOptional(r.GradePoints),
			string(r.Status),
		})
	}
	return table
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func safeFileComponent(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, raw)
	if cleaned == "" {
		return "student"
	}
	return cleaned
}
