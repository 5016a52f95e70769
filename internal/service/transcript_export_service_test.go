package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
	"github.com/noah-isme/uni-academic-api/pkg/storage"
)

type stubTranscripts struct {
	resp *dto.TranscriptResponse
	err  error
}

func (s stubTranscripts) Transcript(ctx context.Context, studentID string) (*dto.TranscriptResponse, error) {
	return s.resp, s.err
}

const downloadBase = "http://localhost:8080/api/v1/export"

func newExportFixture(t *testing.T) (*TranscriptExportService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	transcript := &dto.TranscriptResponse{
		Student: dto.TranscriptStudent{ID: "s1", StudentNumber: "CS/001", FullName: "Ada Obi", Program: "Computer Science"},
		Summary: dto.TranscriptSummary{GPA: 3.14, TotalCredits: 7, TotalCreditsEarned: 7},
		Records: []dto.TranscriptRecord{
			{CourseCode: "CS101", CourseTitle: "Programming", Credits: 3, Grade: gradePtr(80), GradePoints: gradePtr(4), LetterGrade: "A", Status: models.RecordStatusPassed, Semester: 1, AcademicYear: "2024/2025"},
			{CourseCode: "MA101", CourseTitle: "Calculus", Credits: 4, LetterGrade: "", Status: models.RecordStatusInProgress, Semester: 2, AcademicYear: "2024/2025"},
		},
		GeneratedAt: ledgerNow,
	}
	svc := NewTranscriptExportService(stubTranscripts{resp: transcript}, store, storage.NewSignedURLSigner("secret", time.Hour),
		downloadBase, NewMetricsService(), nil, nil)
	svc.now = func() time.Time { return ledgerNow }
	return svc, dir
}

func tokenFromURL(t *testing.T, url string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(url, downloadBase+"/"))
	return strings.TrimPrefix(url, downloadBase+"/")
}

func TestTranscriptExportServiceCSVRoundTrip(t *testing.T) {
	svc, _ := newExportFixture(t)
	ctx := context.Background()

	resp, err := svc.Export(ctx, "s1", dto.TranscriptExportRequest{Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "csv", resp.Format)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	file, err := svc.Open(ctx, tokenFromURL(t, resp.URL))
	require.NoError(t, err)
	defer file.Body.Close()

	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Name, "CS-001-20250310T120000-"))
	assert.True(t, strings.HasSuffix(file.Name, ".csv"))

	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	content := string(body)
	assert.Contains(t, content, "GPA,3.14")
	assert.Contains(t, content, "2024/2025,1,CS101,Programming,3,80.00,A,4.00,PASSED")
	assert.Contains(t, content, "2024/2025,2,MA101,Calculus,4,-,,-,IN_PROGRESS")
}

func TestTranscriptExportServicePDF(t *testing.T) {
	svc, _ := newExportFixture(t)

	resp, err := svc.Export(context.Background(), "s1", dto.TranscriptExportRequest{Format: "pdf"})
	require.NoError(t, err)

	file, err := svc.Open(context.Background(), tokenFromURL(t, resp.URL))
	require.NoError(t, err)
	defer file.Body.Close()

	assert.Equal(t, "application/pdf", file.ContentType)
	head := make([]byte, 4)
	_, err = io.ReadFull(file.Body, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestTranscriptExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, err := svc.Export(context.Background(), "s1", dto.TranscriptExportRequest{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTranscriptExportServicePropagatesTranscriptError(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewTranscriptExportService(stubTranscripts{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")},
		store, storage.NewSignedURLSigner("secret", time.Hour), downloadBase, nil, nil, nil)

	_, err = svc.Export(context.Background(), "missing", dto.TranscriptExportRequest{Format: "csv"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTranscriptExportServiceOpenRejectsBadToken(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, err := svc.Open(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestTranscriptExportServiceOpenMissingFile(t *testing.T) {
	svc, dir := newExportFixture(t)
	ctx := context.Background()

	resp, err := svc.Export(ctx, "s1", dto.TranscriptExportRequest{Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "transcripts")))

	_, err = svc.Open(ctx, tokenFromURL(t, resp.URL))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
