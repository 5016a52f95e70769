package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	"github.com/noah-isme/uni-academic-api/internal/service"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
	"github.com/noah-isme/uni-academic-api/pkg/response"
)

type transcriptService interface {
	Transcript(ctx context.Context, studentID string) (*dto.TranscriptResponse, error)
}

type transcriptExporter interface {
	Export(ctx context.Context, studentID string, req dto.TranscriptExportRequest) (*dto.TranscriptExportResponse, error)
	Open(ctx context.Context, token string) (*service.ExportFile, error)
}

type studentResolver interface {
	ResolveByUser(ctx context.Context, userID string) (*models.Student, error)
}

// TranscriptHandler serves computed transcripts and their exports.
type TranscriptHandler struct {
	transcripts transcriptService
	exports     transcriptExporter
	students    studentResolver
}

// NewTranscriptHandler constructs TranscriptHandler.
func NewTranscriptHandler(transcripts transcriptService, exports transcriptExporter, students studentResolver) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts, exports: exports, students: students}
}

// Get godoc
// @Summary Student transcript
// @Description Computes GPA, credits and per-course lines from the student's academic records.
// @Tags Transcripts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope{data=dto.TranscriptResponse}
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *TranscriptHandler) Get(c *gin.Context) {
	h.respond(c, c.Param("id"))
}

// Mine godoc
// @Summary Own transcript
// @Tags Transcripts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=dto.TranscriptResponse}
// @Router /me/transcript [get]
func (h *TranscriptHandler) Mine(c *gin.Context) {
	student, ok := currentStudent(c, h.students)
	if !ok {
		return
	}
	h.respond(c, student.ID)
}

func (h *TranscriptHandler) respond(c *gin.Context, studentID string) {
	transcript, err := h.transcripts.Transcript(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transcript, nil)
}

// Export godoc
// @Summary Export transcript
// @Description Renders the transcript as CSV or PDF and returns a signed download link.
// @Tags Transcripts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.TranscriptExportRequest true "Export format"
// @Success 201 {object} response.Envelope{data=dto.TranscriptExportResponse}
// @Failure 400 {object} response.Envelope
// @Router /students/{id}/transcript/export [post]
func (h *TranscriptHandler) Export(c *gin.Context) {
	var req dto.TranscriptExportRequest
	if !bindJSON(c, &req, "invalid export payload") {
		return
	}
	res, err := h.exports.Export(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Download godoc
// @Summary Download an export
// @Tags Transcripts
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /export/{token} [get]
func (h *TranscriptHandler) Download(c *gin.Context) {
	file, err := h.exports.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Body.Close()

	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, -1, file.ContentType, file.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, file.Name),
	})
}

// currentStudent resolves the caller's own student profile and writes the error response on failure.
func currentStudent(c *gin.Context, students studentResolver) (*models.Student, bool) {
	claims := requireClaims(c)
	if claims == nil {
		return nil, false
	}
	student, err := students.ResolveByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			err = appErrors.Clone(appErrors.ErrNotFound, "no student profile linked to this account")
		}
		response.Error(c, err)
		return nil, false
	}
	return student, true
}
