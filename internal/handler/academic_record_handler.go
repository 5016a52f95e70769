package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
	"github.com/noah-isme/uni-academic-api/pkg/response"
)

type academicRecordService interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecordDetail, error)
	PostGrade(ctx context.Context, actor *models.JWTClaims, req dto.PostGradeRequest, meta models.SessionMeta) (*models.AcademicRecord, error)
}

// AcademicRecordHandler lets lecturers post grades.
type AcademicRecordHandler struct {
	records academicRecordService
}

// NewAcademicRecordHandler constructs AcademicRecordHandler.
func NewAcademicRecordHandler(records academicRecordService) *AcademicRecordHandler {
	return &AcademicRecordHandler{records: records}
}

// List godoc
// @Summary List a student's academic records
// @Tags Academic Records
// @Produce json
// @Security BearerAuth
// @Param studentId query string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /academic-records [get]
func (h *AcademicRecordHandler) List(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId required"))
		return
	}
	records, err := h.records.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Post godoc
// @Summary Post a grade
// @Description Creates or replaces the record for a student's course attempt in a term.
// @Tags Academic Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PostGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /academic-records [post]
func (h *AcademicRecordHandler) Post(c *gin.Context) {
	var req dto.PostGradeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	record, err := h.records.PostGrade(c.Request.Context(), claimsFromContext(c), req, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}
