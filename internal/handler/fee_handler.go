package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	"github.com/noah-isme/uni-academic-api/pkg/response"
)

type feeService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateFeeRequest, meta models.SessionMeta) (*dto.FeeView, error)
}

// FeeHandler bills fees to students.
type FeeHandler struct {
	fees feeService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees feeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// Create godoc
// @Summary Bill a fee
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateFeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	var req dto.CreateFeeRequest
	if !bindJSON(c, &req, "invalid fee payload") {
		return
	}
	fee, err := h.fees.Create(c.Request.Context(), claimsFromContext(c), req, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}
