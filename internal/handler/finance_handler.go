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

const (
	headerIdempotencyKey    = "Idempotency-Key"
	headerIdempotentReplay  = "Idempotent-Replayed"
	maxIdempotencyKeyLength = 128
)

type financeService interface {
	Ledger(ctx context.Context, studentID string) (*dto.FinanceResponse, error)
	SubmitPayment(ctx context.Context, actor *models.JWTClaims, idempotencyKey string, req dto.SubmitPaymentRequest, meta models.SessionMeta) (*dto.PaymentReceipt, bool, error)
}

// FinanceHandler exposes fee ledgers and payment submission.
type FinanceHandler struct {
	finance  financeService
	students studentResolver
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance financeService, students studentResolver) *FinanceHandler {
	return &FinanceHandler{finance: finance, students: students}
}

// Ledger godoc
// @Summary Student fee ledger
// @Description Lists fees with derived balances, payments and aggregate statistics.
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope{data=dto.FinanceResponse}
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/finance [get]
func (h *FinanceHandler) Ledger(c *gin.Context) {
	h.respond(c, c.Param("id"))
}

// Mine godoc
// @Summary Own fee ledger
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=dto.FinanceResponse}
// @Router /me/finance [get]
func (h *FinanceHandler) Mine(c *gin.Context) {
	student, ok := currentStudent(c, h.students)
	if !ok {
		return
	}
	h.respond(c, student.ID)
}

func (h *FinanceHandler) respond(c *gin.Context, studentID string) {
	ledger, err := h.finance.Ledger(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// SubmitPayment godoc
// @Summary Record a payment
// @Description Records a payment against a fee. The fee's total paid never exceeds its amount.
// @Description Repeating a request with the same Idempotency-Key returns the first receipt.
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client supplied key for safe retries"
// @Param payload body dto.SubmitPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope{data=dto.PaymentReceipt}
// @Success 200 {object} response.Envelope{data=dto.PaymentReceipt} "Replayed receipt"
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /finance/payments [post]
func (h *FinanceHandler) SubmitPayment(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	key := c.GetHeader(headerIdempotencyKey)
	if len(key) > maxIdempotencyKeyLength {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Idempotency-Key must be at most 128 characters"))
		return
	}

	var req dto.SubmitPaymentRequest
	if !bindJSON(c, &req, "invalid payment payload") {
		return
	}

	receipt, replayed, err := h.finance.SubmitPayment(c.Request.Context(), claims, key, req, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if replayed {
		c.Header(headerIdempotentReplay, "true")
		response.JSON(c, http.StatusOK, receipt, nil)
		return
	}
	response.Created(c, receipt)
}
