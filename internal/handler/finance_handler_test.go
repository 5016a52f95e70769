package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

type financeServiceMock struct {
	ledgerFor string
	ledger    *dto.FinanceResponse
	receipt   *dto.PaymentReceipt
	replayed  bool
	err       error
	gotKey    string
	gotActor  *models.JWTClaims
}

func (m *financeServiceMock) Ledger(ctx context.Context, studentID string) (*dto.FinanceResponse, error) {
	m.ledgerFor = studentID
	return m.ledger, m.err
}

func (m *financeServiceMock) SubmitPayment(ctx context.Context, actor *models.JWTClaims, key string, req dto.SubmitPaymentRequest, meta models.SessionMeta) (*dto.PaymentReceipt, bool, error) {
	m.gotKey = key
	m.gotActor = actor
	return m.receipt, m.replayed, m.err
}

func paymentBody(t *testing.T) []byte {
	body, err := json.Marshal(dto.SubmitPaymentRequest{
		FeeID:         "f1",
		Amount:        decimal.RequireFromString("150.00"),
		PaymentMethod: models.PaymentMethodCash,
		Reference:     "RCPT-1",
	})
	require.NoError(t, err)
	return body
}

func TestFinanceHandlerSubmitPaymentCreated(t *testing.T) {
	svc := &financeServiceMock{receipt: &dto.PaymentReceipt{Payment: dto.PaymentView{ID: "p1"}}}
	h := NewFinanceHandler(svc, stubResolver{})

	c, w := newGinContext(http.MethodPost, "/finance/payments", paymentBody(t))
	c.Request.Header.Set("Idempotency-Key", "abc-123")
	withClaims(c, "u-fin", models.RoleFinance)

	h.SubmitPayment(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, "abc-123", svc.gotKey)
	assert.Equal(t, "u-fin", svc.gotActor.UserID)

	var receipt dto.PaymentReceipt
	decodeEnvelope(t, w, &receipt)
	assert.Equal(t, "p1", receipt.Payment.ID)
}

func TestFinanceHandlerSubmitPaymentReplayed(t *testing.T) {
	svc := &financeServiceMock{receipt: &dto.PaymentReceipt{Payment: dto.PaymentView{ID: "p1"}}, replayed: true}
	h := NewFinanceHandler(svc, stubResolver{})

	c, w := newGinContext(http.MethodPost, "/finance/payments", paymentBody(t))
	c.Request.Header.Set("Idempotency-Key", "abc-123")
	withClaims(c, "u-fin", models.RoleFinance)

	h.SubmitPayment(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
}

func TestFinanceHandlerSubmitPaymentErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"overpayment": {appErrors.Clone(appErrors.ErrValidation, "amount exceeds remaining balance"), http.StatusBadRequest},
		"foreign fee": {appErrors.Clone(appErrors.ErrForbidden, "students can only pay their own fees"), http.StatusForbidden},
		"in flight":   {appErrors.Clone(appErrors.ErrConflict, "in progress"), http.StatusConflict},
		"missing fee": {appErrors.Clone(appErrors.ErrNotFound, "fee not found"), http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewFinanceHandler(&financeServiceMock{err: tc.err}, stubResolver{})
			c, w := newGinContext(http.MethodPost, "/finance/payments", paymentBody(t))
			withClaims(c, "u-fin", models.RoleFinance)

			h.SubmitPayment(c)

			require.Equal(t, tc.status, w.Code)
			env := decodeEnvelope(t, w, nil)
			require.NotNil(t, env.Error)
			assert.Equal(t, appErrors.FromError(tc.err).Code, env.Error.Code)
		})
	}
}

func TestFinanceHandlerSubmitPaymentRejectsMalformedBody(t *testing.T) {
	svc := &financeServiceMock{}
	h := NewFinanceHandler(svc, stubResolver{})
	c, w := newGinContext(http.MethodPost, "/finance/payments", []byte(`{"amount": "ten"}`))
	withClaims(c, "u-fin", models.RoleFinance)

	h.SubmitPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.gotActor)
}

func TestFinanceHandlerSubmitPaymentRequiresAuth(t *testing.T) {
	h := NewFinanceHandler(&financeServiceMock{}, stubResolver{})
	c, w := newGinContext(http.MethodPost, "/finance/payments", paymentBody(t))

	h.SubmitPayment(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFinanceHandlerMine(t *testing.T) {
	svc := &financeServiceMock{ledger: &dto.FinanceResponse{StudentID: "s-ada"}}
	h := NewFinanceHandler(svc, stubResolver{"u-ada": {ID: "s-ada"}})

	c, w := newGinContext(http.MethodGet, "/me/finance", nil)
	withClaims(c, "u-ada", models.RoleStudent)
	h.Mine(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s-ada", svc.ledgerFor)

	c, w = newGinContext(http.MethodGet, "/me/finance", nil)
	withClaims(c, "u-ghost", models.RoleStudent)
	h.Mine(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
