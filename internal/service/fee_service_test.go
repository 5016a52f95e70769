package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

func TestFeeServiceCreate(t *testing.T) {
	fees := newFakeFeeRepo()
	audit := &fakeAuditRepo{}
	svc := NewFeeService(fees, newFakeStudentRepo(models.Student{ID: "s1"}), audit, nil, nil)
	svc.now = func() time.Time { return ledgerNow }

	view, err := svc.Create(context.Background(), &models.JWTClaims{UserID: "fin-1", Role: models.RoleFinance}, dto.CreateFeeRequest{
		StudentID:    "s1",
		Amount:       money("1250.50"),
		DueDate:      ledgerNow.AddDate(0, 1, 0),
		FeeType:      models.FeeTypeTuition,
		AcademicYear: "2024/2025",
	}, models.SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, "1250.5", view.Remaining.String())
	assert.Equal(t, models.PaymentStatusPending, view.PaymentStatus)
	assert.False(t, view.IsPaid)
	assert.Len(t, fees.created, 1)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionFeeCreate, audit.logs[0].Action)
}

func TestFeeServiceCreateRejects(t *testing.T) {
	base := dto.CreateFeeRequest{
		StudentID:    "s1",
		Amount:       money("100"),
		DueDate:      ledgerNow,
		FeeType:      models.FeeTypeLibrary,
		AcademicYear: "2024/2025",
	}
	cases := map[string]struct {
		mutate func(*dto.CreateFeeRequest)
		code   string
	}{
		"zero amount":      {func(r *dto.CreateFeeRequest) { r.Amount = money("0") }, appErrors.ErrValidation.Code},
		"negative amount":  {func(r *dto.CreateFeeRequest) { r.Amount = money("-5") }, appErrors.ErrValidation.Code},
		"sub-cent amount":  {func(r *dto.CreateFeeRequest) { r.Amount = money("1.005") }, appErrors.ErrValidation.Code},
		"unknown fee type": {func(r *dto.CreateFeeRequest) { r.FeeType = "PARKING" }, appErrors.ErrValidation.Code},
		"unknown student":  {func(r *dto.CreateFeeRequest) { r.StudentID = "s9" }, appErrors.ErrNotFound.Code},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			fees := newFakeFeeRepo()
			svc := NewFeeService(fees, newFakeStudentRepo(models.Student{ID: "s1"}), nil, nil, nil)
			req := base
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), nil, req, models.SessionMeta{})
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
			assert.Empty(t, fees.created)
		})
	}
}
