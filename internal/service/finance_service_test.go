package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

type recordingNotifier struct {
	receipts []dto.PaymentReceipt
	err      error
}

func (n *recordingNotifier) NotifyPaymentReceipt(ctx context.Context, studentID string, receipt dto.PaymentReceipt) error {
	n.receipts = append(n.receipts, receipt)
	return n.err
}

type financeFixture struct {
	svc      *FinanceService
	fees     *fakeFeeRepo
	payments *fakePaymentRepo
	cache    *memoryCache
	notifier *recordingNotifier
	audit    *fakeAuditRepo
	metrics  *MetricsService
}

func newFinanceFixture(fees ...models.Fee) *financeFixture {
	students := newFakeStudentRepo(
		models.Student{ID: "s1", UserID: strPtr("u-student-1"), FullName: "Ada Obi", Email: "ada@uni.edu", Active: true},
		models.Student{ID: "s2", UserID: strPtr("u-student-2"), FullName: "Bola Ade", Email: "bola@uni.edu", Active: true},
	)
	feeRepo := newFakeFeeRepo(fees...)
	payments := &fakePaymentRepo{fees: feeRepo}
	cacheRepo := newMemoryCache()
	metrics := NewMetricsService()
	notifier := &recordingNotifier{}
	audit := &fakeAuditRepo{}

	svc := NewFinanceService(students, feeRepo, payments, NewCacheService(cacheRepo, metrics, time.Minute, nil),
		notifier, audit, metrics, nil, nil, FinanceConfig{IdempotencyTTL: time.Hour})
	svc.now = func() time.Time { return ledgerNow }

	return &financeFixture{svc: svc, fees: feeRepo, payments: payments, cache: cacheRepo, notifier: notifier, audit: audit, metrics: metrics}
}

var financeActor = &models.JWTClaims{UserID: "u-finance", Role: models.RoleFinance}

func tuitionFee(id, studentID, amount string, due time.Time) models.Fee {
	return models.Fee{ID: id, StudentID: studentID, Amount: money(amount), DueDate: due, FeeType: models.FeeTypeTuition, AcademicYear: "2024/2025"}
}

func paymentRequest(feeID, amount, reference string) dto.SubmitPaymentRequest {
	return dto.SubmitPaymentRequest{FeeID: feeID, Amount: money(amount), PaymentMethod: models.PaymentMethodBankTransfer, Reference: reference}
}

func TestFinanceServiceLedger(t *testing.T) {
	fx := newFinanceFixture(
		tuitionFee("f1", "s1", "500", ledgerNow.AddDate(0, 0, -1)),
		tuitionFee("f2", "s1", "200", ledgerNow.AddDate(0, 1, 0)),
	)
	fx.payments.payments = []models.Payment{{ID: "p1", FeeID: "f1", Amount: money("150"), PaymentMethod: models.PaymentMethodCash, Reference: "R1"}}

	ledger, err := fx.svc.Ledger(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", ledger.StudentID)
	assert.Len(t, ledger.Fees, 2)
	assert.Len(t, ledger.Payments, 1)
	assert.Equal(t, "700", ledger.Stats.TotalFees.String())
	assert.Equal(t, "550", ledger.Stats.TotalRemaining.String())
	assert.Equal(t, "350", ledger.Stats.OverdueAmount.String())
	assert.Equal(t, 1, ledger.Stats.OverdueFees)
	assert.Equal(t, 1, ledger.Stats.PendingFees)
}

func TestFinanceServiceLedgerUnknownStudent(t *testing.T) {
	fx := newFinanceFixture()

	_, err := fx.svc.Ledger(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestFinanceServiceLedgerDataAccessErrors(t *testing.T) {
	cause := errors.New("connection reset")
	fx := newFinanceFixture(tuitionFee("f1", "s1", "500", ledgerNow))
	fx.payments.listErr = cause

	_, err := fx.svc.Ledger(context.Background(), "s1")
	assert.ErrorIs(t, err, appErrors.ErrDataAccess)
	assert.ErrorIs(t, err, cause)
}

func TestFinanceServiceExactPaymentMarksFeePaid(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "500", ledgerNow.AddDate(0, 0, -1)))
	fx.payments.payments = []models.Payment{{ID: "p0", FeeID: "f1", Amount: money("200")}}

	receipt, replayed, err := fx.svc.SubmitPayment(context.Background(), financeActor, "", paymentRequest("f1", "300", "BT-1"), models.SessionMeta{})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.True(t, receipt.Fee.IsPaid)
	assert.False(t, receipt.Fee.IsOverdue)
	assert.Equal(t, models.PaymentStatusPaid, receipt.Fee.PaymentStatus)
	assert.True(t, receipt.Fee.Remaining.IsZero())
	assert.Equal(t, "u-finance", *fx.payments.payments[1].RecordedBy)

	require.Len(t, fx.notifier.receipts, 1)
	assert.Equal(t, receipt.Payment.ID, fx.notifier.receipts[0].Payment.ID)
	require.Len(t, fx.audit.logs, 1)
	assert.Equal(t, models.AuditActionPaymentCreate, fx.audit.logs[0].Action)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.payments.WithLabelValues(PaymentOutcomeAccepted)))
}

func TestFinanceServiceRejectsOverpayment(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "500", ledgerNow.AddDate(0, 1, 0)))
	fx.payments.payments = []models.Payment{{ID: "p0", FeeID: "f1", Amount: money("450")}}

	_, _, err := fx.svc.SubmitPayment(context.Background(), financeActor, "", paymentRequest("f1", "50.01", "BT-2"), models.SessionMeta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, fx.payments.inserts)
	assert.Empty(t, fx.notifier.receipts)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.payments.WithLabelValues(PaymentOutcomeRejected)))
}

func TestFinanceServiceRejectsPaymentOnPaidFee(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))
	fx.payments.payments = []models.Payment{{ID: "p0", FeeID: "f1", Amount: money("100")}}

	_, _, err := fx.svc.SubmitPayment(context.Background(), financeActor, "", paymentRequest("f1", "1", "BT-3"), models.SessionMeta{})
	require.Error(t, err)
	assert.Equal(t, "fee is already paid", appErrors.FromError(err).Message)
}

func TestFinanceServiceValidation(t *testing.T) {
	future := ledgerNow.Add(48 * time.Hour)
	cases := map[string]dto.SubmitPaymentRequest{
		"zero amount":     paymentRequest("f1", "0", "R"),
		"negative amount": paymentRequest("f1", "-10", "R"),
		"three decimals":  paymentRequest("f1", "10.001", "R"),
		"sub-cent amount": paymentRequest("f1", "0.005", "R"),
		"missing fee":     paymentRequest("", "10", "R"),
		"missing ref":     paymentRequest("f1", "10", ""),
		"unknown method":  {FeeID: "f1", Amount: money("10"), PaymentMethod: "BARTER", Reference: "R"},
		"future date":     {FeeID: "f1", Amount: money("10"), PaymentMethod: models.PaymentMethodCash, Reference: "R", PaymentDate: &future},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))
			_, _, err := fx.svc.SubmitPayment(context.Background(), financeActor, "", req, models.SessionMeta{})
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
			assert.Zero(t, fx.payments.inserts)
		})
	}
}

func TestFinanceServiceUnknownFee(t *testing.T) {
	fx := newFinanceFixture()

	_, _, err := fx.svc.SubmitPayment(context.Background(), financeActor, "", paymentRequest("nope", "10", "R"), models.SessionMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestFinanceServiceStudentOwnership(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow), tuitionFee("f2", "s2", "100", ledgerNow))
	student := &models.JWTClaims{UserID: "u-student-1", Role: models.RoleStudent}

	_, _, err := fx.svc.SubmitPayment(context.Background(), student, "", paymentRequest("f2", "10", "R1"), models.SessionMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	receipt, _, err := fx.svc.SubmitPayment(context.Background(), student, "", paymentRequest("f1", "10", "R2"), models.SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, "90", receipt.Fee.Remaining.String())

	unlinked := &models.JWTClaims{UserID: "u-nobody", Role: models.RoleStudent}
	_, _, err = fx.svc.SubmitPayment(context.Background(), unlinked, "", paymentRequest("f1", "10", "R3"), models.SessionMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestFinanceServiceIdempotentReplay(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))
	ctx := context.Background()

	first, replayed, err := fx.svc.SubmitPayment(ctx, financeActor, "key-1", paymentRequest("f1", "40", "R1"), models.SessionMeta{})
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := fx.svc.SubmitPayment(ctx, financeActor, "key-1", paymentRequest("f1", "40", "R1"), models.SessionMeta{})
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	assert.Equal(t, 1, fx.payments.inserts)
	assert.Len(t, fx.notifier.receipts, 1)
	assert.Contains(t, fx.cache.deleted, "idem:payment:u-finance:key-1:lock")

	other := &models.JWTClaims{UserID: "u-finance-2", Role: models.RoleFinance}
	_, replayed, err = fx.svc.SubmitPayment(ctx, other, "key-1", paymentRequest("f1", "40", "R2"), models.SessionMeta{})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 2, fx.payments.inserts)
}

func TestFinanceServiceAcceptsTrailingZeroAmount(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))

	receipt, _, err := fx.svc.SubmitPayment(context.Background(), financeActor, "", paymentRequest("f1", "100.000", "R1"), models.SessionMeta{})
	require.NoError(t, err)
	assert.True(t, receipt.Fee.IsPaid)
	assert.Equal(t, 1, fx.payments.inserts)
}

// interleavedCache runs hook once, right after the first lookup of key has missed.
type interleavedCache struct {
	*memoryCache
	key  string
	hook func()
}

func (c *interleavedCache) Get(ctx context.Context, key string, dest interface{}) error {
	err := c.memoryCache.Get(ctx, key, dest)
	if key == c.key && c.hook != nil {
		hook := c.hook
		c.hook = nil
		hook()
	}
	return err
}

func TestFinanceServiceReplaysRequestFinishedBeforeClaim(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))
	ctx := context.Background()
	req := paymentRequest("f1", "40", "R1")

	cache := &interleavedCache{memoryCache: fx.cache, key: "idem:payment:u-finance:key-1"}
	fx.svc.cache = NewCacheService(cache, fx.metrics, time.Minute, nil)

	var first *dto.PaymentReceipt
	cache.hook = func() {
		var err error
		first, _, err = fx.svc.SubmitPayment(ctx, financeActor, "key-1", req, models.SessionMeta{})
		require.NoError(t, err)
	}

	second, replayed, err := fx.svc.SubmitPayment(ctx, financeActor, "key-1", req, models.SessionMeta{})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, replayed)
	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	assert.Equal(t, 1, fx.payments.inserts)
	assert.Len(t, fx.notifier.receipts, 1)
}

func TestFinanceServiceIdempotencyKeyInFlight(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))
	_, err := fx.cache.SetNX(context.Background(), "idem:payment:u-finance:key-1:lock", time.Minute)
	require.NoError(t, err)

	_, _, err = fx.svc.SubmitPayment(context.Background(), financeActor, "key-1", paymentRequest("f1", "40", "R1"), models.SessionMeta{})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Zero(t, fx.payments.inserts)
}

func TestFinanceServiceCacheOutageStillAcceptsPayment(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))
	fx.cache.getErr = errors.New("connection refused")

	_, replayed, err := fx.svc.SubmitPayment(context.Background(), financeActor, "key-1", paymentRequest("f1", "40", "R1"), models.SessionMeta{})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 1, fx.payments.inserts)
}

func TestFinanceServiceNotifierFailureDoesNotFailPayment(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))
	fx.notifier.err = errors.New("smtp down")

	receipt, _, err := fx.svc.SubmitPayment(context.Background(), financeActor, "", paymentRequest("f1", "100", "R1"), models.SessionMeta{})
	require.NoError(t, err)
	assert.True(t, receipt.Fee.IsPaid)
}

func TestFinanceServiceConcurrentPaymentsNeverOverpay(t *testing.T) {
	fx := newFinanceFixture(tuitionFee("f1", "s1", "100", ledgerNow))

	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		go func(i int) {
			_, _, err := fx.svc.SubmitPayment(context.Background(), financeActor, "", paymentRequest("f1", "60", "C"+string(rune('0'+i))), models.SessionMeta{})
			errs <- err
		}(i)
	}
	accepted := 0
	for i := 0; i < 5; i++ {
		if err := <-errs; err == nil {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, fx.payments.inserts)
}

func TestFinanceServiceRequiresActor(t *testing.T) {
	fx := newFinanceFixture()

	_, _, err := fx.svc.SubmitPayment(context.Background(), nil, "", paymentRequest("f1", "10", "R"), models.SessionMeta{})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
