package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	"github.com/noah-isme/uni-academic-api/internal/repository"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

// Payment outcomes reported to metrics.
const (
	PaymentOutcomeAccepted = "accepted"
	PaymentOutcomeRejected = "rejected"
	PaymentOutcomeReplayed = "replayed"
)

const (
	idempotencyLockTTL     = 30 * time.Second
	maxPaymentDateLeadTime = 24 * time.Hour
)

type financeStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type feeReader interface {
	FindByID(ctx context.Context, id string) (*models.Fee, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error)
}

type paymentStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error)
	CreateWithinBalance(ctx context.Context, payment *models.Payment) (decimal.Decimal, error)
}

type paymentNotifier interface {
	NotifyPaymentReceipt(ctx context.Context, studentID string, receipt dto.PaymentReceipt) error
}

// FinanceConfig tunes the payment write path.
type FinanceConfig struct {
	IdempotencyTTL time.Duration
}

// FinanceService reconciles a student's fees against payments and accepts new payments.
type FinanceService struct {
	students  financeStudentRepository
	fees      feeReader
	payments  paymentStore
	cache     *CacheService
	notifier  paymentNotifier
	audit     auditWriter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    FinanceConfig
	now       func() time.Time
}

// NewFinanceService constructs FinanceService. cache, notifier, audit and metrics are optional.
func NewFinanceService(
	students financeStudentRepository,
	fees feeReader,
	payments paymentStore,
	cache *CacheService,
	notifier paymentNotifier,
	audit auditWriter,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	config FinanceConfig,
) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = 24 * time.Hour
	}
	return &FinanceService{
		students:  students,
		fees:      fees,
		payments:  payments,
		cache:     cache,
		notifier:  notifier,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ledger returns every fee of the student with its derived balance, the payments, and statistics.
func (s *FinanceService) Ledger(ctx context.Context, studentID string) (*dto.FinanceResponse, error) {
	if _, err := loadStudent(ctx, s.students, studentID); err != nil {
		return nil, err
	}

	fees, err := s.fees.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.DataAccess(err, "failed to load fees")
	}
	payments, err := s.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.DataAccess(err, "failed to load payments")
	}

	feeViews, paymentViews, stats := BuildLedger(fees, payments, s.now())
	return &dto.FinanceResponse{
		StudentID: studentID,
		Fees:      feeViews,
		Payments:  paymentViews,
		Stats:     stats,
	}, nil
}

// SubmitPayment records a payment against a fee without letting the fee's total exceed its amount.
// When idempotencyKey is set, a repeated call by the same actor returns the first receipt and
// replayed is true.
func (s *FinanceService) SubmitPayment(ctx context.Context, actor *models.JWTClaims, idempotencyKey string, req dto.SubmitPaymentRequest, meta models.SessionMeta) (receipt *dto.PaymentReceipt, replayed bool, err error) {
	if actor == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	if err := s.validatePayment(req); err != nil {
		s.metrics.RecordPayment(PaymentOutcomeRejected, 0)
		return nil, false, err
	}

	var resultKey string
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		resultKey = fmt.Sprintf("idem:payment:%s:%s", actor.UserID, key)
		var cached dto.PaymentReceipt
		hit, cacheErr := s.cache.Get(ctx, resultKey, &cached)
		if cacheErr != nil {
			s.logger.Warn("idempotency lookup failed, continuing without replay", zap.Error(cacheErr))
		}
		if hit {
			s.metrics.RecordPayment(PaymentOutcomeReplayed, 0)
			return &cached, true, nil
		}

		lockKey := resultKey + ":lock"
		claimed, claimErr := s.cache.Claim(ctx, lockKey, idempotencyLockTTL)
		if claimErr == nil && !claimed {
			return nil, false, appErrors.Clone(appErrors.ErrConflict, "a payment with this idempotency key is already in progress")
		}
		if claimErr == nil {
			defer s.cache.Release(context.WithoutCancel(ctx), lockKey)
			// A same-key request may have finished between the lookup and the claim.
			if hit, _ := s.cache.Get(ctx, resultKey, &cached); hit {
				s.metrics.RecordPayment(PaymentOutcomeReplayed, 0)
				return &cached, true, nil
			}
		}
	}

	receipt, err = s.acceptPayment(ctx, actor, req, meta)
	if err != nil {
		s.metrics.RecordPayment(PaymentOutcomeRejected, 0)
		return nil, false, err
	}
	s.metrics.RecordPayment(PaymentOutcomeAccepted, receipt.Payment.Amount.InexactFloat64())

	if resultKey != "" {
		_ = s.cache.Set(ctx, resultKey, receipt, s.config.IdempotencyTTL)
	}
	return receipt, false, nil
}

func (s *FinanceService) validatePayment(req dto.SubmitPaymentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if !req.Amount.IsPositive() {
		return appErrors.Clone(appErrors.ErrValidation, "amount must be greater than zero")
	}
	if !req.Amount.Equal(req.Amount.Truncate(2)) {
		return appErrors.Clone(appErrors.ErrValidation, "amount supports at most two decimal places")
	}
	if !req.PaymentMethod.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown payment method")
	}
	if req.PaymentDate != nil && req.PaymentDate.After(s.now().Add(maxPaymentDateLeadTime)) {
		return appErrors.Clone(appErrors.ErrValidation, "payment date cannot be in the future")
	}
	return nil
}

func (s *FinanceService) acceptPayment(ctx context.Context, actor *models.JWTClaims, req dto.SubmitPaymentRequest, meta models.SessionMeta) (*dto.PaymentReceipt, error) {
	fee, err := s.fees.FindByID(ctx, req.FeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.DataAccess(err, "failed to load fee")
	}

	if actor.Role == models.RoleStudent {
		if err := s.ensureOwnFee(ctx, actor, fee); err != nil {
			return nil, err
		}
	}

	paid, err := s.paidTowards(ctx, fee)
	if err != nil {
		return nil, err
	}
	remaining := DeriveFeeBalance(*fee, paid, s.now()).Remaining
	if remaining.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fee is already paid")
	}
	if req.Amount.GreaterThan(remaining) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("amount exceeds remaining balance of %s", remaining.StringFixed(2)))
	}

	payment := &models.Payment{
		FeeID:         fee.ID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Reference:     strings.TrimSpace(req.Reference),
		PaymentDate:   s.now(),
		Notes:         req.Notes,
		RecordedBy:    &actor.UserID,
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = req.PaymentDate.UTC()
	}

	totalPaid, err := s.payments.CreateWithinBalance(ctx, payment)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		case errors.Is(err, repository.ErrPaymentExceedsBalance):
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "amount exceeds remaining balance")
		case repository.IsUniqueViolation(err):
			return nil, appErrors.Clone(appErrors.ErrConflict, "payment reference already recorded")
		}
		return nil, appErrors.DataAccess(err, "failed to record payment")
	}

	balance := DeriveFeeBalance(*fee, totalPaid, s.now())
	receipt := &dto.PaymentReceipt{
		Payment: NewPaymentView(*payment),
		Fee:     NewFeeView(*fee, balance),
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("fee_id", fee.ID),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("fee_status", string(balance.Status)),
		zap.String("recorded_by", actor.UserID),
	)
	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionPaymentCreate, "payments", payment.ID,
		map[string]interface{}{"fee_id": fee.ID, "amount": payment.Amount, "method": payment.PaymentMethod, "reference": payment.Reference}, meta)

	if s.notifier != nil {
		if err := s.notifier.NotifyPaymentReceipt(ctx, fee.StudentID, *receipt); err != nil {
			s.logger.Warn("failed to queue payment receipt", zap.String("payment_id", payment.ID), zap.Error(err))
		}
	}
	return receipt, nil
}

func (s *FinanceService) ensureOwnFee(ctx context.Context, actor *models.JWTClaims, fee *models.Fee) error {
	student, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "no student profile linked to this account")
		}
		return appErrors.DataAccess(err, "failed to resolve student")
	}
	if student.ID != fee.StudentID {
		return appErrors.Clone(appErrors.ErrForbidden, "students can only pay their own fees")
	}
	return nil
}

func (s *FinanceService) paidTowards(ctx context.Context, fee *models.Fee) (decimal.Decimal, error) {
	payments, err := s.payments.ListByStudent(ctx, fee.StudentID)
	if err != nil {
		return decimal.Zero, appErrors.DataAccess(err, "failed to load payments")
	}
	total := decimal.Zero
	for _, p := range payments {
		if p.FeeID == fee.ID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}
