package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

type feeWriter interface {
	Create(ctx context.Context, fee *models.Fee) error
}

// FeeService bills students.
type FeeService struct {
	fees      feeWriter
	students  studentFinder
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeeService constructs FeeService.
func NewFeeService(fees feeWriter, students studentFinder, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{
		fees:      fees,
		students:  students,
		audit:     audit,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create bills a fee to a student and returns it with its (empty) derived balance.
func (s *FeeService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateFeeRequest, meta models.SessionMeta) (*dto.FeeView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}
	if !req.Amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount must be greater than zero")
	}
	if req.Amount.Exponent() < -2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount supports at most two decimal places")
	}
	if !req.FeeType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown fee type")
	}
	if _, err := loadStudent(ctx, s.students, req.StudentID); err != nil {
		return nil, err
	}

	fee := &models.Fee{
		StudentID:    req.StudentID,
		Amount:       req.Amount,
		DueDate:      req.DueDate.UTC(),
		FeeType:      req.FeeType,
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Semester:     req.Semester,
		Description:  strings.TrimSpace(req.Description),
	}
	if err := s.fees.Create(ctx, fee); err != nil {
		return nil, appErrors.DataAccess(err, "failed to create fee")
	}

	actorID := ""
	if actor != nil {
		actorID = actor.UserID
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AuditActionFeeCreate, "fees", fee.ID,
		map[string]interface{}{"student_id": fee.StudentID, "amount": fee.Amount, "fee_type": fee.FeeType}, meta)

	view := NewFeeView(*fee, DeriveFeeBalance(*fee, decimal.Zero, s.now()))
	return &view, nil
}
