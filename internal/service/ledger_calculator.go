package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
)

// FeeBalance is the derived state of a fee at a point in time.
type FeeBalance struct {
	TotalPaid decimal.Decimal
	Remaining decimal.Decimal
	IsPaid    bool
	IsOverdue bool
	Status    models.PaymentStatus
}

// DeriveFeeBalance computes a fee's balance from the sum of its payments.
func DeriveFeeBalance(fee models.Fee, totalPaid decimal.Decimal, now time.Time) FeeBalance {
	remaining := fee.Amount.Sub(totalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	balance := FeeBalance{
		TotalPaid: totalPaid,
		Remaining: remaining,
		IsPaid:    remaining.IsZero(),
	}
	balance.IsOverdue = !balance.IsPaid && fee.DueDate.Before(now)

	switch {
	case balance.IsPaid:
		balance.Status = models.PaymentStatusPaid
	case balance.IsOverdue:
		balance.Status = models.PaymentStatusOverdue
	default:
		balance.Status = models.PaymentStatusPending
	}
	return balance
}

// BuildLedger derives every fee's balance from payments and aggregates the statistics.
// Payments referencing unknown fees are listed but do not affect any balance.
func BuildLedger(fees []models.Fee, payments []models.Payment, now time.Time) ([]dto.FeeView, []dto.PaymentView, dto.FinanceStats) {
	paidByFee := make(map[string]decimal.Decimal, len(fees))
	paymentViews := make([]dto.PaymentView, 0, len(payments))
	for _, payment := range payments {
		paidByFee[payment.FeeID] = paidByFee[payment.FeeID].Add(payment.Amount)
		paymentViews = append(paymentViews, NewPaymentView(payment))
	}

	stats := dto.FinanceStats{
		TotalFees:      decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
		OverdueAmount:  decimal.Zero,
	}
	feeViews := make([]dto.FeeView, 0, len(fees))
	for _, fee := range fees {
		balance := DeriveFeeBalance(fee, paidByFee[fee.ID], now)
		feeViews = append(feeViews, NewFeeView(fee, balance))

		stats.TotalFees = stats.TotalFees.Add(fee.Amount)
		stats.TotalPaid = stats.TotalPaid.Add(balance.TotalPaid)
		stats.TotalRemaining = stats.TotalRemaining.Add(balance.Remaining)

		switch balance.Status {
		case models.PaymentStatusPaid:
			stats.PaidFees++
		case models.PaymentStatusOverdue:
			stats.OverdueFees++
			stats.OverdueAmount = stats.OverdueAmount.Add(balance.Remaining)
		default:
			stats.PendingFees++
		}
	}

	return feeViews, paymentViews, stats
}

// NewFeeView merges a fee with its derived balance.
func NewFeeView(fee models.Fee, balance FeeBalance) dto.FeeView {
	return dto.FeeView{
		ID:            fee.ID,
		StudentID:     fee.StudentID,
		Amount:        fee.Amount,
		DueDate:       fee.DueDate,
		FeeType:       fee.FeeType,
		AcademicYear:  fee.AcademicYear,
		Semester:      fee.Semester,
		Description:   fee.Description,
		TotalPaid:     balance.TotalPaid,
		Remaining:     balance.Remaining,
		IsPaid:        balance.IsPaid,
		IsOverdue:     balance.IsOverdue,
		PaymentStatus: balance.Status,
	}
}

// NewPaymentView converts a stored payment to its response shape.
func NewPaymentView(payment models.Payment) dto.PaymentView {
	return dto.PaymentView{
		ID:            payment.ID,
		FeeID:         payment.FeeID,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
		Reference:     payment.Reference,
		PaymentDate:   payment.PaymentDate,
		Notes:         payment.Notes,
	}
}
