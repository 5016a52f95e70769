package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/uni-academic-api/internal/models"
)

// FeeView is a fee together with its derived balance.
type FeeView struct {
	ID            string               `json:"id"`
	StudentID     string               `json:"studentId"`
	Amount        decimal.Decimal      `json:"amount"`
	DueDate       time.Time            `json:"dueDate"`
	FeeType       models.FeeType       `json:"feeType"`
	AcademicYear  string               `json:"academicYear"`
	Semester      *int                 `json:"semester,omitempty"`
	Description   string               `json:"description"`
	TotalPaid     decimal.Decimal      `json:"totalPaid"`
	Remaining     decimal.Decimal      `json:"remaining"`
	IsPaid        bool                 `json:"isPaid"`
	IsOverdue     bool                 `json:"isOverdue"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// PaymentView is a payment as shown in the student's ledger.
type PaymentView struct {
	ID            string               `json:"id"`
	FeeID         string               `json:"feeId"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Reference     string               `json:"reference"`
	PaymentDate   time.Time            `json:"paymentDate"`
	Notes         *string              `json:"notes,omitempty"`
}

// FinanceStats aggregates a student's fees. Paid, pending and overdue counts partition the fees.
type FinanceStats struct {
	TotalFees      decimal.Decimal `json:"totalFees"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalRemaining decimal.Decimal `json:"totalRemaining"`
	OverdueAmount  decimal.Decimal `json:"overdueAmount"`
	PaidFees       int             `json:"paidFees"`
	PendingFees    int             `json:"pendingFees"`
	OverdueFees    int             `json:"overdueFees"`
}

// FinanceResponse is the ledger view of a student.
type FinanceResponse struct {
	StudentID string        `json:"studentId"`
	Fees      []FeeView     `json:"fees"`
	Payments  []PaymentView `json:"payments"`
	Stats     FinanceStats  `json:"stats"`
}

// SubmitPaymentRequest captures POST /finance/payments payload.
type SubmitPaymentRequest struct {
	FeeID         string               `json:"feeId" validate:"required"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required"`
	Reference     string               `json:"reference" validate:"required,max=128"`
	Notes         *string              `json:"notes,omitempty" validate:"omitempty,max=500"`
	PaymentDate   *time.Time           `json:"paymentDate,omitempty"`
}

// PaymentReceipt is returned after a payment has been accepted.
type PaymentReceipt struct {
	Payment PaymentView `json:"payment"`
	Fee     FeeView     `json:"fee"`
}

// CreateFeeRequest captures POST /fees payload.
type CreateFeeRequest struct {
	StudentID    string          `json:"studentId" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"dueDate" validate:"required"`
	FeeType      models.FeeType  `json:"feeType" validate:"required"`
	AcademicYear string          `json:"academicYear" validate:"required,max=16"`
	Semester     *int            `json:"semester,omitempty" validate:"omitempty,min=1"`
	Description  string          `json:"description" validate:"max=255"`
}
