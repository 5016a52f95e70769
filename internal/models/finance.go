package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeType enumerates the kinds of charges a student can be billed.
type FeeType string

const (
	FeeTypeTuition       FeeType = "TUITION"
	FeeTypeAccommodation FeeType = "ACCOMMODATION"
	FeeTypeLibrary       FeeType = "LIBRARY"
	FeeTypeLaboratory    FeeType = "LABORATORY"
	FeeTypeExamination   FeeType = "EXAMINATION"
	FeeTypeOther         FeeType = "OTHER"
)

// FeeTypes lists every accepted fee type.
var FeeTypes = []FeeType{
	FeeTypeTuition,
	FeeTypeAccommodation,
	FeeTypeLibrary,
	FeeTypeLaboratory,
	FeeTypeExamination,
	FeeTypeOther,
}

// Valid reports whether t is a known fee type.
func (t FeeType) Valid() bool {
	for _, known := range FeeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PaymentMethod enumerates how a payment was made.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodBankTransfer,
	PaymentMethodMobileMoney,
	PaymentMethodCard,
	PaymentMethodCheque,
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// PaymentStatus is the derived state of a fee.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusOverdue PaymentStatus = "OVERDUE"
	PaymentStatusPending PaymentStatus = "PENDING"
)

// Fee is a charge billed to a student. Balances are derived from payments and never stored.
type Fee struct {
	ID           string          `db:"id" json:"id"`
	StudentID    string          `db:"student_id" json:"student_id"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	DueDate      time.Time       `db:"due_date" json:"due_date"`
	FeeType      FeeType         `db:"fee_type" json:"fee_type"`
	AcademicYear string          `db:"academic_year" json:"academic_year"`
	Semester     *int            `db:"semester" json:"semester,omitempty"`
	Description  string          `db:"description" json:"description"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Payment records money received against a fee.
type Payment struct {
	ID            string          `db:"id" json:"id"`
	FeeID         string          `db:"fee_id" json:"fee_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"payment_method"`
	Reference     string          `db:"reference" json:"reference"`
	PaymentDate   time.Time       `db:"payment_date" json:"payment_date"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	RecordedBy    *string         `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// OverdueFee is a fee with an outstanding balance past its due date.
type OverdueFee struct {
	Fee
	TotalPaid    decimal.Decimal `db:"total_paid" json:"total_paid"`
	StudentName  string          `db:"student_name" json:"student_name"`
	StudentEmail string          `db:"student_email" json:"student_email"`
	UserID       *string         `db:"user_id" json:"user_id,omitempty"`
}
