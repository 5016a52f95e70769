package models

import "time"

// NotificationKind identifies the template a notification was rendered from.
type NotificationKind string

const (
	NotificationKindPaymentReceipt NotificationKind = "PAYMENT_RECEIPT"
	NotificationKindFeeOverdue     NotificationKind = "FEE_OVERDUE"
)

// NotificationStatus tracks delivery progress.
type NotificationStatus string

const (
	NotificationStatusQueued NotificationStatus = "QUEUED"
	NotificationStatusSent   NotificationStatus = "SENT"
	NotificationStatusFailed NotificationStatus = "FAILED"
)

// NotificationChannelEmail is the only delivery channel supported.
const NotificationChannelEmail = "EMAIL"

// Notification is a persisted outbound message.
type Notification struct {
	ID          string             `db:"id" json:"id"`
	UserID      *string            `db:"user_id" json:"user_id,omitempty"`
	StudentID   string             `db:"student_id" json:"student_id"`
	Channel     string             `db:"channel" json:"channel"`
	Kind        NotificationKind   `db:"kind" json:"kind"`
	Recipient   string             `db:"recipient" json:"recipient"`
	Subject     string             `db:"subject" json:"subject"`
	Body        string             `db:"body" json:"body"`
	Status      NotificationStatus `db:"status" json:"status"`
	ReferenceID string             `db:"reference_id" json:"reference_id"`
	Error       *string            `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	SentAt      *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
}
