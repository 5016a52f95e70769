package service

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
	"github.com/noah-isme/uni-academic-api/pkg/jobs"
	"github.com/noah-isme/uni-academic-api/pkg/mailer"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	ExistsSince(ctx context.Context, kind models.NotificationKind, referenceID string, since time.Time) (bool, error)
}

type overdueFeeLister interface {
	ListOverdue(ctx context.Context, asOf time.Time) ([]models.OverdueFee, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

var notificationTemplates = map[models.NotificationKind]messageTemplate{
	models.NotificationKindPaymentReceipt: {
		subject: template.Must(template.New("receipt_subject").Parse(`Payment received: {{.Amount}} ({{.Reference}})`)),
		body: template.Must(template.New("receipt_body").Parse(`Dear {{.StudentName}},

We received your payment of {{.Amount}} by {{.Method}} on {{.PaymentDate}} (reference {{.Reference}}).

Fee: {{.FeeType}} {{.AcademicYear}}{{if .Description}} - {{.Description}}{{end}}
Paid so far: {{.TotalPaid}} of {{.FeeAmount}}
Remaining: {{.Remaining}}
Status: {{.Status}}
`)),
	},
	models.NotificationKindFeeOverdue: {
		subject: template.Must(template.New("overdue_subject").Parse(`Overdue fee reminder: {{.Remaining}} outstanding`)),
		body: template.Must(template.New("overdue_body").Parse(`Dear {{.StudentName}},

Your {{.FeeType}} fee for {{.AcademicYear}}{{if .Description}} ({{.Description}}){{end}} was due on {{.DueDate}}.
Paid so far: {{.TotalPaid}} of {{.FeeAmount}}
Outstanding: {{.Remaining}}

Please settle the balance at your earliest convenience.
`)),
	},
}

type notificationData struct {
	StudentName  string
	FeeType      models.FeeType
	AcademicYear string
	Description  string
	FeeAmount    string
	TotalPaid    string
	Remaining    string
	DueDate      string
	Status       models.PaymentStatus
	Amount       string
	Method       models.PaymentMethod
	Reference    string
	PaymentDate  string
}

// NotificationService renders, persists and dispatches student notifications.
type NotificationService struct {
	repo     notificationRepository
	students studentFinder
	overdue  overdueFeeLister
	mailer   mailer.Mailer
	queue    jobEnqueuer
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService constructs NotificationService. Without an attached queue,
// notifications are delivered inline.
func NewNotificationService(repo notificationRepository, students studentFinder, overdue overdueFeeLister, m mailer.Mailer, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = mailer.NewLogMailer(logger)
	}
	return &NotificationService{
		repo:     repo,
		students: students,
		overdue:  overdue,
		mailer:   m,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AttachQueue routes deliveries through an asynchronous queue.
func (s *NotificationService) AttachQueue(q jobEnqueuer) {
	s.queue = q
}

// NotifyPaymentReceipt queues a receipt email for an accepted payment.
func (s *NotificationService) NotifyPaymentReceipt(ctx context.Context, studentID string, receipt dto.PaymentReceipt) error {
	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return err
	}

	data := notificationData{
		StudentName:  student.FullName,
		FeeType:      receipt.Fee.FeeType,
		AcademicYear: receipt.Fee.AcademicYear,
		Description:  receipt.Fee.Description,
		FeeAmount:    receipt.Fee.Amount.StringFixed(2),
		TotalPaid:    receipt.Fee.TotalPaid.StringFixed(2),
		Remaining:    receipt.Fee.Remaining.StringFixed(2),
		Status:       receipt.Fee.PaymentStatus,
		Amount:       receipt.Payment.Amount.StringFixed(2),
		Method:       receipt.Payment.PaymentMethod,
		Reference:    receipt.Payment.Reference,
		PaymentDate:  receipt.Payment.PaymentDate.Format("2006-01-02"),
	}
	n := &models.Notification{
		UserID:      student.UserID,
		StudentID:   student.ID,
		Recipient:   student.Email,
		ReferenceID: receipt.Payment.ID,
	}
	return s.queueNotification(ctx, n, models.NotificationKindPaymentReceipt, data)
}

// SweepOverdue queues one overdue reminder per outstanding fee per UTC day and returns how many were queued.
func (s *NotificationService) SweepOverdue(ctx context.Context) (int, error) {
	now := s.now()
	fees, err := s.overdue.ListOverdue(ctx, now)
	if err != nil {
		return 0, appErrors.DataAccess(err, "failed to list overdue fees")
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	queued := 0
	for _, fee := range fees {
		if err := ctx.Err(); err != nil {
			return queued, err
		}

		exists, err := s.repo.ExistsSince(ctx, models.NotificationKindFeeOverdue, fee.ID, dayStart)
		if err != nil {
			return queued, appErrors.DataAccess(err, "failed to check previous reminders")
		}
		if exists {
			continue
		}

		balance := DeriveFeeBalance(fee.Fee, fee.TotalPaid, now)
		data := notificationData{
			StudentName:  fee.StudentName,
			FeeType:      fee.FeeType,
			AcademicYear: fee.AcademicYear,
			Description:  fee.Description,
			FeeAmount:    fee.Amount.StringFixed(2),
			TotalPaid:    balance.TotalPaid.StringFixed(2),
			Remaining:    balance.Remaining.StringFixed(2),
			DueDate:      fee.DueDate.Format("2006-01-02"),
			Status:       balance.Status,
		}
		n := &models.Notification{
			UserID:      fee.UserID,
			StudentID:   fee.StudentID,
			Recipient:   fee.StudentEmail,
			ReferenceID: fee.ID,
		}
		if err := s.queueNotification(ctx, n, models.NotificationKindFeeOverdue, data); err != nil {
			s.logger.Warn("failed to queue overdue reminder", zap.String("fee_id", fee.ID), zap.Error(err))
			continue
		}
		queued++
	}

	s.logger.Info("overdue sweep finished", zap.Int("overdue_fees", len(fees)), zap.Int("queued", queued))
	return queued, nil
}

// HandleJob delivers a queued notification. Returned errors make the queue retry.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok {
		s.logger.Error("unexpected notification job payload", zap.String("job_id", job.ID))
		return nil
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load notification %s: %w", id, err)
	}
	if n.Status == models.NotificationStatusSent {
		return nil
	}

	msg := mailer.Message{
		To:      mail.Address{Address: n.Recipient},
		Subject: n.Subject,
		Text:    n.Body,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}

	if err := s.repo.MarkSent(ctx, n.ID, s.now()); err != nil {
		s.logger.Warn("failed to mark notification sent", zap.String("notification_id", n.ID), zap.Error(err))
	}
	s.metrics.RecordNotification(string(n.Kind), string(models.NotificationStatusSent))
	return nil
}

// HandleGiveUp marks a notification failed once the queue stops retrying it.
func (s *NotificationService) HandleGiveUp(ctx context.Context, job jobs.Job, cause error) {
	id, ok := job.Payload.(string)
	if !ok {
		return
	}
	s.markFailed(context.WithoutCancel(ctx), id, job.Type, cause)
}

func (s *NotificationService) queueNotification(ctx context.Context, n *models.Notification, kind models.NotificationKind, data notificationData) error {
	if n.Recipient == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student has no email address")
	}
	subject, body, err := render(kind, data)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render notification")
	}

	n.Channel = models.NotificationChannelEmail
	n.Kind = kind
	n.Subject = subject
	n.Body = body
	n.Status = models.NotificationStatusQueued
	n.CreatedAt = s.now()
	if err := s.repo.Create(ctx, n); err != nil {
		return appErrors.DataAccess(err, "failed to save notification")
	}
	s.metrics.RecordNotification(string(kind), string(models.NotificationStatusQueued))

	job := jobs.Job{ID: n.ID, Type: string(kind), Payload: n.ID}
	if s.queue == nil {
		if err := s.HandleJob(ctx, job); err != nil {
			s.markFailed(ctx, n.ID, job.Type, err)
		}
		return nil
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.markFailed(ctx, n.ID, job.Type, err)
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func (s *NotificationService) markFailed(ctx context.Context, id, kind string, cause error) {
	reason := "delivery failed"
	if cause != nil {
		reason = cause.Error()
	}
	if err := s.repo.MarkFailed(ctx, id, reason); err != nil {
		s.logger.Warn("failed to mark notification failed", zap.String("notification_id", id), zap.Error(err))
	}
	s.metrics.RecordNotification(kind, string(models.NotificationStatusFailed))
}

func render(kind models.NotificationKind, data notificationData) (string, string, error) {
	tpl, ok := notificationTemplates[kind]
	if !ok {
		return "", "", fmt.Errorf("no template for %s", kind)
	}
	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject.String(), body.String(), nil
}
