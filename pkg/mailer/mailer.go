package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Message is a single outbound email.
type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers messages through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey string
	from   *sgmail.Email
	send   func(ctx context.Context, request rest.Request) (*rest.Response, error)
}

// NewSendGridMailer builds a mailer sending as the given address.
func NewSendGridMailer(apiKey string, from mail.Address) *SendGridMailer {
	return &SendGridMailer{
		apiKey: apiKey,
		from:   sgmail.NewEmail(from.Name, from.Address),
		send:   sendgrid.MakeRequestWithContext,
	}
}

// Send posts the message to SendGrid. Non-2xx responses are returned as errors so
// callers can retry.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(m.apiKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.build(msg))

	res, err := m.send(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (m *SendGridMailer) build(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return v3
}

// LogMailer writes messages to the logger instead of delivering them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a mailer for development environments.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info("email",
		zap.String("to", msg.To.String()),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
