package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// DefaultFromName is used when no sender display name is configured.
const DefaultFromName = "Contractor Leads"

// EmailSender delivers one office notification.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Tag labels a message for provider-side filtering (SendGrid categories,
// SES message tags).
type Tag struct {
	Name  string
	Value string
}

// EmailMessage is a lead notification ready for a provider.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
	// ReplyTo is the homeowner, so the office can answer straight from the inbox.
	ReplyTo     string
	ReplyToName string
	// HighPriority marks emergency leads with priority headers.
	HighPriority bool
	Tags         []Tag
}

// priorityHeaders are set on HighPriority messages.
var priorityHeaders = map[string]string{
	"X-Priority": "1",
	"Importance": "high",
}

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender sends lead notifications through the SendGrid v3 API.
type SendGridSender struct {
	client    sendGridClient
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}
	message := s.build(msg)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid lead notification failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected lead notification", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}
	s.logger.Info("lead notification sent via sendgrid", "to", msg.To, "priority", msg.HighPriority, "status", response.StatusCode)
	return nil
}

func (s *SendGridSender) build(msg EmailMessage) *mail.SGMailV3 {
	html := msg.HTML
	if html == "" {
		html = "<pre>" + escapeHTML(msg.Body) + "</pre>"
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.fromEmail),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		html,
	)
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail(msg.ReplyToName, msg.ReplyTo))
	}
	if msg.HighPriority {
		for k, v := range priorityHeaders {
			message.SetHeader(k, v)
		}
	}
	for _, tag := range msg.Tags {
		message.AddCategories(tag.Name + ":" + tag.Value)
	}
	return message
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;")

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

// StubEmailSender logs instead of sending. Used when EMAIL_PROVIDER is none.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("lead notification (not sent, no email provider)",
		"to", msg.To, "subject", msg.Subject, "reply_to", msg.ReplyTo, "priority", msg.HighPriority)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
