package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/contractor-leads/internal/delivery"
	"github.com/wolfman30/contractor-leads/internal/leads"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// LeadNotifier emails the office whenever a lead is accepted.
type LeadNotifier struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewLeadNotifier returns nil when there is no sender or no recipient, so
// callers can pass the result straight into a pipeline config.
func NewLeadNotifier(email EmailSender, recipients []string, logger *logging.Logger) *LeadNotifier {
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	if email == nil || len(to) == 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{email: email, recipients: to, logger: logger}
}

// NotifyLead sends one email per recipient and joins the failures.
func (n *LeadNotifier) NotifyLead(ctx context.Context, payload *leads.Payload, result delivery.Result) error {
	if n == nil || payload == nil {
		return nil
	}
	msg := LeadEmail(payload, result)

	var errs []error
	for _, to := range n.recipients {
		msg.To = to
		if err := n.email.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify: %s: %w", to, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	n.logger.Debug("lead notification sent", "service_id", payload.Service.ID, "recipients", len(n.recipients))
	return nil
}

// LeadEmail renders the office notification for one lead.
func LeadEmail(payload *leads.Payload, result delivery.Result) EmailMessage {
	name := payload.ContactName()
	if name == "" {
		name = "Website visitor"
	}
	subject := fmt.Sprintf("New %s lead: %s", payload.Service.Name, name)
	switch payload.Summary.Urgency {
	case leads.UrgencyEmergency:
		subject = "🚨 EMERGENCY " + subject
	case leads.UrgencyUrgent:
		subject = "⚡ URGENT " + subject
	}

	var b strings.Builder
	b.WriteString(payload.Summary.Text)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Urgency: %s\n", payload.Summary.Urgency)
	fmt.Fprintf(&b, "Estimated value: %s\n", payload.Summary.EstimatedValue)
	fmt.Fprintf(&b, "Preferred contact: %s\n", payload.Summary.PreferredContact)
	for _, key := range []string{"email", "phone", "address", "city", "state", "zipCode"} {
		if v := payload.Contact[key]; v != "" {
			fmt.Fprintf(&b, "%s: %s\n", contactLabel(key), v)
		}
	}
	if payload.ServiceDetailsSummary != "" {
		fmt.Fprintf(&b, "\nDetails: %s\n", payload.ServiceDetailsSummary)
	}
	if result.Queued {
		b.WriteString("\nNote: webhook delivery failed; this lead is waiting in the local queue.\n")
	}
	fmt.Fprintf(&b, "\nSubmitted: %s\n", payload.Meta.Timestamp)

	msg := EmailMessage{
		Subject:      subject,
		Body:         b.String(),
		HighPriority: payload.Summary.Urgency == leads.UrgencyEmergency,
		Tags: []Tag{
			{Name: "service", Value: payload.Service.ID},
			{Name: "urgency", Value: string(payload.Summary.Urgency)},
		},
	}
	if email := payload.Contact["email"]; email != "" {
		msg.ReplyTo = email
		msg.ReplyToName = payload.ContactName()
	}
	return msg
}

func contactLabel(key string) string {
	switch key {
	case "zipCode":
		return "ZIP"
	default:
		return strings.ToUpper(key[:1]) + key[1:]
	}
}
