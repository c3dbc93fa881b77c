// Package email renders transactional emails and records them in the email
// log. Delivery is simulated: nothing leaves the process.
package email

import (
	"context"
	"fmt"

	"github.com/kwame/agrimarket/internal/types"
)

// Template names
const (
	TemplateWelcome             = "welcome"
	TemplateUnlockReceipt       = "unlock_receipt"
	TemplateSubscriptionReceipt = "subscription_receipt"
)

// Logger persists rendered messages. *db.DB satisfies this.
type Logger interface {
	LogEmail(ctx context.Context, msg *types.EmailMessage) (*types.EmailMessage, error)
}

// Sender renders and logs transactional emails.
type Sender struct {
	log  Logger
	from string
}

// NewSender builds a Sender. from is stamped into the body footer.
func NewSender(log Logger, from string) *Sender {
	if from == "" {
		from = "noreply@agrimarket.example"
	}
	return &Sender{log: log, from: from}
}

// SendWelcome greets a newly registered account.
func (s *Sender) SendWelcome(ctx context.Context, to, name string) error {
	subject := "Welcome to AgriMarket"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour AgriMarket account is ready. Browse the marketplace, list produce, and connect with trading partners.\n\n%s\n",
		name, s.from)
	return s.send(ctx, to, subject, body, TemplateWelcome)
}

// SendUnlockReceipt confirms a contact unlock to the buyer.
func (s *Sender) SendUnlockReceipt(ctx context.Context, to string, contact types.FarmerContact, remaining int) error {
	subject := fmt.Sprintf("Contact unlocked: %s", contact.Name)
	body := fmt.Sprintf(
		"You unlocked contact details for %s.\n\nPhone: %s\nEmail: %s\n\nUnlocks remaining this period: %d\n\n%s\n",
		contact.Name, contact.Phone, contact.Email, remaining, s.from)
	return s.send(ctx, to, subject, body, TemplateUnlockReceipt)
}

// SendSubscriptionReceipt confirms a plan activation.
func (s *Sender) SendSubscriptionReceipt(ctx context.Context, to string, plan types.SubscriptionPlan, amountCents int64) error {
	subject := fmt.Sprintf("Subscription active: %s plan", plan)
	body := fmt.Sprintf(
		"Your %s subscription is active. Amount charged: %.2f.\nContact unlocks this period: %d.\n\n%s\n",
		plan, float64(amountCents)/100, plan.UnlockQuota(), s.from)
	return s.send(ctx, to, subject, body, TemplateSubscriptionReceipt)
}

func (s *Sender) send(ctx context.Context, to, subject, body, template string) error {
	msg := &types.EmailMessage{
		To:       to,
		Subject:  subject,
		Body:     body,
		Template: template,
	}
	if _, err := s.log.LogEmail(ctx, msg); err != nil {
		return fmt.Errorf("failed to record email: %w", err)
	}
	return nil
}
