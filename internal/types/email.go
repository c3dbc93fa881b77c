package types

import (
	"time"

	"github.com/google/uuid"
)

// EmailMessage is one transactional email. Sends are simulated: messages are
// rendered and persisted to the email log, never handed to a real provider.
type EmailMessage struct {
	ID       uuid.UUID `json:"id"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	Template string    `json:"template"`
	SentAt   time.Time `json:"sent_at"`
}
