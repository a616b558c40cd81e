package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Outbox statuses.
const (
	StatusPending = "pending"
	StatusSending = "sending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// KindWelcome is the message sent after registration.
const KindWelcome = "welcome"

// Message is a row of the `mail_outbox` table. Payload is the kind
// specific JSON document the worker renders into a mail.
type Message struct {
	ID        string         `db:"id"`
	Kind      string         `db:"kind"`
	Payload   types.JSONText `db:"payload"`
	Status    string         `db:"status"`
	Attempts  int            `db:"attempts"`
	LastError *string        `db:"last_error"`
	CreatedAt time.Time      `db:"created_at"`
	ClaimedAt *time.Time     `db:"claimed_at"`
	SentAt    *time.Time     `db:"sent_at"`
}

// NewMessage builds a pending message with payload encoded as JSON.
func NewMessage(id, kind string, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return &Message{ID: id, Kind: kind, Payload: types.JSONText(raw), Status: StatusPending}, nil
}

// WelcomePayload is the payload of KindWelcome.
type WelcomePayload struct {
	Receiver string `json:"receiver"`
	Name     string `json:"name"`
}
