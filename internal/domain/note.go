package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NoteStatusDelivered = "delivered"
	NoteStatusRead      = "read"
)

// NoteTTL is how long a note stays readable after delivery. Fixed at
// creation and never extended.
const NoteTTL = 24 * time.Hour

type Note struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	DeliveredAt time.Time  `json:"delivered_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	// Joined fields
	SenderUsername    string `json:"sender_username,omitempty"`
	SenderEmail       string `json:"sender_email,omitempty"`
	RecipientUsername string `json:"recipient_username,omitempty"`
	RecipientEmail    string `json:"recipient_email,omitempty"`
}
