package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestStatusPending = "pending"
)

type FriendRequest struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	// Joined fields
	RequesterUsername string `json:"requester_username,omitempty"`
	RequesterEmail    string `json:"requester_email,omitempty"`
	RecipientUsername string `json:"recipient_username,omitempty"`
	RecipientEmail    string `json:"recipient_email,omitempty"`
}

// Friendship is a confirmed relation stored once per pair, with
// User1ID < User2ID (canonical order, enforced by a CHECK constraint).
type Friendship struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Friend is one entry of a user's friend list, resolved to the other party.
type Friend struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}
