package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mlukic/flare/internal/domain"
)

// ErrDuplicateRequest is returned by CreateRequest when a pending
// request between the same pair already exists. Two sends can race
// past the pre-check; the unique index picks the winner.
var ErrDuplicateRequest = errors.New("pending request already exists")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type FriendRepository interface {
	CreateRequest(ctx context.Context, req *domain.FriendRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error)
	// GetPendingBetween looks for a pending request in either direction.
	GetPendingBetween(ctx context.Context, userA, userB uuid.UUID) (*domain.FriendRequest, error)
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error)
	// DeleteRequest reports whether a row was actually removed, so
	// concurrent resolutions of the same request get exactly one winner.
	DeleteRequest(ctx context.Context, id uuid.UUID) (bool, error)

	CreateFriendship(ctx context.Context, f *domain.Friendship) error
	AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error)
}

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	// GetByID returns the note with sender/recipient fields resolved,
	// or nil if absent or expired.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error)
	// GetForRecipient scopes the lookup to the recipient's inbox:
	// nil for expired notes and notes the recipient already deleted.
	GetForRecipient(ctx context.Context, id, recipientID uuid.UUID) (*domain.Note, error)
	ListInbox(ctx context.Context, recipientID uuid.UUID) ([]domain.Note, error)
	ListOutbox(ctx context.Context, senderID uuid.UUID) ([]domain.Note, error)
	// MarkRead transitions delivered → read; reports false if the note
	// was already read (or gone), so the transition happens exactly once.
	MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) (bool, error)
	// HideFromInbox removes the note from the recipient's inbox without
	// touching the sender's outbox view.
	HideFromInbox(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
