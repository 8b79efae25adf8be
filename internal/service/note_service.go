package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mlukic/flare/internal/domain"
	"github.com/mlukic/flare/internal/repository"
)

var (
	ErrContentLength      = errors.New("content must be between 1 and 300 characters")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrRecipientNotFriend = errors.New("recipient is not your friend")
	ErrNoteNotFound       = errors.New("note not found")
)

const maxNoteLength = 300

// Notifier pushes real-time events to a user's open streams. Delivery is
// best-effort; implementations must never block or surface failures.
type Notifier interface {
	NoteCreated(note *domain.Note)
	NoteRead(senderID, noteID uuid.UUID)
}

type NoteService struct {
	noteRepo   repository.NoteRepository
	userRepo   repository.UserRepository
	friendRepo repository.FriendRepository
	notifier   Notifier
}

func NewNoteService(
	noteRepo repository.NoteRepository,
	userRepo repository.UserRepository,
	friendRepo repository.FriendRepository,
) *NoteService {
	return &NoteService{
		noteRepo:   noteRepo,
		userRepo:   userRepo,
		friendRepo: friendRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *NoteService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send creates a note for a confirmed friend. The note expires exactly
// 24h after delivery; the recipient's open streams get a "note" event
// after the write commits.
func (s *NoteService) Send(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*domain.Note, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n == 0 || n > maxNoteLength {
		return nil, ErrContentLength
	}

	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrRecipientNotFound
	}

	friends, err := s.friendRepo.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, ErrRecipientNotFriend
	}

	now := time.Now()
	note := &domain.Note{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Status:      domain.NoteStatusDelivered,
		DeliveredAt: now,
		ExpiresAt:   now.Add(domain.NoteTTL),
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	// Refetch with sender/recipient display fields resolved.
	full, err := s.noteRepo.GetByID(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		full = note
	}

	if s.notifier != nil {
		s.notifier.NoteCreated(full)
	}

	return full, nil
}

// MarkRead transitions a note to read. Idempotent: a note already read
// succeeds without a second event, and read_at keeps the first caller's
// timestamp.
func (s *NoteService) MarkRead(ctx context.Context, recipientID, noteID uuid.UUID) (*domain.Note, error) {
	note, err := s.noteRepo.GetForRecipient(ctx, noteID, recipientID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}

	if note.Status == domain.NoteStatusRead {
		return note, nil
	}

	readAt := time.Now()
	updated, err := s.noteRepo.MarkRead(ctx, noteID, readAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost a race with another mark-read; the first one published.
		return s.noteRepo.GetForRecipient(ctx, noteID, recipientID)
	}

	note.Status = domain.NoteStatusRead
	note.ReadAt = &readAt

	if s.notifier != nil {
		s.notifier.NoteRead(note.SenderID, note.ID)
	}

	return note, nil
}

// Delete removes a note from the recipient's inbox. The sender's outbox
// keeps showing it until the note expires.
func (s *NoteService) Delete(ctx context.Context, recipientID, noteID uuid.UUID) error {
	hidden, err := s.noteRepo.HideFromInbox(ctx, noteID, recipientID)
	if err != nil {
		return err
	}
	if !hidden {
		return ErrNoteNotFound
	}
	return nil
}

func (s *NoteService) Inbox(ctx context.Context, userID uuid.UUID) ([]domain.Note, error) {
	notes, err := s.noteRepo.ListInbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

func (s *NoteService) Outbox(ctx context.Context, userID uuid.UUID) ([]domain.Note, error) {
	notes, err := s.noteRepo.ListOutbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}
