package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mlukic/flare/internal/domain"
	"github.com/mlukic/flare/internal/repository"
)

var (
	ErrCannotFriendSelf       = errors.New("cannot send a friend request to yourself")
	ErrUserNotFound           = errors.New("user not found")
	ErrAlreadyFriends         = errors.New("already friends")
	ErrRequestPending         = errors.New("friend request already pending")
	ErrRequestNotFound        = errors.New("friend request not found")
	ErrRequestAlreadyResolved = errors.New("friend request already resolved")
	ErrInvalidAction          = errors.New("action must be accept or reject")
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// SendRequest creates a pending friend request toward the user holding
// targetUsername. At most one pending request may exist per pair,
// regardless of direction.
func (s *FriendService) SendRequest(ctx context.Context, requesterID uuid.UUID, targetUsername string) (*domain.FriendRequest, error) {
	target, err := s.userRepo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(targetUsername)))
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if requesterID == target.ID {
		return nil, ErrCannotFriendSelf
	}

	already, err := s.friendRepo.AreFriends(ctx, requesterID, target.ID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyFriends
	}

	existing, err := s.friendRepo.GetPendingBetween(ctx, requesterID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRequestPending
	}

	req := &domain.FriendRequest{
		ID:          uuid.New(),
		RequesterID: requesterID,
		RecipientID: target.ID,
		Status:      domain.RequestStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicateRequest) {
			return nil, ErrRequestPending
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return req, nil
}

// Respond resolves a pending request. Accept mirrors the friendship for
// both parties and returns the recipient's updated friend list; reject
// just drops the request. Neither keeps a terminal record around.
func (s *FriendService) Respond(ctx context.Context, recipientID, requestID uuid.UUID, action string) ([]domain.Friend, error) {
	if action != ActionAccept && action != ActionReject {
		return nil, ErrInvalidAction
	}

	req, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.RecipientID != recipientID {
		return nil, ErrRequestNotFound
	}
	if req.Status != domain.RequestStatusPending {
		return nil, ErrRequestAlreadyResolved
	}

	if action == ActionReject {
		deleted, err := s.friendRepo.DeleteRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if !deleted {
			return nil, ErrRequestAlreadyResolved
		}
		return nil, nil
	}

	// The friendship insert is idempotent, so if the request delete below
	// fails the whole accept can be retried safely.
	if err := s.createFriendship(ctx, req.RequesterID, req.RecipientID); err != nil {
		return nil, fmt.Errorf("creating friendship: %w", err)
	}

	deleted, err := s.friendRepo.DeleteRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		// A concurrent accept already resolved this request.
		return nil, ErrRequestAlreadyResolved
	}

	return s.ListFriends(ctx, recipientID)
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	friends, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []domain.Friend{}
	}
	return friends, nil
}

func (s *FriendService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	reqs, err := s.friendRepo.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.FriendRequest{}
	}
	return reqs, nil
}

func (s *FriendService) ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	reqs, err := s.friendRepo.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.FriendRequest{}
	}
	return reqs, nil
}

// createFriendship stores the pair with canonical ordering.
func (s *FriendService) createFriendship(ctx context.Context, userA, userB uuid.UUID) error {
	u1, u2 := userA, userB
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}

	f := &domain.Friendship{
		ID:        uuid.New(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: time.Now(),
	}

	return s.friendRepo.CreateFriendship(ctx, f)
}
