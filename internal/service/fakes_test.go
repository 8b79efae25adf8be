package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mlukic/flare/internal/domain"
	"github.com/mlukic/flare/internal/repository"
)

// In-memory repositories. Real mutexes so the concurrency tests drive
// genuine interleavings instead of mock expectations.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeFriendRepo struct {
	mu          sync.Mutex
	requests    map[uuid.UUID]*domain.FriendRequest
	friendships map[string]*domain.Friendship
	users       *fakeUserRepo
}

func newFakeFriendRepo(users *fakeUserRepo) *fakeFriendRepo {
	return &fakeFriendRepo{
		requests:    make(map[uuid.UUID]*domain.FriendRequest),
		friendships: make(map[string]*domain.Friendship),
		users:       users,
	}
}

func pairKey(a, b uuid.UUID) string {
	u1, u2 := a.String(), b.String()
	if u1 > u2 {
		u1, u2 = u2, u1
	}
	return u1 + "/" + u2
}

func (r *fakeFriendRepo) CreateRequest(_ context.Context, req *domain.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// One pending request per pair, either direction, like the partial
	// unique index on friend_requests.
	for _, existing := range r.requests {
		if existing.Status == domain.RequestStatusPending &&
			pairKey(existing.RequesterID, existing.RecipientID) == pairKey(req.RequesterID, req.RecipientID) {
			return repository.ErrDuplicateRequest
		}
	}
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeFriendRepo) GetRequestByID(_ context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeFriendRepo) GetPendingBetween(_ context.Context, userA, userB uuid.UUID) (*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.Status != domain.RequestStatusPending {
			continue
		}
		if (req.RequesterID == userA && req.RecipientID == userB) ||
			(req.RequesterID == userB && req.RecipientID == userA) {
			copied := *req
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeFriendRepo) ListIncoming(_ context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	return r.listRequests(func(req *domain.FriendRequest) bool { return req.RecipientID == userID })
}

func (r *fakeFriendRepo) ListOutgoing(_ context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	return r.listRequests(func(req *domain.FriendRequest) bool { return req.RequesterID == userID })
}

func (r *fakeFriendRepo) listRequests(match func(*domain.FriendRequest) bool) ([]domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FriendRequest
	for _, req := range r.requests {
		if req.Status == domain.RequestStatusPending && match(req) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeFriendRepo) DeleteRequest(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return false, nil
	}
	delete(r.requests, id)
	return true, nil
}

func (r *fakeFriendRepo) CreateFriendship(_ context.Context, f *domain.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(f.User1ID, f.User2ID)
	if _, ok := r.friendships[key]; ok {
		return nil
	}
	copied := *f
	r.friendships[key] = &copied
	return nil
}

func (r *fakeFriendRepo) AreFriends(_ context.Context, userA, userB uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.friendships[pairKey(userA, userB)]
	return ok, nil
}

func (r *fakeFriendRepo) ListFriends(_ context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	r.mu.Lock()
	friendIDs := make([]uuid.UUID, 0)
	for _, f := range r.friendships {
		switch userID {
		case f.User1ID:
			friendIDs = append(friendIDs, f.User2ID)
		case f.User2ID:
			friendIDs = append(friendIDs, f.User1ID)
		}
	}
	r.mu.Unlock()

	var out []domain.Friend
	for _, id := range friendIDs {
		u, _ := r.users.GetByID(context.Background(), id)
		if u != nil {
			out = append(out, domain.Friend{ID: u.ID, Username: u.Username, Email: u.Email})
		}
	}
	return out, nil
}

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes map[uuid.UUID]*domain.Note
	// hidden tracks recipient_deleted without exposing it on the domain type.
	hidden map[uuid.UUID]bool
	users  *fakeUserRepo
	now    func() time.Time
}

func newFakeNoteRepo(users *fakeUserRepo) *fakeNoteRepo {
	return &fakeNoteRepo{
		notes:  make(map[uuid.UUID]*domain.Note),
		hidden: make(map[uuid.UUID]bool),
		users:  users,
		now:    time.Now,
	}
}

func (r *fakeNoteRepo) Create(_ context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *note
	r.notes[note.ID] = &copied
	return nil
}

func (r *fakeNoteRepo) resolve(n *domain.Note) *domain.Note {
	copied := *n
	if s, _ := r.users.GetByID(context.Background(), n.SenderID); s != nil {
		copied.SenderUsername, copied.SenderEmail = s.Username, s.Email
	}
	if t, _ := r.users.GetByID(context.Background(), n.RecipientID); t != nil {
		copied.RecipientUsername, copied.RecipientEmail = t.Username, t.Email
	}
	return &copied
}

func (r *fakeNoteRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Note, error) {
	r.mu.Lock()
	n, ok := r.notes[id]
	if !ok || !n.ExpiresAt.After(r.now()) {
		r.mu.Unlock()
		return nil, nil
	}
	copied := *n
	r.mu.Unlock()
	return r.resolve(&copied), nil
}

func (r *fakeNoteRepo) GetForRecipient(_ context.Context, id, recipientID uuid.UUID) (*domain.Note, error) {
	r.mu.Lock()
	n, ok := r.notes[id]
	if !ok || n.RecipientID != recipientID || r.hidden[id] || !n.ExpiresAt.After(r.now()) {
		r.mu.Unlock()
		return nil, nil
	}
	copied := *n
	r.mu.Unlock()
	return r.resolve(&copied), nil
}

func (r *fakeNoteRepo) ListInbox(_ context.Context, recipientID uuid.UUID) ([]domain.Note, error) {
	return r.list(func(n *domain.Note) bool {
		return n.RecipientID == recipientID && !r.hidden[n.ID]
	})
}

func (r *fakeNoteRepo) ListOutbox(_ context.Context, senderID uuid.UUID) ([]domain.Note, error) {
	return r.list(func(n *domain.Note) bool { return n.SenderID == senderID })
}

func (r *fakeNoteRepo) list(match func(*domain.Note) bool) ([]domain.Note, error) {
	r.mu.Lock()
	var picked []*domain.Note
	for _, n := range r.notes {
		if n.ExpiresAt.After(r.now()) && match(n) {
			copied := *n
			picked = append(picked, &copied)
		}
	}
	r.mu.Unlock()

	var out []domain.Note
	for _, n := range picked {
		out = append(out, *r.resolve(n))
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].DeliveredAt.After(out[i].DeliveredAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) MarkRead(_ context.Context, id uuid.UUID, readAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.Status != domain.NoteStatusDelivered || !n.ExpiresAt.After(r.now()) {
		return false, nil
	}
	n.Status = domain.NoteStatusRead
	t := readAt
	n.ReadAt = &t
	return true, nil
}

func (r *fakeNoteRepo) HideFromInbox(_ context.Context, id, recipientID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.RecipientID != recipientID || r.hidden[id] || !n.ExpiresAt.After(r.now()) {
		return false, nil
	}
	r.hidden[id] = true
	return true, nil
}

func (r *fakeNoteRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, n := range r.notes {
		if !n.ExpiresAt.After(now) {
			delete(r.notes, id)
			delete(r.hidden, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeNotifier records publishes for assertion.
type fakeNotifier struct {
	mu      sync.Mutex
	created []domain.Note
	read    []uuid.UUID
}

func (n *fakeNotifier) NoteCreated(note *domain.Note) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, *note)
}

func (n *fakeNotifier) NoteRead(_, noteID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.read = append(n.read, noteID)
}

func (n *fakeNotifier) readCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.read)
}
