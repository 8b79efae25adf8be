package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mlukic/flare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteFixture struct {
	svc      *NoteService
	users    *fakeUserRepo
	friends  *fakeFriendRepo
	notes    *fakeNoteRepo
	notifier *fakeNotifier
	alice    *domain.User
	bob      *domain.User
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()
	users := newFakeUserRepo()
	friends := newFakeFriendRepo(users)
	notes := newFakeNoteRepo(users)

	f := &noteFixture{
		users:    users,
		friends:  friends,
		notes:    notes,
		notifier: &fakeNotifier{},
		alice:    seedUser(t, users, "alice"),
		bob:      seedUser(t, users, "bob"),
	}

	require.NoError(t, friends.CreateFriendship(context.Background(), &domain.Friendship{
		ID:      uuid.New(),
		User1ID: f.alice.ID,
		User2ID: f.bob.ID,
	}))

	f.svc = NewNoteService(notes, users, friends)
	f.svc.SetNotifier(f.notifier)
	return f
}

func TestNoteService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a delivered note with a 24h expiry", func(t *testing.T) {
		f := newNoteFixture(t)

		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "help")
		require.NoError(t, err)

		assert.Equal(t, domain.NoteStatusDelivered, note.Status)
		assert.Equal(t, "help", note.Content)
		assert.Nil(t, note.ReadAt)
		assert.Equal(t, note.DeliveredAt.Add(domain.NoteTTL), note.ExpiresAt)
		assert.Equal(t, "alice", note.SenderUsername)
		assert.Equal(t, "bob", note.RecipientUsername)

		require.Len(t, f.notifier.created, 1)
		assert.Equal(t, "help", f.notifier.created[0].Content)
		assert.Equal(t, f.bob.ID, f.notifier.created[0].RecipientID)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		f := newNoteFixture(t)

		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "  help  ")
		require.NoError(t, err)
		assert.Equal(t, "help", note.Content)
	})

	t.Run("rejects empty and oversized content", func(t *testing.T) {
		f := newNoteFixture(t)

		_, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "   ")
		assert.ErrorIs(t, err, ErrContentLength)

		_, err = f.svc.Send(ctx, f.alice.ID, f.bob.ID, strings.Repeat("x", 301))
		assert.ErrorIs(t, err, ErrContentLength)

		inbox, err := f.svc.Inbox(ctx, f.bob.ID)
		require.NoError(t, err)
		assert.Empty(t, inbox)
		assert.Empty(t, f.notifier.created)
	})

	t.Run("accepts exactly 300 characters", func(t *testing.T) {
		f := newNoteFixture(t)

		_, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, strings.Repeat("x", 300))
		assert.NoError(t, err)
	})

	t.Run("length counts characters, not bytes", func(t *testing.T) {
		f := newNoteFixture(t)

		// 300 two-byte runes is 600 bytes but still within the limit.
		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, strings.Repeat("é", 300))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("é", 300), note.Content)

		_, err = f.svc.Send(ctx, f.alice.ID, f.bob.ID, strings.Repeat("é", 301))
		assert.ErrorIs(t, err, ErrContentLength)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		f := newNoteFixture(t)

		_, err := f.svc.Send(ctx, f.alice.ID, uuid.New(), "help")
		assert.ErrorIs(t, err, ErrRecipientNotFound)
	})

	t.Run("recipient must be a friend", func(t *testing.T) {
		f := newNoteFixture(t)
		carol := seedUser(t, f.users, "carol")

		_, err := f.svc.Send(ctx, f.alice.ID, carol.ID, "help")
		assert.ErrorIs(t, err, ErrRecipientNotFriend)

		outbox, err := f.svc.Outbox(ctx, f.alice.ID)
		require.NoError(t, err)
		assert.Empty(t, outbox)
	})
}

func TestNoteService_MarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions delivered to read and notifies the sender once", func(t *testing.T) {
		f := newNoteFixture(t)

		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "help")
		require.NoError(t, err)

		read, err := f.svc.MarkRead(ctx, f.bob.ID, note.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.NoteStatusRead, read.Status)
		require.NotNil(t, read.ReadAt)
		firstReadAt := *read.ReadAt

		assert.Equal(t, 1, f.notifier.readCount())

		// Second call is a no-op: same read_at, no extra event.
		again, err := f.svc.MarkRead(ctx, f.bob.ID, note.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.NoteStatusRead, again.Status)
		require.NotNil(t, again.ReadAt)
		assert.Equal(t, firstReadAt, *again.ReadAt)
		assert.Equal(t, 1, f.notifier.readCount())
	})

	t.Run("only the recipient can mark read", func(t *testing.T) {
		f := newNoteFixture(t)

		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "help")
		require.NoError(t, err)

		_, err = f.svc.MarkRead(ctx, f.alice.ID, note.ID)
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})

	t.Run("unknown note", func(t *testing.T) {
		f := newNoteFixture(t)

		_, err := f.svc.MarkRead(ctx, f.bob.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})
}

func TestNoteService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes from inbox but not from the sender outbox", func(t *testing.T) {
		f := newNoteFixture(t)

		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "help")
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, f.bob.ID, note.ID))

		inbox, err := f.svc.Inbox(ctx, f.bob.ID)
		require.NoError(t, err)
		assert.Empty(t, inbox)

		outbox, err := f.svc.Outbox(ctx, f.alice.ID)
		require.NoError(t, err)
		require.Len(t, outbox, 1)
		assert.Equal(t, note.ID, outbox[0].ID)
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		f := newNoteFixture(t)

		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "help")
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, f.bob.ID, note.ID))
		assert.ErrorIs(t, f.svc.Delete(ctx, f.bob.ID, note.ID), ErrNoteNotFound)
	})

	t.Run("sender cannot delete from the recipient inbox", func(t *testing.T) {
		f := newNoteFixture(t)

		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "help")
		require.NoError(t, err)

		assert.ErrorIs(t, f.svc.Delete(ctx, f.alice.ID, note.ID), ErrNoteNotFound)
	})
}

func TestNoteService_Listing(t *testing.T) {
	ctx := context.Background()

	t.Run("inbox and outbox sort newest first", func(t *testing.T) {
		f := newNoteFixture(t)

		first, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "first")
		require.NoError(t, err)
		second, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "second")
		require.NoError(t, err)
		// Listing order depends on delivered_at, so nudge the first note back.
		f.notes.mu.Lock()
		f.notes.notes[first.ID].DeliveredAt = f.notes.notes[first.ID].DeliveredAt.Add(-time.Minute)
		f.notes.mu.Unlock()

		inbox, err := f.svc.Inbox(ctx, f.bob.ID)
		require.NoError(t, err)
		require.Len(t, inbox, 2)
		assert.Equal(t, second.ID, inbox[0].ID)
		assert.Equal(t, first.ID, inbox[1].ID)

		outbox, err := f.svc.Outbox(ctx, f.alice.ID)
		require.NoError(t, err)
		require.Len(t, outbox, 2)
		assert.Equal(t, second.ID, outbox[0].ID)
	})

	t.Run("expired notes disappear from every view", func(t *testing.T) {
		f := newNoteFixture(t)

		note, err := f.svc.Send(ctx, f.alice.ID, f.bob.ID, "help")
		require.NoError(t, err)

		f.notes.now = func() time.Time { return note.ExpiresAt.Add(time.Second) }

		inbox, err := f.svc.Inbox(ctx, f.bob.ID)
		require.NoError(t, err)
		assert.Empty(t, inbox)

		outbox, err := f.svc.Outbox(ctx, f.alice.ID)
		require.NoError(t, err)
		assert.Empty(t, outbox)

		_, err = f.svc.MarkRead(ctx, f.bob.ID, note.ID)
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})
}
