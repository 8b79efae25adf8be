package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mlukic/flare/internal/domain"
)

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

const noteColumns = `
	n.id, n.sender_id, n.recipient_id, n.content, n.status,
	n.delivered_at, n.read_at, n.expires_at,
	s.username, s.email, t.username, t.email`

const noteJoins = `
	FROM notes n
	JOIN users s ON n.sender_id = s.id
	JOIN users t ON n.recipient_id = t.id`

func (r *NoteRepo) Create(ctx context.Context, note *domain.Note) error {
	query := `
		INSERT INTO notes (id, sender_id, recipient_id, content, status, delivered_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		note.ID, note.SenderID, note.RecipientID, note.Content,
		note.Status, note.DeliveredAt, note.ExpiresAt,
	)
	return err
}

func (r *NoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + noteJoins + `
		WHERE n.id = $1 AND n.expires_at > now()`
	return r.scanNote(r.pool.QueryRow(ctx, query, id))
}

func (r *NoteRepo) GetForRecipient(ctx context.Context, id, recipientID uuid.UUID) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + noteJoins + `
		WHERE n.id = $1 AND n.recipient_id = $2
			AND NOT n.recipient_deleted
			AND n.expires_at > now()`
	return r.scanNote(r.pool.QueryRow(ctx, query, id, recipientID))
}

func (r *NoteRepo) ListInbox(ctx context.Context, recipientID uuid.UUID) ([]domain.Note, error) {
	query := `SELECT ` + noteColumns + noteJoins + `
		WHERE n.recipient_id = $1
			AND NOT n.recipient_deleted
			AND n.expires_at > now()
		ORDER BY n.delivered_at DESC`
	return r.listNotes(ctx, query, recipientID)
}

func (r *NoteRepo) ListOutbox(ctx context.Context, senderID uuid.UUID) ([]domain.Note, error) {
	// The outbox deliberately ignores recipient_deleted: a note the
	// recipient cleared still shows in the sender's history until it
	// expires.
	query := `SELECT ` + noteColumns + noteJoins + `
		WHERE n.sender_id = $1 AND n.expires_at > now()
		ORDER BY n.delivered_at DESC`
	return r.listNotes(ctx, query, senderID)
}

func (r *NoteRepo) MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) (bool, error) {
	// Guarded on status so the transition fires at most once and read_at
	// keeps the first caller's timestamp.
	query := `
		UPDATE notes
		SET status = 'read', read_at = $2
		WHERE id = $1 AND status = 'delivered' AND expires_at > now()`
	tag, err := r.pool.Exec(ctx, query, id, readAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NoteRepo) HideFromInbox(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	query := `
		UPDATE notes
		SET recipient_deleted = TRUE
		WHERE id = $1 AND recipient_id = $2
			AND NOT recipient_deleted
			AND expires_at > now()`
	tag, err := r.pool.Exec(ctx, query, id, recipientID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NoteRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NoteRepo) scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	err := row.Scan(
		&n.ID, &n.SenderID, &n.RecipientID, &n.Content, &n.Status,
		&n.DeliveredAt, &n.ReadAt, &n.ExpiresAt,
		&n.SenderUsername, &n.SenderEmail, &n.RecipientUsername, &n.RecipientEmail,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepo) listNotes(ctx context.Context, query string, arg any) ([]domain.Note, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(
			&n.ID, &n.SenderID, &n.RecipientID, &n.Content, &n.Status,
			&n.DeliveredAt, &n.ReadAt, &n.ExpiresAt,
			&n.SenderUsername, &n.SenderEmail, &n.RecipientUsername, &n.RecipientEmail,
		); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
