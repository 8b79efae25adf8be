package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mlukic/flare/internal/domain"
	"github.com/mlukic/flare/internal/repository"
)

type FriendRepo struct {
	pool *pgxpool.Pool
}

func NewFriendRepo(pool *pgxpool.Pool) *FriendRepo {
	return &FriendRepo{pool: pool}
}

func (r *FriendRepo) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, requester_id, recipient_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, req.ID, req.RequesterID, req.RecipientID, req.Status, req.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicateRequest
	}
	return err
}

func (r *FriendRepo) GetRequestByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, created_at
		FROM friend_requests
		WHERE id = $1`
	var req domain.FriendRequest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.RequesterID, &req.RecipientID, &req.Status, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *FriendRepo) GetPendingBetween(ctx context.Context, userA, userB uuid.UUID) (*domain.FriendRequest, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, created_at
		FROM friend_requests
		WHERE status = 'pending'
			AND ((requester_id = $1 AND recipient_id = $2)
			  OR (requester_id = $2 AND recipient_id = $1))
		LIMIT 1`
	var req domain.FriendRequest
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(
		&req.ID, &req.RequesterID, &req.RecipientID, &req.Status, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *FriendRepo) ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	query := `
		SELECT r.id, r.requester_id, r.recipient_id, r.status, r.created_at,
			u.username, u.email
		FROM friend_requests r
		JOIN users u ON r.requester_id = u.id
		WHERE r.recipient_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.FriendRequest
	for rows.Next() {
		var req domain.FriendRequest
		if err := rows.Scan(
			&req.ID, &req.RequesterID, &req.RecipientID, &req.Status, &req.CreatedAt,
			&req.RequesterUsername, &req.RequesterEmail,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *FriendRepo) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	query := `
		SELECT r.id, r.requester_id, r.recipient_id, r.status, r.created_at,
			u.username, u.email
		FROM friend_requests r
		JOIN users u ON r.recipient_id = u.id
		WHERE r.requester_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.FriendRequest
	for rows.Next() {
		var req domain.FriendRequest
		if err := rows.Scan(
			&req.ID, &req.RequesterID, &req.RecipientID, &req.Status, &req.CreatedAt,
			&req.RecipientUsername, &req.RecipientEmail,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *FriendRepo) DeleteRequest(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FriendRepo) CreateFriendship(ctx context.Context, f *domain.Friendship) error {
	// ON CONFLICT keeps concurrent accepts of the same pair idempotent.
	query := `
		INSERT INTO friendships (id, user1_id, user2_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user1_id, user2_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, f.ID, f.User1ID, f.User2ID, f.CreatedAt)
	return err
}

func (r *FriendRepo) AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	u1, u2 := userA, userB
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user1_id = $1 AND user2_id = $2)`,
		u1, u2,
	).Scan(&exists)
	return exists, err
}

func (r *FriendRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	query := `
		SELECT
			CASE WHEN f.user1_id = $1 THEN u2.id ELSE u1.id END AS friend_id,
			CASE WHEN f.user1_id = $1 THEN u2.username ELSE u1.username END AS friend_username,
			CASE WHEN f.user1_id = $1 THEN u2.email ELSE u1.email END AS friend_email
		FROM friendships f
		JOIN users u1 ON f.user1_id = u1.id
		JOIN users u2 ON f.user2_id = u2.id
		WHERE f.user1_id = $1 OR f.user2_id = $1
		ORDER BY friend_username ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []domain.Friend
	for rows.Next() {
		var f domain.Friend
		if err := rows.Scan(&f.ID, &f.Username, &f.Email); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}
