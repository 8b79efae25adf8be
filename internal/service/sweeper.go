package service

import (
	"context"
	"log"
	"time"

	"github.com/mlukic/flare/internal/repository"
)

// Sweeper reclaims expired notes. Reads already filter on expires_at,
// so the sweep only bounds how long dead rows linger in storage.
type Sweeper struct {
	noteRepo repository.NoteRepository
	interval time.Duration
}

func NewSweeper(noteRepo repository.NoteRepository, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		noteRepo: noteRepo,
		interval: interval,
	}
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil && ctx.Err() == nil {
				log.Printf("sweeper: %v", err)
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	deleted, err := s.noteRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("sweeper: removed %d expired notes", deleted)
	}
	return nil
}
