package schedule

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/auth"
)

// Service manages the caller's own weekly schedule.
type Service struct {
	repo Repository
}

// NewService creates a new schedule Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the caller's blocks, optionally restricted to one day.
func (s *Service) List(ctx context.Context, identity auth.Identity, day *Weekday) ([]Entry, error) {
	entries, err := s.repo.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return entries, nil
	}

	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Block.Day == *day {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Create adds a block to the caller's schedule.
func (s *Service) Create(ctx context.Context, identity auth.Identity, b Block) (*Entry, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	e := &Entry{UserID: identity.UserID, Block: b}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces one of the caller's blocks.
func (s *Service) Update(ctx context.Context, identity auth.Identity, id uuid.UUID, b Block) (*Entry, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	e := &Entry{ID: id, UserID: identity.UserID, Block: b}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes one of the caller's blocks.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, identity.UserID)
}

// ApplyToAllDays copies a block's time range and location onto every other
// weekday that has no block overlapping it. The copies are stored together or
// not at all; it returns the created entries.
func (s *Service) ApplyToAllDays(ctx context.Context, identity auth.Identity, id uuid.UUID) ([]Entry, error) {
	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if source.UserID != identity.UserID {
		return nil, ErrBlockNotFound
	}

	existing, err := s.repo.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	all := Blocks(existing)

	copies := []Entry{}
	for _, day := range Weekdays() {
		if day == source.Block.Day {
			continue
		}

		candidate := source.Block
		candidate.Day = day
		if len(FindOverlappingSlots(candidate, ForDay(all, day))) > 0 {
			continue
		}
		copies = append(copies, Entry{UserID: identity.UserID, Block: candidate})
	}

	if len(copies) > 0 {
		if err := s.repo.CreateMany(ctx, copies); err != nil {
			return nil, err
		}
	}

	slog.Info("schedule block applied to all days", "blockId", id, "created", len(copies))
	return copies, nil
}
