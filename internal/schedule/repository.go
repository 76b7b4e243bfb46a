package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrBlockNotFound is returned when a schedule block does not exist or is not owned by the caller.
var ErrBlockNotFound = errors.New("schedule block not found")

// Repository provides persistence for users' weekly schedule blocks.
type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Entry, error)
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	Create(ctx context.Context, e *Entry) error
	// CreateMany inserts every entry or none of them.
	CreateMany(ctx context.Context, entries []Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
