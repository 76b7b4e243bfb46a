package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidBlock is returned when a block fails its shape checks.
var ErrInvalidBlock = errors.New("invalid schedule block")

// Block is a single scheduled time range at a location on one weekday.
type Block struct {
	Day      Weekday `json:"day"`
	Start    Clock   `json:"startTime"`
	End      Clock   `json:"endTime"`
	Location string  `json:"location"`
}

// Validate checks that the day is known, the range is non-empty and the location is set.
func (b Block) Validate() error {
	switch {
	case !b.Day.Valid():
		return fmt.Errorf("%w: unknown weekday %q", ErrInvalidBlock, b.Day)
	case !b.Start.Valid() || !b.End.Valid():
		return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrInvalidClock)
	case b.Start >= b.End:
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidBlock)
	case strings.TrimSpace(b.Location) == "":
		return fmt.Errorf("%w: location is required", ErrInvalidBlock)
	}
	return nil
}

// Entry is a persisted Block owned by a user.
type Entry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Block     Block
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot is a bare time interval, used to report overlaps.
type Slot struct {
	Start Clock `json:"startTime"`
	End   Clock `json:"endTime"`
}

// MemberSchedule pairs a teammate identifier with that teammate's blocks.
type MemberSchedule struct {
	MemberID string
	Blocks   []Block
}

// Colocation is a group of people sharing an identical location and time range.
type Colocation struct {
	Location string   `json:"location"`
	Start    Clock    `json:"startTime"`
	End      Clock    `json:"endTime"`
	Members  []string `json:"members"`
}

// Blocks extracts the Block values from a list of entries, preserving order.
func Blocks(entries []Entry) []Block {
	out := make([]Block, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Block)
	}
	return out
}
