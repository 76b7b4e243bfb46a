// Package board assembles the team schedule view: the caller's blocks for a
// day next to every visible teammate's, with overlaps and co-located groups.
package board

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/permission"
	"github.com/workflex/workflex/internal/schedule"
	"github.com/workflex/workflex/internal/team"
)

// Overlap lists where one teammate block intersects the caller's blocks.
type Overlap struct {
	Block schedule.Block
	Slots []schedule.Slot
}

// Row is one teammate on the board.
type Row struct {
	MemberID uuid.UUID
	UserID   uuid.UUID
	Name     string
	Avatar   *string
	Role     permission.Role
	TeamID   uuid.UUID
	TeamName string
	Blocks   []schedule.Block
	Overlaps []Overlap
}

// Board is the assembled view for one weekday.
type Board struct {
	Day       schedule.Weekday
	You       []schedule.Block
	Members   []Row
	Colocated []schedule.Colocation
}

// Service builds boards from team membership and stored schedules.
type Service struct {
	teams     team.Repository
	schedules schedule.Repository
}

// NewService creates a new board Service.
func NewService(teams team.Repository, schedules schedule.Repository) *Service {
	return &Service{teams: teams, schedules: schedules}
}

// Build returns the board for day. An empty teamIDs means every team of the
// caller; otherwise requested teams the caller does not belong to are skipped.
// Only teams where the caller may view schedules contribute teammates.
func (s *Service) Build(ctx context.Context, identity auth.Identity, day schedule.Weekday, teamIDs []uuid.UUID) (*Board, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("%w: unknown weekday %q", schedule.ErrInvalidBlock, day)
	}

	teams, err := s.teams.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	if len(teamIDs) > 0 {
		teams = slices.DeleteFunc(teams, func(t team.Team) bool {
			return !slices.Contains(teamIDs, t.ID)
		})
	}
	teams = team.TeamsWithPermission(identity.UserID, teams, permission.ViewSchedule)

	rows := make([]Row, 0)
	seen := map[uuid.UUID]bool{identity.UserID: true}
	for _, t := range teams {
		for _, m := range t.Members {
			if seen[m.UserID] {
				continue
			}
			seen[m.UserID] = true
			rows = append(rows, Row{
				MemberID: m.ID,
				UserID:   m.UserID,
				Name:     m.Name,
				Avatar:   m.Avatar,
				Role:     m.Role,
				TeamID:   t.ID,
				TeamName: t.Name,
			})
		}
	}

	userIDs := make([]uuid.UUID, 0, len(rows)+1)
	userIDs = append(userIDs, identity.UserID)
	for _, r := range rows {
		userIDs = append(userIDs, r.UserID)
	}
	entries, err := s.schedules.ListByUsers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("loading schedules: %w", err)
	}

	you := schedule.ForDay(schedule.Blocks(entries[identity.UserID]), day)
	members := make([]schedule.MemberSchedule, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		r.Blocks = schedule.ForDay(schedule.Blocks(entries[r.UserID]), day)
		r.Overlaps = make([]Overlap, 0)
		for _, b := range r.Blocks {
			if slots := schedule.FindOverlappingSlots(b, you); len(slots) > 0 {
				r.Overlaps = append(r.Overlaps, Overlap{Block: b, Slots: slots})
			}
		}
		members = append(members, schedule.MemberSchedule{MemberID: r.MemberID.String(), Blocks: r.Blocks})
	}

	return &Board{
		Day:       day,
		You:       you,
		Members:   rows,
		Colocated: schedule.FindColocated(day, you, members),
	}, nil
}

// Locations returns the distinct locations on the board, sorted.
func Locations(b *Board) []string {
	set := make(map[string]struct{})
	for _, blk := range b.You {
		set[blk.Location] = struct{}{}
	}
	for _, r := range b.Members {
		for _, blk := range r.Blocks {
			set[blk.Location] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for loc := range set {
		out = append(out, loc)
	}
	slices.Sort(out)
	return out
}
