package team

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/permission"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrMemberNotFound is returned when a membership does not exist in the team.
var ErrMemberNotFound = errors.New("member not found")

// ErrAlreadyMember is returned when adding a user who already belongs to the team.
var ErrAlreadyMember = errors.New("user is already a member of this team")

// ErrInviteNotFound is returned when an invite record is not found.
var ErrInviteNotFound = errors.New("invite not found")

// ErrInviteInvalid is returned when an invite is no longer pending or has
// expired, including when another request changed it first.
var ErrInviteInvalid = errors.New("invite is no longer valid")

// Repository persists teams, their members and invites.
type Repository interface {
	Create(ctx context.Context, t *Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Team, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Team, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, teamID uuid.UUID, m *Member) error
	RemoveMember(ctx context.Context, teamID, memberID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, teamID, memberID uuid.UUID, role permission.Role) error

	CreateInvite(ctx context.Context, inv *Invite) error
	GetInvite(ctx context.Context, id uuid.UUID) (*Invite, error)
	ListInvitesByTeam(ctx context.Context, teamID uuid.UUID) ([]Invite, error)
	ListPendingInvitesByEmail(ctx context.Context, email string) ([]Invite, error)
	// AcceptInvite marks a pending invite unexpired at now as accepted by
	// m.UserID and adds m to the invite's team with the invite's role. Both
	// happen or neither does; ErrInviteInvalid means the invite was no
	// longer pending or had expired.
	AcceptInvite(ctx context.Context, inviteID uuid.UUID, m *Member, now time.Time) error
	// UpdateInviteStatus moves a pending invite to status. ErrInviteInvalid
	// means it was no longer pending.
	UpdateInviteStatus(ctx context.Context, id uuid.UUID, status InviteStatus) error
	ExpireInvites(ctx context.Context, now time.Time) (int64, error)
}
