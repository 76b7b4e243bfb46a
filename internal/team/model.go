package team

import (
	"time"

	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/permission"
)

// Team is a group of users with a single owner. Members are loaded with the team.
type Team struct {
	ID          uuid.UUID
	Name        string
	Description string
	OwnerID     uuid.UUID
	Members     []Member
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Member is a user's membership in a team.
type Member struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Name     string
	Avatar   *string
	Role     permission.Role
	JoinedAt time.Time
}

// MemberByID returns the member with the given membership id.
func (t *Team) MemberByID(id uuid.UUID) (*Member, bool) {
	for i := range t.Members {
		if t.Members[i].ID == id {
			return &t.Members[i], true
		}
	}
	return nil, false
}

// MemberByUser returns the membership of userID, if any.
func (t *Team) MemberByUser(userID uuid.UUID) (*Member, bool) {
	for i := range t.Members {
		if t.Members[i].UserID == userID {
			return &t.Members[i], true
		}
	}
	return nil, false
}

// UpdateFields holds the team attributes that can be edited. Nil fields are left unchanged.
type UpdateFields struct {
	Name        *string
	Description *string
}

// InviteStatus is the lifecycle state of an invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
)

// Invite offers a role in a team to an e-mail address.
type Invite struct {
	ID         uuid.UUID
	TeamID     uuid.UUID
	Email      string
	Role       permission.Role
	InviterID  uuid.UUID
	Status     InviteStatus
	CreatedAt  time.Time
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	AcceptedBy *uuid.UUID
}

// Usable reports whether the invite is still pending and not past its expiry at now.
func (i *Invite) Usable(now time.Time) bool {
	return i.Status == InviteStatusPending && now.Before(i.ExpiresAt)
}
