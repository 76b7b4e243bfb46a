package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/permission"
)

var (
	// ErrForbidden is returned when the caller lacks the permission an operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrOwnerImmutable is returned for any attempt to remove, demote or
	// replace the team owner, or to promote someone to owner.
	ErrOwnerImmutable = errors.New("team owner cannot be changed")

	// ErrInvalidRole is returned for unknown roles and for roles that cannot be assigned.
	ErrInvalidRole = errors.New("invalid role")
)

// Service implements team operations on behalf of an authenticated caller.
type Service struct {
	repo      Repository
	inviteTTL time.Duration
	now       func() time.Time
}

// NewService creates a new team Service. Invites expire inviteTTL after creation.
func NewService(repo Repository, inviteTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		inviteTTL: inviteTTL,
		now:       time.Now,
	}
}

// authorize loads the team and checks that the caller holds p in it.
func (s *Service) authorize(ctx context.Context, identity auth.Identity, teamID uuid.UUID, p permission.Permission) (*Team, error) {
	t, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	role, ok := GetUserRole(identity.UserID, t)
	if !ok {
		return nil, fmt.Errorf("%w: not a member of this team", ErrForbidden)
	}
	if !permission.HasPermission(role, p) {
		return nil, fmt.Errorf("%w: role %s does not grant %s", ErrForbidden, role, p)
	}

	return t, nil
}

// Create makes a new team with the caller as its single owner.
func (s *Service) Create(ctx context.Context, identity auth.Identity, name, description string) (*Team, error) {
	t := &Team{
		Name:        name,
		Description: description,
		OwnerID:     identity.UserID,
		Members: []Member{{
			UserID: identity.UserID,
			Name:   identity.Name,
			Role:   permission.RoleOwner,
		}},
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	slog.Info("team created", "teamId", t.ID, "ownerId", t.OwnerID)
	return t, nil
}

// Get returns a team the caller can view.
func (s *Service) Get(ctx context.Context, identity auth.Identity, teamID uuid.UUID) (*Team, error) {
	return s.authorize(ctx, identity, teamID, permission.ViewTeam)
}

// ListMine returns the teams the caller belongs to.
func (s *Service) ListMine(ctx context.Context, identity auth.Identity) ([]Team, error) {
	return s.repo.ListByUser(ctx, identity.UserID)
}

// Update edits a team's name or description.
func (s *Service) Update(ctx context.Context, identity auth.Identity, teamID uuid.UUID, fields UpdateFields) (*Team, error) {
	if _, err := s.authorize(ctx, identity, teamID, permission.EditTeam); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, teamID, fields)
}

// Delete removes a team with its members and invites.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, teamID uuid.UUID) error {
	if _, err := s.authorize(ctx, identity, teamID, permission.DeleteTeam); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, teamID); err != nil {
		return err
	}

	slog.Info("team deleted", "teamId", teamID, "by", identity.UserID)
	return nil
}

// RemoveMember removes a non-owner member from the team.
func (s *Service) RemoveMember(ctx context.Context, identity auth.Identity, teamID, memberID uuid.UUID) error {
	t, err := s.authorize(ctx, identity, teamID, permission.RemoveMember)
	if err != nil {
		return err
	}

	target, ok := t.MemberByID(memberID)
	if !ok {
		return ErrMemberNotFound
	}
	if target.Role == permission.RoleOwner {
		return ErrOwnerImmutable
	}

	return s.repo.RemoveMember(ctx, teamID, memberID)
}

// UpdateMemberRole changes a member's role. The owner's role is fixed and no
// one can be made owner; setting the owner to owner is a no-op.
func (s *Service) UpdateMemberRole(ctx context.Context, identity auth.Identity, teamID, memberID uuid.UUID, role permission.Role) (*Member, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	t, err := s.authorize(ctx, identity, teamID, permission.ChangeRole)
	if err != nil {
		return nil, err
	}

	target, ok := t.MemberByID(memberID)
	if !ok {
		return nil, ErrMemberNotFound
	}
	if target.Role == permission.RoleOwner {
		if role == permission.RoleOwner {
			return target, nil
		}
		return nil, ErrOwnerImmutable
	}
	if role == permission.RoleOwner {
		return nil, ErrOwnerImmutable
	}

	if err := s.repo.UpdateMemberRole(ctx, teamID, memberID, role); err != nil {
		return nil, err
	}

	updated := *target
	updated.Role = role
	return &updated, nil
}

// Leave removes the caller's own membership. The owner cannot leave.
func (s *Service) Leave(ctx context.Context, identity auth.Identity, teamID uuid.UUID) error {
	t, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	m, ok := t.MemberByUser(identity.UserID)
	if !ok {
		return fmt.Errorf("%w: not a member of this team", ErrForbidden)
	}
	if m.Role == permission.RoleOwner {
		return ErrOwnerImmutable
	}

	return s.repo.RemoveMember(ctx, teamID, m.ID)
}

// Invite offers a non-owner role in the team to an e-mail address.
func (s *Service) Invite(ctx context.Context, identity auth.Identity, teamID uuid.UUID, email string, role permission.Role) (*Invite, error) {
	if !role.Valid() || role == permission.RoleOwner {
		return nil, fmt.Errorf("%w: %q cannot be offered in an invite", ErrInvalidRole, role)
	}

	if _, err := s.authorize(ctx, identity, teamID, permission.AddMember); err != nil {
		return nil, err
	}

	inv := &Invite{
		TeamID:    teamID,
		Email:     auth.NormalizeEmail(email),
		Role:      role,
		InviterID: identity.UserID,
		Status:    InviteStatusPending,
		ExpiresAt: s.now().Add(s.inviteTTL),
	}
	if err := s.repo.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}

	slog.Info("invite created", "teamId", teamID, "inviteId", inv.ID, "role", role)
	return inv, nil
}

// ListInvites returns every invite of a team.
func (s *Service) ListInvites(ctx context.Context, identity auth.Identity, teamID uuid.UUID) ([]Invite, error) {
	if _, err := s.authorize(ctx, identity, teamID, permission.AddMember); err != nil {
		return nil, err
	}
	return s.repo.ListInvitesByTeam(ctx, teamID)
}

// MyInvites returns the pending, unexpired invites addressed to the caller.
func (s *Service) MyInvites(ctx context.Context, identity auth.Identity) ([]Invite, error) {
	invites, err := s.repo.ListPendingInvitesByEmail(ctx, auth.NormalizeEmail(identity.Email))
	if err != nil {
		return nil, err
	}

	now := s.now()
	usable := make([]Invite, 0, len(invites))
	for i := range invites {
		if invites[i].Usable(now) {
			usable = append(usable, invites[i])
		}
	}
	return usable, nil
}

// inviteFor loads an invite addressed to the caller.
func (s *Service) inviteFor(ctx context.Context, identity auth.Identity, inviteID uuid.UUID) (*Invite, error) {
	inv, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.Email != auth.NormalizeEmail(identity.Email) {
		return nil, fmt.Errorf("%w: invite is addressed to another user", ErrForbidden)
	}
	return inv, nil
}

// AcceptInvite joins the caller to the invite's team with the offered role.
// The membership and the accepted status are written together; an invite
// declined or cancelled meanwhile yields ErrInviteInvalid.
func (s *Service) AcceptInvite(ctx context.Context, identity auth.Identity, inviteID uuid.UUID) (*Team, error) {
	inv, err := s.inviteFor(ctx, identity, inviteID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !inv.Usable(now) {
		return nil, ErrInviteInvalid
	}

	t, err := s.repo.GetByID(ctx, inv.TeamID)
	if err != nil {
		return nil, err
	}
	if IsTeamMember(identity.UserID, t) {
		return nil, ErrAlreadyMember
	}

	m := &Member{
		UserID: identity.UserID,
		Name:   identity.Name,
		Role:   inv.Role,
	}
	if err := s.repo.AcceptInvite(ctx, inv.ID, m, now); err != nil {
		return nil, err
	}

	slog.Info("invite accepted", "teamId", t.ID, "inviteId", inv.ID, "userId", identity.UserID)
	return s.repo.GetByID(ctx, t.ID)
}

// DeclineInvite rejects an invite addressed to the caller.
func (s *Service) DeclineInvite(ctx context.Context, identity auth.Identity, inviteID uuid.UUID) error {
	inv, err := s.inviteFor(ctx, identity, inviteID)
	if err != nil {
		return err
	}
	if inv.Status != InviteStatusPending {
		return ErrInviteInvalid
	}

	return s.repo.UpdateInviteStatus(ctx, inv.ID, InviteStatusDeclined)
}

// CancelInvite withdraws a pending invite of the team.
func (s *Service) CancelInvite(ctx context.Context, identity auth.Identity, teamID, inviteID uuid.UUID) error {
	if _, err := s.authorize(ctx, identity, teamID, permission.AddMember); err != nil {
		return err
	}

	inv, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if inv.TeamID != teamID {
		return ErrInviteNotFound
	}
	if inv.Status != InviteStatusPending {
		return ErrInviteInvalid
	}

	return s.repo.UpdateInviteStatus(ctx, inv.ID, InviteStatusDeclined)
}

// Permissions returns the caller's role in a team and what it grants.
func (s *Service) Permissions(ctx context.Context, identity auth.Identity, teamID uuid.UUID) (permission.Role, []permission.Permission, error) {
	t, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return "", nil, err
	}

	role, ok := GetUserRole(identity.UserID, t)
	if !ok {
		return "", nil, fmt.Errorf("%w: not a member of this team", ErrForbidden)
	}

	return role, permission.Granted(role), nil
}
