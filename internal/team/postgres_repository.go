package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/workflex/workflex/internal/database"
	"github.com/workflex/workflex/internal/permission"
)

const (
	teamColumns   = `id, name, description, owner_id, created_at, updated_at`
	memberColumns = `id, team_id, user_id, name, avatar, role, joined_at`
	inviteColumns = `id, team_id, email, role, inviter_id, status, created_at, expires_at, accepted_at, accepted_by`
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	db database.Querier
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(db database.Querier) Repository {
	return &PostgresRepository{db: db}
}

// Create inserts the team and its initial members in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO teams (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	if err := tx.QueryRow(ctx, query, t.Name, t.Description, t.OwnerID).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}

	for i := range t.Members {
		if err := insertMember(ctx, tx, t.ID, &t.Members[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing team: %w", err)
	}

	return nil
}

// GetByID retrieves a team with its members.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	t, err := scanTeam(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	members, err := r.membersOf(ctx, []uuid.UUID{t.ID})
	if err != nil {
		return nil, err
	}
	t.Members = members[t.ID]
	if t.Members == nil {
		t.Members = []Member{}
	}

	return t, nil
}

// ListByUser returns the teams userID belongs to, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE id IN (SELECT team_id FROM team_members WHERE user_id = $1)
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	if len(teams) == 0 {
		return teams, nil
	}

	ids := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	members, err := r.membersOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		teams[i].Members = members[teams[i].ID]
		if teams[i].Members == nil {
			teams[i].Members = []Member{}
		}
	}

	return teams, nil
}

// Update applies the non-nil fields and returns the updated team.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Team, error) {
	query := `
		UPDATE teams
		SET name = COALESCE($1, name), description = COALESCE($2, description), updated_at = NOW()
		WHERE id = $3
		RETURNING ` + teamColumns

	t, err := scanTeam(r.db.QueryRow(ctx, query, fields.Name, fields.Description, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("updating team: %w", err)
	}

	members, err := r.membersOf(ctx, []uuid.UUID{t.ID})
	if err != nil {
		return nil, err
	}
	t.Members = members[t.ID]
	if t.Members == nil {
		t.Members = []Member{}
	}

	return t, nil
}

// Delete removes a team. Members and invites go with it (ON DELETE CASCADE).
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	return nil
}

// AddMember inserts a membership row. Returns ErrAlreadyMember when the user
// already belongs to the team.
func (r *PostgresRepository) AddMember(ctx context.Context, teamID uuid.UUID, m *Member) error {
	return insertMember(ctx, r.db, teamID, m)
}

// RemoveMember deletes a membership row.
func (r *PostgresRepository) RemoveMember(ctx context.Context, teamID, memberID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE id = $1 AND team_id = $2`, memberID, teamID)
	if err != nil {
		return fmt.Errorf("removing member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// UpdateMemberRole sets a member's role.
func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, teamID, memberID uuid.UUID, role permission.Role) error {
	result, err := r.db.Exec(ctx,
		`UPDATE team_members SET role = $1 WHERE id = $2 AND team_id = $3`,
		string(role), memberID, teamID,
	)
	if err != nil {
		return fmt.Errorf("updating member role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// CreateInvite inserts a new invite.
func (r *PostgresRepository) CreateInvite(ctx context.Context, inv *Invite) error {
	query := `
		INSERT INTO team_invites (team_id, email, role, inviter_id, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		inv.TeamID,
		inv.Email,
		string(inv.Role),
		inv.InviterID,
		string(inv.Status),
		inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrTeamNotFound
		}
		return fmt.Errorf("inserting invite: %w", err)
	}

	return nil
}

// GetInvite retrieves a single invite.
func (r *PostgresRepository) GetInvite(ctx context.Context, id uuid.UUID) (*Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM team_invites WHERE id = $1`

	inv, err := scanInvite(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("querying invite: %w", err)
	}

	return inv, nil
}

// ListInvitesByTeam returns every invite of a team, newest first.
func (r *PostgresRepository) ListInvitesByTeam(ctx context.Context, teamID uuid.UUID) ([]Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM team_invites
		WHERE team_id = $1
		ORDER BY created_at DESC`

	return r.listInvites(ctx, query, teamID)
}

// ListPendingInvitesByEmail returns the pending invites addressed to email, newest first.
func (r *PostgresRepository) ListPendingInvitesByEmail(ctx context.Context, email string) ([]Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM team_invites
		WHERE email = $1 AND status = 'pending'
		ORDER BY created_at DESC`

	return r.listInvites(ctx, query, email)
}

// AcceptInvite claims the invite and inserts the membership in one
// transaction. The conditional UPDATE takes the invite's row lock, so a
// concurrent decline or cancel either wins first or finds nothing pending.
func (r *PostgresRepository) AcceptInvite(ctx context.Context, inviteID uuid.UUID, m *Member, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE team_invites
		SET status = 'accepted', accepted_at = $2, accepted_by = $3
		WHERE id = $1 AND status = 'pending' AND expires_at > $2
		RETURNING team_id, role`

	var (
		teamID uuid.UUID
		role   string
	)
	if err := tx.QueryRow(ctx, query, inviteID, now, m.UserID).Scan(&teamID, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInviteInvalid
		}
		return fmt.Errorf("claiming invite: %w", err)
	}

	m.Role = permission.Role(role)
	if err := insertMember(ctx, tx, teamID, m); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing invite acceptance: %w", err)
	}

	return nil
}

// UpdateInviteStatus moves a pending invite to status.
func (r *PostgresRepository) UpdateInviteStatus(ctx context.Context, id uuid.UUID, status InviteStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE team_invites SET status = $1 WHERE id = $2 AND status = 'pending'`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("updating invite status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrInviteInvalid
	}

	return nil
}

// ExpireInvites marks pending invites whose expiry is at or before now as
// expired and returns how many were changed.
func (r *PostgresRepository) ExpireInvites(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE team_invites SET status = 'expired' WHERE status = 'pending' AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("expiring invites: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *PostgresRepository) membersOf(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID][]Member, error) {
	ids := make([]string, 0, len(teamIDs))
	for _, id := range teamIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT ` + memberColumns + `
		FROM team_members
		WHERE team_id = ANY($1::uuid[])
		ORDER BY joined_at ASC`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]Member, len(teamIDs))
	for rows.Next() {
		var (
			m      Member
			teamID uuid.UUID
			role   string
		)
		if err := rows.Scan(&m.ID, &teamID, &m.UserID, &m.Name, &m.Avatar, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning member row: %w", err)
		}
		m.Role = permission.Role(role)
		result[teamID] = append(result[teamID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating member rows: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) listInvites(ctx context.Context, query string, arg any) ([]Invite, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing invites: %w", err)
	}
	defer rows.Close()

	invites := []Invite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invite row: %w", err)
		}
		invites = append(invites, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invite rows: %w", err)
	}

	return invites, nil
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertMember(ctx context.Context, q rowQuerier, teamID uuid.UUID, m *Member) error {
	query := `
		INSERT INTO team_members (team_id, user_id, name, avatar, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, joined_at`

	err := q.QueryRow(ctx, query, teamID, m.UserID, m.Name, m.Avatar, string(m.Role)).Scan(&m.ID, &m.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyMember
			case "23503":
				return ErrTeamNotFound
			}
		}
		return fmt.Errorf("inserting member: %w", err)
	}

	return nil
}

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanInvite(row pgx.Row) (*Invite, error) {
	var (
		inv          Invite
		role, status string
	)
	err := row.Scan(
		&inv.ID, &inv.TeamID, &inv.Email, &role, &inv.InviterID, &status,
		&inv.CreatedAt, &inv.ExpiresAt, &inv.AcceptedAt, &inv.AcceptedBy,
	)
	if err != nil {
		return nil, err
	}
	inv.Role = permission.Role(role)
	inv.Status = InviteStatus(status)
	return &inv, nil
}
