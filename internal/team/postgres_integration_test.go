//go:build integration

package team_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflex/workflex/internal/database/dbtest"
	"github.com/workflex/workflex/internal/permission"
	"github.com/workflex/workflex/internal/team"
)

func TestPostgresRepository_Integration(t *testing.T) {
	db := dbtest.Postgres(t)
	repo := team.NewRepository(db.Pool())
	svc := team.NewService(repo, time.Hour)
	ctx := context.Background()
	owner, bob := user("owner"), user("bob")

	tm, err := svc.Create(ctx, owner, "Platform", "infra")
	require.NoError(t, err)

	inv, err := svc.Invite(ctx, owner, tm.ID, bob.Email, permission.RoleMember)
	require.NoError(t, err)

	joined, err := svc.AcceptInvite(ctx, bob, inv.ID)
	require.NoError(t, err)
	require.Len(t, joined.Members, 2)

	bobMember := memberOf(t, joined, bob.UserID)
	_, err = svc.UpdateMemberRole(ctx, owner, tm.ID, bobMember.ID, permission.RoleAdmin)
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, bob)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	role, ok := team.GetUserRole(bob.UserID, &mine[0])
	require.True(t, ok)
	assert.Equal(t, permission.RoleAdmin, role)

	// A second owner row is rejected by the partial unique index.
	err = repo.AddMember(ctx, tm.ID, &team.Member{UserID: uuid.New(), Name: "Mallory", Role: permission.RoleOwner})
	assert.Error(t, err)

	stale, err := svc.Invite(ctx, owner, tm.ID, "late@example.com", permission.RoleGuest)
	require.NoError(t, err)
	n, err := repo.ExpireInvites(ctx, stale.ExpiresAt.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, svc.Delete(ctx, owner, tm.ID))
	_, err = repo.GetByID(ctx, tm.ID)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}
