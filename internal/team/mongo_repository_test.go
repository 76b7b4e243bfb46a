package team

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/workflex/workflex/internal/permission"
)

func toD(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func sampleTeamDocument(teamID, ownerID uuid.UUID) teamDocument {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return teamDocument{
		ID:          teamID.String(),
		Name:        "Platform",
		Description: "infra",
		OwnerID:     ownerID.String(),
		Members: []memberDocument{
			{ID: uuid.NewString(), UserID: ownerID.String(), Name: "Ana", Role: "owner", JoinedAt: now},
			{ID: uuid.NewString(), UserID: uuid.NewString(), Name: "Gus", Role: "guest", JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	teamsNS := func(mt *mtest.T) string { return mt.DB.Name() + "." + teamsCollection }
	invitesNS := func(mt *mtest.T) string { return mt.DB.Name() + "." + invitesCollection }

	mt.Run("create assigns ids", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ownerID := uuid.New()
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		tm := &Team{
			Name:    "Platform",
			OwnerID: ownerID,
			Members: []Member{{UserID: ownerID, Name: "Ana", Role: permission.RoleOwner}},
		}
		err := repo.Create(context.Background(), tm)

		require.NoError(mt, err)
		assert.NotEqual(mt, uuid.Nil, tm.ID)
		assert.NotEqual(mt, uuid.Nil, tm.Members[0].ID)
		assert.False(mt, tm.CreatedAt.IsZero())
	})

	mt.Run("get by id decodes embedded members", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		teamID, ownerID := uuid.New(), uuid.New()
		doc := toD(mt.T, sampleTeamDocument(teamID, ownerID))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, teamsNS(mt), mtest.FirstBatch, doc))

		tm, err := repo.GetByID(context.Background(), teamID)

		require.NoError(mt, err)
		assert.Equal(mt, teamID, tm.ID)
		assert.Equal(mt, ownerID, tm.OwnerID)
		require.Len(mt, tm.Members, 2)
		assert.Equal(mt, permission.RoleOwner, tm.Members[0].Role)
		assert.Equal(mt, permission.RoleGuest, tm.Members[1].Role)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, teamsNS(mt), mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), uuid.New())

		assert.ErrorIs(mt, err, ErrTeamNotFound)
	})

	mt.Run("list by user", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ownerID := uuid.New()
		first := toD(mt.T, sampleTeamDocument(uuid.New(), ownerID))
		second := toD(mt.T, sampleTeamDocument(uuid.New(), ownerID))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, teamsNS(mt), mtest.FirstBatch, first, second))

		teams, err := repo.ListByUser(context.Background(), ownerID)

		require.NoError(mt, err)
		assert.Len(mt, teams, 2)
	})

	mt.Run("update returns new document", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		teamID, ownerID := uuid.New(), uuid.New()
		updated := sampleTeamDocument(teamID, ownerID)
		updated.Name = "Renamed"
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toD(mt.T, updated)}))

		name := "Renamed"
		tm, err := repo.Update(context.Background(), teamID, UpdateFields{Name: &name})

		require.NoError(mt, err)
		assert.Equal(mt, "Renamed", tm.Name)
	})

	mt.Run("add member twice", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		teamID := uuid.New()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, teamsNS(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		err := repo.AddMember(context.Background(), teamID, &Member{UserID: uuid.New(), Name: "Bob", Role: permission.RoleMember})

		assert.ErrorIs(mt, err, ErrAlreadyMember)
	})

	mt.Run("add member to missing team", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, teamsNS(mt), mtest.FirstBatch),
		)

		err := repo.AddMember(context.Background(), uuid.New(), &Member{UserID: uuid.New(), Name: "Bob", Role: permission.RoleMember})

		assert.ErrorIs(mt, err, ErrTeamNotFound)
	})

	mt.Run("remove unknown member", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.RemoveMember(context.Background(), uuid.New(), uuid.New())

		assert.ErrorIs(mt, err, ErrMemberNotFound)
	})

	mt.Run("update member role", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.UpdateMemberRole(context.Background(), uuid.New(), uuid.New(), permission.RoleAdmin)

		assert.NoError(mt, err)
	})

	mt.Run("delete removes team and invites", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
		)

		assert.NoError(mt, repo.Delete(context.Background(), uuid.New()))
	})

	mt.Run("delete missing team", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, repo.Delete(context.Background(), uuid.New()), ErrTeamNotFound)
	})

	mt.Run("get accepted invite", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		now := time.Now().UTC().Truncate(time.Millisecond)
		acceptedBy := uuid.NewString()
		inviteID := uuid.New()
		doc := toD(mt.T, inviteDocument{
			ID:         inviteID.String(),
			TeamID:     uuid.NewString(),
			Email:      "bob@example.com",
			Role:       "member",
			InviterID:  uuid.NewString(),
			Status:     "accepted",
			CreatedAt:  now,
			ExpiresAt:  now.Add(time.Hour),
			AcceptedAt: &now,
			AcceptedBy: &acceptedBy,
		})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, invitesNS(mt), mtest.FirstBatch, doc))

		inv, err := repo.GetInvite(context.Background(), inviteID)

		require.NoError(mt, err)
		assert.Equal(mt, InviteStatusAccepted, inv.Status)
		require.NotNil(mt, inv.AcceptedBy)
		assert.Equal(mt, acceptedBy, inv.AcceptedBy.String())
		require.NotNil(mt, inv.AcceptedAt)
		assert.True(mt, now.Equal(*inv.AcceptedAt))
	})

	mt.Run("get missing invite", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, invitesNS(mt), mtest.FirstBatch))

		_, err := repo.GetInvite(context.Background(), uuid.New())

		assert.ErrorIs(mt, err, ErrInviteNotFound)
	})

	mt.Run("create invite", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		inv := &Invite{
			TeamID:    uuid.New(),
			Email:     "bob@example.com",
			Role:      permission.RoleGuest,
			InviterID: uuid.New(),
			Status:    InviteStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}

		require.NoError(mt, repo.CreateInvite(context.Background(), inv))
		assert.NotEqual(mt, uuid.Nil, inv.ID)
	})

	mt.Run("expire invites", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}))

		n, err := repo.ExpireInvites(context.Background(), time.Now())

		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)
	})

	mt.Run("update invite status when no longer pending", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.UpdateInviteStatus(context.Background(), uuid.New(), InviteStatusDeclined)

		assert.ErrorIs(mt, err, ErrInviteInvalid)
	})

	claimedInvite := func(mt *mtest.T, teamID uuid.UUID, role string) bson.D {
		now := time.Now().UTC().Truncate(time.Millisecond)
		return toD(mt.T, inviteDocument{
			ID:        uuid.NewString(),
			TeamID:    teamID.String(),
			Email:     "bob@example.com",
			Role:      role,
			InviterID: uuid.NewString(),
			Status:    string(InviteStatusAccepted),
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		})
	}

	mt.Run("accept invite claims then adds member", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		teamID := uuid.New()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: claimedInvite(mt, teamID, "manager")}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		m := &Member{UserID: uuid.New(), Name: "Bob"}
		err := repo.AcceptInvite(context.Background(), uuid.New(), m, time.Now())

		require.NoError(mt, err)
		assert.Equal(mt, permission.RoleManager, m.Role)
		assert.NotEqual(mt, uuid.Nil, m.ID)
	})

	mt.Run("accept invite no longer pending", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.AcceptInvite(context.Background(), uuid.New(), &Member{UserID: uuid.New(), Name: "Bob"}, time.Now())

		assert.ErrorIs(mt, err, ErrInviteInvalid)
		assert.Len(mt, mt.GetAllStartedEvents(), 1)
	})

	mt.Run("accept invite releases claim when member push fails", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		teamID := uuid.New()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: claimedInvite(mt, teamID, "member")}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, teamsNS(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		err := repo.AcceptInvite(context.Background(), uuid.New(), &Member{UserID: uuid.New(), Name: "Bob"}, time.Now())

		assert.ErrorIs(mt, err, ErrAlreadyMember)
		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 4)
		release := events[3]
		assert.Equal(mt, "update", release.CommandName)
		assert.Equal(mt, invitesCollection, release.Command.Lookup("update").StringValue())
	})
}
