package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/workflex/workflex/internal/permission"
)

const (
	teamsCollection   = "teams"
	invitesCollection = "team_invites"
)

type memberDocument struct {
	ID       string    `bson:"id"`
	UserID   string    `bson:"userId"`
	Name     string    `bson:"name"`
	Avatar   *string   `bson:"avatar,omitempty"`
	Role     string    `bson:"role"`
	JoinedAt time.Time `bson:"joinedAt"`
}

type teamDocument struct {
	ID          string           `bson:"_id"`
	Name        string           `bson:"name"`
	Description string           `bson:"description"`
	OwnerID     string           `bson:"ownerId"`
	Members     []memberDocument `bson:"members"`
	CreatedAt   time.Time        `bson:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt"`
}

type inviteDocument struct {
	ID         string     `bson:"_id"`
	TeamID     string     `bson:"teamId"`
	Email      string     `bson:"email"`
	Role       string     `bson:"role"`
	InviterID  string     `bson:"inviterId"`
	Status     string     `bson:"status"`
	CreatedAt  time.Time  `bson:"createdAt"`
	ExpiresAt  time.Time  `bson:"expiresAt"`
	AcceptedAt *time.Time `bson:"acceptedAt,omitempty"`
	AcceptedBy *string    `bson:"acceptedBy,omitempty"`
}

var _ Repository = (*MongoRepository)(nil)

// MongoRepository implements Repository on a MongoDB database. Members are
// embedded in their team document; invites live in their own collection.
type MongoRepository struct {
	teams   *mongo.Collection
	invites *mongo.Collection
	now     func() time.Time
}

// NewMongoRepository creates a new Repository backed by db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		teams:   db.Collection(teamsCollection),
		invites: db.Collection(invitesCollection),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.teams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "members.userId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating team member index: %w", err)
	}

	_, err = r.invites.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "teamId", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating invite indexes: %w", err)
	}

	return nil
}

// Create inserts the team document with its initial members.
func (r *MongoRepository) Create(ctx context.Context, t *Team) error {
	now := r.now()
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	for i := range t.Members {
		t.Members[i].ID = uuid.New()
		t.Members[i].JoinedAt = now
	}

	if _, err := r.teams.InsertOne(ctx, toTeamDocument(t)); err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// GetByID retrieves a team with its members.
func (r *MongoRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	var doc teamDocument
	err := r.teams.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return doc.toTeam()
}

// ListByUser returns the teams userID belongs to, oldest first.
func (r *MongoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.teams.Find(ctx, bson.M{"members.userId": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}

	var docs []teamDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding teams: %w", err)
	}

	teams := make([]Team, 0, len(docs))
	for i := range docs {
		t, err := docs[i].toTeam()
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}

	return teams, nil
}

// Update applies the non-nil fields and returns the updated team.
func (r *MongoRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Team, error) {
	set := bson.M{"updatedAt": r.now()}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc teamDocument
	err := r.teams.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("updating team: %w", err)
	}

	return doc.toTeam()
}

// Delete removes a team document and its invites.
func (r *MongoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.teams.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrTeamNotFound
	}

	if _, err := r.invites.DeleteMany(ctx, bson.M{"teamId": id.String()}); err != nil {
		return fmt.Errorf("deleting team invites: %w", err)
	}

	return nil
}

// AddMember pushes a membership onto the team document unless the user is
// already in it.
func (r *MongoRepository) AddMember(ctx context.Context, teamID uuid.UUID, m *Member) error {
	m.ID = uuid.New()
	m.JoinedAt = r.now()

	filter := bson.M{
		"_id":            teamID.String(),
		"members.userId": bson.M{"$ne": m.UserID.String()},
	}
	update := bson.M{"$push": bson.M{"members": toMemberDocument(m)}}

	result, err := r.teams.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("adding member: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := r.teams.CountDocuments(ctx, bson.M{"_id": teamID.String()})
	if err != nil {
		return fmt.Errorf("checking team: %w", err)
	}
	if count == 0 {
		return ErrTeamNotFound
	}
	return ErrAlreadyMember
}

// RemoveMember pulls a membership from the team document.
func (r *MongoRepository) RemoveMember(ctx context.Context, teamID, memberID uuid.UUID) error {
	filter := bson.M{"_id": teamID.String(), "members.id": memberID.String()}
	update := bson.M{"$pull": bson.M{"members": bson.M{"id": memberID.String()}}}

	result, err := r.teams.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// UpdateMemberRole sets the role of one embedded member.
func (r *MongoRepository) UpdateMemberRole(ctx context.Context, teamID, memberID uuid.UUID, role permission.Role) error {
	filter := bson.M{"_id": teamID.String(), "members.id": memberID.String()}
	update := bson.M{"$set": bson.M{"members.$.role": string(role)}}

	result, err := r.teams.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("updating member role: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// CreateInvite inserts a new invite.
func (r *MongoRepository) CreateInvite(ctx context.Context, inv *Invite) error {
	inv.ID = uuid.New()
	inv.CreatedAt = r.now()

	if _, err := r.invites.InsertOne(ctx, toInviteDocument(inv)); err != nil {
		return fmt.Errorf("inserting invite: %w", err)
	}

	return nil
}

// GetInvite retrieves a single invite.
func (r *MongoRepository) GetInvite(ctx context.Context, id uuid.UUID) (*Invite, error) {
	var doc inviteDocument
	err := r.invites.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("querying invite: %w", err)
	}

	return doc.toInvite()
}

// ListInvitesByTeam returns every invite of a team, newest first.
func (r *MongoRepository) ListInvitesByTeam(ctx context.Context, teamID uuid.UUID) ([]Invite, error) {
	return r.findInvites(ctx, bson.M{"teamId": teamID.String()})
}

// ListPendingInvitesByEmail returns the pending invites addressed to email, newest first.
func (r *MongoRepository) ListPendingInvitesByEmail(ctx context.Context, email string) ([]Invite, error) {
	return r.findInvites(ctx, bson.M{"email": email, "status": string(InviteStatusPending)})
}

// AcceptInvite claims the invite with a status-filtered update, then pushes
// the membership. Multi-document transactions need a replica set, so a failed
// push releases the claim instead.
func (r *MongoRepository) AcceptInvite(ctx context.Context, inviteID uuid.UUID, m *Member, now time.Time) error {
	filter := bson.M{
		"_id":       inviteID.String(),
		"status":    string(InviteStatusPending),
		"expiresAt": bson.M{"$gt": now},
	}
	claim := bson.M{"$set": bson.M{
		"status":     string(InviteStatusAccepted),
		"acceptedAt": now,
		"acceptedBy": m.UserID.String(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc inviteDocument
	if err := r.invites.FindOneAndUpdate(ctx, filter, claim, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInviteInvalid
		}
		return fmt.Errorf("claiming invite: %w", err)
	}

	teamID, err := uuid.Parse(doc.TeamID)
	if err == nil {
		m.Role = permission.Role(doc.Role)
		err = r.AddMember(ctx, teamID, m)
	}
	if err != nil {
		if relErr := r.releaseInvite(ctx, inviteID, m.UserID); relErr != nil {
			return errors.Join(err, relErr)
		}
		return err
	}

	return nil
}

// releaseInvite returns an invite claimed by userID to pending.
func (r *MongoRepository) releaseInvite(ctx context.Context, inviteID, userID uuid.UUID) error {
	filter := bson.M{
		"_id":        inviteID.String(),
		"status":     string(InviteStatusAccepted),
		"acceptedBy": userID.String(),
	}
	update := bson.M{
		"$set":   bson.M{"status": string(InviteStatusPending)},
		"$unset": bson.M{"acceptedAt": "", "acceptedBy": ""},
	}

	if _, err := r.invites.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("releasing invite: %w", err)
	}
	return nil
}

// UpdateInviteStatus moves a pending invite to status.
func (r *MongoRepository) UpdateInviteStatus(ctx context.Context, id uuid.UUID, status InviteStatus) error {
	filter := bson.M{"_id": id.String(), "status": string(InviteStatusPending)}
	update := bson.M{"$set": bson.M{"status": string(status)}}

	result, err := r.invites.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("updating invite status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInviteInvalid
	}

	return nil
}

// ExpireInvites marks pending invites whose expiry is at or before now as expired.
func (r *MongoRepository) ExpireInvites(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":    string(InviteStatusPending),
		"expiresAt": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"status": string(InviteStatusExpired)}}

	result, err := r.invites.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("expiring invites: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *MongoRepository) findInvites(ctx context.Context, filter bson.M) ([]Invite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.invites.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing invites: %w", err)
	}

	var docs []inviteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding invites: %w", err)
	}

	invites := make([]Invite, 0, len(docs))
	for i := range docs {
		inv, err := docs[i].toInvite()
		if err != nil {
			return nil, err
		}
		invites = append(invites, *inv)
	}

	return invites, nil
}

func toMemberDocument(m *Member) memberDocument {
	return memberDocument{
		ID:       m.ID.String(),
		UserID:   m.UserID.String(),
		Name:     m.Name,
		Avatar:   m.Avatar,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

func toTeamDocument(t *Team) teamDocument {
	members := make([]memberDocument, 0, len(t.Members))
	for i := range t.Members {
		members = append(members, toMemberDocument(&t.Members[i]))
	}
	return teamDocument{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		OwnerID:     t.OwnerID.String(),
		Members:     members,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toInviteDocument(inv *Invite) inviteDocument {
	doc := inviteDocument{
		ID:         inv.ID.String(),
		TeamID:     inv.TeamID.String(),
		Email:      inv.Email,
		Role:       string(inv.Role),
		InviterID:  inv.InviterID.String(),
		Status:     string(inv.Status),
		CreatedAt:  inv.CreatedAt,
		ExpiresAt:  inv.ExpiresAt,
		AcceptedAt: inv.AcceptedAt,
	}
	if inv.AcceptedBy != nil {
		s := inv.AcceptedBy.String()
		doc.AcceptedBy = &s
	}
	return doc
}

func (d *teamDocument) toTeam() (*Team, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing team id: %w", err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("parsing owner id: %w", err)
	}

	t := &Team{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		OwnerID:     ownerID,
		Members:     make([]Member, 0, len(d.Members)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, md := range d.Members {
		memberID, err := uuid.Parse(md.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing member id: %w", err)
		}
		userID, err := uuid.Parse(md.UserID)
		if err != nil {
			return nil, fmt.Errorf("parsing member user id: %w", err)
		}
		t.Members = append(t.Members, Member{
			ID:       memberID,
			UserID:   userID,
			Name:     md.Name,
			Avatar:   md.Avatar,
			Role:     permission.Role(md.Role),
			JoinedAt: md.JoinedAt,
		})
	}

	return t, nil
}

func (d *inviteDocument) toInvite() (*Invite, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing invite id: %w", err)
	}
	teamID, err := uuid.Parse(d.TeamID)
	if err != nil {
		return nil, fmt.Errorf("parsing invite team id: %w", err)
	}
	inviterID, err := uuid.Parse(d.InviterID)
	if err != nil {
		return nil, fmt.Errorf("parsing inviter id: %w", err)
	}

	inv := &Invite{
		ID:         id,
		TeamID:     teamID,
		Email:      d.Email,
		Role:       permission.Role(d.Role),
		InviterID:  inviterID,
		Status:     InviteStatus(d.Status),
		CreatedAt:  d.CreatedAt,
		ExpiresAt:  d.ExpiresAt,
		AcceptedAt: d.AcceptedAt,
	}
	if d.AcceptedBy != nil {
		acceptedBy, err := uuid.Parse(*d.AcceptedBy)
		if err != nil {
			return nil, fmt.Errorf("parsing accepted-by id: %w", err)
		}
		inv.AcceptedBy = &acceptedBy
	}

	return inv, nil
}
