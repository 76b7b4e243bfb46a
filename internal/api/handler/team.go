package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/api/middleware"
	"github.com/workflex/workflex/internal/api/response"
	"github.com/workflex/workflex/internal/api/validation"
	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/permission"
	"github.com/workflex/workflex/internal/team"
)

// TeamService is the subset of team.Service the HTTP layer needs.
type TeamService interface {
	Create(ctx context.Context, identity auth.Identity, name, description string) (*team.Team, error)
	Get(ctx context.Context, identity auth.Identity, teamID uuid.UUID) (*team.Team, error)
	ListMine(ctx context.Context, identity auth.Identity) ([]team.Team, error)
	Update(ctx context.Context, identity auth.Identity, teamID uuid.UUID, fields team.UpdateFields) (*team.Team, error)
	Delete(ctx context.Context, identity auth.Identity, teamID uuid.UUID) error
	RemoveMember(ctx context.Context, identity auth.Identity, teamID, memberID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, identity auth.Identity, teamID, memberID uuid.UUID, role permission.Role) (*team.Member, error)
	Leave(ctx context.Context, identity auth.Identity, teamID uuid.UUID) error
	Invite(ctx context.Context, identity auth.Identity, teamID uuid.UUID, email string, role permission.Role) (*team.Invite, error)
	ListInvites(ctx context.Context, identity auth.Identity, teamID uuid.UUID) ([]team.Invite, error)
	MyInvites(ctx context.Context, identity auth.Identity) ([]team.Invite, error)
	AcceptInvite(ctx context.Context, identity auth.Identity, inviteID uuid.UUID) (*team.Team, error)
	DeclineInvite(ctx context.Context, identity auth.Identity, inviteID uuid.UUID) error
	CancelInvite(ctx context.Context, identity auth.Identity, teamID, inviteID uuid.UUID) error
	Permissions(ctx context.Context, identity auth.Identity, teamID uuid.UUID) (permission.Role, []permission.Permission, error)
}

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type memberResponse struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	Name     string          `json:"name"`
	Avatar   *string         `json:"avatar"`
	Role     permission.Role `json:"role"`
	JoinedAt string          `json:"joinedAt"`
}

type teamResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	OwnerID     string           `json:"ownerId"`
	Members     []memberResponse `json:"members"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

type inviteResponse struct {
	ID         string            `json:"id"`
	TeamID     string            `json:"teamId"`
	Email      string            `json:"email"`
	Role       permission.Role   `json:"role"`
	InviterID  string            `json:"inviterId"`
	Status     team.InviteStatus `json:"status"`
	CreatedAt  string            `json:"createdAt"`
	ExpiresAt  string            `json:"expiresAt"`
	AcceptedAt *string           `json:"acceptedAt"`
}

type permissionsResponse struct {
	TeamID      string                  `json:"teamId"`
	Role        permission.Role         `json:"role"`
	Permissions []permission.Permission `json:"permissions"`
}

func toMemberResponse(m *team.Member) memberResponse {
	return memberResponse{
		ID:       m.ID.String(),
		UserID:   m.UserID.String(),
		Name:     m.Name,
		Avatar:   m.Avatar,
		Role:     m.Role,
		JoinedAt: response.Time(m.JoinedAt),
	}
}

func toTeamResponse(t *team.Team) teamResponse {
	members := make([]memberResponse, 0, len(t.Members))
	for i := range t.Members {
		members = append(members, toMemberResponse(&t.Members[i]))
	}
	return teamResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		OwnerID:     t.OwnerID.String(),
		Members:     members,
		CreatedAt:   response.Time(t.CreatedAt),
		UpdatedAt:   response.Time(t.UpdatedAt),
	}
}

func toInviteResponse(inv *team.Invite) inviteResponse {
	return inviteResponse{
		ID:         inv.ID.String(),
		TeamID:     inv.TeamID.String(),
		Email:      inv.Email,
		Role:       inv.Role,
		InviterID:  inv.InviterID.String(),
		Status:     inv.Status,
		CreatedAt:  response.Time(inv.CreatedAt),
		ExpiresAt:  response.Time(inv.ExpiresAt),
		AcceptedAt: response.OptionalTime(inv.AcceptedAt),
	}
}

func toInviteResponses(invites []team.Invite) []inviteResponse {
	items := make([]inviteResponse, 0, len(invites))
	for i := range invites {
		items = append(items, toInviteResponse(&invites[i]))
	}
	return items
}

// TeamHandler handles teams, their members and the invites they send.
type TeamHandler struct {
	svc TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(svc TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

// Create handles POST /teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req createTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fieldErrors := validation.ValidateCreateTeamRequest(validation.CreateTeamRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t, err := h.svc.Create(r.Context(), caller, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err, "create team")
		return
	}

	response.Success(w, http.StatusCreated, toTeamResponse(t), requestID)
}

// List handles GET /teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}

	teams, err := h.svc.ListMine(r.Context(), caller)
	if err != nil {
		writeError(w, r, err, "list teams")
		return
	}

	items := make([]teamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, toTeamResponse(&teams[i]))
	}

	response.SuccessList(w, http.StatusOK, items, page, middleware.GetRequestID(r.Context()))
}

// Get handles GET /teams/{id}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	t, err := h.svc.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err, "get team")
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), middleware.GetRequestID(r.Context()))
}

// Update handles PATCH /teams/{id}.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req updateTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fieldErrors := validation.ValidateUpdateTeamRequest(validation.UpdateTeamRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t, err := h.svc.Update(r.Context(), caller, id, team.UpdateFields{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(w, r, err, "update team")
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), requestID)
}

// Delete handles DELETE /teams/{id}.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), caller, id); err != nil {
		writeError(w, r, err, "delete team")
		return
	}

	response.NoContent(w)
}

// Permissions handles GET /teams/{id}/permissions.
func (h *TeamHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	role, granted, err := h.svc.Permissions(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err, "load permissions")
		return
	}

	response.Success(w, http.StatusOK, permissionsResponse{
		TeamID:      id.String(),
		Role:        role,
		Permissions: granted,
	}, middleware.GetRequestID(r.Context()))
}

// RemoveMember handles DELETE /teams/{id}/members/{memberId}.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := uuidParam(w, r, "memberId")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(r.Context(), caller, teamID, memberID); err != nil {
		writeError(w, r, err, "remove member")
		return
	}

	response.NoContent(w)
}

// UpdateMemberRole handles PUT /teams/{id}/members/{memberId}/role.
func (h *TeamHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := uuidParam(w, r, "memberId")
	if !ok {
		return
	}

	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validation.ValidateRoleRequest(req.Role); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	m, err := h.svc.UpdateMemberRole(r.Context(), caller, teamID, memberID, permission.Role(req.Role))
	if err != nil {
		writeError(w, r, err, "change member role")
		return
	}

	response.Success(w, http.StatusOK, toMemberResponse(m), requestID)
}

// Leave handles POST /teams/{id}/leave.
func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Leave(r.Context(), caller, id); err != nil {
		writeError(w, r, err, "leave team")
		return
	}

	response.NoContent(w)
}

// ListInvites handles GET /teams/{id}/invites.
func (h *TeamHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}

	invites, err := h.svc.ListInvites(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err, "list invites")
		return
	}

	response.SuccessList(w, http.StatusOK, toInviteResponses(invites), page, middleware.GetRequestID(r.Context()))
}

// Invite handles POST /teams/{id}/invites.
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := validation.ValidateInviteRequest(validation.InviteRequest{Email: req.Email, Role: req.Role}); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	inv, err := h.svc.Invite(r.Context(), caller, id, req.Email, permission.Role(req.Role))
	if err != nil {
		writeError(w, r, err, "create invite")
		return
	}

	response.Success(w, http.StatusCreated, toInviteResponse(inv), requestID)
}

// CancelInvite handles DELETE /teams/{id}/invites/{inviteId}.
func (h *TeamHandler) CancelInvite(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	teamID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	inviteID, ok := uuidParam(w, r, "inviteId")
	if !ok {
		return
	}

	if err := h.svc.CancelInvite(r.Context(), caller, teamID, inviteID); err != nil {
		writeError(w, r, err, "cancel invite")
		return
	}

	response.NoContent(w)
}

// MyInvites handles GET /invites.
func (h *TeamHandler) MyInvites(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}

	invites, err := h.svc.MyInvites(r.Context(), caller)
	if err != nil {
		writeError(w, r, err, "list invites")
		return
	}

	response.SuccessList(w, http.StatusOK, toInviteResponses(invites), page, middleware.GetRequestID(r.Context()))
}

// AcceptInvite handles POST /invites/{inviteId}/accept.
func (h *TeamHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "inviteId")
	if !ok {
		return
	}

	t, err := h.svc.AcceptInvite(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err, "accept invite")
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), middleware.GetRequestID(r.Context()))
}

// DeclineInvite handles POST /invites/{inviteId}/decline.
func (h *TeamHandler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "inviteId")
	if !ok {
		return
	}

	if err := h.svc.DeclineInvite(r.Context(), caller, id); err != nil {
		writeError(w, r, err, "decline invite")
		return
	}

	response.NoContent(w)
}
