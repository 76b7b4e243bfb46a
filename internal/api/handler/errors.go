package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/api/middleware"
	"github.com/workflex/workflex/internal/api/response"
	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/schedule"
	"github.com/workflex/workflex/internal/team"
)

const maxBodyBytes = 1 << 20

// domainErrors maps service errors onto the API error taxonomy. Anything not
// listed is an internal error.
var domainErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{team.ErrForbidden, http.StatusForbidden, "FORBIDDEN", ""},
	{team.ErrTeamNotFound, http.StatusNotFound, "NOT_FOUND", "Team not found"},
	{team.ErrMemberNotFound, http.StatusNotFound, "NOT_FOUND", "Member not found"},
	{team.ErrInviteNotFound, http.StatusNotFound, "NOT_FOUND", "Invite not found"},
	{schedule.ErrBlockNotFound, http.StatusNotFound, "NOT_FOUND", "Schedule block not found"},
	{auth.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", "User not found"},
	{team.ErrOwnerImmutable, http.StatusConflict, "OWNER_IMMUTABLE", "The team owner cannot be removed, demoted or replaced"},
	{team.ErrAlreadyMember, http.StatusConflict, "ALREADY_MEMBER", "User is already a member of this team"},
	{auth.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists"},
	{team.ErrInviteInvalid, http.StatusGone, "INVITE_INVALID", "Invite is no longer pending or has expired"},
	{team.ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE", ""},
	{schedule.ErrInvalidBlock, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"},
}

// writeError writes the envelope for err. action completes "Failed to ..."
// for unexpected errors.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	requestID := middleware.GetRequestID(r.Context())

	for _, de := range domainErrors {
		if !errors.Is(err, de.err) {
			continue
		}
		message := de.message
		if message == "" {
			message = err.Error()
		}
		response.Err(w, de.status, de.code, message, requestID)
		return
	}

	slog.Error("request failed", "error", err, "action", action, "requestId", requestID)
	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action, requestID)
}

// decodeJSON reads a size-limited JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// uuidParam parses a UUID route parameter, writing a 400 on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", name+" must be a valid UUID", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}

// identity returns the caller resolved by the Auth middleware, writing a 401
// when the route was mounted without it.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", middleware.GetRequestID(r.Context()))
		return auth.Identity{}, false
	}
	return *id, true
}

// pageParams reads ?page= and ?limit=, writing a 400 on malformed values.
func pageParams(w http.ResponseWriter, r *http.Request) (response.Page, bool) {
	p := response.DefaultPage
	requestID := middleware.GetRequestID(r.Context())

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "page must be a positive integer", requestID)
			return p, false
		}
		p.Page = page
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be an integer between 1 and 100", requestID)
			return p, false
		}
		p.Limit = limit
	}
	return p, true
}
