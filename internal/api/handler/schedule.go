package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/api/middleware"
	"github.com/workflex/workflex/internal/api/response"
	"github.com/workflex/workflex/internal/api/validation"
	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/schedule"
)

// ScheduleService is the subset of schedule.Service the HTTP layer needs.
type ScheduleService interface {
	List(ctx context.Context, identity auth.Identity, day *schedule.Weekday) ([]schedule.Entry, error)
	Create(ctx context.Context, identity auth.Identity, b schedule.Block) (*schedule.Entry, error)
	Update(ctx context.Context, identity auth.Identity, id uuid.UUID, b schedule.Block) (*schedule.Entry, error)
	Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error
	ApplyToAllDays(ctx context.Context, identity auth.Identity, id uuid.UUID) ([]schedule.Entry, error)
}

type blockRequest struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location"`
}

type entryResponse struct {
	ID        string           `json:"id"`
	Day       schedule.Weekday `json:"day"`
	StartTime schedule.Clock   `json:"startTime"`
	EndTime   schedule.Clock   `json:"endTime"`
	Location  string           `json:"location"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
}

func toEntryResponse(e *schedule.Entry) entryResponse {
	return entryResponse{
		ID:        e.ID.String(),
		Day:       e.Block.Day,
		StartTime: e.Block.Start,
		EndTime:   e.Block.End,
		Location:  e.Block.Location,
		CreatedAt: response.Time(e.CreatedAt),
		UpdatedAt: response.Time(e.UpdatedAt),
	}
}

func toEntryResponses(entries []schedule.Entry) []entryResponse {
	items := make([]entryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, toEntryResponse(&entries[i]))
	}
	return items
}

// ScheduleHandler handles the caller's weekly schedule.
type ScheduleHandler struct {
	svc ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(svc ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// List handles GET /schedule.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var day *schedule.Weekday
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := schedule.ParseWeekday(v)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "day must be a weekday name such as Monday", requestID)
			return
		}
		day = &d
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.List(r.Context(), caller, day)
	if err != nil {
		writeError(w, r, err, "list schedule")
		return
	}

	response.SuccessList(w, http.StatusOK, toEntryResponses(entries), page, requestID)
}

// Create handles POST /schedule.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	b, ok := decodeBlock(w, r)
	if !ok {
		return
	}

	e, err := h.svc.Create(r.Context(), caller, b)
	if err != nil {
		writeError(w, r, err, "create schedule block")
		return
	}

	response.Success(w, http.StatusCreated, toEntryResponse(e), middleware.GetRequestID(r.Context()))
}

// Update handles PUT /schedule/{id}.
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	b, ok := decodeBlock(w, r)
	if !ok {
		return
	}

	e, err := h.svc.Update(r.Context(), caller, id, b)
	if err != nil {
		writeError(w, r, err, "update schedule block")
		return
	}

	response.Success(w, http.StatusOK, toEntryResponse(e), middleware.GetRequestID(r.Context()))
}

// Delete handles DELETE /schedule/{id}.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), caller, id); err != nil {
		writeError(w, r, err, "delete schedule block")
		return
	}

	response.NoContent(w)
}

// ApplyToAll handles POST /schedule/{id}/apply-to-all.
func (h *ScheduleHandler) ApplyToAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	created, err := h.svc.ApplyToAllDays(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err, "apply schedule block")
		return
	}

	response.Success(w, http.StatusCreated, toEntryResponses(created), middleware.GetRequestID(r.Context()))
}

func decodeBlock(w http.ResponseWriter, r *http.Request) (schedule.Block, bool) {
	var req blockRequest
	if !decodeJSON(w, r, &req) {
		return schedule.Block{}, false
	}

	b, fieldErrors := validation.ValidateBlockRequest(validation.BlockRequest{
		Day:       req.Day,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, middleware.GetRequestID(r.Context()))
		return schedule.Block{}, false
	}
	return b, true
}
