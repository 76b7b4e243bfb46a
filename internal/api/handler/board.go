package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/api/middleware"
	"github.com/workflex/workflex/internal/api/response"
	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/board"
	"github.com/workflex/workflex/internal/permission"
	"github.com/workflex/workflex/internal/schedule"
)

// BoardService is the subset of board.Service the HTTP layer needs.
type BoardService interface {
	Build(ctx context.Context, identity auth.Identity, day schedule.Weekday, teamIDs []uuid.UUID) (*board.Board, error)
}

type overlapResponse struct {
	Block schedule.Block  `json:"block"`
	Slots []schedule.Slot `json:"slots"`
}

type rowResponse struct {
	MemberID string            `json:"memberId"`
	UserID   string            `json:"userId"`
	Name     string            `json:"name"`
	Avatar   *string           `json:"avatar"`
	Role     permission.Role   `json:"role"`
	TeamID   string            `json:"teamId"`
	TeamName string            `json:"teamName"`
	Blocks   []schedule.Block  `json:"blocks"`
	Overlaps []overlapResponse `json:"overlaps"`
}

type boardResponse struct {
	Day       schedule.Weekday      `json:"day"`
	You       []schedule.Block      `json:"you"`
	Members   []rowResponse         `json:"members"`
	Colocated []schedule.Colocation `json:"colocated"`
	Locations []string              `json:"locations"`
}

func toBoardResponse(b *board.Board) boardResponse {
	rows := make([]rowResponse, 0, len(b.Members))
	for _, m := range b.Members {
		overlaps := make([]overlapResponse, 0, len(m.Overlaps))
		for _, o := range m.Overlaps {
			overlaps = append(overlaps, overlapResponse{Block: o.Block, Slots: o.Slots})
		}
		rows = append(rows, rowResponse{
			MemberID: m.MemberID.String(),
			UserID:   m.UserID.String(),
			Name:     m.Name,
			Avatar:   m.Avatar,
			Role:     m.Role,
			TeamID:   m.TeamID.String(),
			TeamName: m.TeamName,
			Blocks:   m.Blocks,
			Overlaps: overlaps,
		})
	}
	return boardResponse{
		Day:       b.Day,
		You:       b.You,
		Members:   rows,
		Colocated: b.Colocated,
		Locations: board.Locations(b),
	}
}

// BoardHandler serves the team schedule board.
type BoardHandler struct {
	svc BoardService
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(svc BoardService) *BoardHandler {
	return &BoardHandler{svc: svc}
}

// ServeHTTP handles GET /board?day=Monday&team=<id>.
func (h *BoardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	day, err := schedule.ParseWeekday(query.Get("day"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "day must be a weekday name such as Monday", requestID)
		return
	}

	var teamIDs []uuid.UUID
	for _, v := range query["team"] {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "team must be a valid UUID", requestID)
			return
		}
		teamIDs = append(teamIDs, id)
	}

	b, err := h.svc.Build(r.Context(), caller, day, teamIDs)
	if err != nil {
		writeError(w, r, err, "build board")
		return
	}

	response.Success(w, http.StatusOK, toBoardResponse(b), requestID)
}
