package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflex/workflex/internal/api/handler"
	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/board"
	"github.com/workflex/workflex/internal/permission"
	"github.com/workflex/workflex/internal/schedule"
)

type mockBoardService struct {
	buildFn func(ctx context.Context, identity auth.Identity, day schedule.Weekday, teamIDs []uuid.UUID) (*board.Board, error)
}

func (m *mockBoardService) Build(ctx context.Context, identity auth.Identity, day schedule.Weekday, teamIDs []uuid.UUID) (*board.Board, error) {
	return m.buildFn(ctx, identity, day, teamIDs)
}

func TestBoardHandler_Build(t *testing.T) {
	t.Parallel()

	teamA, teamB := uuid.New(), uuid.New()
	mine := officeBlock(schedule.Monday)
	theirs := schedule.Block{Day: schedule.Monday, Start: schedule.MustClock("16:00"), End: schedule.MustClock("18:00"), Location: "Home"}
	memberID := uuid.New()

	svc := &mockBoardService{
		buildFn: func(_ context.Context, identity auth.Identity, day schedule.Weekday, teamIDs []uuid.UUID) (*board.Board, error) {
			assert.Equal(t, caller.UserID, identity.UserID)
			assert.Equal(t, schedule.Monday, day)
			assert.Equal(t, []uuid.UUID{teamA, teamB}, teamIDs)
			return &board.Board{
				Day: day,
				You: []schedule.Block{mine},
				Members: []board.Row{{
					MemberID: memberID,
					UserID:   uuid.New(),
					Name:     "Bo",
					Role:     permission.RoleMember,
					TeamID:   teamA,
					TeamName: "Platform",
					Blocks:   []schedule.Block{theirs},
					Overlaps: []board.Overlap{{
						Block: theirs,
						Slots: []schedule.Slot{{Start: schedule.MustClock("16:00"), End: schedule.MustClock("17:00")}},
					}},
				}},
				Colocated: []schedule.Colocation{},
			}, nil
		},
	}
	h := handler.NewBoardHandler(svc)
	req, w := makeChiRequest(http.MethodGet, "/board?day=Monday&team="+teamA.String()+"&team="+teamB.String(), nil, nil)

	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Monday", data["day"])
	assert.Equal(t, []interface{}{"Home", "Office"}, data["locations"])
	assert.Equal(t, []interface{}{}, data["colocated"])

	members := data["members"].([]interface{})
	require.Len(t, members, 1)
	row := members[0].(map[string]interface{})
	assert.Equal(t, memberID.String(), row["memberId"])
	assert.Equal(t, "Platform", row["teamName"])
	overlap := row["overlaps"].([]interface{})[0].(map[string]interface{})
	slot := overlap["slots"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "16:00", slot["startTime"])
	assert.Equal(t, "17:00", slot["endTime"])
}

func TestBoardHandler_BadParams(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/board", "/board?day=monday", "/board?day=Monday&team=abc"} {
		t.Run(path, func(t *testing.T) {
			h := handler.NewBoardHandler(&mockBoardService{})
			req, w := makeChiRequest(http.MethodGet, path, nil, nil)

			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_PARAM", errorCode(t, w))
		})
	}
}

func TestBoardHandler_ServiceError(t *testing.T) {
	t.Parallel()

	svc := &mockBoardService{
		buildFn: func(context.Context, auth.Identity, schedule.Weekday, []uuid.UUID) (*board.Board, error) {
			return nil, assert.AnError
		},
	}
	h := handler.NewBoardHandler(svc)
	req, w := makeChiRequest(http.MethodGet, "/board?day=Friday", nil, nil)

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
