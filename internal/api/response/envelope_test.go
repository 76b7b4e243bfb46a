package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflex/workflex/internal/api/response"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestNewMeta_GeneratesUUID(t *testing.T) {
	meta := response.NewMeta("")

	_, err := uuid.Parse(meta.RequestID)
	assert.NoError(t, err, "requestId should be a valid UUID")
}

func TestNewMeta_UsesProvidedRequestIDAndFormat(t *testing.T) {
	meta := response.NewMeta("req-7")

	assert.Equal(t, "req-7", meta.RequestID)
	_, err := time.Parse(response.TimeFormat, meta.Timestamp)
	assert.NoError(t, err)
}

func TestTime_FormatsInUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 3, 2, 10, 30, 0, 0, loc)

	assert.Equal(t, "2026-03-02T09:30:00Z", response.Time(ts))
	assert.Nil(t, response.OptionalTime(nil))
	assert.Equal(t, "2026-03-02T09:30:00Z", *response.OptionalTime(&ts))
}

func TestSuccess_WritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	response.Success(w, http.StatusCreated, map[string]string{"key": "value"}, "req-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	env := decode(t, w)
	assert.Equal(t, "value", env["data"].(map[string]interface{})["key"])
	assert.Nil(t, env["error"])
	assert.Equal(t, "req-1", env["meta"].(map[string]interface{})["requestId"])
}

func TestSuccessList_PagesAndReportsTotal(t *testing.T) {
	w := httptest.NewRecorder()
	items := []int{1, 2, 3, 4, 5}

	response.SuccessList(w, http.StatusOK, items, response.Page{Page: 2, Limit: 2}, "req-2")

	env := decode(t, w)
	assert.Equal(t, []interface{}{float64(3), float64(4)}, env["data"])
	meta := env["meta"].(map[string]interface{})
	assert.Equal(t, float64(5), meta["total"])
	assert.Equal(t, float64(2), meta["page"])
	assert.Equal(t, float64(2), meta["limit"])
	assert.Equal(t, "req-2", meta["requestId"])
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c"}

	assert.Equal(t, []string{"a", "b", "c"}, response.Paginate(items, response.DefaultPage))
	assert.Equal(t, []string{"c"}, response.Paginate(items, response.Page{Page: 2, Limit: 2}))
	assert.Equal(t, []string{}, response.Paginate(items, response.Page{Page: 3, Limit: 2}))
	assert.Equal(t, []string{}, response.Paginate([]string(nil), response.DefaultPage))
}

func TestErrWithDetails_WritesErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	details := []map[string]string{{"field": "name", "message": "name is required"}}

	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", details, "req-3")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Nil(t, env["data"])
	apiErr := env["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", apiErr["code"])
	assert.Len(t, apiErr["details"], 1)
}

func TestErr_OmitsDetails(t *testing.T) {
	w := httptest.NewRecorder()

	response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", "")

	env := decode(t, w)
	apiErr := env["error"].(map[string]interface{})
	_, hasDetails := apiErr["details"]
	assert.False(t, hasDetails)
	assert.Equal(t, "Team not found", apiErr["message"])
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	response.NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}
