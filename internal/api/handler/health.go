package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/workflex/workflex/internal/api/middleware"
	"github.com/workflex/workflex/internal/api/response"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      Pinger
	docs    Pinger
	version string
}

// NewHealthHandler creates a new HealthHandler. docs may be nil when the
// document store is not in use.
func NewHealthHandler(db, docs Pinger, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		docs:    docs,
		version: version,
	}
}

type storeStatus struct {
	Connected bool    `json:"connected"`
	Error     *string `json:"error,omitempty"`
}

type healthData struct {
	Status        string       `json:"status"`
	Version       string       `json:"version"`
	Database      storeStatus  `json:"database"`
	DocumentStore *storeStatus `json:"documentStore,omitempty"`
}

// ServeHTTP reports "healthy" when every configured store answers a ping and
// "degraded" otherwise. It always responds 200.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	data := healthData{
		Status:   "healthy",
		Version:  h.version,
		Database: check(ctx, h.db),
	}
	if !data.Database.Connected {
		data.Status = "degraded"
	}

	if h.docs != nil {
		docs := check(ctx, h.docs)
		data.DocumentStore = &docs
		if !docs.Connected {
			data.Status = "degraded"
		}
	}

	response.Success(w, http.StatusOK, data, requestID)
}

func check(ctx context.Context, p Pinger) storeStatus {
	if err := p.Ping(ctx); err != nil {
		msg := err.Error()
		return storeStatus{Connected: false, Error: &msg}
	}
	return storeStatus{Connected: true}
}
