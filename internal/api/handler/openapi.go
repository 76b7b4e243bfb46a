package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/workflex/workflex/internal/api/middleware"
	"github.com/workflex/workflex/internal/api/response"
)

// OpenAPIHandler publishes the WorkFlex API description. Clients get JSON by
// default and the YAML source with ?format=yaml.
type OpenAPIHandler struct {
	source []byte
	asJSON func() ([]byte, error)
}

func NewOpenAPIHandler(source []byte) *OpenAPIHandler {
	return &OpenAPIHandler{
		source: source,
		asJSON: sync.OnceValues(func() ([]byte, error) {
			return yaml.YAMLToJSON(source)
		}),
	}
}

func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "yaml" {
		h.write(w, "application/yaml", h.source)
		return
	}

	doc, err := h.asJSON()
	if err != nil {
		slog.Error("api description is not valid YAML", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render API description", middleware.GetRequestID(r.Context()))
		return
	}
	h.write(w, "application/json", doc)
}

func (h *OpenAPIHandler) write(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("writing api description", "error", err, "contentType", contentType)
	}
}
