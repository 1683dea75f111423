package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
	"github.com/rmarrand/sponsorhub-backend/pkg/ctxutil"
)

// actionService is the uniform surface every entity service exposes. Each
// method drives one pipeline action and reports the outcome as a result, so
// a single handler type can serve all record kinds.
type actionService interface {
	List(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
	Create(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
	Show(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
	Update(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
	Publish(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
}

// ResourceHandler serves the REST endpoints of one record kind.
type ResourceHandler struct {
	svc actionService
	log *slog.Logger
}

// NewResourceHandler creates a ResourceHandler. name tags the handler's log
// entries (e.g. "audit_record").
func NewResourceHandler(svc actionService, logger *slog.Logger, name string) *ResourceHandler {
	return &ResourceHandler{svc: svc, log: logger.With("handler", name)}
}

// List handles GET /{resource}. Query parameters become submitted fields, so
// ?draft=true filters the way a submitted draft field would.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := ctxutil.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fields := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	res, err := h.svc.List(r.Context(), pipeline.NewRequest(p, uuid.Nil, fields))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeResult(w, res, http.StatusOK)
}

// Create handles POST /{resource}.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.svc.Create, uuid.Nil, http.StatusCreated)
}

// Show handles GET /{resource}/{id}.
func (h *ResourceHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.run(w, r, h.svc.Show, id, http.StatusOK)
}

// Update handles PUT /{resource}/{id}.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.run(w, r, h.svc.Update, id, http.StatusOK)
}

// Publish handles POST /{resource}/{id}/publish.
func (h *ResourceHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.run(w, r, h.svc.Publish, id, http.StatusOK)
}

type actionFunc func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)

func (h *ResourceHandler) run(w http.ResponseWriter, r *http.Request, action actionFunc, id uuid.UUID, okStatus int) {
	p, ok := ctxutil.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	res, err := action(r.Context(), pipeline.NewRequest(p, id, fields))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeResult(w, res, okStatus)
}

// decodeFields reads the flat string field map every action submits. An empty
// body is a valid empty submission (publish without changes).
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	if r.Body == nil || r.ContentLength == 0 {
		return map[string]string{}, true
	}
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return fields, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}
