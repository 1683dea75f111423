package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/pkg/ctxutil"
)

// actorFinder defines the minimal interface for resolving the current actor.
type actorFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Actor, error)
}

// MeHandler serves the current-actor endpoint.
type MeHandler struct {
	actors actorFinder
	log    *slog.Logger
}

// NewMeHandler creates a MeHandler.
func NewMeHandler(actors actorFinder, logger *slog.Logger) *MeHandler {
	return &MeHandler{actors: actors, log: logger.With("handler", "me")}
}

type meResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Me handles GET /me.
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := ctxutil.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	actor, err := h.actors.FindByID(r.Context(), p.ActorID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:        actor.ID.String(),
		Username:  actor.Username,
		Email:     actor.Email,
		Role:      actor.Role.String(),
		CreatedAt: actor.CreatedAt,
	})
}
