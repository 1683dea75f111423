package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

type actorFinderMock struct {
	FindByIDFunc func(ctx context.Context, id uuid.UUID) (domain.Actor, error)
}

func (m *actorFinderMock) FindByID(ctx context.Context, id uuid.UUID) (domain.Actor, error) {
	if m.FindByIDFunc == nil {
		return domain.Actor{}, domain.ErrNotFound
	}
	return m.FindByIDFunc(ctx, id)
}

func TestMe_OK(t *testing.T) {
	t.Parallel()

	actorID := uuid.New()
	actors := &actorFinderMock{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.Actor, error) {
			require.Equal(t, actorID, id)
			return domain.Actor{
				ID:        actorID,
				Username:  "maria.sponsor",
				Email:     "maria@example.com",
				Role:      domain.RoleSponsor,
				CreatedAt: time.Now().UTC(),
			}, nil
		},
	}
	h := NewMeHandler(actors, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = withPrincipal(req, domain.Principal{ActorID: actorID, Role: domain.RoleSponsor})
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp meResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, actorID.String(), resp.ID)
	assert.Equal(t, "maria.sponsor", resp.Username)
	assert.Equal(t, domain.RoleSponsor.String(), resp.Role)
}

func TestMe_NoPrincipal(t *testing.T) {
	t.Parallel()

	h := NewMeHandler(&actorFinderMock{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_ActorGone(t *testing.T) {
	t.Parallel()

	actors := &actorFinderMock{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.Actor, error) {
			return domain.Actor{}, domain.ErrNotFound
		},
	}
	h := NewMeHandler(actors, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = withPrincipal(req, domain.Principal{ActorID: uuid.New(), Role: domain.RoleAuditor})
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
