package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
	"github.com/rmarrand/sponsorhub-backend/pkg/ctxutil"
)

type actionServiceMock struct {
	ListFunc    func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
	CreateFunc  func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
	ShowFunc    func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
	UpdateFunc  func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
	PublishFunc func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
}

func (m *actionServiceMock) List(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return m.ListFunc(ctx, req)
}
func (m *actionServiceMock) Create(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return m.CreateFunc(ctx, req)
}
func (m *actionServiceMock) Show(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return m.ShowFunc(ctx, req)
}
func (m *actionServiceMock) Update(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return m.UpdateFunc(ctx, req)
}
func (m *actionServiceMock) Publish(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return m.PublishFunc(ctx, req)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func withPrincipal(r *http.Request, p domain.Principal) *http.Request {
	return r.WithContext(ctxutil.WithPrincipal(r.Context(), p))
}

func sponsorPrincipal() domain.Principal {
	return domain.Principal{ActorID: uuid.New(), Role: domain.RoleSponsor}
}

func TestResourceHandler_Create_Created(t *testing.T) {
	t.Parallel()

	var got *pipeline.Request
	svc := &actionServiceMock{
		CreateFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			got = req
			return &pipeline.Result{
				Status:  pipeline.StatusOK,
				Dataset: pipeline.Dataset{}.Put("code", "INV-1"),
				Errors:  pipeline.NewErrorSet(),
			}, nil
		},
	}
	h := NewResourceHandler(svc, testLogger(), "invoice")

	body := bytes.NewBufferString(`{"code":"INV-1","quantity":"100.00 EUR"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", body)
	req = withPrincipal(req, sponsorPrincipal())
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "INV-1", got.Fields["code"])
	assert.Equal(t, "100.00 EUR", got.Fields["quantity"])
	assert.Equal(t, uuid.Nil, got.ID)

	var resp actionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INV-1", resp.Data["code"])
	assert.Empty(t, resp.Errors)
}

func TestResourceHandler_Create_Invalid(t *testing.T) {
	t.Parallel()

	svc := &actionServiceMock{
		CreateFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			errs := pipeline.NewErrorSet()
			errs.Add("code", "duplicated")
			return &pipeline.Result{
				Status:  pipeline.StatusInvalid,
				Dataset: pipeline.Dataset{}.Put("code", "INV-1"),
				Errors:  errs,
			}, nil
		},
	}
	h := NewResourceHandler(svc, testLogger(), "invoice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewBufferString(`{"code":"INV-1"}`))
	req = withPrincipal(req, sponsorPrincipal())
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp actionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "duplicated", resp.Errors["code"])
	assert.Equal(t, "INV-1", resp.Data["code"])
}

func TestResourceHandler_Create_Forbidden(t *testing.T) {
	t.Parallel()

	svc := &actionServiceMock{
		CreateFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			return &pipeline.Result{Status: pipeline.StatusForbidden}, nil
		},
	}
	h := NewResourceHandler(svc, testLogger(), "invoice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewBufferString(`{}`))
	req = withPrincipal(req, domain.Principal{ActorID: uuid.New(), Role: domain.RoleClient})
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResourceHandler_Create_NoPrincipal(t *testing.T) {
	t.Parallel()

	svc := &actionServiceMock{
		CreateFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			t.Error("service should not be called without a principal")
			return nil, nil
		},
	}
	h := NewResourceHandler(svc, testLogger(), "invoice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResourceHandler_Create_BadBody(t *testing.T) {
	t.Parallel()

	svc := &actionServiceMock{
		CreateFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			t.Error("service should not be called for a malformed body")
			return nil, nil
		},
	}
	h := NewResourceHandler(svc, testLogger(), "invoice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewBufferString(`{"code":`))
	req = withPrincipal(req, sponsorPrincipal())
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceHandler_List_PassesQueryFields(t *testing.T) {
	t.Parallel()

	var got *pipeline.Request
	svc := &actionServiceMock{
		ListFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			got = req
			return &pipeline.Result{
				Status:  pipeline.StatusOK,
				Dataset: pipeline.Dataset{}.Put("records", []pipeline.Dataset{}),
				Errors:  pipeline.NewErrorSet(),
			}, nil
		},
	}
	h := NewResourceHandler(svc, testLogger(), "sponsorship")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sponsorships?draft=true", nil)
	req = withPrincipal(req, sponsorPrincipal())
	rec := httptest.NewRecorder()

	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "true", got.Fields["draft"])
}

func TestResourceHandler_Show_BadID(t *testing.T) {
	t.Parallel()

	svc := &actionServiceMock{
		ShowFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			t.Error("service should not be called for a malformed id")
			return nil, nil
		},
	}
	h := NewResourceHandler(svc, testLogger(), "invoice")

	mux := NewRouter(Resources{
		AuditRecords: h, ProgressLogs: h, Sponsorships: h, Invoices: h,
		Me:     NewMeHandler(&actorFinderMock{}, testLogger()),
		Health: NewHealthHandler(&dbPingerMock{}, "test"),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/not-a-uuid", nil)
	req = withPrincipal(req, sponsorPrincipal())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceHandler_Publish_PassesID(t *testing.T) {
	t.Parallel()

	target := uuid.New()
	var got *pipeline.Request
	svc := &actionServiceMock{
		PublishFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			got = req
			return &pipeline.Result{
				Status:  pipeline.StatusOK,
				Dataset: pipeline.Dataset{}.Put("draftMode", false),
				Errors:  pipeline.NewErrorSet(),
			}, nil
		},
	}
	h := NewResourceHandler(svc, testLogger(), "sponsorship")

	mux := NewRouter(Resources{
		AuditRecords: h, ProgressLogs: h, Sponsorships: h, Invoices: h,
		Me:     NewMeHandler(&actorFinderMock{}, testLogger()),
		Health: NewHealthHandler(&dbPingerMock{}, "test"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sponsorships/"+target.String()+"/publish", nil)
	req = withPrincipal(req, sponsorPrincipal())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, target, got.ID)
	assert.Empty(t, got.Fields)
}

func TestResourceHandler_Update_InfrastructureError(t *testing.T) {
	t.Parallel()

	svc := &actionServiceMock{
		UpdateFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			return nil, errors.New("connection reset")
		},
	}
	h := NewResourceHandler(svc, testLogger(), "invoice")

	mux := NewRouter(Resources{
		AuditRecords: h, ProgressLogs: h, Sponsorships: h, Invoices: h,
		Me:     NewMeHandler(&actorFinderMock{}, testLogger()),
		Health: NewHealthHandler(&dbPingerMock{}, "test"),
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/invoices/"+uuid.NewString(), bytes.NewBufferString(`{}`))
	req = withPrincipal(req, sponsorPrincipal())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResourceHandler_Create_Conflict(t *testing.T) {
	t.Parallel()

	svc := &actionServiceMock{
		CreateFunc: func(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
			return nil, domain.ErrAlreadyExists
		},
	}
	h := NewResourceHandler(svc, testLogger(), "invoice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewBufferString(`{"code":"INV-1"}`))
	req = withPrincipal(req, sponsorPrincipal())
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
