package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// handlerMock drives Run with per-stage func fields. Unset stages fall back
// to passthrough behaviour.
type handlerMock struct {
	AuthoriseFunc func(ctx context.Context, req *Request) (bool, error)
	LoadFunc      func(ctx context.Context, req *Request) (string, error)
	BindFunc      func(req *Request, form *Form, entity string) string
	ValidateFunc  func(ctx context.Context, entity string, errs *ErrorSet) error
	PerformFunc   func(ctx context.Context, entity string) (string, error)
	UnbindFunc    func(ctx context.Context, entity string) (Dataset, error)

	stages []string
}

func (h *handlerMock) Authorise(ctx context.Context, req *Request) (bool, error) {
	h.stages = append(h.stages, "authorise")
	if h.AuthoriseFunc != nil {
		return h.AuthoriseFunc(ctx, req)
	}
	return true, nil
}

func (h *handlerMock) Load(ctx context.Context, req *Request) (string, error) {
	h.stages = append(h.stages, "load")
	if h.LoadFunc != nil {
		return h.LoadFunc(ctx, req)
	}
	return "loaded", nil
}

func (h *handlerMock) Bind(req *Request, form *Form, entity string) string {
	h.stages = append(h.stages, "bind")
	if h.BindFunc != nil {
		return h.BindFunc(req, form, entity)
	}
	return entity
}

func (h *handlerMock) Validate(ctx context.Context, entity string, errs *ErrorSet) error {
	h.stages = append(h.stages, "validate")
	if h.ValidateFunc != nil {
		return h.ValidateFunc(ctx, entity, errs)
	}
	return nil
}

func (h *handlerMock) Perform(ctx context.Context, entity string) (string, error) {
	h.stages = append(h.stages, "perform")
	if h.PerformFunc != nil {
		return h.PerformFunc(ctx, entity)
	}
	return entity, nil
}

func (h *handlerMock) Unbind(ctx context.Context, entity string) (Dataset, error) {
	h.stages = append(h.stages, "unbind")
	if h.UnbindFunc != nil {
		return h.UnbindFunc(ctx, entity)
	}
	return Dataset{}.Put("entity", entity), nil
}

func newTestRequest(fields map[string]string) *Request {
	p := domain.Principal{ActorID: uuid.New(), Role: domain.RoleSponsor}
	return NewRequest(p, uuid.New(), fields)
}

func TestRun_HappyPath_StageOrder(t *testing.T) {
	t.Parallel()

	h := &handlerMock{}

	res, err := Run[string](context.Background(), h, newTestRequest(nil))
	require.NoError(t, err)

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []string{"authorise", "load", "bind", "validate", "perform", "unbind"}, h.stages)
	assert.False(t, res.Errors.HasAny())
}

func TestRun_NotAuthorised_NothingElseRuns(t *testing.T) {
	t.Parallel()

	h := &handlerMock{
		AuthoriseFunc: func(ctx context.Context, req *Request) (bool, error) {
			return false, nil
		},
	}

	res, err := Run[string](context.Background(), h, newTestRequest(nil))
	require.NoError(t, err)

	assert.Equal(t, StatusForbidden, res.Status)
	assert.Nil(t, res.Dataset)
	assert.Nil(t, res.Errors)
	assert.Equal(t, []string{"authorise"}, h.stages)
}

func TestRun_AuthoriseNotFound_IsForbidden(t *testing.T) {
	t.Parallel()

	h := &handlerMock{
		AuthoriseFunc: func(ctx context.Context, req *Request) (bool, error) {
			return false, fmt.Errorf("find record: %w", domain.ErrNotFound)
		},
	}

	res, err := Run[string](context.Background(), h, newTestRequest(nil))
	require.NoError(t, err)

	assert.Equal(t, StatusForbidden, res.Status)
}

func TestRun_LoadNotFound_IsForbidden(t *testing.T) {
	t.Parallel()

	h := &handlerMock{
		LoadFunc: func(ctx context.Context, req *Request) (string, error) {
			return "", domain.ErrNotFound
		},
	}

	res, err := Run[string](context.Background(), h, newTestRequest(nil))
	require.NoError(t, err)

	assert.Equal(t, StatusForbidden, res.Status)
}

func TestRun_ValidationErrors_SkipPerformStillUnbind(t *testing.T) {
	t.Parallel()

	h := &handlerMock{
		ValidateFunc: func(ctx context.Context, entity string, errs *ErrorSet) error {
			errs.Add("code", "duplicated")
			return nil
		},
	}

	res, err := Run[string](context.Background(), h, newTestRequest(nil))
	require.NoError(t, err)

	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, []string{"authorise", "load", "bind", "validate", "unbind"}, h.stages)
	assert.Equal(t, "duplicated", res.Errors.Map()["code"])
	assert.Equal(t, "loaded", res.Dataset["entity"])
}

func TestRun_BindConversionError_CountsAsValidationError(t *testing.T) {
	t.Parallel()

	h := &handlerMock{
		BindFunc: func(req *Request, form *Form, entity string) string {
			// An unparsable date leaves the prior value and flags the field.
			if _, ok := form.Time("initialPeriod"); ok {
				t.Error("expected the malformed date to fail conversion")
			}
			return entity
		},
	}

	res, err := Run[string](context.Background(), h, newTestRequest(map[string]string{
		"initialPeriod": "not-a-date",
	}))
	require.NoError(t, err)

	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, "invalid-date", res.Errors.Map()["initialPeriod"])
}

func TestRun_PerformResultFlowsToUnbind(t *testing.T) {
	t.Parallel()

	h := &handlerMock{
		PerformFunc: func(ctx context.Context, entity string) (string, error) {
			return entity + ":published", nil
		},
	}

	res, err := Run[string](context.Background(), h, newTestRequest(nil))
	require.NoError(t, err)

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "loaded:published", res.Dataset["entity"])
}

func TestRun_PerformError_Aborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("write failed")
	h := &handlerMock{
		PerformFunc: func(ctx context.Context, entity string) (string, error) {
			return "", boom
		},
	}

	_, err := Run[string](context.Background(), h, newTestRequest(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

type txRunnerMock struct {
	calls int
	err   error
}

func (m *txRunnerMock) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

func TestRun_InTx_WrapsStagesButNotAuthorise(t *testing.T) {
	t.Parallel()

	tx := &txRunnerMock{}
	var inTxAtAuthorise bool

	h := &handlerMock{
		AuthoriseFunc: func(ctx context.Context, req *Request) (bool, error) {
			inTxAtAuthorise = tx.calls > 0
			return true, nil
		},
	}

	res, err := Run[string](context.Background(), h, newTestRequest(nil), InTx(tx))
	require.NoError(t, err)

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, 1, tx.calls)
	assert.False(t, inTxAtAuthorise, "authorise must run before the transaction starts")
}

func TestRun_InTx_SerializationConflictSurfaces(t *testing.T) {
	t.Parallel()

	tx := &txRunnerMock{err: fmt.Errorf("serialization failure: %w", domain.ErrConflict)}
	h := &handlerMock{}

	_, err := Run[string](context.Background(), h, newTestRequest(nil), InTx(tx))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
