//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres"
	actorrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/actor"
	auditrecordrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/auditrecord"
	codeauditrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/codeaudit"
	invoicerepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/invoice"
	progresslogrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/progresslog"
	projectrepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/project"
	sponsorshiprepo "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/sponsorship"
	"github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/testhelper"
	"github.com/rmarrand/sponsorhub-backend/internal/auth"
	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/service/auditrecord"
	"github.com/rmarrand/sponsorhub-backend/internal/service/invoice"
	"github.com/rmarrand/sponsorhub-backend/internal/service/progresslog"
	"github.com/rmarrand/sponsorhub-backend/internal/service/sponsorship"
	"github.com/rmarrand/sponsorhub-backend/internal/transport/middleware"
	"github.com/rmarrand/sponsorhub-backend/internal/transport/rest"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

// testServer wires the full HTTP stack (router, middleware, services, real
// repositories) over the shared test database.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	JWT    *auth.JWTManager
}

func testSettings() domain.FinanceSettings {
	return domain.FinanceSettings{
		SystemCurrency:     "EUR",
		AcceptedCurrencies: []string{"EUR", "USD", "GBP"},
		Rates: map[string]decimal.Decimal{
			"USD": decimal.RequireFromString("0.93"),
			"GBP": decimal.RequireFromString("1.17"),
		},
	}
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	txm := postgres.NewTxManager(pool)
	settings := testSettings()

	actors := actorrepo.New(pool)
	projects := projectrepo.New(pool)
	codeAudits := codeauditrepo.New(pool)
	auditRecords := auditrecordrepo.New(pool)
	progressLogs := progresslogrepo.New(pool)
	sponsorships := sponsorshiprepo.New(pool)
	invoices := invoicerepo.New(pool)

	auditRecordSvc := auditrecord.NewService(logger, auditRecords, codeAudits)
	progressLogSvc := progresslog.NewService(logger, progressLogs, projects)
	sponsorshipSvc := sponsorship.NewService(logger, sponsorships, invoices, projects, settings, txm)
	invoiceSvc := invoice.NewService(logger, invoices, sponsorships, settings, txm)

	router := rest.NewRouter(rest.Resources{
		AuditRecords: rest.NewResourceHandler(auditRecordSvc, logger, "audit-records"),
		ProgressLogs: rest.NewResourceHandler(progressLogSvc, logger, "progress-logs"),
		Sponsorships: rest.NewResourceHandler(sponsorshipSvc, logger, "sponsorships"),
		Invoices:     rest.NewResourceHandler(invoiceSvc, logger, "invoices"),
		Me:           rest.NewMeHandler(actors, logger),
		Health:       rest.NewHealthHandler(pool, "e2e-test"),
	})

	jwtManager := auth.NewJWTManager(testJWTSecret, "sponsorhub")
	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Auth(jwtManager),
	)(router)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		JWT:    jwtManager,
	}
}

// tokenFor issues a short-lived access token for the actor.
func (ts *testServer) tokenFor(t *testing.T, actorID uuid.UUID, role domain.Role) string {
	t.Helper()
	token, err := ts.JWT.GenerateAccessToken(actorID, role, time.Hour)
	require.NoError(t, err)
	return token
}

// request performs an HTTP call with an optional bearer token and JSON body,
// returning the status code and the decoded response body.
func (ts *testServer) request(t *testing.T, method, path, token string, body map[string]string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}

	return resp.StatusCode, decoded
}

// data extracts the data envelope from an action response.
func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "expected data object, got: %v", body)
	return d
}

// fieldErrors extracts the errors map from an action response.
func fieldErrors(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	e, ok := body["errors"].(map[string]any)
	require.True(t, ok, "expected errors object, got: %v", body)
	return e
}
