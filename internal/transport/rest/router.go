package rest

import "net/http"

// Resources groups the per-entity handlers the router mounts.
type Resources struct {
	AuditRecords *ResourceHandler
	ProgressLogs *ResourceHandler
	Sponsorships *ResourceHandler
	Invoices     *ResourceHandler
	Me           *MeHandler
	Health       *HealthHandler
}

// NewRouter builds the API route table. Every record kind exposes the same
// five actions; health endpoints stay outside the versioned prefix so probes
// never need a token.
func NewRouter(res Resources) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", res.Health.Live)
	mux.HandleFunc("GET /ready", res.Health.Ready)
	mux.HandleFunc("GET /health", res.Health.Health)

	mux.HandleFunc("GET /api/v1/me", res.Me.Me)

	mount(mux, "audit-records", res.AuditRecords)
	mount(mux, "progress-logs", res.ProgressLogs)
	mount(mux, "sponsorships", res.Sponsorships)
	mount(mux, "invoices", res.Invoices)

	return mux
}

func mount(mux *http.ServeMux, path string, h *ResourceHandler) {
	mux.HandleFunc("GET /api/v1/"+path, h.List)
	mux.HandleFunc("POST /api/v1/"+path, h.Create)
	mux.HandleFunc("GET /api/v1/"+path+"/{id}", h.Show)
	mux.HandleFunc("PUT /api/v1/"+path+"/{id}", h.Update)
	mux.HandleFunc("POST /api/v1/"+path+"/{id}/publish", h.Publish)
}
