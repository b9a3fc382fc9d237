/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: slog logger tagged with the request ID, in the context
  3. Logger:        Request logging
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CORS:          Cross-origin requests for frontend

ROUTE GROUPS:
  /api/collaborators/*  Staff and reporting lines
  /api/payroll/*        Totals and recorded runs
  /api/roster           Whole-company import/export
  /api/scenarios/*      Demo scenarios
  /                     API index page

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. An empty
// allowedOrigins falls back to the local frontend dev servers.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(h.RequestLogger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/collaborators", func(r chi.Router) {
			r.Get("/", h.ListCollaborators)
			r.Post("/", h.CreateCollaborator)
			r.Delete("/", h.RemoveAllCollaborators)
			r.Get("/{id}", h.GetCollaborator)
			r.Patch("/{id}", h.UpdateCollaborator)
			r.Delete("/{id}", h.FireCollaborator)
			r.Get("/{id}/salary", h.GetSalary)
			r.Post("/{id}/subordinates", h.AddSubordinate)
			r.Delete("/{id}/subordinates", h.RemoveAllSubordinates)
			r.Delete("/{id}/subordinates/{subID}", h.RemoveSubordinate)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/total", h.GetPayrollTotal)
			r.Get("/runs", h.ListPayrollRuns)
			r.Post("/runs", h.CreatePayrollRun)
		})

		r.Get("/roster", h.ExportRoster)
		r.Put("/roster", h.ImportRoster)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetScenario)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexPage))
	})

	return r
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Payroll Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Payroll Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/collaborators">/api/collaborators</a> - List collaborators</li>
<li><a href="/api/payroll/total">/api/payroll/total</a> - Company payroll now</li>
<li><a href="/api/payroll/runs">/api/payroll/runs</a> - Recorded payroll runs</li>
<li><a href="/api/roster">/api/roster</a> - Export roster</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
</ul>
</body>
</html>`
