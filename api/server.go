/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/transactions/*   OUT/IN movements
  /api/vendors/*        Vendors, ledgers, statements, payments
  /api/wires/*          Wire catalogue and payal labels
  /api/availability     Inventory still out with vendors
  /api/overdue          Open lots past the age threshold
  /api/print-status/*   Ledger print audit
  /api/scenarios/*      Demo data loaders (development only)
  /*                    Static files (frontend)

STATIC FILE SERVING:
  In production, serves the built React app from web/dist/.
  Falls back to index.html for client-side routing.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Transaction routes
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		// Vendor routes
		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", h.ListVendors)
			r.Post("/", h.CreateVendor)
			r.Put("/{name}", h.UpdateVendor)
			r.Delete("/{name}", h.DeleteVendor)
			r.Post("/{name}/wires", h.AssignWire)
			r.Delete("/{name}/wires", h.UnassignWire)
			r.Get("/{name}/ledger", h.GetLedger)
			r.Get("/{name}/ledger/export", h.ExportLedger)
			r.Get("/{name}/lots", h.GetLots)
			r.Get("/{name}/statement", h.GetStatement)
			r.Get("/{name}/payments", h.ListPayments)
			r.Post("/{name}/payments", h.CreatePayment)
		})

		// Wire catalogue routes
		r.Route("/wires", func(r chi.Router) {
			r.Get("/", h.ListWires)
			r.Post("/", h.CreateWire)
			r.Delete("/{name}", h.DeleteWire)
			r.Post("/{name}/payals", h.SavePayal)
			r.Delete("/{name}/payals/{payal}", h.DeletePayal)
		})

		// Availability routes
		r.Get("/availability", h.GetAvailability)
		r.Get("/availability/export", h.ExportAvailability)
		r.Get("/overdue", h.GetOverdueLots)

		// Payment routes
		r.Delete("/payments/{id}", h.DeletePayment)

		// Print audit routes
		r.Route("/print-status", func(r chi.Router) {
			r.Get("/", h.ListPrintStatuses)
			r.Post("/", h.MarkPrinted)
			r.Delete("/", h.ClearAllPrinted)
			r.Delete("/{vendor}/{page}", h.ClearPrinted)
		})

		// Demo scenario routes (development/demo only)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	// Serve static files (React app)
	// First try ./web/dist (development), then fall back to message
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		// Try relative to executable
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			fullPath := filepath.Join(staticDir, path)

			// Check if file exists
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Wire Ledger</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Wire Ledger API</h1>
<p>The frontend is not built yet. Run <code>cd web && npm install && npm run build</code></p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/transactions">/api/transactions</a> - List transactions</li>
<li><a href="/api/vendors">/api/vendors</a> - List vendors</li>
<li><a href="/api/wires">/api/wires</a> - Wire catalogue</li>
<li><a href="/api/availability">/api/availability</a> - Inventory availability</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
