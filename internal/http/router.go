package httpserver

import (
	"net/http"

	"tarcart/internal/http/handlers"
	"tarcart/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	AuthHandlers        *handlers.AuthHandlers
	StationsHandlers    *handlers.StationsHandlers
	SubmissionsHandlers *handlers.SubmissionsHandlers
	AdminHandlers       *handlers.AdminHandlers
	AnalyticsHandlers   *handlers.AnalyticsHandlers
	HealthHandler       http.HandlerFunc
	RootHandler         http.HandlerFunc
	PriceFeedHandler    http.HandlerFunc
}

// NewRouter wires HTTP routes. Admin routes go through the opaque-token
// guard; everything else is public.
func NewRouter(deps RouterDeps, adminGuard func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", deps.RootHandler)
	mux.Handle("GET /health", deps.HealthHandler)

	mux.Handle("POST /api/auth/login", http.HandlerFunc(deps.AuthHandlers.Login))

	mux.Handle("GET /api/stations", http.HandlerFunc(deps.StationsHandlers.List))
	mux.Handle("GET /api/stations/snapshot", http.HandlerFunc(deps.StationsHandlers.Snapshot))
	mux.Handle("POST /api/submissions", http.HandlerFunc(deps.SubmissionsHandlers.Submit))

	mux.Handle("GET /api/analytics/price-history", http.HandlerFunc(deps.AnalyticsHandlers.PriceHistory))
	mux.Handle("GET /api/analytics/current-spread", http.HandlerFunc(deps.AnalyticsHandlers.CurrentSpread))

	admin := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, adminGuard)
	}
	mux.Handle("GET /api/admin/submissions", admin(deps.AdminHandlers.ListSubmissions))
	mux.Handle("POST /api/admin/submissions/{id}/{action}", admin(deps.AdminHandlers.Decide))
	mux.Handle("DELETE /api/admin/stations/{id}", admin(deps.AdminHandlers.DeleteStation))

	if deps.PriceFeedHandler != nil {
		mux.Handle("GET /ws/prices", deps.PriceFeedHandler)
	}

	return mux
}
