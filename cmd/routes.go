package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/handlers"
	"github.com/ukydev/fleet-admin/internal/metrics"
	"github.com/ukydev/fleet-admin/internal/middleware"
	"github.com/ukydev/fleet-admin/internal/models"
)

// app holds everything the router needs.
type app struct {
	authService *auth.Service
	users       db.UserCollection
	vehicles    db.VehicleStore
	services    db.ServiceRecordStore
	settings    db.SettingsStore

	cache    *cache.AnalyticsCache
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	rateLimit int
	now       func() time.Time
	// ping checks backing services for /health. Optional.
	ping func(ctx context.Context) error
}

func newRouter(a *app) http.Handler {
	authMW := middleware.NewAuthMiddleware(a.authService)
	rateLimiter := middleware.NewRateLimitMiddleware()
	mux := http.NewServeMux()

	handle := func(pattern, permission string, h http.HandlerFunc) {
		var handler http.Handler = h
		if permission != "" {
			handler = authMW.RequirePermission(permission)(handler)
		}
		if a.metrics != nil {
			handler = a.metrics.Instrument(pattern, handler)
		}
		mux.Handle(pattern, handler)
	}
	adminOnly := func(pattern string, h http.HandlerFunc) {
		var handler http.Handler = authMW.RequireRole(models.RoleAdmin)(h)
		if a.metrics != nil {
			handler = a.metrics.Instrument(pattern, handler)
		}
		mux.Handle(pattern, handler)
	}

	authHandler := handlers.NewAuthHandler(a.authService, a.users)
	handle("POST /api/auth/login", "", authHandler.Login)
	handle("POST /api/auth/register", "", authHandler.Register)
	handle("GET /api/auth/profile", "", authHandler.GetProfile)
	handle("PUT /api/auth/profile", "", authHandler.UpdateProfile)
	handle("POST /api/auth/change-password", "", authHandler.ChangePassword)
	adminOnly("DELETE /api/users/{id}", authHandler.DeleteUser)

	vehicleHandler := handlers.NewVehicleHandler(a.vehicles)
	vehicleHandler.Now = a.now
	handle("GET /api/vehicles", models.PermViewFleet, vehicleHandler.List)
	handle("POST /api/vehicles", models.PermManageVehicles, vehicleHandler.Create)
	handle("GET /api/vehicles/{id}", models.PermViewFleet, vehicleHandler.Get)
	handle("PUT /api/vehicles/{id}", models.PermManageVehicles, vehicleHandler.Update)
	handle("DELETE /api/vehicles/{id}", models.PermDeleteVehicle, vehicleHandler.Delete)
	handle("POST /api/vehicles/{id}/readings", models.PermManageVehicles, vehicleHandler.AddReading)
	handle("GET /api/vehicles/{id}/status", models.PermViewFleet, vehicleHandler.Status)

	serviceHandler := handlers.NewServiceHandler(a.vehicles, a.services)
	handle("GET /api/services", models.PermViewFleet, serviceHandler.List)
	handle("POST /api/services", models.PermRecordService, serviceHandler.Create)
	handle("PUT /api/services/{id}", models.PermRecordService, serviceHandler.Update)
	handle("DELETE /api/services/{id}", models.PermRecordService, serviceHandler.Delete)

	dashboard := handlers.NewDashboardHandler(a.vehicles, a.services)
	dashboard.Now = a.now
	dashboard.Cache = a.cache
	if a.metrics != nil {
		dashboard.Observer = a.metrics
	}
	handle("GET /api/dashboard/service-rows", models.PermViewFleet, dashboard.ServiceRows)
	handle("GET /api/dashboard/document-rows", models.PermViewFleet, dashboard.DocumentRows)
	handle("GET /api/dashboard/analytics", models.PermViewFleet, dashboard.Analytics)
	handle("GET /api/dashboard/alerts", models.PermViewFleet, dashboard.Alerts)

	settingsHandler := handlers.NewSettingsHandler(a.settings)
	handle("GET /api/settings/site", "", settingsHandler.GetSite)
	handle("PUT /api/settings/site", models.PermManageSettings, settingsHandler.SaveSite)
	adminOnly("GET /api/settings/company", settingsHandler.GetCompany)
	adminOnly("PUT /api/settings/company", settingsHandler.SaveCompany)

	transferHandler := handlers.NewTransferHandler(a.vehicles)
	handle("GET /api/transfer/vehicles.csv", models.PermImportExport, transferHandler.Export)
	handle("POST /api/transfer/vehicles", models.PermImportExport, transferHandler.Import)

	handle("GET /health", "", healthHandler(a.ping))
	if a.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}

	var h http.Handler = authMW.Authenticate(mux)
	h = rateLimiter.RateLimit(a.rateLimit, 60)(h)
	h = middleware.RequestLogger(h)
	return middleware.Recover(h)
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}
