package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/fleet"
)

// DashboardObserver receives the fleet figures computed for the dashboard.
type DashboardObserver interface {
	ObserveAnalytics(a fleet.FleetAnalytics)
	ObserveAlerts(alerts []fleet.Alert)
	ObserveCacheLookup(result string)
}

// DashboardHandler serves the fleet-wide views: status tables, analytics
// and alerts. Cache and Observer are optional.
type DashboardHandler struct {
	vehicles db.VehicleStore
	services db.ServiceRecordStore

	Cache    *cache.AnalyticsCache
	Observer DashboardObserver
	Now      Clock
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(vehicles db.VehicleStore, services db.ServiceRecordStore) *DashboardHandler {
	return &DashboardHandler{
		vehicles: vehicles,
		services: services,
		Now:      time.Now,
	}
}

// AlertsResponse is the body of the alerts endpoint.
type AlertsResponse struct {
	Date     string        `json:"date"`
	Overdue  int           `json:"overdue"`
	Upcoming int           `json:"upcoming"`
	Alerts   []fleet.Alert `json:"alerts"`
}

// statusFilter reads ?status=. An empty value means no filter.
func statusFilter(w http.ResponseWriter, r *http.Request) (fleet.Status, bool) {
	status := fleet.Status(r.URL.Query().Get("status"))
	switch status {
	case "", fleet.StatusOK, fleet.StatusUpcoming, fleet.StatusOverdue:
		return status, true
	}
	http.Error(w, "status must be one of ok, upcoming, overdue", http.StatusBadRequest)
	return "", false
}

// ServiceRows returns one row per vehicle, most urgent first.
func (h *DashboardHandler) ServiceRows(w http.ResponseWriter, r *http.Request) {
	status, ok := statusFilter(w, r)
	if !ok {
		return
	}
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}

	rows := fleet.BuildServiceRows(vehicles, h.Now.today())
	if status != "" {
		rows = fleet.FilterServiceRows(rows, status)
	}
	if rows == nil {
		rows = []fleet.ServiceRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// DocumentRows returns one row per tracked document, soonest expiry first.
func (h *DashboardHandler) DocumentRows(w http.ResponseWriter, r *http.Request) {
	status, ok := statusFilter(w, r)
	if !ok {
		return
	}
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}

	rows := fleet.BuildDocumentRows(vehicles, h.Now.today())
	if status != "" {
		rows = fleet.FilterDocumentRows(rows, status)
	}
	if rows == nil {
		rows = []fleet.DocumentRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Analytics returns the fleet analytics, served from cache when the inputs
// are unchanged.
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}
	records, err := h.services.FindServiceRecords(r.Context(), "")
	if err != nil {
		storeError(w, err, "Service records")
		return
	}

	analytics, lookup := h.Cache.Analytics(r.Context(), vehicles, records, h.Now.today())
	if h.Observer != nil {
		h.Observer.ObserveCacheLookup(string(lookup))
		h.Observer.ObserveAnalytics(analytics)
	}
	writeJSON(w, http.StatusOK, analytics)
}

// Alerts returns overdue and upcoming alerts for the fleet or, with
// ?vehicle_id=, for a single vehicle.
func (h *DashboardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		vehicleID = fleet.AllVehicles
	}
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}

	today := h.Now.today()
	alerts := fleet.CompileAlerts(vehicles, vehicleID, today)
	if alerts == nil {
		alerts = []fleet.Alert{}
	}
	if h.Observer != nil && vehicleID == fleet.AllVehicles {
		h.Observer.ObserveAlerts(alerts)
	}

	overdue, upcoming := fleet.CountAlerts(alerts)
	writeJSON(w, http.StatusOK, AlertsResponse{
		Date:     fleet.FormatDate(today),
		Overdue:  overdue,
		Upcoming: upcoming,
		Alerts:   alerts,
	})
}
