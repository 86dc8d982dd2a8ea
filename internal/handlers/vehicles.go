package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/fleet"
	"github.com/ukydev/fleet-admin/internal/models"
)

// VehicleHandler serves vehicle records and their odometer history.
type VehicleHandler struct {
	vehicles db.VehicleStore
	validate *validator.Validate
	newID    func() string

	Now Clock
}

// NewVehicleHandler creates a vehicle handler backed by store.
func NewVehicleHandler(store db.VehicleStore) *VehicleHandler {
	return &VehicleHandler{
		vehicles: store,
		validate: validator.New(),
		newID:    uuid.NewString,
		Now:      time.Now,
	}
}

// VehicleDetail is a vehicle with its evaluated service and document state.
type VehicleDetail struct {
	models.Vehicle
	Service   fleet.ServiceStatus    `json:"service"`
	Documents []fleet.DocumentStatus `json:"documents"`
}

// List returns every vehicle.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Create registers a new vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if !decodeJSON(w, r, &vehicle) {
		return
	}
	h.normalize(&vehicle)
	if vehicle.ID == "" {
		vehicle.ID = h.newID()
	}
	if !checkStruct(w, h.validate, vehicle) {
		return
	}

	taken, err := h.registrationTaken(r, vehicle.RegistrationNumber, vehicle.ID)
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}
	if taken {
		http.Error(w, "Registration number already exists", http.StatusConflict)
		return
	}

	if err := h.vehicles.InsertVehicle(r.Context(), vehicle); err != nil {
		storeError(w, err, "Vehicle")
		return
	}
	log.WithFields(log.Fields{
		"vehicle_id":   vehicle.ID,
		"registration": vehicle.RegistrationNumber,
	}).Info("Vehicle registered")

	writeJSON(w, http.StatusCreated, vehicle)
}

// Get returns one vehicle with its evaluated status.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		storeError(w, err, "Vehicle")
		return
	}
	writeJSON(w, http.StatusOK, h.detail(*vehicle))
}

// Update replaces the editable fields of a vehicle.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var vehicle models.Vehicle
	if !decodeJSON(w, r, &vehicle) {
		return
	}
	h.normalize(&vehicle)
	vehicle.ID = id
	if !checkStruct(w, h.validate, vehicle) {
		return
	}

	existing, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Vehicle")
		return
	}
	// readings are only added through their own endpoint
	if vehicle.KmReadings == nil {
		vehicle.KmReadings = existing.KmReadings
	}
	vehicle.CreatedAt = existing.CreatedAt

	taken, err := h.registrationTaken(r, vehicle.RegistrationNumber, id)
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}
	if taken {
		http.Error(w, "Registration number already exists", http.StatusConflict)
		return
	}

	if err := h.vehicles.UpdateVehicle(r.Context(), id, vehicle); err != nil {
		storeError(w, err, "Vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Delete removes a vehicle together with its service history.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	removed, err := h.vehicles.DeleteVehicle(r.Context(), id)
	if err != nil {
		storeError(w, err, "Vehicle")
		return
	}
	log.WithFields(log.Fields{
		"vehicle_id":      id,
		"service_records": removed,
	}).Info("Vehicle deleted")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":                 "Vehicle deleted",
		"deleted_service_records": removed,
	})
}

// AddReading appends an odometer reading to a vehicle.
func (h *VehicleHandler) AddReading(w http.ResponseWriter, r *http.Request) {
	var reading models.KmReading
	if !decodeJSON(w, r, &reading) {
		return
	}
	if reading.Date == "" {
		reading.Date = fleet.FormatDate(h.Now.today())
	}
	if reading.ID == "" {
		reading.ID = h.newID()
	}
	if !checkStruct(w, h.validate, reading) {
		return
	}

	vehicle, err := h.vehicles.AddKmReading(r.Context(), r.PathValue("id"), reading)
	if err != nil {
		storeError(w, err, "Vehicle")
		return
	}
	writeJSON(w, http.StatusCreated, h.detail(*vehicle))
}

// Status returns only the evaluated service and document state.
func (h *VehicleHandler) Status(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		storeError(w, err, "Vehicle")
		return
	}
	d := h.detail(*vehicle)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vehicle_id": vehicle.ID,
		"name":       vehicle.Name(),
		"service":    d.Service,
		"documents":  d.Documents,
	})
}

func (h *VehicleHandler) detail(v models.Vehicle) VehicleDetail {
	today := h.Now.today()
	docs := fleet.EvaluateDocuments(v, today)
	if docs == nil {
		docs = []fleet.DocumentStatus{}
	}
	return VehicleDetail{
		Vehicle:   v,
		Service:   fleet.EvaluateService(v, today),
		Documents: docs,
	}
}

func (h *VehicleHandler) normalize(v *models.Vehicle) {
	v.RegistrationNumber = models.NormalizeRegistration(v.RegistrationNumber)
	v.Make = strings.TrimSpace(v.Make)
	v.Model = strings.TrimSpace(v.Model)
	for i := range v.KmReadings {
		if v.KmReadings[i].ID == "" {
			v.KmReadings[i].ID = h.newID()
		}
	}
}

// registrationTaken reports whether another vehicle already uses reg.
func (h *VehicleHandler) registrationTaken(r *http.Request, reg, selfID string) (bool, error) {
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		return false, err
	}
	for _, v := range vehicles {
		if v.ID != selfID && strings.EqualFold(v.RegistrationNumber, reg) {
			return true, nil
		}
	}
	return false, nil
}
