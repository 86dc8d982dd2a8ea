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

// ServiceHandler serves the service history. Recording a service also moves
// the vehicle's service baseline forward.
type ServiceHandler struct {
	vehicles db.VehicleStore
	services db.ServiceRecordStore
	validate *validator.Validate
	newID    func() string
}

// NewServiceHandler creates a service record handler.
func NewServiceHandler(vehicles db.VehicleStore, services db.ServiceRecordStore) *ServiceHandler {
	return &ServiceHandler{
		vehicles: vehicles,
		services: services,
		validate: validator.New(),
		newID:    uuid.NewString,
	}
}

// List returns service records newest first, optionally for one vehicle.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.services.FindServiceRecords(r.Context(), r.URL.Query().Get("vehicle_id"))
	if err != nil {
		storeError(w, err, "Service records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Create records a completed service and applies it to the vehicle.
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var record models.ServiceRecord
	if !decodeJSON(w, r, &record) {
		return
	}
	trimRecord(&record)
	record.ID = h.newID()
	if !checkStruct(w, h.validate, record) {
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), record.MotorcycleID)
	if err != nil {
		storeError(w, err, "Vehicle")
		return
	}

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := h.services.InsertServiceRecord(r.Context(), record); err != nil {
		storeError(w, err, "Service record")
		return
	}

	updated := fleet.ApplyServiceRecord(*vehicle, record)
	if err := h.vehicles.UpdateVehicle(r.Context(), vehicle.ID, updated); err != nil {
		// the record must not outlive a vehicle that never saw it
		if rbErr := h.services.DeleteServiceRecord(r.Context(), record.ID); rbErr != nil {
			log.WithError(rbErr).WithField("record_id", record.ID).Error("Failed to roll back service record")
		}
		storeError(w, err, "Vehicle")
		return
	}
	log.WithFields(log.Fields{
		"vehicle_id": vehicle.ID,
		"record_id":  record.ID,
		"date":       record.Date,
		"kilometers": record.Kilometers,
	}).Info("Service recorded")

	writeJSON(w, http.StatusCreated, record)
}

// Update edits a service record. The vehicle it belongs to never changes,
// and neither does the vehicle's service baseline.
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var record models.ServiceRecord
	if !decodeJSON(w, r, &record) {
		return
	}

	existing, err := h.services.FindServiceRecordByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Service record")
		return
	}
	trimRecord(&record)
	record.ID = id
	record.MotorcycleID = existing.MotorcycleID
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = time.Now()
	if !checkStruct(w, h.validate, record) {
		return
	}

	if err := h.services.UpdateServiceRecord(r.Context(), id, record); err != nil {
		storeError(w, err, "Service record")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Delete removes a service record.
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.services.DeleteServiceRecord(r.Context(), r.PathValue("id")); err != nil {
		storeError(w, err, "Service record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func trimRecord(rec *models.ServiceRecord) {
	rec.MotorcycleID = strings.TrimSpace(rec.MotorcycleID)
	rec.WorkDone = strings.TrimSpace(rec.WorkDone)
	rec.Garage = strings.TrimSpace(rec.Garage)
	rec.Mechanic = strings.TrimSpace(rec.Mechanic)
}
