package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/transfer"
)

const maxImportBytes = 10 << 20

// TransferHandler moves vehicle records in and out as CSV spreadsheets.
type TransferHandler struct {
	vehicles db.VehicleStore
	importer *transfer.Importer
}

// NewTransferHandler creates a CSV import/export handler.
func NewTransferHandler(vehicles db.VehicleStore) *TransferHandler {
	return &TransferHandler{vehicles: vehicles, importer: transfer.NewImporter()}
}

// ImportSummary reports what an import changed.
type ImportSummary struct {
	Created int                 `json:"created"`
	Updated int                 `json:"updated"`
	Skipped []string            `json:"skipped"`
	Errors  []transfer.RowError `json:"errors"`
}

// Export streams every vehicle as a CSV attachment.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vehicles.csv"`)
	if err := transfer.Export(w, vehicles); err != nil {
		log.WithError(err).Error("Failed to export vehicles")
	}
}

// Import reads a CSV upload, either as a multipart "file" field or as the
// raw request body. Rows whose id matches a stored vehicle update it; a
// registration number already used by another vehicle is skipped.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	src, err := uploadedFile(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer src.Close()

	parsed, err := h.importer.Import(src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		storeError(w, err, "Vehicles")
		return
	}
	byID := make(map[string]models.Vehicle, len(existing))
	owner := make(map[string]string, len(existing))
	for _, v := range existing {
		byID[v.ID] = v
		owner[strings.ToUpper(v.RegistrationNumber)] = v.ID
	}

	summary := ImportSummary{Skipped: []string{}, Errors: parsed.Errors}
	for _, v := range parsed.Vehicles {
		if id, taken := owner[strings.ToUpper(v.RegistrationNumber)]; taken && id != v.ID {
			summary.Skipped = append(summary.Skipped, v.RegistrationNumber)
			continue
		}
		if prev, ok := byID[v.ID]; ok {
			v.KmReadings = prev.KmReadings
			v.CreatedAt = prev.CreatedAt
			if err := h.vehicles.UpdateVehicle(r.Context(), v.ID, v); err != nil {
				storeError(w, err, "Vehicle")
				return
			}
			summary.Updated++
			continue
		}
		if err := h.vehicles.InsertVehicle(r.Context(), v); err != nil {
			storeError(w, err, "Vehicle")
			return
		}
		owner[strings.ToUpper(v.RegistrationNumber)] = v.ID
		summary.Created++
	}

	log.WithFields(log.Fields{
		"created": summary.Created,
		"updated": summary.Updated,
		"skipped": len(summary.Skipped),
		"errors":  len(summary.Errors),
	}).Info("Vehicle import finished")
	writeJSON(w, http.StatusOK, summary)
}

func uploadedFile(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	file, _, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errors.New("multipart upload needs a file field")
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return file, nil
}
