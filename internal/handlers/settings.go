package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/middleware"
	"github.com/ukydev/fleet-admin/internal/models"
)

// SettingsHandler serves the homepage content and the company profile
// managed from the admin backend.
type SettingsHandler struct {
	store    db.SettingsStore
	validate *validator.Validate
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(store db.SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store, validate: validator.New()}
}

// GetSite returns the site settings. It is public.
func (h *SettingsHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSiteSettings(r.Context())
	if err != nil {
		storeError(w, err, "Site settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SaveSite replaces the site settings.
func (h *SettingsHandler) SaveSite(w http.ResponseWriter, r *http.Request) {
	var settings models.SiteSettings
	if !decodeJSON(w, r, &settings) {
		return
	}
	if !checkStruct(w, h.validate, settings) {
		return
	}
	settings.UpdatedAt = time.Now()

	if err := h.store.SaveSiteSettings(r.Context(), settings); err != nil {
		storeError(w, err, "Site settings")
		return
	}
	logChange(r, "site")
	writeJSON(w, http.StatusOK, settings)
}

// GetCompany returns the company profile.
func (h *SettingsHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetCompanySettings(r.Context())
	if err != nil {
		storeError(w, err, "Company settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SaveCompany replaces the company profile.
func (h *SettingsHandler) SaveCompany(w http.ResponseWriter, r *http.Request) {
	var settings models.CompanySettings
	if !decodeJSON(w, r, &settings) {
		return
	}
	if !checkStruct(w, h.validate, settings) {
		return
	}
	settings.UpdatedAt = time.Now()

	if err := h.store.SaveCompanySettings(r.Context(), settings); err != nil {
		storeError(w, err, "Company settings")
		return
	}
	logChange(r, "company")
	writeJSON(w, http.StatusOK, settings)
}

func logChange(r *http.Request, document string) {
	entry := log.WithField("settings", document)
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		entry = entry.WithField("username", claims.Username)
	}
	entry.Info("Settings updated")
}
