package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/db"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Clock supplies the current day to handlers that evaluate dates.
type Clock func() time.Time

func (c Clock) today() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// decodeJSON reads the request body into v. It writes the error response
// itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// checkStruct validates v and writes a 400 naming the failing fields.
func checkStruct(w http.ResponseWriter, validate *validator.Validate, v interface{}) bool {
	if err := validate.Struct(v); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

// storeError maps a store error to a response. Not found becomes 404,
// anything else is logged and reported as 500.
func storeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	log.WithError(err).WithField("entity", what).Error("Store operation failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
