package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/fleet"
	"github.com/ukydev/fleet-admin/internal/models"
)

func newVehicleHandler(store *MockVehicleStore) *VehicleHandler {
	h := NewVehicleHandler(store)
	h.Now = fixedClock
	h.newID = func() string { return "generated-id" }
	return h
}

func TestVehicleHandler_List(t *testing.T) {
	store := new(MockVehicleStore)
	store.On("FindVehicles", mock.Anything).Return(fixtureVehicles(), nil)

	w := httptest.NewRecorder()
	newVehicleHandler(store).List(w, httptest.NewRequest("GET", "/api/vehicles", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var vehicles []models.Vehicle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vehicles))
	assert.Len(t, vehicles, 2)
}

func TestVehicleHandler_Create(t *testing.T) {
	t.Run("assigns id and normalizes registration", func(t *testing.T) {
		store := new(MockVehicleStore)
		store.On("FindVehicles", mock.Anything).Return(fixtureVehicles(), nil)
		store.On("InsertVehicle", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
			return v.ID == "generated-id" && v.RegistrationNumber == "MH12XY0001" &&
				len(v.KmReadings) == 1 && v.KmReadings[0].ID == "generated-id"
		})).Return(nil)

		body := `{"registration_number":" mh12xy0001 ","make":"Bajaj","model":"Pulsar",
			"insurance_validity":"2026-01-31","km_readings":[{"date":"2025-06-01","kilometers":1200}]}`
		w := httptest.NewRecorder()
		newVehicleHandler(store).Create(w, jsonRequest("POST", "/api/vehicles", body))

		assert.Equal(t, http.StatusCreated, w.Code)
		store.AssertExpectations(t)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		store := new(MockVehicleStore)
		store.On("FindVehicles", mock.Anything).Return(fixtureVehicles(), nil)

		body := `{"registration_number":"ka01ab1234","make":"Honda","model":"Dio"}`
		w := httptest.NewRecorder()
		newVehicleHandler(store).Create(w, jsonRequest("POST", "/api/vehicles", body))

		assert.Equal(t, http.StatusConflict, w.Code)
		store.AssertNotCalled(t, "InsertVehicle", mock.Anything, mock.Anything)
	})

	t.Run("validation errors", func(t *testing.T) {
		for name, body := range map[string]string{
			"missing make":      `{"registration_number":"X1","model":"Dio"}`,
			"bad date":          `{"registration_number":"X1","make":"Honda","model":"Dio","insurance_validity":"31/01/2026"}`,
			"bad category":      `{"registration_number":"X1","make":"Honda","model":"Dio","vehicle_category":"truck"}`,
			"negative reading":  `{"registration_number":"X1","make":"Honda","model":"Dio","km_readings":[{"date":"2025-06-01","kilometers":-5}]}`,
			"negative interval": `{"registration_number":"X1","make":"Honda","model":"Dio","service_interval_kms":-1}`,
		} {
			store := new(MockVehicleStore)
			w := httptest.NewRecorder()
			newVehicleHandler(store).Create(w, jsonRequest("POST", "/api/vehicles", body))
			assert.Equal(t, http.StatusBadRequest, w.Code, name)
			assert.Contains(t, w.Body.String(), "Validation failed", name)
			store.AssertNotCalled(t, "InsertVehicle", mock.Anything, mock.Anything)
		}
	})
}

func TestVehicleHandler_Get(t *testing.T) {
	t.Run("includes evaluated status", func(t *testing.T) {
		store := new(MockVehicleStore)
		v := fixtureVehicles()[0]
		store.On("FindVehicleByID", mock.Anything, "v-over").Return(&v, nil)

		req := httptest.NewRequest("GET", "/api/vehicles/v-over", nil)
		req.SetPathValue("id", "v-over")
		w := httptest.NewRecorder()
		newVehicleHandler(store).Get(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var detail VehicleDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, "v-over", detail.ID)
		assert.Equal(t, fleet.StatusOverdue, detail.Service.Status)
		assert.Equal(t, "Overdue by 45 days", detail.Service.Message)
		assert.Empty(t, detail.Documents)
	})

	t.Run("not found", func(t *testing.T) {
		store := new(MockVehicleStore)
		store.On("FindVehicleByID", mock.Anything, "nope").Return(nil, db.ErrNotFound)

		req := httptest.NewRequest("GET", "/api/vehicles/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		newVehicleHandler(store).Get(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestVehicleHandler_Update(t *testing.T) {
	t.Run("keeps readings when omitted", func(t *testing.T) {
		store := new(MockVehicleStore)
		existing := models.Vehicle{
			ID:                 "v1",
			RegistrationNumber: "KA05EF0001",
			Make:               "TVS",
			Model:              "Jupiter",
			KmReadings:         []models.KmReading{{ID: "r1", Date: "2025-05-01", Kilometers: 800}},
		}
		store.On("FindVehicleByID", mock.Anything, "v1").Return(&existing, nil)
		store.On("FindVehicles", mock.Anything).Return([]models.Vehicle{existing}, nil)
		store.On("UpdateVehicle", mock.Anything, "v1", mock.MatchedBy(func(v models.Vehicle) bool {
			return v.ID == "v1" && v.Model == "Jupiter ZX" && len(v.KmReadings) == 1
		})).Return(nil)

		req := jsonRequest("PUT", "/api/vehicles/v1", `{"registration_number":"KA05EF0001","make":"TVS","model":"Jupiter ZX"}`)
		req.SetPathValue("id", "v1")
		w := httptest.NewRecorder()
		newVehicleHandler(store).Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		store.AssertExpectations(t)
	})

	t.Run("clearing a date", func(t *testing.T) {
		store := new(MockVehicleStore)
		existing := models.Vehicle{ID: "v1", RegistrationNumber: "KA05EF0001", Make: "TVS", Model: "Jupiter", PollutionValidity: "2025-09-01"}
		store.On("FindVehicleByID", mock.Anything, "v1").Return(&existing, nil)
		store.On("FindVehicles", mock.Anything).Return([]models.Vehicle{existing}, nil)
		store.On("UpdateVehicle", mock.Anything, "v1", mock.MatchedBy(func(v models.Vehicle) bool {
			return v.PollutionValidity == ""
		})).Return(nil)

		req := jsonRequest("PUT", "/api/vehicles/v1", `{"registration_number":"KA05EF0001","make":"TVS","model":"Jupiter"}`)
		req.SetPathValue("id", "v1")
		w := httptest.NewRecorder()
		newVehicleHandler(store).Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		store.AssertExpectations(t)
	})

	t.Run("registration owned by another vehicle", func(t *testing.T) {
		store := new(MockVehicleStore)
		vehicles := fixtureVehicles()
		store.On("FindVehicleByID", mock.Anything, "v-ok").Return(&vehicles[1], nil)
		store.On("FindVehicles", mock.Anything).Return(vehicles, nil)

		req := jsonRequest("PUT", "/api/vehicles/v-ok", `{"registration_number":"KA01AB1234","make":"Maruti","model":"Swift"}`)
		req.SetPathValue("id", "v-ok")
		w := httptest.NewRecorder()
		newVehicleHandler(store).Update(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		store.AssertNotCalled(t, "UpdateVehicle", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVehicleHandler_Delete(t *testing.T) {
	t.Run("reports cascaded records", func(t *testing.T) {
		store := new(MockVehicleStore)
		store.On("DeleteVehicle", mock.Anything, "v-over").Return(int64(3), nil)

		req := httptest.NewRequest("DELETE", "/api/vehicles/v-over", nil)
		req.SetPathValue("id", "v-over")
		w := httptest.NewRecorder()
		newVehicleHandler(store).Delete(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(3), body["deleted_service_records"])
	})

	t.Run("not found", func(t *testing.T) {
		store := new(MockVehicleStore)
		store.On("DeleteVehicle", mock.Anything, "gone").Return(int64(0), db.ErrNotFound)

		req := httptest.NewRequest("DELETE", "/api/vehicles/gone", nil)
		req.SetPathValue("id", "gone")
		w := httptest.NewRecorder()
		newVehicleHandler(store).Delete(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(MockVehicleStore)
		store.On("DeleteVehicle", mock.Anything, "v1").Return(int64(0), assert.AnError)

		req := httptest.NewRequest("DELETE", "/api/vehicles/v1", nil)
		req.SetPathValue("id", "v1")
		w := httptest.NewRecorder()
		newVehicleHandler(store).Delete(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestVehicleHandler_AddReading(t *testing.T) {
	t.Run("defaults the date to today", func(t *testing.T) {
		store := new(MockVehicleStore)
		updated := fixtureVehicles()[0]
		updated.KmReadings = []models.KmReading{{ID: "generated-id", Date: "2025-06-15", Kilometers: 14800}}
		store.On("AddKmReading", mock.Anything, "v-over", models.KmReading{
			ID:         "generated-id",
			Date:       "2025-06-15",
			Kilometers: 14800,
		}).Return(&updated, nil)

		req := jsonRequest("POST", "/api/vehicles/v-over/readings", `{"kilometers":14800}`)
		req.SetPathValue("id", "v-over")
		w := httptest.NewRecorder()
		newVehicleHandler(store).AddReading(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var detail VehicleDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, 14800, detail.Service.CurrentKm)
		assert.Equal(t, 200, detail.Service.KmUntilService)
		store.AssertExpectations(t)
	})

	t.Run("rejects negative kilometers", func(t *testing.T) {
		store := new(MockVehicleStore)
		req := jsonRequest("POST", "/api/vehicles/v-over/readings", `{"date":"2025-06-10","kilometers":-1}`)
		req.SetPathValue("id", "v-over")
		w := httptest.NewRecorder()
		newVehicleHandler(store).AddReading(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "AddKmReading", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		store := new(MockVehicleStore)
		store.On("AddKmReading", mock.Anything, "ghost", mock.Anything).Return(nil, db.ErrNotFound)

		req := jsonRequest("POST", "/api/vehicles/ghost/readings", `{"date":"2025-06-10","kilometers":10}`)
		req.SetPathValue("id", "ghost")
		w := httptest.NewRecorder()
		newVehicleHandler(store).AddReading(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestVehicleHandler_Status(t *testing.T) {
	store := new(MockVehicleStore)
	v := fixtureVehicles()[1]
	store.On("FindVehicleByID", mock.Anything, "v-ok").Return(&v, nil)

	req := httptest.NewRequest("GET", "/api/vehicles/v-ok/status", nil)
	req.SetPathValue("id", "v-ok")
	w := httptest.NewRecorder()
	newVehicleHandler(store).Status(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Name      string                 `json:"name"`
		Service   fleet.ServiceStatus    `json:"service"`
		Documents []fleet.DocumentStatus `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Maruti Swift", body.Name)
	assert.Equal(t, fleet.StatusOK, body.Service.Status)
	require.Len(t, body.Documents, 1)
	assert.Equal(t, models.DocInsurance, body.Documents[0].Type)
	assert.Equal(t, fleet.StatusUpcoming, body.Documents[0].Status)
	assert.Equal(t, fleet.Days(16), body.Documents[0].Days)
}
