package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-admin/internal/models"
)

func TestApplyServiceRecord(t *testing.T) {
	v := models.Vehicle{
		ID:              "v1",
		LastServiceDate: "2024-01-01",
		LastServiceKm:   1000,
		KmReadings:      []models.KmReading{{ID: "r1", Date: "2024-02-01", Kilometers: 3000}},
	}
	rec := models.ServiceRecord{ID: "s1", MotorcycleID: "v1", Date: "2024-05-20", Kilometers: 6100}

	got := ApplyServiceRecord(v, rec)
	assert.Equal(t, "2024-05-20", got.LastServiceDate)
	assert.Equal(t, 6100, got.LastServiceKm)
	require.Len(t, got.KmReadings, 2)
	assert.Equal(t, models.KmReading{ID: "svc-s1", Date: "2024-05-20", Kilometers: 6100}, got.KmReadings[1])

	// input untouched
	assert.Equal(t, "2024-01-01", v.LastServiceDate)
	assert.Len(t, v.KmReadings, 1)

	st := EvaluateService(got, day(2024, time.June, 5))
	assert.Equal(t, StatusOK, st.Status)
	assert.Equal(t, 0, st.KmSinceService)
}

func TestApplyServiceRecord_OlderRecordKeepsBaseline(t *testing.T) {
	v := models.Vehicle{LastServiceDate: "2024-04-01", LastServiceKm: 5000}
	got := ApplyServiceRecord(v, models.ServiceRecord{ID: "old", Date: "2023-12-01", Kilometers: 2000})
	assert.Equal(t, "2024-04-01", got.LastServiceDate)
	assert.Equal(t, 5000, got.LastServiceKm)
	assert.Len(t, got.KmReadings, 1)
}

func TestApplyServiceRecord_FirstServiceWithoutKm(t *testing.T) {
	got := ApplyServiceRecord(models.Vehicle{}, models.ServiceRecord{ID: "s", Date: "2024-03-01"})
	assert.Equal(t, "2024-03-01", got.LastServiceDate)
	assert.Empty(t, got.KmReadings)
}

func TestAddKmReading(t *testing.T) {
	v := models.Vehicle{CurrentOdometer: 1200}
	got := AddKmReading(v, models.KmReading{ID: "r", Date: "2024-06-01", Kilometers: 1500})
	assert.Equal(t, 1500, got.CurrentOdometer)
	assert.Len(t, got.KmReadings, 1)
	assert.Empty(t, v.KmReadings)

	lower := AddKmReading(got, models.KmReading{ID: "r2", Date: "2024-06-02", Kilometers: 900})
	assert.Equal(t, 1500, lower.CurrentOdometer)
	assert.Len(t, lower.KmReadings, 2)
	assert.Equal(t, 1500, CurrentKm(lower))
}

func TestRemoveVehicle(t *testing.T) {
	vehicles := []models.Vehicle{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	records := []models.ServiceRecord{
		{ID: "1", MotorcycleID: "a"},
		{ID: "2", MotorcycleID: "b"},
		{ID: "3", MotorcycleID: "b"},
		{ID: "4", MotorcycleID: "c"},
	}

	vs, rs := RemoveVehicle(vehicles, records, "b")
	assert.Equal(t, []models.Vehicle{{ID: "a"}, {ID: "c"}}, vs)
	assert.Equal(t, []models.ServiceRecord{{ID: "1", MotorcycleID: "a"}, {ID: "4", MotorcycleID: "c"}}, rs)
	assert.Len(t, vehicles, 3)
	assert.Len(t, records, 4)

	vs, rs = RemoveVehicle(vehicles, records, "zzz")
	assert.Len(t, vs, 3)
	assert.Len(t, rs, 4)
}
