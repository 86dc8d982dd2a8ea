package fleet

import (
	"github.com/ukydev/fleet-admin/internal/models"
)

// ApplyServiceRecord returns a copy of v updated for a completed service:
// the last service date and km move forward and the service odometer is
// appended as a reading. Records older than the current last service do not
// move the service baseline back.
func ApplyServiceRecord(v models.Vehicle, rec models.ServiceRecord) models.Vehicle {
	out := v
	out.KmReadings = append([]models.KmReading(nil), v.KmReadings...)

	if v.LastServiceDate == "" || !isBefore(rec.Date, v.LastServiceDate) {
		out.LastServiceDate = rec.Date
		out.LastServiceKm = rec.Kilometers
	}
	if rec.Kilometers > 0 {
		out.KmReadings = append(out.KmReadings, models.KmReading{
			ID:         "svc-" + rec.ID,
			Date:       rec.Date,
			Kilometers: rec.Kilometers,
		})
	}
	return out
}

// AddKmReading returns a copy of v with r appended to its odometer history.
func AddKmReading(v models.Vehicle, r models.KmReading) models.Vehicle {
	out := v
	out.KmReadings = append(append([]models.KmReading(nil), v.KmReadings...), r)
	if r.Kilometers > out.CurrentOdometer {
		out.CurrentOdometer = r.Kilometers
	}
	return out
}

// RemoveVehicle deletes the vehicle with the given id and every service
// record that references it. Inputs are not modified.
func RemoveVehicle(vehicles []models.Vehicle, records []models.ServiceRecord, id string) ([]models.Vehicle, []models.ServiceRecord) {
	keptVehicles := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.ID != id {
			keptVehicles = append(keptVehicles, v)
		}
	}
	keptRecords := make([]models.ServiceRecord, 0, len(records))
	for _, r := range records {
		if r.MotorcycleID != id {
			keptRecords = append(keptRecords, r)
		}
	}
	return keptVehicles, keptRecords
}

// isBefore compares two dates; unparsable dates never count as earlier.
func isBefore(a, b string) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if !okA || !okB {
		return false
	}
	return ta.Before(tb)
}
