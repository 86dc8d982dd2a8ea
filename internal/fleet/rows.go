package fleet

import (
	"sort"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
)

// soonestCap replaces an unknown distance in the soonest proxy.
const soonestCap = 999999

// ServiceRow is one vehicle in the service urgency list.
type ServiceRow struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	RegistrationNumber string                 `json:"registration_number"`
	Status             Status                 `json:"status"`
	Message            string                 `json:"message"`
	CurrentKm          int                    `json:"current_km"`
	KmLeft             int                    `json:"km_left"`
	DaysLeft           Days                   `json:"days_left"`
	NextServiceDate    string                 `json:"next_service_date,omitempty"`
	VehicleCategory    models.VehicleCategory `json:"vehicle_category"`
	VehicleType        models.VehicleUsage    `json:"vehicle_type"`
	UrgencyKey         int                    `json:"urgency_key"`
	Soonest            int                    `json:"soonest"`
}

// DocumentRow is one (vehicle, document) pair in the document urgency list.
type DocumentRow struct {
	VehicleID          string              `json:"vehicle_id"`
	Name               string              `json:"name"`
	RegistrationNumber string              `json:"registration_number"`
	Document           models.DocumentType `json:"document"`
	Label              string              `json:"label"`
	Date               string              `json:"date"`
	Status             Status              `json:"status"`
	State              string              `json:"state"`
	Days               Days                `json:"days"`
}

// soonest folds days and kilometres left into one comparable number using
// AverageDailyKm.
func soonest(daysLeft Days, kmLeft int) int {
	d := soonestCap
	if daysLeft.Known() {
		d = int(daysLeft)
	}
	km := (max(0, kmLeft) + AverageDailyKm - 1) / AverageDailyKm
	return min(d, km)
}

// BuildServiceRows evaluates every vehicle and orders the rows by urgency,
// then by the soonest proxy, then by name.
func BuildServiceRows(vehicles []models.Vehicle, today time.Time) []ServiceRow {
	rows := make([]ServiceRow, 0, len(vehicles))
	for _, v := range vehicles {
		st := EvaluateService(v, today)
		rows = append(rows, ServiceRow{
			ID:                 v.ID,
			Name:               v.Name(),
			RegistrationNumber: v.RegistrationNumber,
			Status:             st.Status,
			Message:            st.Message,
			CurrentKm:          st.CurrentKm,
			KmLeft:             st.KmUntilService,
			DaysLeft:           st.DaysUntilService,
			NextServiceDate:    st.NextServiceDate,
			VehicleCategory:    v.EffectiveCategory(),
			VehicleType:        v.EffectiveUsage(),
			UrgencyKey:         st.Status.UrgencyKey(),
			Soonest:            soonest(st.DaysUntilService, st.KmUntilService),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.UrgencyKey != b.UrgencyKey {
			return a.UrgencyKey < b.UrgencyKey
		}
		if a.Soonest != b.Soonest {
			return a.Soonest < b.Soonest
		}
		return a.Name < b.Name
	})
	return rows
}

// FilterServiceRows keeps rows with the given status, preserving order.
func FilterServiceRows(rows []ServiceRow, status Status) []ServiceRow {
	out := make([]ServiceRow, 0)
	for _, r := range rows {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// BuildDocumentRows flattens every applicable, set document of every vehicle
// and orders them expired first, then by days remaining, then by name.
func BuildDocumentRows(vehicles []models.Vehicle, today time.Time) []DocumentRow {
	rows := make([]DocumentRow, 0)
	for _, v := range vehicles {
		for _, doc := range EvaluateDocuments(v, today) {
			rows = append(rows, DocumentRow{
				VehicleID:          v.ID,
				Name:               v.Name(),
				RegistrationNumber: v.RegistrationNumber,
				Document:           doc.Type,
				Label:              doc.Label,
				Date:               doc.Date,
				Status:             doc.Status,
				State:              doc.Status.DocumentState(),
				Days:               doc.Days,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if ka, kb := a.Status.UrgencyKey(), b.Status.UrgencyKey(); ka != kb {
			return ka < kb
		}
		if a.Days != b.Days {
			return a.Days < b.Days
		}
		return a.Name < b.Name
	})
	return rows
}

// FilterDocumentRows keeps rows with the given status, preserving order.
func FilterDocumentRows(rows []DocumentRow, status Status) []DocumentRow {
	out := make([]DocumentRow, 0)
	for _, r := range rows {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
