package fleet

import (
	"fmt"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
)

// AllVehicles disables the vehicle filter in CompileAlerts.
const AllVehicles = "all"

// ServiceAlertType is the alert type used for service reminders. Document
// alerts use the document label.
const ServiceAlertType = "Service"

// Alert is a single non-ok service or document condition.
type Alert struct {
	VehicleID   string `json:"vehicle_id"`
	VehicleName string `json:"vehicle_name"`
	Type        string `json:"type"`
	Status      Status `json:"status"`
	Message     string `json:"message"`
}

// CompileAlerts flattens service and document statuses into one list with
// every overdue alert ahead of every upcoming alert. Within a status group
// the vehicle iteration order is kept. vehicleID narrows the list to one
// vehicle; "" or AllVehicles returns everything.
func CompileAlerts(vehicles []models.Vehicle, vehicleID string, today time.Time) []Alert {
	var overdue, upcoming []Alert
	add := func(a Alert) {
		if a.Status == StatusOverdue {
			overdue = append(overdue, a)
		} else {
			upcoming = append(upcoming, a)
		}
	}

	for _, v := range vehicles {
		if vehicleID != "" && vehicleID != AllVehicles && v.ID != vehicleID {
			continue
		}
		name := v.Name()
		if st := EvaluateService(v, today); st.Status != StatusOK {
			add(Alert{
				VehicleID:   v.ID,
				VehicleName: name,
				Type:        ServiceAlertType,
				Status:      st.Status,
				Message:     st.Message,
			})
		}
		for _, ds := range EvaluateDocuments(v, today) {
			if ds.Status == StatusOK {
				continue
			}
			add(Alert{
				VehicleID:   v.ID,
				VehicleName: name,
				Type:        ds.Label,
				Status:      ds.Status,
				Message:     documentMessage(ds.Days),
			})
		}
	}

	out := make([]Alert, 0, len(overdue)+len(upcoming))
	out = append(out, overdue...)
	return append(out, upcoming...)
}

func documentMessage(days Days) string {
	if days <= 0 {
		return fmt.Sprintf("Expired %d days ago", abs(int(days)))
	}
	return fmt.Sprintf("Expires in %d days", int(days))
}

// CountAlerts returns how many alerts are overdue and upcoming.
func CountAlerts(alerts []Alert) (overdue, upcoming int) {
	for _, a := range alerts {
		if a.Status == StatusOverdue {
			overdue++
		} else {
			upcoming++
		}
	}
	return overdue, upcoming
}
