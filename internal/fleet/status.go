package fleet

import (
	"fmt"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
)

// Status is the urgency of a service or document.
type Status string

const (
	StatusOK       Status = "ok"
	StatusUpcoming Status = "upcoming"
	StatusOverdue  Status = "overdue"
)

// Thresholds. AverageDailyKm converts between distance and time when the
// two service triggers are compared; it is a fleet-wide assumption, not a
// measured value.
const (
	AverageDailyKm      = 50
	ServiceUpcomingKm   = 500
	ServiceUpcomingDays = 15
	DocumentWarningDays = 30
)

// DocumentState returns the document-facing label for s.
func (s Status) DocumentState() string {
	switch s {
	case StatusOverdue:
		return "expired"
	case StatusUpcoming:
		return "expiring"
	default:
		return "valid"
	}
}

// UrgencyKey ranks statuses for sorting: 0 overdue, 1 upcoming, 2 ok.
func (s Status) UrgencyKey() int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusUpcoming:
		return 1
	default:
		return 2
	}
}

// ServiceStatus is the evaluated service state of one vehicle.
type ServiceStatus struct {
	Status   Status `json:"status"`
	Message  string `json:"message"`
	DaysOrKm int    `json:"days_or_km"`

	// KmCritical is true when the reported number is in kilometres.
	KmCritical       bool   `json:"km_critical"`
	CurrentKm        int    `json:"current_km"`
	KmSinceService   int    `json:"km_since_service"`
	KmUntilService   int    `json:"km_until_service"`
	DaysUntilService Days   `json:"days_until_service"`
	NextServiceDate  string `json:"next_service_date,omitempty"`
}

// ValidityStatus is the evaluated state of one dated document.
type ValidityStatus struct {
	Status Status `json:"status"`
	Days   Days   `json:"days"`
}

// DocumentStatus is a ValidityStatus bound to its document.
type DocumentStatus struct {
	Type  models.DocumentType `json:"type"`
	Label string              `json:"label"`
	Date  string              `json:"date"`
	ValidityStatus
}

// CurrentKm resolves the vehicle's odometer: the highest reading if any
// readings exist, else the stored odometer, else the last service km.
func CurrentKm(v models.Vehicle) int {
	if len(v.KmReadings) > 0 {
		highest := v.KmReadings[0].Kilometers
		for _, r := range v.KmReadings[1:] {
			if r.Kilometers > highest {
				highest = r.Kilometers
			}
		}
		if highest > 0 {
			return highest
		}
	}
	if v.CurrentOdometer > 0 {
		return v.CurrentOdometer
	}
	if v.LastServiceKm > 0 {
		return v.LastServiceKm
	}
	return 0
}

// EvaluateService applies the dual km-or-time rule to v.
func EvaluateService(v models.Vehicle, today time.Time) ServiceStatus {
	current := CurrentKm(v)
	since := max(0, current-v.LastServiceKm)
	kmLeft := v.IntervalKms() - since

	out := ServiceStatus{
		CurrentKm:        current,
		KmSinceService:   since,
		KmUntilService:   kmLeft,
		DaysUntilService: NoDate,
	}

	if v.LastServiceDate == "" {
		out.KmCritical = true
		out.DaysOrKm = kmLeft
		switch {
		case kmLeft <= 0:
			out.Status = StatusOverdue
		case kmLeft <= ServiceUpcomingKm:
			out.Status = StatusUpcoming
		default:
			out.Status = StatusOK
		}
		out.Message = serviceMessage(out.Status, kmLeft, "km")
		return out
	}

	out.NextServiceDate = ProjectNextServiceDate(v.LastServiceDate, v.IntervalMonths())
	daysLeft := DaysUntil(out.NextServiceDate, today)
	out.DaysUntilService = daysLeft

	switch {
	case kmLeft <= 0 || daysLeft <= 0:
		out.Status = StatusOverdue
	case kmLeft <= ServiceUpcomingKm || daysLeft <= ServiceUpcomingDays:
		out.Status = StatusUpcoming
	default:
		out.Status = StatusOK
	}

	// Only the reported unit depends on this comparison, never the status.
	out.KmCritical = !daysLeft.Known() || kmLeft <= int(daysLeft)*AverageDailyKm
	if out.KmCritical {
		out.DaysOrKm = kmLeft
		out.Message = serviceMessage(out.Status, kmLeft, "km")
	} else {
		out.DaysOrKm = int(daysLeft)
		out.Message = serviceMessage(out.Status, int(daysLeft), "days")
	}
	return out
}

func serviceMessage(s Status, n int, unit string) string {
	switch s {
	case StatusOverdue:
		return fmt.Sprintf("Overdue by %d %s", abs(n), unit)
	case StatusUpcoming:
		return fmt.Sprintf("Due in %d %s", n, unit)
	default:
		return fmt.Sprintf("Next service in %d %s", n, unit)
	}
}

// EvaluateValidity classifies a document validity date. An absent or
// unparsable date is reported as ok with NoDate days.
func EvaluateValidity(dateISO string, today time.Time) ValidityStatus {
	days := DaysUntil(dateISO, today)
	switch {
	case !days.Known():
		return ValidityStatus{Status: StatusOK, Days: NoDate}
	case days <= 0:
		return ValidityStatus{Status: StatusOverdue, Days: days}
	case days <= DocumentWarningDays:
		return ValidityStatus{Status: StatusUpcoming, Days: days}
	default:
		return ValidityStatus{Status: StatusOK, Days: days}
	}
}

// EvaluateDocuments returns a status for every evaluated document that
// applies to the vehicle's usage class and has a date set.
func EvaluateDocuments(v models.Vehicle, today time.Time) []DocumentStatus {
	usage := v.EffectiveUsage()
	var out []DocumentStatus
	for _, doc := range models.EvaluatedDocuments {
		if !doc.AppliesTo(usage) {
			continue
		}
		date := v.ValidityDate(doc)
		if date == "" {
			continue
		}
		out = append(out, DocumentStatus{
			Type:           doc,
			Label:          doc.Label(),
			Date:           date,
			ValidityStatus: EvaluateValidity(date, today),
		})
	}
	return out
}

// HealthBand maps a fleet health score to good, fair or poor.
func HealthBand(score int) string {
	switch {
	case score >= 80:
		return "good"
	case score >= 60:
		return "fair"
	default:
		return "poor"
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
