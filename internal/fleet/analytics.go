package fleet

import (
	"math"
	"sort"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
)

const (
	rankingSize    = 5
	trendMonths    = 12
	unknownGarage  = "Unspecified"
	serviceWeight  = 0.4
	documentWeight = 0.6
)

// VehicleCost is one vehicle's service spend.
type VehicleCost struct {
	VehicleID    string  `json:"vehicle_id"`
	Name         string  `json:"name"`
	ServiceCount int     `json:"service_count"`
	TotalCost    int64   `json:"total_cost"`
	AverageCost  float64 `json:"average_cost"`
}

// CountBucket is a distribution entry.
type CountBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MonthBucket aggregates service records for one calendar month (YYYY-MM).
type MonthBucket struct {
	Month     string `json:"month"`
	Count     int    `json:"count"`
	TotalCost int64  `json:"total_cost"`
}

// VehicleOdometer ranks a vehicle by distance travelled.
type VehicleOdometer struct {
	VehicleID string `json:"vehicle_id"`
	Name      string `json:"name"`
	CurrentKm int    `json:"current_km"`
}

// GarageStat ranks a workshop by visits.
type GarageStat struct {
	Garage       string `json:"garage"`
	ServiceCount int    `json:"service_count"`
	TotalCost    int64  `json:"total_cost"`
}

// DocumentCompliance counts document states for one document type. Vehicles
// where the document does not apply or has no date are not counted.
type DocumentCompliance struct {
	Document models.DocumentType `json:"document"`
	Label    string              `json:"label"`
	Expired  int                 `json:"expired"`
	Expiring int                 `json:"expiring"`
	Valid    int                 `json:"valid"`
}

// Total is the number of vehicles evaluated for this document.
func (d DocumentCompliance) Total() int {
	return d.Expired + d.Expiring + d.Valid
}

// ServiceCompliance counts vehicles by service status.
type ServiceCompliance struct {
	OK       int `json:"ok"`
	Upcoming int `json:"upcoming"`
	Overdue  int `json:"overdue"`
}

// FleetAnalytics is the full set of fleet rollups.
type FleetAnalytics struct {
	VehicleCount    int     `json:"vehicle_count"`
	ServiceCount    int     `json:"service_count"`
	TotalSpent      int64   `json:"total_spent"`
	AvgPerService   float64 `json:"avg_per_service"`
	AvgPerVehicle   float64 `json:"avg_per_vehicle"`
	TotalFleetKm    int     `json:"total_fleet_km"`
	CommercialCount int     `json:"commercial_count"`
	PrivateCount    int     `json:"private_count"`
	BikeCount       int     `json:"bike_count"`
	CarCount        int     `json:"car_count"`

	VehicleCosts      []VehicleCost        `json:"vehicle_costs"`
	MakeDistribution  []CountBucket        `json:"make_distribution"`
	ModelDistribution []CountBucket        `json:"model_distribution"`
	MonthlyTrend      []MonthBucket        `json:"monthly_trend"`
	TopByOdometer     []VehicleOdometer    `json:"top_by_odometer"`
	TopByServices     []VehicleCost        `json:"top_by_services"`
	Garages           []GarageStat         `json:"garages"`
	Documents         []DocumentCompliance `json:"documents"`
	Service           ServiceCompliance    `json:"service"`

	DocHealth     float64 `json:"doc_health"`
	ServiceHealth float64 `json:"service_health"`
	HealthScore   int     `json:"health_score"`
	HealthBand    string  `json:"health_band"`
}

// ComputeFleetAnalytics reduces the fleet and its service history into
// FleetAnalytics. It is recomputed from scratch on every call.
func ComputeFleetAnalytics(vehicles []models.Vehicle, records []models.ServiceRecord, today time.Time) FleetAnalytics {
	a := FleetAnalytics{
		VehicleCount: len(vehicles),
		ServiceCount: len(records),
	}

	for _, r := range records {
		a.TotalSpent += r.Amount
	}
	if a.ServiceCount > 0 {
		a.AvgPerService = float64(a.TotalSpent) / float64(a.ServiceCount)
	}
	if a.VehicleCount > 0 {
		a.AvgPerVehicle = float64(a.TotalSpent) / float64(a.VehicleCount)
	}

	a.VehicleCosts = vehicleCosts(vehicles, records)
	a.TopByServices = topByServices(a.VehicleCosts)
	a.MakeDistribution, a.ModelDistribution = distributions(vehicles)
	a.MonthlyTrend = monthlyTrend(records)
	a.TopByOdometer = topByOdometer(vehicles)
	a.Garages = garageRanking(records)

	docs := make(map[models.DocumentType]*DocumentCompliance, len(models.EvaluatedDocuments))
	a.Documents = make([]DocumentCompliance, len(models.EvaluatedDocuments))
	for i, d := range models.EvaluatedDocuments {
		a.Documents[i] = DocumentCompliance{Document: d, Label: d.Label()}
		docs[d] = &a.Documents[i]
	}

	validDocs, totalDocs := 0, 0
	for _, v := range vehicles {
		if v.IsCommercial() {
			a.CommercialCount++
		} else {
			a.PrivateCount++
		}
		if v.EffectiveCategory() == models.CategoryCar {
			a.CarCount++
		} else {
			a.BikeCount++
		}

		st := EvaluateService(v, today)
		a.TotalFleetKm += st.CurrentKm
		switch st.Status {
		case StatusOverdue:
			a.Service.Overdue++
		case StatusUpcoming:
			a.Service.Upcoming++
		default:
			a.Service.OK++
		}

		for _, ds := range EvaluateDocuments(v, today) {
			c := docs[ds.Type]
			totalDocs++
			switch ds.Status {
			case StatusOverdue:
				c.Expired++
			case StatusUpcoming:
				c.Expiring++
			default:
				c.Valid++
				validDocs++
			}
		}
	}

	if a.VehicleCount == 0 {
		a.HealthBand = HealthBand(0)
		return a
	}

	a.DocHealth = 100
	if totalDocs > 0 {
		a.DocHealth = float64(validDocs) / float64(totalDocs) * 100
	}
	a.ServiceHealth = float64(a.Service.OK*100+a.Service.Upcoming*50) / float64(a.VehicleCount)
	a.HealthScore = clampScore(int(math.Round(a.ServiceHealth*serviceWeight + a.DocHealth*documentWeight)))
	a.HealthBand = HealthBand(a.HealthScore)
	return a
}

func clampScore(n int) int {
	return min(100, max(0, n))
}

func vehicleCosts(vehicles []models.Vehicle, records []models.ServiceRecord) []VehicleCost {
	idx := make(map[string]int, len(vehicles))
	costs := make([]VehicleCost, len(vehicles))
	for i, v := range vehicles {
		idx[v.ID] = i
		costs[i] = VehicleCost{VehicleID: v.ID, Name: v.Name()}
	}
	for _, r := range records {
		i, ok := idx[r.MotorcycleID]
		if !ok {
			continue
		}
		costs[i].ServiceCount++
		costs[i].TotalCost += r.Amount
	}
	for i := range costs {
		if costs[i].ServiceCount > 0 {
			costs[i].AverageCost = float64(costs[i].TotalCost) / float64(costs[i].ServiceCount)
		}
	}
	sort.SliceStable(costs, func(i, j int) bool {
		return costs[i].TotalCost > costs[j].TotalCost
	})
	return costs
}

func topByServices(costs []VehicleCost) []VehicleCost {
	ranked := append(make([]VehicleCost, 0, len(costs)), costs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ServiceCount > ranked[j].ServiceCount
	})
	if len(ranked) > rankingSize {
		ranked = ranked[:rankingSize]
	}
	return ranked
}

// distributions counts vehicles per make and per "make model", most common first.
func distributions(vehicles []models.Vehicle) (makes, makeModels []CountBucket) {
	return countBy(vehicles, func(v models.Vehicle) string { return v.Make }),
		countBy(vehicles, func(v models.Vehicle) string { return v.Make + " " + v.Model })
}

func countBy(vehicles []models.Vehicle, key func(models.Vehicle) string) []CountBucket {
	idx := make(map[string]int)
	out := make([]CountBucket, 0)
	for _, v := range vehicles {
		k := key(v)
		if i, ok := idx[k]; ok {
			out[i].Count++
			continue
		}
		idx[k] = len(out)
		out = append(out, CountBucket{Key: k, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// monthlyTrend buckets records by the YYYY-MM prefix of their date and keeps
// the most recent trendMonths buckets in ascending order.
func monthlyTrend(records []models.ServiceRecord) []MonthBucket {
	buckets := make(map[string]*MonthBucket)
	for _, r := range records {
		if len(r.Date) < 7 {
			continue
		}
		month := r.Date[:7]
		b, ok := buckets[month]
		if !ok {
			b = &MonthBucket{Month: month}
			buckets[month] = b
		}
		b.Count++
		b.TotalCost += r.Amount
	}
	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	if len(out) > trendMonths {
		out = out[len(out)-trendMonths:]
	}
	return out
}

func topByOdometer(vehicles []models.Vehicle) []VehicleOdometer {
	out := make([]VehicleOdometer, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, VehicleOdometer{VehicleID: v.ID, Name: v.Name(), CurrentKm: CurrentKm(v)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CurrentKm > out[j].CurrentKm
	})
	if len(out) > rankingSize {
		out = out[:rankingSize]
	}
	return out
}

func garageRanking(records []models.ServiceRecord) []GarageStat {
	idx := make(map[string]int)
	out := make([]GarageStat, 0)
	for _, r := range records {
		name := r.Garage
		if name == "" {
			name = unknownGarage
		}
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, GarageStat{Garage: name})
		}
		out[i].ServiceCount++
		out[i].TotalCost += r.Amount
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ServiceCount > out[j].ServiceCount
	})
	return out
}
