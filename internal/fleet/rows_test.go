package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-admin/internal/models"
)

func TestSoonest(t *testing.T) {
	assert.Equal(t, 10, soonest(10, 5000))
	assert.Equal(t, 4, soonest(30, 200))
	assert.Equal(t, 5, soonest(NoDate, 201))
	assert.Equal(t, 0, soonest(NoDate, -300))
	assert.Equal(t, -4, soonest(-4, 200))
	assert.Equal(t, soonestCap, soonest(NoDate, soonestCap*AverageDailyKm))
}

func TestBuildServiceRows_Order(t *testing.T) {
	today := day(2024, time.June, 5)
	vehicles := []models.Vehicle{
		{ID: "ok-b", Make: "Bajaj", Model: "Pulsar", CurrentOdometer: 100},
		{ID: "ok-a", Make: "Apache", Model: "RTR", CurrentOdometer: 100},
		{ID: "up", Make: "Honda", Model: "Shine", CurrentOdometer: 4700},
		{ID: "over-late", Make: "Yamaha", Model: "FZ", LastServiceDate: "2024-01-01", CurrentOdometer: 100},
		{ID: "over-km", Make: "Hero", Model: "Splendor", CurrentOdometer: 6000},
		{ID: "ok-sooner", Make: "Zed", Model: "Z", LastServiceDate: "2024-02-01", CurrentOdometer: 100},
	}

	rows := BuildServiceRows(vehicles, today)
	require.Len(t, rows, len(vehicles))

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	// over-late: days -4 -> soonest -4; over-km: km clamped to 0 -> soonest 0
	// ok-sooner: 26 days; ok-a and ok-b tie on km and fall back to name.
	assert.Equal(t, []string{"over-late", "over-km", "up", "ok-sooner", "ok-a", "ok-b"}, ids)

	first := rows[0]
	assert.Equal(t, "Yamaha FZ", first.Name)
	assert.Equal(t, StatusOverdue, first.Status)
	assert.Equal(t, 0, first.UrgencyKey)
	assert.Equal(t, Days(-4), first.DaysLeft)
	assert.Equal(t, "2024-06-01", first.NextServiceDate)
	assert.Equal(t, models.CategoryBike, first.VehicleCategory)
	assert.Equal(t, models.UsagePrivate, first.VehicleType)

	assert.Equal(t, NoDate, rows[1].DaysLeft)
	assert.Equal(t, -1000, rows[1].KmLeft)
}

func TestBuildServiceRows_Empty(t *testing.T) {
	rows := BuildServiceRows(nil, day(2024, time.June, 5))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFilterServiceRows(t *testing.T) {
	today := day(2024, time.June, 5)
	rows := BuildServiceRows([]models.Vehicle{
		{ID: "a", CurrentOdometer: 6000},
		{ID: "b", CurrentOdometer: 4600},
		{ID: "c", CurrentOdometer: 4800},
		{ID: "d", CurrentOdometer: 10},
	}, today)

	upcoming := FilterServiceRows(rows, StatusUpcoming)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "c", upcoming[0].ID)
	assert.Equal(t, "b", upcoming[1].ID)

	overdue := FilterServiceRows(rows, StatusOverdue)
	require.Len(t, overdue, 1)
	assert.Equal(t, "a", overdue[0].ID)
}

func TestBuildDocumentRows_SoonestFirst(t *testing.T) {
	today := day(2024, time.June, 5)
	vehicles := []models.Vehicle{
		{ID: "later", Make: "A", Model: "One", InsuranceValidity: "2024-07-20"},
		{ID: "sooner", Make: "B", Model: "Two", InsuranceValidity: "2024-06-15"},
	}
	rows := BuildDocumentRows(vehicles, today)
	require.Len(t, rows, 2)
	assert.Equal(t, "sooner", rows[0].VehicleID)
	assert.Equal(t, Days(10), rows[0].Days)
	assert.Equal(t, "expiring", rows[0].State)
	assert.Equal(t, "later", rows[1].VehicleID)
	assert.Equal(t, Days(45), rows[1].Days)
	assert.Equal(t, "valid", rows[1].State)
}

func TestBuildDocumentRows_FlattensAndSorts(t *testing.T) {
	today := day(2024, time.June, 5)
	vehicles := []models.Vehicle{
		{
			ID: "c1", Make: "Tata", Model: "Ace", Usage: models.UsageCommercial,
			InsuranceValidity: "2025-01-01",
			FitnessValidity:   "2024-05-01",
			RoadTaxValidity:   "2024-06-10",
			// registration does not apply to commercial vehicles
			RegistrationValidity: "2020-01-01",
		},
		{
			ID: "p1", Make: "Honda", Model: "City",
			RegistrationValidity: "2024-06-10",
			PollutionValidity:    "2024-06-01",
			// fitness does not apply to private vehicles
			FitnessValidity: "2020-01-01",
		},
	}
	rows := BuildDocumentRows(vehicles, today)
	require.Len(t, rows, 5)

	type key struct {
		id  string
		doc models.DocumentType
	}
	got := make([]key, len(rows))
	for i, r := range rows {
		got[i] = key{r.VehicleID, r.Document}
	}
	assert.Equal(t, []key{
		{"c1", models.DocFitness},
		{"p1", models.DocPollution},
		{"p1", models.DocRegistration},
		{"c1", models.DocRoadTax},
		{"c1", models.DocInsurance},
	}, got)

	// same days: name breaks the tie (Honda City < Tata Ace)
	assert.Equal(t, rows[2].Days, rows[3].Days)

	expired := FilterDocumentRows(rows, StatusOverdue)
	assert.Len(t, expired, 2)
	assert.Len(t, FilterDocumentRows(rows, StatusUpcoming), 2)
	assert.Len(t, FilterDocumentRows(rows, StatusOK), 1)
}
