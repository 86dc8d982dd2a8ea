package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/fleet-admin/internal/fleet"
	"github.com/ukydev/fleet-admin/internal/models"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockUserCollection) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVehicleStore is a mock implementation of VehicleStore
type MockVehicleStore struct {
	mock.Mock
}

func (m *MockVehicleStore) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleStore) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	args := m.Called(ctx, id, vehicle)
	return args.Error(0)
}

func (m *MockVehicleStore) DeleteVehicle(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVehicleStore) AddKmReading(ctx context.Context, id string, reading models.KmReading) (*models.Vehicle, error) {
	args := m.Called(ctx, id, reading)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

// MockServiceRecordStore is a mock implementation of ServiceRecordStore
type MockServiceRecordStore struct {
	mock.Mock
}

func (m *MockServiceRecordStore) InsertServiceRecord(ctx context.Context, record models.ServiceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockServiceRecordStore) FindServiceRecords(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceRecord), args.Error(1)
}

func (m *MockServiceRecordStore) FindServiceRecordByID(ctx context.Context, id string) (*models.ServiceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRecord), args.Error(1)
}

func (m *MockServiceRecordStore) UpdateServiceRecord(ctx context.Context, id string, record models.ServiceRecord) error {
	args := m.Called(ctx, id, record)
	return args.Error(0)
}

func (m *MockServiceRecordStore) DeleteServiceRecord(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSettingsStore is a mock implementation of SettingsStore
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) GetSiteSettings(ctx context.Context) (*models.SiteSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SiteSettings), args.Error(1)
}

func (m *MockSettingsStore) SaveSiteSettings(ctx context.Context, settings models.SiteSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsStore) GetCompanySettings(ctx context.Context) (*models.CompanySettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompanySettings), args.Error(1)
}

func (m *MockSettingsStore) SaveCompanySettings(ctx context.Context, settings models.CompanySettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

type recordingObserver struct {
	analytics []fleet.FleetAnalytics
	alerts    [][]fleet.Alert
	lookups   []string
}

func (o *recordingObserver) ObserveAnalytics(a fleet.FleetAnalytics) { o.analytics = append(o.analytics, a) }
func (o *recordingObserver) ObserveAlerts(alerts []fleet.Alert) { o.alerts = append(o.alerts, alerts) }
func (o *recordingObserver) ObserveCacheLookup(result string) { o.lookups = append(o.lookups, result) }

var fixedDay = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedDay }

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// fixtureVehicles returns one vehicle overdue for service and one whose
// insurance expires within the warning window on the fixed day.
func fixtureVehicles() []models.Vehicle {
	return []models.Vehicle{
		{
			ID:                 "v-over",
			RegistrationNumber: "KA01AB1234",
			Make:               "Honda",
			Model:              "Activa",
			LastServiceDate:    "2024-12-01",
			LastServiceKm:      10000,
			CurrentOdometer:    12000,
		},
		{
			ID:                 "v-ok",
			RegistrationNumber: "KA02CD5678",
			Make:               "Maruti",
			Model:              "Swift",
			Category:           models.CategoryCar,
			LastServiceDate:    "2025-06-01",
			InsuranceValidity:  "2025-07-01",
		},
	}
}
