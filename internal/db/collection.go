package db

import (
	"context"

	"github.com/ukydev/fleet-admin/internal/models"
)

// VehicleStore defines the interface for vehicle data operations.
type VehicleStore interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	// DeleteVehicle removes the vehicle and every service record that
	// references it, returning how many records were removed with it.
	DeleteVehicle(ctx context.Context, id string) (int64, error)
	AddKmReading(ctx context.Context, id string, reading models.KmReading) (*models.Vehicle, error)
}

// ServiceRecordStore defines the interface for service history operations.
type ServiceRecordStore interface {
	InsertServiceRecord(ctx context.Context, record models.ServiceRecord) error
	// FindServiceRecords lists records, newest first. An empty vehicleID
	// returns the whole history.
	FindServiceRecords(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error)
	FindServiceRecordByID(ctx context.Context, id string) (*models.ServiceRecord, error)
	UpdateServiceRecord(ctx context.Context, id string, record models.ServiceRecord) error
	DeleteServiceRecord(ctx context.Context, id string) error
}

// SettingsStore persists the site and company settings documents.
type SettingsStore interface {
	GetSiteSettings(ctx context.Context) (*models.SiteSettings, error)
	SaveSiteSettings(ctx context.Context, settings models.SiteSettings) error
	GetCompanySettings(ctx context.Context) (*models.CompanySettings, error)
	SaveCompanySettings(ctx context.Context, settings models.CompanySettings) error
}
