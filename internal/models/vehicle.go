package models

import (
	"strings"
	"time"
)

// VehicleCategory is the body class of a vehicle.
type VehicleCategory string

const (
	CategoryBike VehicleCategory = "bike"
	CategoryCar  VehicleCategory = "car"
)

// VehicleUsage is the usage class. It decides which regulatory documents
// are tracked for the vehicle.
type VehicleUsage string

const (
	UsagePrivate    VehicleUsage = "private"
	UsageCommercial VehicleUsage = "commercial"
)

const (
	DefaultServiceIntervalMonths = 5
	DefaultServiceIntervalKms    = 5000
)

// KmReading is a single odometer observation.
type KmReading struct {
	ID         string `bson:"id" json:"id"`
	Date       string `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Kilometers int    `bson:"kilometers" json:"kilometers" validate:"min=0"`
}

// Vehicle represents a fleet vehicle (bike or car). Dates are ISO
// YYYY-MM-DD strings; an empty string means the date was never entered.
type Vehicle struct {
	ID                 string          `bson:"_id" json:"id"`
	RegistrationNumber string          `bson:"registration_number" json:"registration_number" validate:"required,max=32"`
	ChassisNumber      string          `bson:"chassis_number" json:"chassis_number" validate:"max=64"`
	EngineNumber       string          `bson:"engine_number" json:"engine_number,omitempty" validate:"max=64"`
	Make               string          `bson:"make" json:"make" validate:"required,max=64"`
	Model              string          `bson:"model" json:"model" validate:"required,max=64"`
	Category           VehicleCategory `bson:"vehicle_category" json:"vehicle_category,omitempty" validate:"omitempty,oneof=bike car"`
	Usage              VehicleUsage    `bson:"vehicle_usage" json:"vehicle_usage,omitempty" validate:"omitempty,oneof=private commercial"`

	RegistrationValidity string `bson:"registration_validity" json:"registration_validity,omitempty" validate:"omitempty,datetime=2006-01-02"`
	InsuranceValidity    string `bson:"insurance_validity" json:"insurance_validity,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PollutionValidity    string `bson:"pollution_validity" json:"pollution_validity,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FitnessValidity      string `bson:"fitness_validity" json:"fitness_validity,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RoadTaxValidity      string `bson:"road_tax_validity" json:"road_tax_validity,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PermitValidity       string `bson:"permit_validity" json:"permit_validity,omitempty" validate:"omitempty,datetime=2006-01-02"`

	ServiceIntervalMonths int    `bson:"service_interval_months" json:"service_interval_months" validate:"min=0,max=120"`
	ServiceIntervalKms    int    `bson:"service_interval_kms" json:"service_interval_kms" validate:"min=0,max=1000000"`
	LastServiceDate       string `bson:"last_service_date" json:"last_service_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LastServiceKm         int    `bson:"last_service_km" json:"last_service_km" validate:"min=0"`

	KmReadings      []KmReading `bson:"km_readings" json:"km_readings" validate:"dive"`
	CurrentOdometer int         `bson:"current_odometer" json:"current_odometer,omitempty" validate:"min=0"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Name is the display name used in dashboards and alerts.
func (v Vehicle) Name() string {
	switch {
	case v.Make == "":
		return v.Model
	case v.Model == "":
		return v.Make
	}
	return v.Make + " " + v.Model
}

// EffectiveCategory returns the category, defaulting to bike.
func (v Vehicle) EffectiveCategory() VehicleCategory {
	if v.Category == "" {
		return CategoryBike
	}
	return v.Category
}

// EffectiveUsage returns the usage class, defaulting to private.
func (v Vehicle) EffectiveUsage() VehicleUsage {
	if v.Usage == UsageCommercial {
		return UsageCommercial
	}
	return UsagePrivate
}

// IsCommercial reports whether commercial-only documents apply.
func (v Vehicle) IsCommercial() bool {
	return v.EffectiveUsage() == UsageCommercial
}

// IntervalMonths returns the time-based service interval with the default applied.
func (v Vehicle) IntervalMonths() int {
	if v.ServiceIntervalMonths <= 0 {
		return DefaultServiceIntervalMonths
	}
	return v.ServiceIntervalMonths
}

// IntervalKms returns the distance-based service interval with the default applied.
func (v Vehicle) IntervalKms() int {
	if v.ServiceIntervalKms <= 0 {
		return DefaultServiceIntervalKms
	}
	return v.ServiceIntervalKms
}

// NormalizeRegistration is the stored form of a registration number:
// trimmed and upper-case.
func NormalizeRegistration(reg string) string {
	return strings.ToUpper(strings.TrimSpace(reg))
}
