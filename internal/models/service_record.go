package models

import "time"

// ServiceRecord is one maintenance visit for a vehicle. Amount is in whole
// currency units.
type ServiceRecord struct {
	ID            string    `bson:"_id" json:"id"`
	MotorcycleID  string    `bson:"motorcycle_id" json:"motorcycle_id" validate:"required"`
	Date          string    `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Kilometers    int       `bson:"kilometers" json:"kilometers" validate:"min=0"`
	WorkDone      string    `bson:"work_done" json:"work_done" validate:"required,max=2000"`
	Amount        int64     `bson:"amount" json:"amount" validate:"min=0"`
	Mechanic      string    `bson:"mechanic,omitempty" json:"mechanic,omitempty" validate:"max=128"`
	Garage        string    `bson:"garage,omitempty" json:"garage,omitempty" validate:"max=128"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=2000"`
	PartsReplaced string    `bson:"parts_replaced,omitempty" json:"parts_replaced,omitempty" validate:"max=2000"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}
