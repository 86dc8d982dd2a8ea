package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVehicle_Defaults(t *testing.T) {
	v := Vehicle{}
	assert.Equal(t, CategoryBike, v.EffectiveCategory())
	assert.Equal(t, UsagePrivate, v.EffectiveUsage())
	assert.Equal(t, DefaultServiceIntervalMonths, v.IntervalMonths())
	assert.Equal(t, DefaultServiceIntervalKms, v.IntervalKms())
	assert.False(t, v.IsCommercial())

	v = Vehicle{Category: CategoryCar, Usage: UsageCommercial, ServiceIntervalMonths: 3, ServiceIntervalKms: 2500}
	assert.Equal(t, CategoryCar, v.EffectiveCategory())
	assert.True(t, v.IsCommercial())
	assert.Equal(t, 3, v.IntervalMonths())
	assert.Equal(t, 2500, v.IntervalKms())
}

func TestVehicle_Name(t *testing.T) {
	assert.Equal(t, "Honda Activa", Vehicle{Make: "Honda", Model: "Activa"}.Name())
	assert.Equal(t, "Honda", Vehicle{Make: "Honda"}.Name())
	assert.Equal(t, "Activa", Vehicle{Model: "Activa"}.Name())
}

func TestDocumentType_AppliesTo(t *testing.T) {
	tests := []struct {
		doc        DocumentType
		private    bool
		commercial bool
	}{
		{DocRegistration, true, false},
		{DocInsurance, true, true},
		{DocPollution, true, true},
		{DocFitness, false, true},
		{DocRoadTax, false, true},
		{DocPermit, false, true},
		{DocumentType("unknown"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.doc), func(t *testing.T) {
			assert.Equal(t, tt.private, tt.doc.AppliesTo(UsagePrivate))
			assert.Equal(t, tt.commercial, tt.doc.AppliesTo(UsageCommercial))
		})
	}
}

func TestVehicle_ValidityDate(t *testing.T) {
	v := Vehicle{
		RegistrationValidity: "2030-01-01",
		InsuranceValidity:    "2025-02-02",
		PollutionValidity:    "2025-03-03",
		FitnessValidity:      "2025-04-04",
		RoadTaxValidity:      "2025-05-05",
		PermitValidity:       "2025-06-06",
	}
	assert.Equal(t, "2030-01-01", v.ValidityDate(DocRegistration))
	assert.Equal(t, "2025-02-02", v.ValidityDate(DocInsurance))
	assert.Equal(t, "2025-03-03", v.ValidityDate(DocPollution))
	assert.Equal(t, "2025-04-04", v.ValidityDate(DocFitness))
	assert.Equal(t, "2025-05-05", v.ValidityDate(DocRoadTax))
	assert.Equal(t, "2025-06-06", v.ValidityDate(DocPermit))
	assert.Equal(t, "", v.ValidityDate("other"))
	assert.Equal(t, "Road Tax", DocRoadTax.Label())
}

func TestNormalizeRegistration(t *testing.T) {
	assert.Equal(t, "KA01AB1234", NormalizeRegistration("  ka01ab1234 "))
	assert.Equal(t, "MH12CD5678", NormalizeRegistration("MH12CD5678"))
	assert.Equal(t, "", NormalizeRegistration("   "))
}
