package models

// DocumentType identifies a tracked regulatory document.
type DocumentType string

const (
	DocRegistration DocumentType = "registration"
	DocInsurance    DocumentType = "insurance"
	DocPollution    DocumentType = "pollution"
	DocFitness      DocumentType = "fitness"
	DocRoadTax      DocumentType = "road_tax"
	DocPermit       DocumentType = "permit"
)

// EvaluatedDocuments lists the documents that take part in status and
// compliance computations, in display order.
var EvaluatedDocuments = []DocumentType{
	DocRegistration,
	DocInsurance,
	DocPollution,
	DocFitness,
	DocRoadTax,
}

// Label is the human readable document name used in alerts.
func (d DocumentType) Label() string {
	switch d {
	case DocRegistration:
		return "Registration"
	case DocInsurance:
		return "Insurance"
	case DocPollution:
		return "Pollution"
	case DocFitness:
		return "Fitness"
	case DocRoadTax:
		return "Road Tax"
	case DocPermit:
		return "Permit"
	default:
		return string(d)
	}
}

// AppliesTo reports whether the document is tracked for the given usage class.
// Registration is private only; fitness, road tax and permit are commercial only.
func (d DocumentType) AppliesTo(usage VehicleUsage) bool {
	switch d {
	case DocInsurance, DocPollution:
		return true
	case DocRegistration:
		return usage != UsageCommercial
	case DocFitness, DocRoadTax, DocPermit:
		return usage == UsageCommercial
	default:
		return false
	}
}

// ValidityDate returns the stored validity date for a document type.
func (v Vehicle) ValidityDate(d DocumentType) string {
	switch d {
	case DocRegistration:
		return v.RegistrationValidity
	case DocInsurance:
		return v.InsuranceValidity
	case DocPollution:
		return v.PollutionValidity
	case DocFitness:
		return v.FitnessValidity
	case DocRoadTax:
		return v.RoadTaxValidity
	case DocPermit:
		return v.PermitValidity
	default:
		return ""
	}
}
