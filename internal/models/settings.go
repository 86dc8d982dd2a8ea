package models

import "time"

// SiteSettings holds homepage branding and content managed from the admin backend.
type SiteSettings struct {
	ID           string    `bson:"_id" json:"-"`
	SiteName     string    `bson:"site_name" json:"site_name" validate:"required,max=80"`
	Tagline      string    `bson:"tagline" json:"tagline" validate:"max=160"`
	HeroTitle    string    `bson:"hero_title" json:"hero_title" validate:"max=160"`
	HeroSubtitle string    `bson:"hero_subtitle" json:"hero_subtitle" validate:"max=400"`
	LogoURL      string    `bson:"logo_url" json:"logo_url" validate:"omitempty,url"`
	PrimaryColor string    `bson:"primary_color" json:"primary_color" validate:"omitempty,hexcolor"`
	ContactEmail string    `bson:"contact_email" json:"contact_email" validate:"omitempty,email"`
	ContactPhone string    `bson:"contact_phone" json:"contact_phone" validate:"max=32"`
	Features     []string  `bson:"features" json:"features" validate:"max=12,dive,max=200"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// CompanySettings holds the operator's company profile shown on reports.
type CompanySettings struct {
	ID          string    `bson:"_id" json:"-"`
	CompanyName string    `bson:"company_name" json:"company_name" validate:"required,max=120"`
	Address     string    `bson:"address" json:"address" validate:"max=400"`
	Phone       string    `bson:"phone" json:"phone" validate:"max=32"`
	Email       string    `bson:"email" json:"email" validate:"omitempty,email"`
	TaxID       string    `bson:"tax_id" json:"tax_id" validate:"max=32"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultSiteSettings is served before an admin saves any content.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:           "site",
		SiteName:     "Fleet Admin",
		Tagline:      "Keep every vehicle road-legal and serviced on time",
		HeroTitle:    "Fleet maintenance without the paperwork",
		HeroSubtitle: "Track services, documents and costs for bikes and cars in one place.",
		Features: []string{
			"Service reminders by distance or date",
			"Document expiry tracking",
			"Cost and health analytics",
		},
	}
}
