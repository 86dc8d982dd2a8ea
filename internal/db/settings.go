package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	siteSettingsID    = "site"
	companySettingsID = "company"
)

// MongoSettingsCollection implements SettingsStore. Both documents live in
// one collection under fixed ids.
type MongoSettingsCollection struct {
	Collection *mongo.Collection
}

// GetSiteSettings returns the stored site settings, or the defaults when
// nothing has been saved yet.
func (c *MongoSettingsCollection) GetSiteSettings(ctx context.Context) (*models.SiteSettings, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var s models.SiteSettings
	err := c.Collection.FindOne(ctx, bson.M{"_id": siteSettingsID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		def := models.DefaultSiteSettings()
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSiteSettings upserts the site settings document.
func (c *MongoSettingsCollection) SaveSiteSettings(ctx context.Context, settings models.SiteSettings) error {
	if c.Collection == nil {
		return errNilCollection
	}
	settings.ID = siteSettingsID
	settings.UpdatedAt = time.Now()
	_, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": siteSettingsID}, settings, options.Replace().SetUpsert(true))
	return err
}

// GetCompanySettings returns the company profile. ErrNotFound means it was
// never saved.
func (c *MongoSettingsCollection) GetCompanySettings(ctx context.Context) (*models.CompanySettings, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var s models.CompanySettings
	err := c.Collection.FindOne(ctx, bson.M{"_id": companySettingsID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveCompanySettings upserts the company profile.
func (c *MongoSettingsCollection) SaveCompanySettings(ctx context.Context, settings models.CompanySettings) error {
	if c.Collection == nil {
		return errNilCollection
	}
	settings.ID = companySettingsID
	settings.UpdatedAt = time.Now()
	_, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": companySettingsID}, settings, options.Replace().SetUpsert(true))
	return err
}
