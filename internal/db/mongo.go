package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	VehiclesCollection       = "vehicles"
	ServiceRecordsCollection = "service_records"
	UsersCollection          = "users"
	SettingsCollection       = "settings"
)

var (
	// ErrNotFound is returned when a lookup, update or delete matches nothing.
	ErrNotFound = errors.New("not found")

	errNilCollection = errors.New("mongo collection is nil")
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the secondary indexes used by the stores.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(ServiceRecordsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "motorcycle_id", Value: 1}, {Key: "date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("service record indexes: %w", err)
	}
	_, err = database.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}

// MongoVehicleCollection implements VehicleStore. Services is the service
// record collection that vehicle deletes cascade into.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
	Services   *mongo.Collection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	if vehicle.KmReadings == nil {
		vehicle.KmReadings = []models.KmReading{}
	}
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicles returns every vehicle ordered by registration number.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "registration_number", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle overwrites a vehicle by its ID. The stored creation time is
// never changed.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	vehicle.ID = id
	vehicle.UpdatedAt = time.Now()
	if vehicle.KmReadings == nil {
		vehicle.KmReadings = []models.KmReading{}
	}

	fields, err := toBSON(vehicle)
	if err != nil {
		return err
	}
	delete(fields, "_id")
	delete(fields, "created_at")

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteVehicle deletes a vehicle and cascades to its service records.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) (int64, error) {
	if c.Collection == nil || c.Services == nil {
		return 0, errNilCollection
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if result.DeletedCount == 0 {
		return 0, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}

	records, err := c.Services.DeleteMany(ctx, bson.M{"motorcycle_id": id})
	if err != nil {
		return 0, fmt.Errorf("cascade delete service records of %s: %w", id, err)
	}
	return records.DeletedCount, nil
}

// AddKmReading appends an odometer reading and raises current_odometer when
// the reading is higher. It returns the updated vehicle.
func (c *MongoVehicleCollection) AddKmReading(ctx context.Context, id string, reading models.KmReading) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	update := bson.M{
		"$push": bson.M{"km_readings": reading},
		"$max":  bson.M{"current_odometer": reading.Kilometers},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var vehicle models.Vehicle
	err := c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &vehicle, nil
}

// MongoServiceRecordCollection implements ServiceRecordStore.
type MongoServiceRecordCollection struct {
	Collection *mongo.Collection
}

// InsertServiceRecord inserts a service record into the collection.
func (c *MongoServiceRecordCollection) InsertServiceRecord(ctx context.Context, record models.ServiceRecord) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, record)
	return err
}

// FindServiceRecords queries service records, newest first.
func (c *MongoServiceRecordCollection) FindServiceRecords(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{}
	if vehicleID != "" {
		filter["motorcycle_id"] = vehicleID
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.ServiceRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindServiceRecordByID finds a service record by its ID.
func (c *MongoServiceRecordCollection) FindServiceRecordByID(ctx context.Context, id string) (*models.ServiceRecord, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var record models.ServiceRecord
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("service record %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &record, nil
}

// UpdateServiceRecord updates a service record by its ID. The vehicle
// reference cannot be changed.
func (c *MongoServiceRecordCollection) UpdateServiceRecord(ctx context.Context, id string, record models.ServiceRecord) error {
	if c.Collection == nil {
		return errNilCollection
	}
	set := bson.M{
		"date":           record.Date,
		"kilometers":     record.Kilometers,
		"work_done":      record.WorkDone,
		"amount":         record.Amount,
		"mechanic":       record.Mechanic,
		"garage":         record.Garage,
		"notes":          record.Notes,
		"parts_replaced": record.PartsReplaced,
		"updated_at":     time.Now(),
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("service record %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteServiceRecord deletes a single service record.
func (c *MongoServiceRecordCollection) DeleteServiceRecord(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("service record %s: %w", id, ErrNotFound)
	}
	return nil
}

func toBSON(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
