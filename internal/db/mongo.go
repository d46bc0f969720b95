package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vehicare/vehicare-api/internal/models"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoStore is a Store backed by MongoDB collections. Numeric ids are
// allocated from a counters collection.
type MongoStore struct {
	users    *mongo.Collection
	vehicles *mongo.Collection
	counters *mongo.Collection
}

// NewMongoStore wraps the collections of the given database.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		users:    db.Collection("users"),
		vehicles: db.Collection("vehicles"),
		counters: db.Collection("counters"),
	}
}

// EnsureIndexes creates the unique indexes on user email and vehicle VIN
// and the owner index on vehicles. Values are normalized before writes, so
// plain unique indexes give case-insensitive uniqueness.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = s.vehicles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "vin", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("vehicles indexes: %w", err)
	}
	return nil
}

// nextSequence atomically increments and returns the named id counter.
func (s *MongoStore) nextSequence(ctx context.Context, name string) (int, error) {
	var doc struct {
		Seq int `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

// InsertUser assigns a fresh id and inserts the user.
func (s *MongoStore) InsertUser(ctx context.Context, user *models.User) error {
	id, err := s.nextSequence(ctx, "users")
	if err != nil {
		return err
	}
	user.Id = id

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindUserByEmail finds a user by email. Emails are stored lowercase, so an
// exact match on the normalized value is case-insensitive.
func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID finds a user by id.
func (s *MongoStore) FindUserByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetLastLogin stamps the user's last login time.
func (s *MongoStore) SetLastLogin(ctx context.Context, id int, at time.Time) error {
	result, err := s.users.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login_at": at}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertVehicle assigns a fresh id and inserts the vehicle.
func (s *MongoStore) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	id, err := s.nextSequence(ctx, "vehicles")
	if err != nil {
		return err
	}
	vehicle.Id = id

	if _, err := s.vehicles.InsertOne(ctx, vehicle); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindVehicleByID finds a vehicle by id.
func (s *MongoStore) FindVehicleByID(ctx context.Context, id int) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.vehicles.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindVehiclesByOwner returns all vehicles owned by userId, newest created
// first.
func (s *MongoStore) FindVehiclesByOwner(ctx context.Context, userId int) ([]models.Vehicle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.vehicles.Find(ctx, bson.M{"user_id": userId}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vehicles := make([]models.Vehicle, 0)
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByIDAndOwner returns the vehicle only when it exists AND is
// owned by userId.
func (s *MongoStore) FindVehicleByIDAndOwner(ctx context.Context, id, userId int) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.vehicles.FindOne(ctx, bson.M{"_id": id, "user_id": userId}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// ReplaceVehicle overwrites the stored vehicle with the same id.
func (s *MongoStore) ReplaceVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	result, err := s.vehicles.ReplaceOne(ctx, bson.M{"_id": vehicle.Id}, vehicle)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicleByIDAndOwner deletes the vehicle when it exists and is owned
// by userId.
func (s *MongoStore) DeleteVehicleByIDAndOwner(ctx context.Context, id, userId int) (bool, error) {
	result, err := s.vehicles.DeleteOne(ctx, bson.M{"_id": id, "user_id": userId})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// VehicleExistsByVIN reports whether any vehicle carries the VIN. VINs are
// stored uppercase, so the comparison normalizes the query value.
func (s *MongoStore) VehicleExistsByVIN(ctx context.Context, vin string) (bool, error) {
	count, err := s.vehicles.CountDocuments(ctx, bson.M{"vin": normalizeVIN(vin)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
