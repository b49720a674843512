package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pagemark/readsync/domain"
	serrors "github.com/pagemark/readsync/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DeviceRepository is the MongoDB implementation of domain.DeviceRepository.
type DeviceRepository struct {
	devices *mongo.Collection
}

func NewDeviceRepository(ctx context.Context, db *mongo.Database) (*DeviceRepository, error) {
	repo := &DeviceRepository{
		devices: db.Collection(DevicesCollectionName),
	}

	_, err := repo.devices.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "device_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// BindDevice upserts the binding for deviceID. If the device already belongs
// to a different user the row is reassigned in place: last writer wins.
func (r *DeviceRepository) BindDevice(ctx context.Context, deviceID, userID string) (*domain.Device, error) {
	now := time.Now().UTC()

	filter := bson.M{"device_id": deviceID}
	update := bson.M{
		"$set": bson.M{
			"user_id":        userID,
			"bound_at":       now,
			"last_active_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"device_id": deviceID,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var device domain.Device
	if err := r.devices.FindOneAndUpdate(ctx, filter, update, opts).Decode(&device); err != nil {
		return nil, err
	}

	return &device, nil
}

func (r *DeviceRepository) GetDeviceByDeviceID(ctx context.Context, deviceID string) (*domain.Device, error) {
	var device domain.Device
	err := r.devices.FindOne(ctx, bson.M{"device_id": deviceID}).Decode(&device)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, serrors.ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepository) TouchDevice(ctx context.Context, deviceID string) error {
	filter := bson.M{"device_id": deviceID}
	update := bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}}

	result, err := r.devices.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return serrors.ErrDeviceNotFound
	}
	return nil
}

var _ domain.DeviceRepository = (*DeviceRepository)(nil)
