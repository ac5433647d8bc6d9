package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

// BookingRepository implements application.BookingRepository.
type BookingRepository struct {
	collection *mongo.Collection
}

// NewBookingRepository creates a Mongo-backed booking repository.
func NewBookingRepository(db *mongo.Database, collectionName string) *BookingRepository {
	return &BookingRepository{collection: db.Collection(collectionName)}
}

// Create inserts the booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	doc := BookingDocument{
		ID:         booking.ID,
		ShopCode:   booking.ShopCode,
		ShopName:   booking.ShopName,
		MenuName:   booking.MenuName,
		UserID:     booking.UserID,
		Memo:       booking.Memo,
		ReservedAt: booking.ReservedAt,
		CreatedAt:  booking.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes used by shop owners.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "shopCode", Value: 1}, {Key: "reservedAt", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

// FailedNotificationRepository stores notifications that could not be delivered.
type FailedNotificationRepository struct {
	collection *mongo.Collection
}

// NewFailedNotificationRepository creates the repository.
func NewFailedNotificationRepository(db *mongo.Database, collectionName string) *FailedNotificationRepository {
	return &FailedNotificationRepository{collection: db.Collection(collectionName)}
}

// Save records a pending notification for later redelivery.
func (r *FailedNotificationRepository) Save(ctx context.Context, target string, payload map[string]any, cause error, attempts int) error {
	now := time.Now().UTC()
	doc := FailedNotificationDocument{
		Target:      target,
		Payload:     payload,
		Error:       cause.Error(),
		Attempts:    attempts,
		Status:      "pending",
		CreatedAt:   now,
		LastTriedAt: now,
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}
