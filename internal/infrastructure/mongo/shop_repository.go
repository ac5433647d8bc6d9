package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/application"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

// ShopRepository implements application.ShopRepository using MongoDB.
type ShopRepository struct {
	collection *mongo.Collection
}

// NewShopRepository creates a new Mongo-backed shop repository.
func NewShopRepository(db *mongo.Database, collectionName string) *ShopRepository {
	return &ShopRepository{collection: db.Collection(collectionName)}
}

// Find returns every shop matching the filter. Ordering and paging are left
// to the caller.
func (r *ShopRepository) Find(ctx context.Context, filter application.ShopFilter) ([]domain.Shop, error) {
	cursor, err := r.collection.Find(ctx, buildShopFilter(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	shops := make([]domain.Shop, 0)
	for cursor.Next(ctx) {
		var doc ShopDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		shops = append(shops, mapShopDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return shops, nil
}

// FindByCode returns a single shop by its code.
func (r *ShopRepository) FindByCode(ctx context.Context, code string) (*domain.Shop, error) {
	var doc ShopDocument
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}
	shop := mapShopDocument(doc)
	return &shop, nil
}

// IncrementReservation atomically bumps the reservation counter of one menu.
func (r *ShopRepository) IncrementReservation(ctx context.Context, shopCode, menuName string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"code": shopCode, "menus.name": menuName},
		bson.M{
			"$inc": bson.M{"menus.$.reservationCount": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrMenuNotFound
	}
	return nil
}

// EnsureIndexes creates the unique shop code index.
func (r *ShopRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func buildShopFilter(filter application.ShopFilter) bson.M {
	mongoFilter := bson.M{}
	if code := strings.TrimSpace(filter.CategoryCode); code != "" {
		mongoFilter["categoryCode"] = code
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := regexp.QuoteMeta(keyword)
		mongoFilter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"location": bson.M{"$regex": pattern, "$options": "i"}},
			{"menus.name": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return mongoFilter
}

func mapShopDocument(doc ShopDocument) domain.Shop {
	createdAt := time.Time{}
	if doc.CreatedAt != nil {
		createdAt = *doc.CreatedAt
	}
	updatedAt := time.Time{}
	if doc.UpdatedAt != nil {
		updatedAt = *doc.UpdatedAt
	}

	menus := make([]domain.Menu, 0, len(doc.Menus))
	for _, m := range doc.Menus {
		menus = append(menus, domain.Menu{
			Name:             m.Name,
			Category:         m.Category,
			Price:            m.Price,
			DurationMinutes:  m.DurationMinutes,
			ReservationCount: m.ReservationCount,
		})
	}

	return domain.Shop{
		Code:          doc.Code,
		Name:          doc.Name,
		CategoryCode:  doc.CategoryCode,
		CategoryName:  doc.CategoryName,
		Location:      strings.TrimSpace(doc.Location),
		Phone:         doc.Phone,
		Description:   doc.Description,
		BusinessHours: doc.BusinessHours,
		Latitude:      doc.Latitude,
		Longitude:     doc.Longitude,
		Menus:         menus,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}
