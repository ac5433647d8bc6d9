package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

// CategoryRepository implements application.CategoryRepository.
type CategoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository creates a Mongo-backed category repository.
func NewCategoryRepository(db *mongo.Database, collectionName string) *CategoryRepository {
	return &CategoryRepository{collection: db.Collection(collectionName)}
}

// List returns all categories ordered by sortOrder.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []CategoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, domain.Category{Code: doc.Code, Name: doc.Name, SortOrder: doc.SortOrder})
	}
	return categories, nil
}
