package repository

import (
	"context"
	"errors"
	"fmt"

	"wholesale-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogRepository reads the catalog, retailer, priority and product
// collections. This service never writes them.
type CatalogRepository interface {
	FindCatalog(ctx context.Context, id primitive.ObjectID) (*models.Catalog, error)
	FindRetailerByPhone(ctx context.Context, phone string) (*models.Retailer, error)
	FindPriority(ctx context.Context, name string) (*models.Priority, error)
	FindProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	FindProductsByItemCodes(ctx context.Context, codes []string) ([]models.Product, error)
}

type MongoCatalogRepository struct {
	catalogs   *mongo.Collection
	retailers  *mongo.Collection
	priorities *mongo.Collection
	products   *mongo.Collection
}

func NewMongoCatalogRepository(db *mongo.Database) CatalogRepository {
	return &MongoCatalogRepository{
		catalogs:   db.Collection("catalogs"),
		retailers:  db.Collection("retailers"),
		priorities: db.Collection("priorities"),
		products:   db.Collection("products"),
	}
}

func (r *MongoCatalogRepository) FindCatalog(ctx context.Context, id primitive.ObjectID) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := findOne(ctx, r.catalogs, bson.M{"_id": id}, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (r *MongoCatalogRepository) FindRetailerByPhone(ctx context.Context, phone string) (*models.Retailer, error) {
	var retailer models.Retailer
	if err := findOne(ctx, r.retailers, bson.M{"phone": phone}, &retailer); err != nil {
		return nil, err
	}
	return &retailer, nil
}

func (r *MongoCatalogRepository) FindPriority(ctx context.Context, name string) (*models.Priority, error) {
	var priority models.Priority
	if err := findOne(ctx, r.priorities, bson.M{"name": name}, &priority); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *MongoCatalogRepository) FindProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return findProducts(ctx, r.products, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoCatalogRepository) FindProductsByItemCodes(ctx context.Context, codes []string) ([]models.Product, error) {
	return findProducts(ctx, r.products, bson.M{"itemCode": bson.M{"$in": codes}})
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}) error {
	if err := coll.FindOne(ctx, filter).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	return nil
}

func findProducts(ctx context.Context, coll *mongo.Collection, filter bson.M) ([]models.Product, error) {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}
