package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wholesale-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PurchaseOrderRepository defines the interface for purchase order data
// access. Writes that touch the parent order run in one transaction.
type PurchaseOrderRepository interface {
	// CreateForOrder inserts po and moves its order from approved to
	// po_generated, provided the order is still at orderVersion.
	CreateForOrder(ctx context.Context, po *models.PurchaseOrder, orderVersion int64) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PurchaseOrder, error)
	FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.PurchaseOrder, error)
	FindAll(ctx context.Context, status models.PurchaseOrderStatus, page, limit int) ([]models.PurchaseOrder, int64, error)
	AdvanceStatus(ctx context.Context, id primitive.ObjectID, from, to models.PurchaseOrderStatus, at time.Time) (*models.PurchaseOrder, error)
	// DeleteAndRevertOrder removes the PO and returns its order to approved.
	// reverted is false when the order was missing or no longer po_generated.
	DeleteAndRevertOrder(ctx context.Context, id primitive.ObjectID) (deleted *models.PurchaseOrder, reverted bool, err error)
	EnsureIndexes(ctx context.Context) error
}

type MongoPurchaseOrderRepository struct {
	client         *mongo.Client
	purchaseOrders *mongo.Collection
	orders         *mongo.Collection
}

func NewMongoPurchaseOrderRepository(db *mongo.Database) PurchaseOrderRepository {
	return &MongoPurchaseOrderRepository{
		client:         db.Client(),
		purchaseOrders: db.Collection("purchase_orders"),
		orders:         db.Collection("orders"),
	}
}

func (r *MongoPurchaseOrderRepository) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (r *MongoPurchaseOrderRepository) CreateForOrder(ctx context.Context, po *models.PurchaseOrder, orderVersion int64) error {
	if po.ID.IsZero() {
		po.ID = primitive.NewObjectID()
	}

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.orders.UpdateOne(sc,
			bson.M{"_id": po.OrderID, "status": models.OrderStatusApproved, "version": orderVersion},
			bson.M{
				"$set": bson.M{"status": models.OrderStatusPOGenerated, "updatedAt": po.GeneratedAt},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrVersionConflict
		}

		if _, err := r.purchaseOrders.InsertOne(sc, po); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert purchase order: %w", err)
		}
		return nil
	})
}

func (r *MongoPurchaseOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PurchaseOrder, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoPurchaseOrderRepository) FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.PurchaseOrder, error) {
	return r.findOne(ctx, bson.M{"orderId": orderID})
}

func (r *MongoPurchaseOrderRepository) findOne(ctx context.Context, filter bson.M) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := r.purchaseOrders.FindOne(ctx, filter).Decode(&po); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	return &po, nil
}

func (r *MongoPurchaseOrderRepository) FindAll(ctx context.Context, status models.PurchaseOrderStatus, page, limit int) ([]models.PurchaseOrder, int64, error) {
	query := bson.M{}
	if status != "" {
		query["status"] = status
	}

	total, err := r.purchaseOrders.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count purchase orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "generatedAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.purchaseOrders.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer cursor.Close(ctx)

	pos := []models.PurchaseOrder{}
	if err := cursor.All(ctx, &pos); err != nil {
		return nil, 0, fmt.Errorf("failed to decode purchase orders: %w", err)
	}
	return pos, total, nil
}

// AdvanceStatus moves a PO from one status to the next and stamps the
// matching timestamp. The status filter makes concurrent advances safe.
func (r *MongoPurchaseOrderRepository) AdvanceStatus(ctx context.Context, id primitive.ObjectID, from, to models.PurchaseOrderStatus, at time.Time) (*models.PurchaseOrder, error) {
	set := bson.M{"status": to}
	switch to {
	case models.POStatusSent:
		set["sentAt"] = at
	case models.POStatusAcknowledged:
		set["acknowledgedAt"] = at
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var po models.PurchaseOrder
	err := r.purchaseOrders.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&po)
	if err == nil {
		return &po, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update purchase order status: %w", err)
	}

	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, ErrVersionConflict
}

func (r *MongoPurchaseOrderRepository) DeleteAndRevertOrder(ctx context.Context, id primitive.ObjectID) (*models.PurchaseOrder, bool, error) {
	var deleted models.PurchaseOrder
	var reverted bool

	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := r.purchaseOrders.FindOneAndDelete(sc, bson.M{"_id": id}).Decode(&deleted); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to delete purchase order: %w", err)
		}

		res, err := r.orders.UpdateOne(sc,
			bson.M{"_id": deleted.OrderID, "status": models.OrderStatusPOGenerated},
			bson.M{
				"$set": bson.M{"status": models.OrderStatusApproved, "updatedAt": time.Now().UTC()},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to revert order status: %w", err)
		}
		reverted = res.MatchedCount > 0
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &deleted, reverted, nil
}

func (r *MongoPurchaseOrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.purchaseOrders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "poNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "generatedAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create purchase order indexes: %w", err)
	}
	return nil
}
