package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/a2b-grocery/storefront/pkg/checkout"
	"github.com/a2b-grocery/storefront/pkg/models"
)

// collection is the part of *mongo.Collection the order log uses.
type collection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
}

// OrderLog is the MongoDB order history used by the local checkout flow.
type OrderLog struct {
	collection collection
}

func NewOrderLog(db *mongo.Database) *OrderLog {
	return &OrderLog{collection: db.Collection(OrdersCollection)}
}

func (l *OrderLog) Append(ctx context.Context, order models.Order) error {
	if _, err := l.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, err)
	}
	return nil
}

func ownerFilter(userID string) bson.D {
	return bson.D{{Key: "user_id", Value: userID}}
}

func idFilter(id string) bson.D {
	return bson.D{{Key: "id", Value: id}}
}

func (l *OrderLog) List(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := l.collection.Find(ctx, ownerFilter(userID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (l *OrderLog) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := l.collection.FindOne(ctx, idFilter(id)).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, checkout.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}
	return &order, nil
}

func (l *OrderLog) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}}

	result, err := l.collection.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return checkout.ErrOrderNotFound
	}
	return nil
}
