package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/checkout"
	"github.com/a2b-grocery/storefront/pkg/models"
)

var _ checkout.OrderLog = (*OrderLog)(nil)

func TestRequiredIndexes(t *testing.T) {
	names := map[string]bson.D{}
	for _, idx := range requiredIndexes {
		assert.Equal(t, OrdersCollection, idx.CollectionName)
		keys, ok := idx.IndexModel.Keys.(bson.D)
		if assert.True(t, ok) {
			names[keys[0].Key] = keys
		}
	}

	assert.Contains(t, names, "id")
	if assert.Contains(t, names, "user_id") {
		assert.Equal(t, "created_at", names["user_id"][1].Key)
		assert.Equal(t, -1, names["user_id"][1].Value)
	}
}

func TestFilters(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "user_id", Value: "42"}}, ownerFilter("42"))
	assert.Equal(t, bson.D{{Key: "id", Value: "ORDER-1"}}, idFilter("ORDER-1"))
}

type mockCollection struct {
	InsertOneFunc func(ctx context.Context, document any) (*mongo.InsertOneResult, error)
	FindFunc      func(ctx context.Context, filter any, opts *options.FindOptions) (*mongo.Cursor, error)
	FindOneFunc   func(ctx context.Context, filter any) *mongo.SingleResult
	UpdateOneFunc func(ctx context.Context, filter, update any) (*mongo.UpdateResult, error)
}

func (m *mockCollection) InsertOne(ctx context.Context, document any, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	return m.InsertOneFunc(ctx, document)
}

func (m *mockCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	applied := &options.FindOptions{}
	for _, o := range opts {
		for _, set := range o.List() {
			if err := set(applied); err != nil {
				return nil, err
			}
		}
	}
	return m.FindFunc(ctx, filter, applied)
}

func (m *mockCollection) FindOne(ctx context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	return m.FindOneFunc(ctx, filter)
}

func (m *mockCollection) UpdateOne(ctx context.Context, filter, update any, _ ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	return m.UpdateOneFunc(ctx, filter, update)
}

func TestOrderLog_Append(t *testing.T) {
	var inserted any
	log := &OrderLog{collection: &mockCollection{
		InsertOneFunc: func(_ context.Context, document any) (*mongo.InsertOneResult, error) {
			inserted = document
			return &mongo.InsertOneResult{}, nil
		},
	}}

	order := models.Order{ID: "ORDER-1-abcd1234", UserID: "42", Status: models.OrderStatusPending}
	require.NoError(t, log.Append(context.Background(), order))
	assert.Equal(t, order, inserted)
}

func TestOrderLog_AppendDuplicate(t *testing.T) {
	log := &OrderLog{collection: &mockCollection{
		InsertOneFunc: func(context.Context, any) (*mongo.InsertOneResult, error) {
			return nil, errors.New("E11000 duplicate key error")
		},
	}}

	err := log.Append(context.Background(), models.Order{ID: "ORDER-1"})
	assert.ErrorContains(t, err, "ORDER-1")
}

func TestOrderLog_ListNewestFirstByOwner(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var gotFilter any
	var gotSort any
	log := &OrderLog{collection: &mockCollection{
		FindFunc: func(_ context.Context, filter any, opts *options.FindOptions) (*mongo.Cursor, error) {
			gotFilter = filter
			gotSort = opts.Sort
			return mongo.NewCursorFromDocuments([]any{
				models.Order{ID: "b", UserID: "42", CreatedAt: base.Add(time.Hour)},
				models.Order{ID: "a", UserID: "42", CreatedAt: base},
			}, nil, nil)
		},
	}}

	orders, err := log.List(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, ownerFilter("42"), gotFilter)
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, gotSort)
	require.Len(t, orders, 2)
	assert.Equal(t, "b", orders[0].ID)
	assert.Equal(t, "a", orders[1].ID)
}

func TestOrderLog_ListEmpty(t *testing.T) {
	log := &OrderLog{collection: &mockCollection{
		FindFunc: func(context.Context, any, *options.FindOptions) (*mongo.Cursor, error) {
			return mongo.NewCursorFromDocuments(nil, nil, nil)
		},
	}}

	orders, err := log.List(context.Background(), "42")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestOrderLog_Get(t *testing.T) {
	tests := []struct {
		name    string
		result  *mongo.SingleResult
		wantID  string
		wantErr error
	}{
		{
			name:   "found",
			result: mongo.NewSingleResultFromDocument(models.Order{ID: "ORDER-1", UserID: "42"}, nil, nil),
			wantID: "ORDER-1",
		},
		{
			name:    "missing",
			result:  mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil),
			wantErr: checkout.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFilter any
			log := &OrderLog{collection: &mockCollection{
				FindOneFunc: func(_ context.Context, filter any) *mongo.SingleResult {
					gotFilter = filter
					return tt.result
				},
			}}

			order, err := log.Get(context.Background(), "ORDER-1")
			assert.Equal(t, idFilter("ORDER-1"), gotFilter)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, order.ID)
		})
	}
}

func TestOrderLog_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		matched int64
		wantErr error
	}{
		{name: "matched", matched: 1},
		{name: "no such order", matched: 0, wantErr: checkout.ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUpdate any
			log := &OrderLog{collection: &mockCollection{
				UpdateOneFunc: func(_ context.Context, _, update any) (*mongo.UpdateResult, error) {
					gotUpdate = update
					return &mongo.UpdateResult{MatchedCount: tt.matched}, nil
				},
			}}

			err := log.UpdateStatus(context.Background(), "ORDER-1", models.OrderStatusCancelled)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: models.OrderStatusCancelled}}}}, gotUpdate)
		})
	}
}

// TestOrderLog_Live runs against a real server when MONGODB_TEST_URI is set.
func TestOrderLog_Live(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri, zap.NewNop())
	require.NoError(t, err)
	db := client.Database("storefront_test_" + bson.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, EnsureIndexes(ctx, db, zap.NewNop()))

	log := NewOrderLog(db)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, log.Append(ctx, models.Order{ID: "a", UserID: "1", Status: models.OrderStatusPending, CreatedAt: base}))
	require.NoError(t, log.Append(ctx, models.Order{ID: "b", UserID: "2", Status: models.OrderStatusPending, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, log.Append(ctx, models.Order{ID: "c", UserID: "1", Status: models.OrderStatusPending, CreatedAt: base.Add(2 * time.Hour)}))
	assert.Error(t, log.Append(ctx, models.Order{ID: "a", UserID: "1"}), "id is unique")

	orders, err := log.List(ctx, "1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "c", orders[0].ID)

	require.NoError(t, log.UpdateStatus(ctx, "a", models.OrderStatusCancelled))
	got, err := log.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	assert.ErrorIs(t, log.UpdateStatus(ctx, "missing", models.OrderStatusCancelled), checkout.ErrOrderNotFound)
	_, err = log.Get(ctx, "missing")
	assert.ErrorIs(t, err, checkout.ErrOrderNotFound)
}
