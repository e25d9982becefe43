package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notfawkes/FitMeat/internal/basket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	collection *mongo.Collection
}

// snapshotDoc is the MongoDB document shape; basket types stay free of
// storage tags.
type snapshotDoc struct {
	ID        string    `bson:"_id,omitempty"`
	SessionID string    `bson:"session_id"`
	Items     []itemDoc `bson:"items"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type itemDoc struct {
	ProductID   int64  `bson:"product_id"`
	Title       string `bson:"title"`
	UnitPrice   int64  `bson:"unit_price"`
	Image       string `bson:"image"`
	Description string `bson:"description"`
	Tag         string `bson:"tag,omitempty"`
	Quantity    int    `bson:"quantity"`
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("baskets"),
	}
}

func (m *MongoStore) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	var doc snapshotDoc

	filter := bson.M{"session_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get basket snapshot: %w", err)
	}

	return docToSnapshot(&doc), nil
}

func (m *MongoStore) Upsert(ctx context.Context, snapshot *Snapshot) error {
	now := time.Now()

	doc := snapshotToDoc(snapshot)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	filter := bson.M{"session_id": snapshot.SessionID}
	update := bson.M{"$set": bson.M{
		"session_id": doc.SessionID,
		"items":      doc.Items,
		"updated_at": doc.UpdatedAt,
	}, "$setOnInsert": bson.M{
		"created_at": doc.CreatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert basket snapshot: %w", err)
	}

	return nil
}

func (m *MongoStore) Delete(ctx context.Context, sessionID string) error {
	filter := bson.M{"session_id": sessionID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete basket snapshot: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrSnapshotNotFound
	}

	return nil
}

func (m *MongoStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func snapshotToDoc(s *Snapshot) *snapshotDoc {
	doc := &snapshotDoc{
		SessionID: s.SessionID,
		Items:     make([]itemDoc, len(s.Items)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for i, item := range s.Items {
		doc.Items[i] = itemDoc{
			ProductID:   item.ID,
			Title:       item.Title,
			UnitPrice:   item.UnitPrice,
			Image:       item.Image,
			Description: item.Description,
			Tag:         item.Tag,
			Quantity:    item.Quantity,
		}
	}
	return doc
}

func docToSnapshot(doc *snapshotDoc) *Snapshot {
	s := &Snapshot{
		SessionID: doc.SessionID,
		Items:     make([]basket.LineItem, len(doc.Items)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for i, item := range doc.Items {
		s.Items[i] = basket.LineItem{
			Product: basket.Product{
				ID:          item.ProductID,
				Title:       item.Title,
				UnitPrice:   item.UnitPrice,
				Image:       item.Image,
				Description: item.Description,
				Tag:         item.Tag,
			},
			Quantity: item.Quantity,
		}
	}
	return s
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
