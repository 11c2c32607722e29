package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/landregistry/internal/domain/models"
	"github.com/mamadbah2/landregistry/internal/repository"
)

const parcelsCollection = "parcels"

// parcelDocument is the stored shape of an ownership record. Declared values are
// kept as decimal strings so no precision is lost.
type parcelDocument struct {
	ParcelID      string    `bson:"_id"`
	Owner         string    `bson:"owner"`
	Location      string    `bson:"location"`
	DeclaredValue string    `bson:"declared_value"`
	RegisteredAt  time.Time `bson:"registered_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toDocument(r models.OwnershipRecord) parcelDocument {
	return parcelDocument{
		ParcelID:      r.ParcelID,
		Owner:         string(r.Owner),
		Location:      r.Location,
		DeclaredValue: r.DeclaredValue.String(),
		RegisteredAt:  r.RegisteredAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (d parcelDocument) record() (models.OwnershipRecord, error) {
	value, err := decimal.NewFromString(d.DeclaredValue)
	if err != nil {
		return models.OwnershipRecord{}, fmt.Errorf("decode declared value of parcel %s: %w", d.ParcelID, err)
	}
	return models.OwnershipRecord{
		Owner:         models.Identity(d.Owner),
		Location:      d.Location,
		ParcelID:      d.ParcelID,
		DeclaredValue: value,
		RegisteredAt:  d.RegisteredAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}, nil
}

// MongoDBRepository implements repository.ParcelRepository for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository and ensures the owner index exists.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: parcelsCollection,
	}

	index := mongo.IndexModel{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "_id", Value: 1}}}
	if _, err := r.collection().Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to create owner index: %w", err)
	}

	return r, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// Insert stores a new record; the parcel id is the document key.
func (r *MongoDBRepository) Insert(ctx context.Context, record models.OwnershipRecord) error {
	_, err := r.collection().InsertOne(ctx, toDocument(record))
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert parcel %s: %w", record.ParcelID, err)
	}
	return nil
}

// Get loads a record by parcel id.
func (r *MongoDBRepository) Get(ctx context.Context, parcelID string) (models.OwnershipRecord, error) {
	var doc parcelDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": parcelID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.OwnershipRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return models.OwnershipRecord{}, fmt.Errorf("failed to load parcel %s: %w", parcelID, err)
	}
	return doc.record()
}

// UpdateOwner changes the owner with a single conditional update.
func (r *MongoDBRepository) UpdateOwner(ctx context.Context, parcelID string, from, to models.Identity, at time.Time) error {
	res, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": parcelID, "owner": string(from)},
		bson.M{"$set": bson.M{"owner": string(to), "updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to update owner of parcel %s: %w", parcelID, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.collection().CountDocuments(ctx, bson.M{"_id": parcelID})
	if err != nil {
		return fmt.Errorf("failed to check parcel %s: %w", parcelID, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

// List returns records sorted by parcel id, optionally restricted to one owner.
func (r *MongoDBRepository) List(ctx context.Context, owner models.Identity) ([]models.OwnershipRecord, error) {
	filter := bson.M{}
	if owner != "" {
		filter["owner"] = string(owner)
	}

	cur, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.OwnershipRecord, 0)
	for cur.Next(ctx) {
		var doc parcelDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode parcel: %w", err)
		}
		record, err := doc.record()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parcels: %w", err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
