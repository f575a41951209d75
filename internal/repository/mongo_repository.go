package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/audioforge/studio/internal/domain"
)

// Collection names in the document store.
const (
	UsersCollection   = "users"
	HistoryCollection = "audio_history"
)

type userDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type historyDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	UserID    string        `bson:"userId"`
	Service   string        `bson:"service"`
	Title     string        `bson:"title"`
	Voice     *string       `bson:"voice"`
	AudioURL  *string       `bson:"audioUrl"`
	BlobName  string        `bson:"blobName,omitempty"`
	Time      string        `bson:"time"`
	Date      string        `bson:"date"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d historyDocument) toDomain() domain.HistoryItem {
	return domain.HistoryItem{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Service:   domain.ServiceType(d.Service),
		Title:     d.Title,
		Voice:     d.Voice,
		AudioURL:  d.AudioURL,
		BlobName:  d.BlobName,
		Time:      d.Time,
		Date:      d.Date,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// EnsureMongoIndexes creates the indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	_, err := db.Collection(HistoryCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "service", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository returns a document-store implementation.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		ID:        bson.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

type mongoHistoryRepository struct {
	coll *mongo.Collection
}

// NewMongoHistoryRepository returns a document-store implementation.
func NewMongoHistoryRepository(db *mongo.Database) HistoryRepository {
	return &mongoHistoryRepository{coll: db.Collection(HistoryCollection)}
}

func (r *mongoHistoryRepository) Create(ctx context.Context, item *domain.HistoryItem) error {
	now := time.Now().UTC()
	doc := historyDocument{
		ID:        bson.NewObjectID(),
		UserID:    item.UserID,
		Service:   string(item.Service),
		Title:     item.Title,
		Voice:     item.Voice,
		AudioURL:  item.AudioURL,
		BlobName:  item.BlobName,
		Time:      item.Time,
		Date:      item.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	item.ID = doc.ID.Hex()
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (r *mongoHistoryRepository) ListByUserAndService(ctx context.Context, userID string, service domain.ServiceType) ([]domain.HistoryItem, error) {
	filter := bson.D{{Key: "userId", Value: userID}, {Key: "service", Value: string(service)}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "updatedAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make([]domain.HistoryItem, 0)
	for cursor.Next(ctx) {
		var doc historyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toDomain())
	}
	return result, cursor.Err()
}

func (r *mongoHistoryRepository) GetByID(ctx context.Context, userID, id string) (*domain.HistoryItem, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc historyDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: userID}}).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	item := doc.toDomain()
	return &item, nil
}

func (r *mongoHistoryRepository) Delete(ctx context.Context, userID, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: userID}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
