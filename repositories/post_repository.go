package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/posts_backend/models"
)

const queryTimeout = 10 * time.Second

// PostRepository persists posts. Every error it returns is a
// *models.PersistenceError.
type PostRepository interface {
	// Create inserts post and sets post.ID to the identifier the store assigned.
	Create(ctx context.Context, post *models.Post) error
	// FindAll returns every post in store order, never nil.
	FindAll(ctx context.Context) ([]models.Post, error)
}

// StoreStatus reports on the backing store for the health and version endpoints
type StoreStatus interface {
	Ping(ctx context.Context) error
	ServerVersion(ctx context.Context) (string, error)
}

type MongoPostRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoPostRepository(client *mongo.Client, dbName, collection string) *MongoPostRepository {
	return &MongoPostRepository{
		client:     client,
		collection: client.Database(dbName).Collection(collection),
	}
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		return models.NewPersistenceError("insert post", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.NewPersistenceError("insert post", fmt.Errorf("unexpected inserted id type %T", result.InsertedID))
	}
	post.ID = models.PostID(oid)
	return nil
}

func (r *MongoPostRepository) FindAll(ctx context.Context) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, models.NewPersistenceError("find posts", err)
	}
	defer cursor.Close(ctx)

	posts := make([]models.Post, 0)
	for cursor.Next(ctx) {
		var post models.Post
		if err := cursor.Decode(&post); err != nil {
			return nil, models.NewPersistenceError("decode post", err)
		}
		post.Normalize()
		posts = append(posts, post)
	}
	if err := cursor.Err(); err != nil {
		return nil, models.NewPersistenceError("iterate posts", err)
	}
	return posts, nil
}

func (r *MongoPostRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.client.Ping(ctx, nil)
}

func (r *MongoPostRepository) ServerVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var info struct {
		Version string `bson:"version"`
	}
	err := r.collection.Database().RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info)
	if err != nil {
		return "", models.NewPersistenceError("build info", err)
	}
	return info.Version, nil
}
