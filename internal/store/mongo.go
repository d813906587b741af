package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"miniblog/internal/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultDatabase is the database both collections live in.
const DefaultDatabase = "MiniBlog"

// ConnectMongo opens a client and pings the primary so that a bad URI fails
// at startup rather than on the first request.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

func byCreation() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
}

// MongoUserStore keeps users in the Users collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{coll: db.Collection(model.UserCollection)}
}

// EnsureIndexes creates the unique index on name that CreateUser and
// EnsureUser rely on. It is idempotent.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("name_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users name index: %w", err)
	}
	return nil
}

func (s *MongoUserStore) ListUsers(ctx context.Context) ([]model.User, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, byCreation())
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// CreateUser inserts a copy of user and returns that copy without reading it
// back by name.
func (s *MongoUserStore) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := s.coll.InsertOne(ctx, created); mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("insert user %q: %w", created.Name, ErrConflict)
	} else if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

// EnsureUser upserts on name with $setOnInsert, so an existing user is left
// untouched. Two concurrent upserts can both miss and race on the insert; the
// unique index rejects the loser, which then counts as already registered.
func (s *MongoUserStore) EnsureUser(ctx context.Context, name string) (bool, error) {
	user := model.NewUser(name, "")
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "name", Value: name}},
		bson.D{{Key: "$setOnInsert", Value: user}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("upsert user %q: %w", name, err)
	}
	return res.UpsertedCount > 0, nil
}

// MongoArticleStore keeps articles in the Articles collection.
type MongoArticleStore struct {
	coll *mongo.Collection
}

func NewMongoArticleStore(db *mongo.Database) *MongoArticleStore {
	return &MongoArticleStore{coll: db.Collection(model.ArticleCollection)}
}

func (s *MongoArticleStore) ListArticles(ctx context.Context) ([]model.Article, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, byCreation())
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}

	articles := []model.Article{}
	if err := cur.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}

func (s *MongoArticleStore) CreateArticle(ctx context.Context, article *model.Article) (*model.Article, error) {
	created := *article
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := s.coll.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	return &created, nil
}

func (s *MongoArticleStore) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	var article model.Article
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("find article %s: %w", id, err)
	}
	return &article, nil
}

func (s *MongoArticleStore) SetExcerpt(ctx context.Context, id, excerpt string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "excerpt", Value: excerpt}}}},
	)
	if err != nil {
		return fmt.Errorf("update article %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
