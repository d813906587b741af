package store

import (
	"context"
	"encoding/json"
	"time"

	"miniblog/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	articleListKey = "cache:articles"
	articleGenKey  = "cache:articles:gen"
)

// CachedArticleStore serves the article list from Redis and falls back to the
// wrapped store on a miss or on any Redis error. Cached lists are keyed by a
// generation counter that every write bumps, so a list read from the wrapped
// store before a write can only land under a generation nobody reads again.
type CachedArticleStore struct {
	next   ArticleStore
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedArticleStore(next ArticleStore, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedArticleStore {
	return &CachedArticleStore{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func articleListKeyFor(gen string) string {
	return articleListKey + ":" + gen
}

func (s *CachedArticleStore) ListArticles(ctx context.Context) ([]model.Article, error) {
	gen, err := s.rdb.Get(ctx, articleGenKey).Result()
	if err == redis.Nil {
		gen, err = "0", nil
	}
	if err != nil {
		s.logger.Warn("Article cache read failed", zap.Error(err))
		return s.next.ListArticles(ctx)
	}
	key := articleListKeyFor(gen)

	val, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var articles []model.Article
		if err = json.Unmarshal(val, &articles); err == nil {
			return articles, nil
		}
		s.logger.Warn("Dropping corrupt article cache", zap.Error(err))
	} else if err != redis.Nil {
		s.logger.Warn("Article cache read failed", zap.Error(err))
	}

	articles, err := s.next.ListArticles(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(articles)
	if err == nil {
		err = s.rdb.Set(ctx, key, data, s.ttl).Err()
	}
	if err != nil {
		s.logger.Warn("Article cache write failed", zap.Error(err))
	}
	return articles, nil
}

func (s *CachedArticleStore) CreateArticle(ctx context.Context, article *model.Article) (*model.Article, error) {
	created, err := s.next.CreateArticle(ctx, article)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *CachedArticleStore) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	return s.next.GetArticle(ctx, id)
}

func (s *CachedArticleStore) SetExcerpt(ctx context.Context, id, excerpt string) error {
	if err := s.next.SetExcerpt(ctx, id, excerpt); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate moves readers to a fresh generation. Lists cached under older
// generations expire with their TTL.
func (s *CachedArticleStore) invalidate(ctx context.Context) {
	if err := s.rdb.Incr(ctx, articleGenKey).Err(); err != nil {
		s.logger.Warn("Article cache invalidation failed", zap.Error(err))
	}
}
