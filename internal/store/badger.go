package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"miniblog/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	userPrefix    = "user:"
	articlePrefix = "article:"
	// userNamePrefix maps a user name to its ID and keeps names unique.
	userNamePrefix = "username:"

	maxTxnRetries = 10
)

// BadgerStore is an embedded document store implementing both UserStore and
// ArticleStore. Each document is a JSON value under "<kind>:<id>".
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens the database at path. Pass path="" for an in-memory
// database.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Silence default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// RunGC reclaims value log space every interval until ctx is done.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// ErrNoRewrite just means there was nothing worth collecting.
			for s.db.RunValueLogGC(0.7) == nil {
			}
		}
	}
}

func (s *BadgerStore) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := s.scan(userPrefix, func(val []byte) error {
		var u model.User
		if err := json.Unmarshal(val, &u); err != nil {
			return err
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *BadgerStore) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	var taken bool
	err := s.update(func(txn *badger.Txn) error {
		var err error
		taken, err = insertUser(txn, created)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("insert user %q: %w", created.Name, ErrConflict)
	}
	return &created, nil
}

// EnsureUser checks the name index and inserts in one transaction. Badger
// aborts the later of two overlapping transactions with ErrConflict; the
// retry then finds the name taken.
func (s *BadgerStore) EnsureUser(ctx context.Context, name string) (bool, error) {
	var taken bool
	err := s.update(func(txn *badger.Txn) error {
		var err error
		taken, err = insertUser(txn, model.NewUser(name, ""))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("ensure user %q: %w", name, err)
	}
	return !taken, nil
}

// insertUser writes the user and its name index unless the name is taken.
func insertUser(txn *badger.Txn, user model.User) (taken bool, err error) {
	nameKey := []byte(userNamePrefix + user.Name)
	if _, err := txn.Get(nameKey); err == nil {
		return true, nil
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return false, err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return false, err
	}
	if err := txn.Set([]byte(userPrefix+user.ID), data); err != nil {
		return false, err
	}
	return false, txn.Set(nameKey, []byte(user.ID))
}

func (s *BadgerStore) ListArticles(ctx context.Context) ([]model.Article, error) {
	articles := []model.Article{}
	err := s.scan(articlePrefix, func(val []byte) error {
		var a model.Article
		if err := json.Unmarshal(val, &a); err != nil {
			return err
		}
		articles = append(articles, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.Before(articles[j].CreatedAt)
	})
	return articles, nil
}

func (s *BadgerStore) CreateArticle(ctx context.Context, article *model.Article) (*model.Article, error) {
	created := *article
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if err := s.put(articlePrefix+created.ID, created); err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	return &created, nil
}

func (s *BadgerStore) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	var article model.Article
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(articlePrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &article)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}
	return &article, nil
}

// SetExcerpt rewrites the article document inside a single transaction.
func (s *BadgerStore) SetExcerpt(ctx context.Context, id, excerpt string) error {
	key := []byte(articlePrefix + id)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		var article model.Article
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &article)
		}); err != nil {
			return err
		}

		article.Excerpt = excerpt
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("update article %s: %w", id, err)
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on commit conflicts.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxTxnRetries; i++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *BadgerStore) put(key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *BadgerStore) scan(prefix string, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
