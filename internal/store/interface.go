package store

import (
	"context"
	"errors"

	"miniblog/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when no backend is configured for a store.
	ErrUnavailable = errors.New("store unavailable")
	// ErrConflict is returned when a user with the same name already exists.
	ErrConflict = errors.New("already exists")
)

type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	// CreateUser inserts the user and returns the inserted value, ID included.
	// Names are unique: a taken name yields ErrConflict.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	// EnsureUser atomically registers a user called name unless one exists.
	// created reports whether this call did the insert.
	EnsureUser(ctx context.Context, name string) (created bool, err error)
}

type ArticleStore interface {
	ListArticles(ctx context.Context) ([]model.Article, error)
	CreateArticle(ctx context.Context, article *model.Article) (*model.Article, error)
	GetArticle(ctx context.Context, id string) (*model.Article, error)
	SetExcerpt(ctx context.Context, id, excerpt string) error
}

// Queue carries article IDs to the excerpt worker.
type Queue interface {
	Push(ctx context.Context, id string) error
	Pop(ctx context.Context) (string, error)
}
