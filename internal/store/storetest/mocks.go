// Package storetest provides testify mocks of the store contracts.
package storetest

import (
	"context"

	"miniblog/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *MockUserStore) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*model.User)
	return created, args.Error(1)
}

func (m *MockUserStore) EnsureUser(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockArticleStore struct {
	mock.Mock
}

func (m *MockArticleStore) ListArticles(ctx context.Context) ([]model.Article, error) {
	args := m.Called(ctx)
	articles, _ := args.Get(0).([]model.Article)
	return articles, args.Error(1)
}

func (m *MockArticleStore) CreateArticle(ctx context.Context, article *model.Article) (*model.Article, error) {
	args := m.Called(ctx, article)
	created, _ := args.Get(0).(*model.Article)
	return created, args.Error(1)
}

func (m *MockArticleStore) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	args := m.Called(ctx, id)
	article, _ := args.Get(0).(*model.Article)
	return article, args.Error(1)
}

func (m *MockArticleStore) SetExcerpt(ctx context.Context, id, excerpt string) error {
	return m.Called(ctx, id, excerpt).Error(0)
}

// MockQueue records pushes; Pop is not expected to be called on it.
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Push(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQueue) Pop(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
