package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"miniblog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	st, err := NewBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBadgerStore_CreateUser_ThenList(t *testing.T) {
	st := newTestBadgerStore(t)
	ctx := context.Background()

	user := model.User{Name: "Tom", Email: "123@qq.com"}
	created, err := st.CreateUser(ctx, &user)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "store should assign an ID")
	assert.Empty(t, user.ID, "input should not be mutated")

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Tom", users[0].Name)
	assert.Equal(t, "123@qq.com", users[0].Email)
	assert.Equal(t, created.ID, users[0].ID)
}

func TestBadgerStore_CreateUser_NameTaken(t *testing.T) {
	st := newTestBadgerStore(t)
	ctx := context.Background()

	_, err := st.CreateUser(ctx, &model.User{Name: "Tom", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, &model.User{Name: "Tom", Email: "b@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@example.com", users[0].Email)
}

func TestBadgerStore_EnsureUser(t *testing.T) {
	st := newTestBadgerStore(t)
	ctx := context.Background()

	created, err := st.EnsureUser(ctx, "Tom")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = st.EnsureUser(ctx, "Tom")
	require.NoError(t, err)
	assert.False(t, created, "an existing name is left alone")

	_, err = st.CreateUser(ctx, &model.User{Name: "Kevin"})
	require.NoError(t, err)
	created, err = st.EnsureUser(ctx, "Kevin")
	require.NoError(t, err)
	assert.False(t, created, "users made by CreateUser count as registered")

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestBadgerStore_EnsureUser_Concurrent(t *testing.T) {
	st := newTestBadgerStore(t)
	ctx := context.Background()

	const callers = 20
	var (
		wg      sync.WaitGroup
		inserts atomic.Int32
		start   = make(chan struct{})
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			created, err := st.EnsureUser(ctx, "Tom")
			assert.NoError(t, err)
			if created {
				inserts.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), inserts.Load(), "exactly one caller should insert")
	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestBadgerStore_ListArticles_CountsEveryCreate(t *testing.T) {
	st := newTestBadgerStore(t)
	ctx := context.Background()

	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		a := model.NewArticle("Tom", fmt.Sprintf("Title %d", i), "body")
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := st.CreateArticle(ctx, &a)
		require.NoError(t, err)
	}

	articles, err := st.ListArticles(ctx)
	require.NoError(t, err)
	assert.Len(t, articles, 5)
	assert.Equal(t, "Title 0", articles[0].Title, "articles are listed in creation order")

	again, err := st.ListArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, articles, again, "listing twice without writes must be stable")
}

func TestBadgerStore_ListEmpty(t *testing.T) {
	st := newTestBadgerStore(t)

	articles, err := st.ListArticles(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestBadgerStore_GetAndSetExcerpt(t *testing.T) {
	st := newTestBadgerStore(t)
	ctx := context.Background()

	a := model.NewArticle("Kevin", "Happy new year", "Happy 2021 new year")
	_, err := st.CreateArticle(ctx, &a)
	require.NoError(t, err)

	require.NoError(t, st.SetExcerpt(ctx, a.ID, "Happy 2021"))

	got, err := st.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Happy 2021", got.Excerpt)
	assert.Equal(t, "Happy new year", got.Title)

	_, err = st.GetArticle(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.SetExcerpt(ctx, "missing", "x"), ErrNotFound)
}

func TestBadgerStore_UsersAndArticlesDoNotMix(t *testing.T) {
	st := newTestBadgerStore(t)
	ctx := context.Background()

	_, err := st.CreateUser(ctx, &model.User{Name: "Tom"})
	require.NoError(t, err)
	a := model.NewArticle("Tom", "Good day", "What a good day today!")
	_, err = st.CreateArticle(ctx, &a)
	require.NoError(t, err)

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	articles, err := st.ListArticles(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Len(t, articles, 1)
}
