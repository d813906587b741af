package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArticle(t *testing.T) {
	a := NewArticle("Tom", "Good day", "What a good day today!")
	b := NewArticle("Tom", "Good day", "What a good day today!")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Empty(t, a.Excerpt)
}

func TestArticle_DecodesPascalCaseBody(t *testing.T) {
	var a Article
	err := json.Unmarshal([]byte(`{"UserName":"Tom","Title":"Good day","Content":"What a good day today!"}`), &a)
	require.NoError(t, err)

	assert.Equal(t, "Tom", a.UserName)
	assert.Equal(t, "Good day", a.Title)
	assert.Equal(t, "What a good day today!", a.Content)
}

func TestNewUser(t *testing.T) {
	u := NewUser("Tom", "123@qq.com")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Tom", u.Name)
	assert.Equal(t, "123@qq.com", u.Email)
}
