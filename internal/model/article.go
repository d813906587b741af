package model

import (
	"time"

	"github.com/google/uuid"
)

// ArticleCollection is the document collection articles are persisted in.
const ArticleCollection = "Articles"

// Article is a blog post. UserName refers to User.Name but is stored as a
// plain string.
type Article struct {
	ID        string    `json:"id,omitempty" bson:"_id"`
	UserName  string    `json:"userName" bson:"userName"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Excerpt   string    `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// NewArticle creates a new Article with a fresh ID and creation time.
func NewArticle(userName, title, content string) Article {
	return Article{
		ID:        uuid.NewString(),
		UserName:  userName,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
