package model

import (
	"time"

	"github.com/google/uuid"
)

// UserCollection is the document collection users are persisted in.
const UserCollection = "Users"

// User is an article author. Name is the key articles refer to.
type User struct {
	ID        string    `json:"id,omitempty" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func NewUser(name, email string) User {
	return User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}
