package server

import (
	"errors"
	"net/http"
	"strings"

	"miniblog/internal/model"

	"github.com/go-chi/render"
)

// ArticleRequest is the POST /article body. Field matching is
// case-insensitive, so {"UserName": ...} binds as well.
type ArticleRequest struct {
	UserName string `json:"userName"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (a *ArticleRequest) Bind(r *http.Request) error {
	a.UserName = strings.TrimSpace(a.UserName)
	a.Title = strings.TrimSpace(a.Title)

	if a.UserName == "" {
		return errors.New("missing required field userName")
	}
	if a.Title == "" {
		return errors.New("missing required field title")
	}
	return nil
}

type ArticleResponse struct {
	*model.Article
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewArticleResponse(article *model.Article) *ArticleResponse {
	return &ArticleResponse{Article: article}
}

func NewArticleListResponse(articles []model.Article) []render.Renderer {
	list := []render.Renderer{}
	for i := range articles {
		list = append(list, NewArticleResponse(&articles[i]))
	}
	return list
}

type UserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *UserRequest) Bind(r *http.Request) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)

	if u.Name == "" {
		return errors.New("missing required field name")
	}
	return nil
}

type UserResponse struct {
	*model.User
}

func (u *UserResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewUserResponse(user *model.User) *UserResponse {
	return &UserResponse{User: user}
}

func NewUserListResponse(users []model.User) []render.Renderer {
	list := []render.Renderer{}
	for i := range users {
		list = append(list, NewUserResponse(&users[i]))
	}
	return list
}

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrConflict(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Resource already exists.",
		ErrorText:      err.Error(),
	}
}

// ErrInternal hides err from the client; it is logged by the caller.
func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
	}
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
