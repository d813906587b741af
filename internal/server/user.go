package server

import (
	"net/http"

	"miniblog/internal/model"
	"miniblog/internal/store"

	"github.com/go-chi/render"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if s.users == nil {
		s.fail(w, r, "List users", store.ErrUnavailable)
		return
	}

	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, "List users", err)
		return
	}
	s.renderList(w, r, NewUserListResponse(users))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	data := &UserRequest{}
	if err := render.Bind(r, data); err != nil {
		s.render(w, r, ErrInvalidRequest(err))
		return
	}

	if s.users == nil {
		s.fail(w, r, "Create user", store.ErrUnavailable)
		return
	}

	user := model.NewUser(data.Name, data.Email)
	created, err := s.users.CreateUser(r.Context(), &user)
	if err != nil {
		s.fail(w, r, "Create user", err)
		return
	}

	render.Status(r, http.StatusCreated)
	s.render(w, r, NewUserResponse(created))
}
