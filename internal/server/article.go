package server

import (
	"context"
	"errors"
	"net/http"

	"miniblog/internal/model"
	"miniblog/internal/store"

	"github.com/go-chi/render"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		s.fail(w, r, "List articles", store.ErrUnavailable)
		return
	}

	articles, err := s.articles.ListArticles(r.Context())
	if err != nil {
		s.fail(w, r, "List articles", err)
		return
	}
	s.renderList(w, r, NewArticleListResponse(articles))
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		s.fail(w, r, "Get article", store.ErrUnavailable)
		return
	}

	article, err := s.articles.GetArticle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, "Get article", err)
		return
	}
	s.render(w, r, NewArticleResponse(article))
}

// handleCreateArticle registers the author when needed, then persists the
// posted Article and returns it back to the client as an acknowledgement.
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	data := &ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		s.render(w, r, ErrInvalidRequest(err))
		return
	}

	if s.articles == nil {
		s.fail(w, r, "Create article", store.ErrUnavailable)
		return
	}

	if err := s.registerAuthor(r.Context(), data.UserName); err != nil {
		s.fail(w, r, "Register author", err)
		return
	}

	article := model.NewArticle(data.UserName, data.Title, data.Content)
	created, err := s.articles.CreateArticle(r.Context(), &article)
	if err != nil {
		s.fail(w, r, "Create article", err)
		return
	}

	if s.queue != nil {
		if err := s.queue.Push(r.Context(), created.ID); err != nil {
			s.loggerFrom(r.Context()).Warn("Failed to queue excerpt job",
				zap.String("article_id", created.ID), zap.Error(err))
		}
	}

	render.Status(r, http.StatusCreated)
	s.render(w, r, NewArticleResponse(created))
}

// registerAuthor makes sure a user named after the article author exists.
// It is a no-op without a user store.
func (s *Server) registerAuthor(ctx context.Context, name string) error {
	if s.users == nil {
		return nil
	}

	created, err := s.users.EnsureUser(ctx, name)
	if err != nil {
		return err
	}
	if created {
		s.loggerFrom(ctx).Info("Registered article author", zap.String("name", name))
	}
	return nil
}

// fail maps a store error to 404, 409 or 500 and logs the latter.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.render(w, r, ErrNotFound)
		return
	case errors.Is(err, store.ErrConflict):
		s.render(w, r, ErrConflict(err))
		return
	}
	s.loggerFrom(r.Context()).Error(op+" failed", zap.Error(err))
	s.render(w, r, ErrInternal(err))
}
func (s *Server) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		s.loggerFrom(r.Context()).Error("Render failed", zap.Error(err))
	}
}

func (s *Server) renderList(w http.ResponseWriter, r *http.Request, l []render.Renderer) {
	if err := render.RenderList(w, r, l); err != nil {
		s.loggerFrom(r.Context()).Error("Render failed", zap.Error(err))
	}
}
