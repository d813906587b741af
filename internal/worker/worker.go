package worker

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"miniblog/internal/store"

	"github.com/go-shiori/dom"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const excerptRunes = 200

// Extractor turns article content into a short plain-text excerpt.
// This allows us to mock the readability step in tests.
type Extractor interface {
	Extract(content string) (string, error)
}

// ReadabilityExtractor runs the content through readability and falls back to
// a truncated copy of the raw content when no excerpt comes out.
type ReadabilityExtractor struct{}

var baseURL = &url.URL{Scheme: "http", Host: "localhost"}

func (ReadabilityExtractor) Extract(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}

	art, err := readability.FromReader(strings.NewReader(content), baseURL)
	if err != nil {
		return "", err
	}
	if excerpt := strings.TrimSpace(art.Excerpt); excerpt != "" {
		return excerpt, nil
	}

	text := art.TextContent
	if strings.TrimSpace(text) == "" {
		text = plainText(content)
	}
	return truncate(strings.Join(strings.Fields(text), " "), excerptRunes), nil
}

// plainText drops the markup from content. Unparseable input is returned
// as is.
func plainText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}
	return dom.TextContent(doc)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

type Worker struct {
	store     store.ArticleStore
	queue     store.Queue
	logger    *zap.Logger
	extractor Extractor
}

// NewWorker initializes the worker with the ReadabilityExtractor
func NewWorker(st store.ArticleStore, q store.Queue, logger *zap.Logger) *Worker {
	return &Worker{
		store:     st,
		queue:     q,
		logger:    logger,
		extractor: ReadabilityExtractor{},
	}
}

// Start runs the worker loop until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Excerpt worker started. Waiting for jobs...")

	for {
		if ctx.Err() != nil {
			w.logger.Info("Excerpt worker shutting down")
			return
		}

		id, err := w.queue.Pop(ctx)
		if errors.Is(err, store.ErrQueueEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Excerpt worker shutting down")
				return
			}
			w.logger.Error("Queue error", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		w.processJob(ctx, id)
	}
}

func (w *Worker) processJob(ctx context.Context, id string) {
	logger := w.logger.With(zap.String("article_id", id))

	article, err := w.store.GetArticle(ctx, id)
	if err != nil {
		logger.Error("Job failed: article not loaded", zap.Error(err))
		return
	}

	excerpt, err := w.extractor.Extract(article.Content)
	if err != nil {
		logger.Error("Excerpt extraction failed", zap.Error(err))
		return
	}

	if err := w.store.SetExcerpt(ctx, id, excerpt); err != nil {
		logger.Error("Failed to save excerpt", zap.Error(err))
		return
	}

	logger.Debug("Excerpt stored", zap.String("title", article.Title))
}
