package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"miniblog/internal/config"
	"miniblog/internal/store"
	"miniblog/internal/worker"

	"go.uber.org/zap"
)

// backend bundles the stores selected by the configuration.
type backend struct {
	articles store.ArticleStore
	users    store.UserStore
	queue    store.Queue // nil without redis
	badger   *store.BadgerStore
	closers  []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// startLoops runs the Badger GC loop and the excerpt worker, when the backend
// has them, until ctx is done. stop cancels both and waits for them to return.
func (b *backend) startLoops(ctx context.Context, gcInterval time.Duration, logger *zap.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	if b.badger != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.badger.RunGC(ctx, gcInterval)
		}()
	}

	if b.queue != nil {
		w := worker.NewWorker(b.articles, b.queue, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Start(ctx)
		}()
	}

	return func() {
		cancel()
		wg.Wait()
	}
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.Driver {
	case config.DriverMongo:
		client, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("Mongo disconnect failed", zap.Error(err))
			}
		})
		db := client.Database(cfg.Mongo.Database)
		users := store.NewMongoUserStore(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.articles = store.NewMongoArticleStore(db)
		b.users = users

	case config.DriverBadger:
		st, err := store.NewBadgerStore(cfg.Badger.Path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { st.Close() })
		b.articles, b.users, b.badger = st, st, st

	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}

	if cfg.Redis.Addr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { rdb.Close() })
		b.articles = store.NewCachedArticleStore(b.articles, rdb, cfg.Cache.TTL, logger)
		b.queue = store.NewRedisQueue(rdb)
	}

	logger.Info("Stores ready",
		zap.String("driver", cfg.Driver),
		zap.Bool("redis", cfg.Redis.Addr != ""))
	return b, nil
}
