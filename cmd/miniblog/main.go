package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"miniblog/internal/config"
	"miniblog/internal/model"
	"miniblog/internal/server"
	"miniblog/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	logger  *zap.Logger
	cfg     *config.Config
	v       = viper.New()
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "miniblog",
	Short: "miniblog - A minimal blogging backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, cfgFile)
		if err != nil {
			return err
		}

		if cfg.Dev {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server and the excerpt worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		// Setup Signal Handling (Ctrl+C)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Trace {
			tp, err := telemetry.NewProvider(ctx, "miniblog", os.Stdout)
			if err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			defer shutdownLogged(logger, "Tracer", tp.Shutdown)
		}

		b, err := openBackend(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to init stores", zap.Error(err))
			return err
		}
		defer b.Close()

		// Deferred after b.Close, so the loops are gone before the stores close.
		stopLoops := b.startLoops(ctx, cfg.Badger.GCInterval, logger)
		defer stopLoops()

		var opts []server.Option
		if b.queue != nil {
			opts = append(opts, server.WithQueue(b.queue))
		}

		srv := server.NewServer(b.articles, b.users, logger, opts...)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(cfg.Addr)
		}()

		// Block until shutdown
		select {
		case <-ctx.Done():
			logger.Info("Shutting down...")
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Web server failed", zap.Error(err))
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
			return err
		}
		logger.Info("Goodbye!")
		return nil
	},
}

// shutdownLogged runs a deferred shutdown and logs its error.
func shutdownLogged(logger *zap.Logger, what string, shutdown func(context.Context) error) {
	if err := shutdown(context.Background()); err != nil {
		logger.Error(what+" shutdown failed", zap.Error(err))
	}
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users directly in the store",
}

var userAddCmd = &cobra.Command{
	Use:   "add [name] [email]",
	Short: "Create a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		ctx := context.Background()

		b, err := openBackend(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer b.Close()

		user := model.NewUser(args[0], args[1])
		created, err := b.users.CreateUser(ctx, &user)
		if err != nil {
			return err
		}

		logger.Info("User created",
			zap.String("id", created.ID),
			zap.String("name", created.Name))
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all users as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		ctx := context.Background()

		b, err := openBackend(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer b.Close()

		users, err := b.users.ListUsers(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	},
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	flags.String("addr", ":5000", "HTTP listen address")
	flags.String("driver", config.DriverMongo, "Storage driver: mongo or badger")
	flags.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection string")
	flags.String("mongo-database", "MiniBlog", "MongoDB database name")
	flags.String("badger", "./badger-data", "Path to BadgerDB data directory")
	flags.String("redis", "", "Address of Redis server (enables cache and excerpt worker)")
	flags.Bool("dev", false, "Development logging")
	flags.Bool("trace", false, "Export traces to stdout")

	for key, name := range map[string]string{
		"addr":           "addr",
		"driver":         "driver",
		"mongo.uri":      "mongo-uri",
		"mongo.database": "mongo-database",
		"badger.path":    "badger",
		"redis.addr":     "redis",
		"dev":            "dev",
		"trace":          "trace",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func main() {
	config.SetDefaults(v)
	bindFlags(rootCmd)

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
