package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/swimpace/backend/internal/api"
	"github.com/swimpace/backend/internal/config"
	"github.com/swimpace/backend/internal/database"
	"github.com/swimpace/backend/internal/events"
	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/migrations"
	"github.com/swimpace/backend/internal/operator"
	"github.com/swimpace/backend/internal/racelog"
	"github.com/swimpace/backend/internal/redis"
	"github.com/swimpace/backend/internal/session"
	"github.com/swimpace/backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

var migrationsDir string

func main() {
	root := &cobra.Command{
		Use:          "swimpace",
		Short:        "Pace bar overlay server for pool lane video",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "directory holding SQL migrations")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "starts the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "applies database migrations and exits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.Environment)
			defer logger.Sync()
			return migrations.RunMigrations(cfg.DatabaseURL, migrationsDir)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(parent context.Context) error {
	cfg := config.Load()
	logger.Init(cfg.Environment)
	defer logger.Sync()
	log := logger.Named("server")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Race history and operator accounts live in Postgres when configured.
	var (
		db        *sqlx.DB
		history   racelog.Store = racelog.NewMemoryStore(200)
		operators               = operator.Directories{operator.StaticDirectory{Name: operator.DefaultName, PINHash: cfg.OperatorPINHash}}
	)
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Info("running migrations on startup")
			if err := migrations.RunMigrations(cfg.DatabaseURL, migrationsDir); err != nil {
				return err
			}
		}
		var err error
		db, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		history = racelog.NewPostgresStore(db)
		operators = append(operator.Directories{operator.NewPostgresDirectory(db)}, operators...)
	} else {
		log.Warn("DATABASE_URL not set; race history kept in memory")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		log.Warn("REDIS_URL not set; settings events stay local and login is not rate limited")
	}

	hub := ws.NewHub()
	recorder := racelog.NewRecorder(history)
	defer recorder.Close()

	origin := uuid.NewString()
	publishers := events.Fanout{hub}
	var remote *events.Publisher
	if rdb != nil {
		remote = events.NewPublisher(rdb, origin)
		publishers = append(publishers, remote)
	}

	sess, err := session.New(cfg.Pace, session.Options{
		FPS:       cfg.ClockFPS,
		Renderer:  hub,
		Publisher: publishers,
		Recorder:  recorder,
	})
	if err != nil {
		return err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, api.Deps{
		Config:    cfg,
		Redis:     rdb,
		Session:   sess,
		Hub:       hub,
		History:   history,
		Operators: operators,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return sess.Run(gctx) })
	if remote != nil {
		g.Go(func() error { return remote.Run(gctx) })
		g.Go(func() error {
			return events.Subscribe(gctx, rdb, origin, func(e events.Event) {
				if err := sess.ApplySettings(e.Settings); err != nil {
					log.Warn("apply remote settings", zap.String("origin", e.Origin), logger.ErrorField(err))
				}
			})
		})
	}
	g.Go(func() error {
		log.Info("starting SwimPace server", zap.String("addr", srv.Addr), zap.String("instance", origin))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
