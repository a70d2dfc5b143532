package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/config"
	"github.com/spicegarden/pos/internal/router"
	"github.com/spicegarden/pos/internal/seed"
	"github.com/spicegarden/pos/internal/service"
	"github.com/spicegarden/pos/internal/store"
	"github.com/spicegarden/pos/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	st, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("open store")
	}
	defer cleanup()

	// Seed-once: a populated store is left alone. Failure is not
	// fatal; the API still serves whatever data exists.
	if err := seed.Run(ctx, st); err != nil {
		logrus.WithError(err).Warn("seed")
	}

	hub := ws.NewHub()
	go hub.Run()

	// Every persisted write fans its collection snapshot out to the
	// connected POS terminals.
	for _, collection := range []string{
		store.CollectionTables,
		store.CollectionMenu,
		store.CollectionStaff,
		store.CollectionOrders,
		store.CollectionSettings,
	} {
		st.Subscribe(collection, hub.BroadcastSnapshot)
	}

	pos := service.New(st)
	r := router.New(cfg, pos, hub)

	logrus.WithField("port", cfg.Port).Info("starting server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

// openStore picks the backing store: Postgres when DATABASE_URL is
// set, in-memory otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logrus.Warn("DATABASE_URL not set, using in-memory store; data will not survive restarts")
		return store.NewMemory(), func() {}, nil
	}

	if err := runMigrations(cfg); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	logrus.Info("connected to database")
	return store.NewPostgres(pool), pool.Close, nil
}

func runMigrations(cfg *config.Config) error {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	logrus.Info("migrations applied")
	return nil
}
