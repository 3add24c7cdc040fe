// Package app assembles the feed components shared by the api, worker and
// feedctl binaries.
package app

import (
	"fmt"

	"catalogfeed/internal/config"
	"catalogfeed/internal/database"
	"catalogfeed/internal/feed"
	"catalogfeed/internal/history"
	"catalogfeed/internal/logger"
	"catalogfeed/internal/services/graph"
	"catalogfeed/internal/settings"
	"catalogfeed/internal/stores"
)

type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *database.Database
	Registry  *stores.Registry
	Settings  *settings.Store
	History   *history.Recorder
	Session   feed.Session
	Resolver  *feed.Resolver
	Publisher *feed.Publisher
	Notifier  *feed.Notifier
}

func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := database.New(cfg.DatabaseURL, log.IsDebug())
	if err != nil {
		return nil, err
	}

	registry, err := stores.Load(cfg.StoresFile)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := settings.New(db.DB)
	client := graph.NewClient(graph.Options{
		BaseURL: cfg.GraphBaseURL,
		Version: cfg.GraphVersion,
		Timeout: cfg.GraphTimeout,
		RPS:     cfg.GraphRPS,
	}, log.With("graph"))
	session := feed.GraphSession(client)
	runs := history.NewRecorder(db.DB)
	resolver := feed.NewResolver(store, log.With("feed"))

	retrievers := []feed.ProductRetriever{
		feed.NewSimpleRetriever(db.DB, cfg.SimplePageSize),
		feed.NewConfigurableRetriever(db.DB, cfg.ConfigurablePageSize),
	}
	publisher := feed.NewPublisher(
		store,
		registry,
		session,
		resolver,
		retrievers,
		runs,
		feed.PublisherOptions{VarDir: cfg.VarDir},
		log.With("publisher"),
	)

	return &App{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Registry:  registry,
		Settings:  store,
		History:   runs,
		Session:   session,
		Resolver:  resolver,
		Publisher: publisher,
		Notifier:  feed.NewNotifier(store, session, log.With("notifier")),
	}, nil
}

// Load reads the process configuration and builds the app from it.
func Load() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return New(cfg, logger.New(cfg.LogLevel))
}

func (a *App) Close() error {
	return a.DB.Close()
}
