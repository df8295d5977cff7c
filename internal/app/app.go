package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"parish-app-go/internal/config"
	"parish-app-go/internal/db"
	donationsdomain "parish-app-go/internal/domain/donations"
	eventsdomain "parish-app-go/internal/domain/events"
	faithfuldomain "parish-app-go/internal/domain/faithful"
	intentionsdomain "parish-app-go/internal/domain/intentions"
	priestsdomain "parish-app-go/internal/domain/priests"
	statisticsdomain "parish-app-go/internal/domain/statistics"
	"parish-app-go/internal/metrics"
	"parish-app-go/internal/repository/inmemory"
	donationsrepo "parish-app-go/internal/repository/postgres/donations"
	eventsrepo "parish-app-go/internal/repository/postgres/events"
	faithfulrepo "parish-app-go/internal/repository/postgres/faithful"
	intentionsrepo "parish-app-go/internal/repository/postgres/intentions"
	priestsrepo "parish-app-go/internal/repository/postgres/priests"
	statisticsrepo "parish-app-go/internal/repository/postgres/statistics"
	"parish-app-go/internal/transport/httpserver"
	"parish-app-go/internal/transport/httpserver/handler"
	"parish-app-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	// amounts travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(dbConn, log); err != nil {
			closeDB(dbConn)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	log.Info("app: initializing router")
	handlers := handler.New(NewServices(dbConn, cfg, m), handler.PingFunc(func(ctx context.Context) error {
		return db.Ping(ctx, dbConn)
	}), m, log)
	router := httpserver.NewRouter(cfg, handlers, m, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

// NewServices builds every domain service on top of the postgres repositories.
func NewServices(dbConn *gorm.DB, cfg config.Config, m *metrics.Metrics) handler.Services {
	var cache statisticsdomain.Cache = inmemory.NewDashboardCache()
	if m != nil {
		cache = metrics.NewInstrumentedCache(cache, m)
	}

	return handler.Services{
		Faithful:   faithfuldomain.NewService(faithfulrepo.NewPostgres(dbConn), nil),
		Priests:    priestsdomain.NewService(priestsrepo.NewPostgres(dbConn), nil),
		Events:     eventsdomain.NewService(eventsrepo.NewPostgres(dbConn), nil),
		Intentions: intentionsdomain.NewService(intentionsrepo.NewPostgres(dbConn), nil),
		Donations:  donationsdomain.NewService(donationsrepo.NewPostgres(dbConn), nil),
		Statistics: statisticsdomain.NewServiceWithCache(statisticsrepo.NewPostgres(dbConn), cache, cfg.StatsCacheTTL, nil),
	}
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(dbConn *gorm.DB) {
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
