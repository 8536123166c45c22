// Package app wires configuration, the backend client, the cache and all
// HTTP handlers into one composition root.
package app

import (
	"github.com/folioadmin/folio-portal/internal/cache"
	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
	"github.com/folioadmin/folio-portal/internal/config"
	"github.com/folioadmin/folio-portal/internal/handlers"
	"github.com/folioadmin/folio-portal/internal/mcp"
)

// maxCacheEntries bounds the response cache regardless of TTL.
const maxCacheEntries = 256

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Client *client.FolioClient
	Cache  *cache.Cache

	// HTTP handlers
	HealthHandler       *handlers.HealthHandler
	ServerHealthHandler *handlers.ServerHealthHandler
	VersionHandler      *handlers.VersionHandler
	LoginHandler        *handlers.LoginHandler
	TransactionsHandler *handlers.TransactionsHandler
	DuplicateHandler    *handlers.DuplicateHandler
	PairsHandler        *handlers.PairsHandler
	PriceSeriesHandler  *handlers.PriceSeriesHandler
	FeesHandler         *handlers.FeesHandler
	EntitiesHandler     *handlers.EntitiesHandler
	MCPHandler          *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	session := client.Session{
		Token:  cfg.Session.Token,
		UserID: cfg.Session.UserID,
	}
	a.Client = client.NewFolioClientWithTimeout(cfg.API.URL, session, cfg.API.GetTimeout())

	if cfg.Cache.Enabled {
		a.Cache = cache.New(cfg.Cache.GetTTL(), maxCacheEntries)
	}

	a.initHandlers()

	logger.Info().
		Str("api_url", cfg.API.URL).
		Str("reference_ticker", cfg.Reference.Ticker).
		Bool("cache", cfg.Cache.Enabled).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.ServerHealthHandler = handlers.NewServerHealthHandler(a.Logger, a.Client)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.LoginHandler = handlers.NewLoginHandler(a.Logger, a.Client)

	a.TransactionsHandler = handlers.NewTransactionsHandler(a.Logger, a.Client, a.Cache)
	a.DuplicateHandler = handlers.NewDuplicateHandler(a.Logger, a.Client, a.Cache, a.Config.Reference.Ticker)
	a.PairsHandler = handlers.NewPairsHandler(a.Logger, a.Client)
	a.PriceSeriesHandler = handlers.NewPriceSeriesHandler(a.Logger, a.Client)
	a.FeesHandler = handlers.NewFeesHandler(a.Logger, a.Client, a.Cache)
	a.EntitiesHandler = handlers.NewEntitiesHandler(a.Logger, a.Client, a.Cache)

	a.MCPHandler = mcp.NewHandler(a.Logger, a.Client, a.Config.Reference.Ticker)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
