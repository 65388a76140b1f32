// Package api assembles the pricelens HTTP surface: routes, middleware,
// and the OpenAPI layer.
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/pricelens/api/openapi"
	"github.com/donaldgifford/pricelens/internal/api/handlers"
	"github.com/donaldgifford/pricelens/internal/api/middleware"
	"github.com/donaldgifford/pricelens/internal/store"
	"github.com/donaldgifford/pricelens/internal/wishlist"
)

// RouterConfig holds the collaborators the router exposes over HTTP.
type RouterConfig struct {
	Store     store.Store
	Tracker   *wishlist.Tracker
	Searcher  handlers.Searcher
	Extractor handlers.KeywordExtractor
	Logger    *slog.Logger
}

// NewRouter builds the Echo instance with all routes and middleware wired.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestLog(cfg.Logger),
		middleware.Metrics(),
	)

	healthHandler := handlers.NewHealthHandler(cfg.Store)
	e.GET("/healthz", healthHandler.Healthz)
	e.GET("/readyz", healthHandler.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	searchHandler := handlers.NewSearchHandler(cfg.Searcher, cfg.Extractor, cfg.Store, cfg.Logger)

	// Text search goes through Huma for request validation and OpenAPI.
	humaAPI := humaecho.New(e, huma.DefaultConfig("pricelens", "1.0.0"))
	handlers.RegisterSearchRoutes(humaAPI, searchHandler)
	openapi.RegisterRoutes(e)

	wishlistHandler := handlers.NewWishlistHandler(cfg.Tracker)
	historyHandler := handlers.NewHistoryHandler(cfg.Store)

	g := e.Group("/api/v1", middleware.RequireUser())
	g.POST("/search/image", searchHandler.SearchImage)

	g.POST("/wishlist", wishlistHandler.Track)
	g.GET("/wishlist", wishlistHandler.List)
	g.GET("/wishlist/:id", wishlistHandler.Get)
	g.PUT("/wishlist/:id/target", wishlistHandler.SetTarget)
	g.POST("/wishlist/:id/ack", wishlistHandler.Acknowledge)
	g.POST("/wishlist/:id/refresh", wishlistHandler.Refresh)
	g.DELETE("/wishlist/:id", wishlistHandler.Remove)

	g.GET("/history", historyHandler.List)

	return e
}
