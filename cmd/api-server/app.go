package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"houseoflove/internal/auth"
	"houseoflove/internal/book"
	"houseoflove/internal/cart"
	"houseoflove/internal/catalog"
	"houseoflove/internal/checkout"
	"houseoflove/internal/favorites"
	"houseoflove/internal/preview"
	"houseoflove/internal/profile"
	"houseoflove/internal/storage"
	synchub "houseoflove/internal/sync"
	"houseoflove/internal/workspace"
	"houseoflove/pkg/logger"
	"houseoflove/pkg/utils"
)

// App holds the server's dependencies.
type App struct {
	Config   *utils.Config
	DB       *sql.DB
	DBPath   string
	Storage  storage.LocalStorage
	Catalog  *catalog.Catalog
	Notifier checkout.Notifier
	Log      *zap.Logger

	hub *synchub.Hub
}

func (a *App) Hub() *synchub.Hub {
	if a.hub == nil {
		a.hub = synchub.NewHub(a.Log.Named("ws"))
	}
	return a.hub
}

func (a *App) Router() *gin.Engine {
	if a.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(a.Log))
	if err := router.SetTrustedProxies(a.Config.HTTP.TrustedProxies); err != nil {
		a.Log.Warn("invalid trusted proxies", zap.Error(err))
	}

	hub := a.Hub()
	registry := workspace.New(a.Storage, a.Catalog, a.Log, a.Config.Storage.MaxBooks, a.Config.Storage.MaxProfiles)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": a.DBPath, "storage": a.Config.Storage.Backend})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := a.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         "ready",
			"db":             "ok",
			"profiles":       registry.Profiles(),
			"ws_profiles":    stats.Profiles,
			"ws_connections": stats.Connections,
		})
	})

	router.GET("/ws", synchub.WSHandler(hub, profile.Header))

	// Catalog (public)
	catalog.NewHandler(a.Catalog).RegisterRoutes(router.Group("/catalog"))

	// Profile-scoped state
	cartHandler := cart.NewHandler(registry.CartStore, a.Catalog, hub)
	cartHandler.RegisterRoutes(router.Group("/cart", profile.Middleware()))

	favorites.NewHandler(registry.FavoritesStore, a.Catalog, hub).
		RegisterRoutes(router.Group("/favorites", profile.Middleware()))

	book.NewHandler(registry.BookStore, hub).
		RegisterRoutes(router.Group("/books", profile.Middleware()))

	preview.NewHandler(registry.BookStore, cartHandler, a.Catalog).
		RegisterRoutes(router.Group("/preview", profile.Middleware()))

	// Auth
	tokens := auth.TokenService{
		Secret:   []byte(a.Config.Auth.JWTSecret),
		Issuer:   a.Config.Auth.JWTIssuer,
		Duration: a.Config.Auth.JWTDuration,
	}
	authRepo := auth.NewRepo(a.DB)
	authHandler := auth.NewHandler(auth.NewService(authRepo, tokens, a.Log.Named("auth")))
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Checkout; a bearer token is optional and links the order to the account
	checkoutSvc := checkout.NewService(checkout.NewRepo(a.DB), a.Notifier, hub, a.Log.Named("checkout"))
	checkoutHandler := checkout.NewHandler(checkoutSvc, registry.CartStore)
	checkoutHandler.RegisterRoutes(router.Group("/checkout", profile.Middleware(), auth.OptionalClaims(tokens, authRepo)))

	// Protected routes
	protected := router.Group("/users", authHandler.Middleware())
	authHandler.RegisterUserRoutes(protected)
	checkoutHandler.RegisterUserRoutes(protected)

	return router
}
