// Package httpapi wires the HTTP transport (Gin) to the game services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, access logging, panic recovery, compression,
// metrics, CORS, security headers, caller identity, rate limiting and
// idempotent replay.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-pet-backend/docs"
	"github.com/tbourn/go-pet-backend/internal/config"
	"github.com/tbourn/go-pet-backend/internal/game"
	"github.com/tbourn/go-pet-backend/internal/http/handlers"
	"github.com/tbourn/go-pet-backend/internal/http/middleware"
	"github.com/tbourn/go-pet-backend/internal/repo"
	"github.com/tbourn/go-pet-backend/internal/services"
	"github.com/tbourn/go-pet-backend/internal/sysutil"
)

// idemStoreShim adapts the repository free functions to
// middleware.IdempotencyStore.
type idemStoreShim struct {
	db  *gorm.DB
	ttl time.Duration
}

// Lookup proxies repo.GetIdempotency; a miss is not an error.
func (s idemStoreShim) Lookup(ctx context.Context, userID int64, scope, key string) (int, []byte, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, err
	}
	return rec.Status, rec.Body, true, nil
}

// Save proxies repo.CreateIdempotency. A duplicate means another request
// already recorded the key, which is fine.
func (s idemStoreShim) Save(ctx context.Context, userID int64, scope, key string, status int, body []byte) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, scope, key, status, body, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Services builds the game services from configuration. A nil pending store
// keeps pending adoptions in the database.
func Services(db *gorm.DB, cat *services.Catalog, pending services.PendingStore, cfg config.Config) (*services.UserService, *services.PetService, *services.EconomyService, *services.ShopService) {
	rules := game.DefaultRules()
	if cfg.Game.WorkCooldown > 0 {
		rules.WorkCooldown = cfg.Game.WorkCooldown
	}
	if cfg.Game.DailyCooldown > 0 {
		rules.DailyCooldown = cfg.Game.DailyCooldown
	}
	if pending == nil {
		pending = &services.DBPendingStore{DB: db}
	}
	locks := &services.UserLocks{}

	users := &services.UserService{DB: db, Locks: locks}
	pets := &services.PetService{
		DB:         db,
		Catalog:    cat,
		Rules:      rules,
		Locks:      locks,
		Pending:    pending,
		PendingTTL: cfg.Game.PendingAdoptionTTL,
		Names: services.NamePolicy{
			MaxRunes: cfg.Game.PetNameMaxRunes,
			Locale:   sysutil.ParseLocale(cfg.Game.NameLocale),
		},
	}
	economy := &services.EconomyService{DB: db, Rules: rules, Locks: locks}
	shop := &services.ShopService{DB: db, Catalog: cat, Locks: locks}
	return users, pets, economy, shop
}

// RegisterRoutes attaches all middleware and HTTP endpoints to r and mounts
// the game API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID, then access Logger, then Recovery
//  3. gzip and the body size limit
//  4. Metrics
//  5. CORS and security headers
//
// Inside the API group: bot token, caller identity, per-player rate limit,
// first-contact registration, then idempotent replay.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cat *services.Catalog, pending services.PendingStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(middleware.LogOptions{}))
	r.Use(middleware.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	users, pets, economy, shop := Services(db, cat, pending, cfg)
	h := handlers.New(users, pets, economy, shop)

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.BotAuth(cfg.BotAPIToken))
	{
		// Catalog, no caller needed
		api.GET("/species", h.ListSpecies)
		api.GET("/shop", h.ListShop)
	}

	player := api.Group("", middleware.Identify())
	if cfg.RateRPS > 0 {
		rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
		player.Use(rl.Handler())
	}
	player.Use(
		middleware.EnsureUser(users),
		middleware.Idempotency(idemStoreShim{db: db, ttl: cfg.IdempotencyTTL}, middleware.IdempotencyOptions{}),
	)
	{
		// Players
		player.POST("/me", h.Register)
		player.GET("/me", h.Me)

		// Pets
		player.GET("/pets", h.ListPets)
		player.GET("/pets/:id", h.GetPet)
		player.POST("/pets", h.AdoptPet)
		player.POST("/pets/:id/feed", h.FeedPet)

		// Two-step adoption
		player.POST("/adoption", h.BeginAdoption)
		player.GET("/adoption", h.PendingAdoption)
		player.POST("/adoption/name", h.NameAdoption)
		player.DELETE("/adoption", h.CancelAdoption)

		// Economy
		player.POST("/work", h.Work)
		player.POST("/daily", h.ClaimDaily)

		// Shop
		player.POST("/shop/:id/buy", h.BuyItem)
		player.GET("/inventory", h.Inventory)
	}
}

// corsMiddleware allows any origin when none are configured, otherwise
// echoes allowlisted origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			middleware.HeaderUserID, middleware.HeaderUserName, middleware.HeaderBotToken,
			middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After", middleware.HeaderIdempotencyReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// ACAO: * even without an Origin header, for health checks and bots.
		force := func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		}
		return []gin.HandlerFunc{force, cors.New(base)}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	echo := func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{echo, cors.New(base)}
}

// limitBody caps request bodies at maxBytes. Reads past the cap fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
