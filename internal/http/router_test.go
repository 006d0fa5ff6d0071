package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/config"
	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/http/middleware"
	"github.com/tbourn/go-pet-backend/internal/repo"
	"github.com/tbourn/go-pet-backend/internal/services"
)

func testConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		RateRPS:        100,
		RateBurst:      100,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
		Game: config.GameConfig{
			WorkCooldown:       12 * time.Hour,
			DailyCooldown:      24 * time.Hour,
			PendingAdoptionTTL: 10 * time.Minute,
			PetNameMaxRunes:    32,
			NameLocale:         "und",
		},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite("file:router_"+uuid.NewString()+"?mode=memory&cache=shared", repo.WithMaxOpenConns(1))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if _, _, err := repo.SeedCatalog(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func newTestRouter(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	cat, err := services.LoadCatalog(context.Background(), db)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	r := gin.New()
	RegisterRoutes(r, db, cat, nil, cfg)
	return r, db
}

func send(r http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_HealthMetricsFallbacks(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	w := send(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-all CORS missing")
	}
	if w.Header().Get("X-Request-ID") == "" || w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("pipeline headers missing: %#v", w.Header())
	}

	if w := send(r, http.MethodGet, "/metrics", nil); w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("petbot_http_requests_total")) {
		t.Fatalf("GET /metrics = %d", w.Code)
	}
	if w := send(r, http.MethodGet, "/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", w.Code)
	}
	if w := send(r, http.MethodPost, "/health", nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health = %d", w.Code)
	}
	if w := send(r, http.MethodGet, "/swagger/index.html", nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger mounted while disabled: %d", w.Code)
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ := newTestRouter(t, cfg)

	w := send(r, http.MethodGet, "/swagger/doc.json", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("/pets/{id}/feed")) {
		t.Fatalf("doc.json = %d", w.Code)
	}
}

func TestRegisterRoutes_CORSAllowlist(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"https://bot.example.com"}
	r, _ := newTestRouter(t, cfg)

	w := send(r, http.MethodGet, "/health", map[string]string{"Origin": "https://bot.example.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://bot.example.com" {
		t.Fatalf("ACAO = %q", got)
	}
	w = send(r, http.MethodGet, "/health", map[string]string{"Origin": "https://evil.example.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}

func TestRegisterRoutes_BotToken(t *testing.T) {
	cfg := testConfig()
	cfg.BotAPIToken = "s3cret"
	r, _ := newTestRouter(t, cfg)

	if w := send(r, http.MethodGet, "/api/v1/species", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d", w.Code)
	}
	if w := send(r, http.MethodGet, "/api/v1/species", map[string]string{middleware.HeaderBotToken: "s3cret"}); w.Code != http.StatusOK {
		t.Fatalf("with token = %d", w.Code)
	}
	// Health stays open for probes.
	if w := send(r, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
}

func TestRegisterRoutes_FirstContactAndIdempotentWork(t *testing.T) {
	r, db := newTestRouter(t, testConfig())
	hdr := map[string]string{
		middleware.HeaderUserID:         "5150",
		middleware.HeaderUserName:       "Sam",
		middleware.HeaderIdempotencyKey: "cb:9001",
	}

	first := send(r, http.MethodPost, "/api/v1/work", hdr)
	if first.Code != http.StatusOK {
		t.Fatalf("first work = %d %s", first.Code, first.Body.String())
	}
	var u domain.User
	if err := db.First(&u, 5150).Error; err != nil || u.DisplayName != "Sam" {
		t.Fatalf("player not registered: %+v %v", u, err)
	}

	retry := send(r, http.MethodPost, "/api/v1/work", hdr)
	if retry.Code != http.StatusOK || retry.Body.String() != first.Body.String() {
		t.Fatalf("retry = %d %s", retry.Code, retry.Body.String())
	}
	if retry.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("retry not marked replayed")
	}

	delete(hdr, middleware.HeaderIdempotencyKey)
	if w := send(r, http.MethodPost, "/api/v1/work", hdr); w.Code != http.StatusConflict {
		t.Fatalf("fresh work inside cooldown = %d", w.Code)
	}
}

func TestRegisterRoutes_RateLimitPerPlayer(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 2
	r, _ := newTestRouter(t, cfg)
	hdr := map[string]string{middleware.HeaderUserID: "1"}

	for i := 0; i < 2; i++ {
		if w := send(r, http.MethodGet, "/api/v1/me", hdr); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
	if w := send(r, http.MethodGet, "/api/v1/me", hdr); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d", w.Code)
	}
	if w := send(r, http.MethodGet, "/api/v1/me", map[string]string{middleware.HeaderUserID: "2"}); w.Code != http.StatusOK {
		t.Fatalf("other player = %d", w.Code)
	}
}

func TestRegisterRoutes_Gzip(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	w := send(r, http.MethodGet, "/api/v1/shop", map[string]string{"Accept-Encoding": "gzip"})
	if w.Code != http.StatusOK || w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("shop = %d encoding %q", w.Code, w.Header().Get("Content-Encoding"))
	}
}

func TestIdemStoreShim(t *testing.T) {
	db := newTestDB(t)
	s := idemStoreShim{db: db, ttl: time.Hour}
	ctx := context.Background()

	if _, _, found, err := s.Lookup(ctx, 1, "POST /api/v1/work", "k"); found || err != nil {
		t.Fatalf("miss = %v %v", found, err)
	}
	if err := s.Save(ctx, 1, "POST /api/v1/work", "k", 200, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, 1, "POST /api/v1/work", "k", 200, []byte(`{}`)); err != nil {
		t.Fatalf("duplicate save: %v", err)
	}
	status, body, found, err := s.Lookup(ctx, 1, "POST /api/v1/work", "k")
	if err != nil || !found || status != 200 || string(body) != `{"ok":true}` {
		t.Fatalf("hit = %d %q %v %v", status, body, found, err)
	}

	expired := idemStoreShim{db: db, ttl: -time.Second}
	if err := expired.Save(ctx, 2, "POST /api/v1/daily", "k", 200, nil); err != nil {
		t.Fatalf("save expired: %v", err)
	}
	if _, _, found, _ := s.Lookup(ctx, 2, "POST /api/v1/daily", "k"); found {
		t.Fatalf("expired record replayed")
	}
}

func TestServices_FromConfig(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.Game.WorkCooldown = time.Hour
	cfg.Game.NameLocale = "tr"

	_, pets, economy, _ := Services(db, services.NewCatalog(nil, nil), nil, cfg)
	if economy.Rules.WorkCooldown != time.Hour || economy.Rules.DailyCooldown != 24*time.Hour || economy.Rules.MaxPets != 2 {
		t.Fatalf("rules = %+v", economy.Rules)
	}
	if pets.Names.MaxRunes != 32 || pets.Names.Locale.String() != "tr" || pets.PendingTTL != 10*time.Minute {
		t.Fatalf("pets = %+v", pets)
	}
	if _, ok := pets.Pending.(*services.DBPendingStore); !ok {
		t.Fatalf("default pending store = %T", pets.Pending)
	}
}

func Test_limitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body = %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.Status(http.StatusOK) })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.Status(http.StatusOK) })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/one", "/two", "/api/ping"} {
		if w := send(r, http.MethodGet, p, nil); w.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", p, w.Code)
		}
	}
}
