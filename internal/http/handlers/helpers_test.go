package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/game"
	"github.com/tbourn/go-pet-backend/internal/http/middleware"
	"github.com/tbourn/go-pet-backend/internal/repo"
	"github.com/tbourn/go-pet-backend/internal/services"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type zeroRand struct{}

func (zeroRand) IntN(int) int { return 0 }

type env struct {
	db    *gorm.DB
	clock *game.FakeClock
	r     *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite("file:h_"+uuid.NewString()+"?mode=memory&cache=shared", repo.WithMaxOpenConns(1))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	ctx := context.Background()
	if _, _, err := repo.SeedCatalog(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cat, err := services.LoadCatalog(ctx, db)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	clock := game.NewFakeClock(testNow)
	locks := &services.UserLocks{}
	users := &services.UserService{DB: db, Locks: locks, Clock: clock}
	pets := &services.PetService{
		DB: db, Catalog: cat, Clock: clock, Locks: locks,
		Pending: &services.DBPendingStore{DB: db, Clock: clock},
	}
	economy := &services.EconomyService{DB: db, Clock: clock, Locks: locks, Rand: zeroRand{}}
	shop := &services.ShopService{DB: db, Catalog: cat, Locks: locks}

	return &env{db: db, clock: clock, r: mount(New(users, pets, economy, shop), users)}
}

// mount wires h the way the router does, minus the cross-cutting middleware.
func mount(h *Handlers, reg middleware.UserRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/species", h.ListSpecies)
	r.GET("/shop", h.ListShop)

	api := r.Group("", middleware.Identify())
	if reg != nil {
		api.Use(middleware.EnsureUser(reg))
	}
	api.POST("/me", h.Register)
	api.GET("/me", h.Me)
	api.GET("/pets", h.ListPets)
	api.GET("/pets/:id", h.GetPet)
	api.POST("/pets", h.AdoptPet)
	api.POST("/pets/:id/feed", h.FeedPet)
	api.POST("/adoption", h.BeginAdoption)
	api.GET("/adoption", h.PendingAdoption)
	api.POST("/adoption/name", h.NameAdoption)
	api.DELETE("/adoption", h.CancelAdoption)
	api.POST("/work", h.Work)
	api.POST("/daily", h.ClaimDaily)
	api.POST("/shop/:id/buy", h.BuyItem)
	api.GET("/inventory", h.Inventory)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, uid int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, isStr := body.(string); isStr {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != 0 {
		req.Header.Set(middleware.HeaderUserID, strconv.FormatInt(uid, 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d; want %d (body %s)", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != code {
		t.Fatalf("code = %q; want %q", er.Code, code)
	}
	if er.RequestID == "" {
		t.Fatalf("request_id missing")
	}
	return er
}
