package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "pets.db" || cfg.APIBasePath != "/api/v1" || cfg.GinMode != "release" {
		t.Fatalf("server defaults unexpected: %+v", cfg)
	}
	if cfg.PendingStore != "db" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("pending store defaults unexpected: %q %+v", cfg.PendingStore, cfg.Redis)
	}
	g := cfg.Game
	if g.WorkCooldown != 12*time.Hour || g.DailyCooldown != 24*time.Hour ||
		g.PendingAdoptionTTL != 10*time.Minute || g.PetNameMaxRunes != 32 || g.NameLocale != "und" {
		t.Fatalf("game defaults unexpected: %+v", g)
	}
	if cfg.BotAPIToken != "" || cfg.CORS.AllowedOrigins != nil {
		t.Fatalf("optional fields should be empty: %+v", cfg)
	}
	if cfg.OTEL.Enabled || cfg.OTEL.ServiceName != "go-pet-backend" {
		t.Fatalf("otel defaults unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_Success_Overrides(t *testing.T) {
	// Server timeouts / sizes
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "WARNING") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("SWAGGER_ENABLED", "1")
	t.Setenv("API_BASE_PATH", "bot/")

	// App
	t.Setenv("DB_PATH", "game.sqlite")
	t.Setenv("BOT_API_TOKEN", "s3cret")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("RATE_BURST", "4")

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")
	t.Setenv("IDEMPOTENCY_TTL", "48h")

	// Pending store / game
	t.Setenv("PENDING_STORE", " Redis ")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("WORK_COOLDOWN", "1h")
	t.Setenv("PENDING_ADOPTION_TTL", "90s")
	t.Setenv("NAME_LOCALE", "ru")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/bot" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}
	if cfg.DBPath != "game.sqlite" || cfg.BotAPIToken != "s3cret" || cfg.RateRPS != 2.5 || cfg.RateBurst != 4 {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour || cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}
	if cfg.PendingStore != "redis" || cfg.Redis.Addr != "cache:6380" || cfg.Redis.DB != 2 {
		t.Fatalf("redis unexpected: %q %+v", cfg.PendingStore, cfg.Redis)
	}
	if cfg.Game.WorkCooldown != time.Hour || cfg.Game.PendingAdoptionTTL != 90*time.Second || cfg.Game.NameLocale != "ru" {
		t.Fatalf("game unexpected: %+v", cfg.Game)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	for _, kv := range [][2]string{
		{"RATE_RPS", "x"},
		{"RATE_BURST", "nope"},
		{"READ_TIMEOUT", "soon"},
		{"LOG_PRETTY", "maybe"},
	} {
		t.Run(kv[0], func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil || !containsErr(err, "parse env") {
				t.Fatalf("expected parse error for %s=%q, got %v", kv[0], kv[1], err)
			}
		})
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name, key, val, want string
	}{
		{"invalid LOG_LEVEL", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"empty PORT via spaces", "PORT", "   ", "PORT must not be empty"},
		{"non-positive timeouts", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"shutdown timeout", "SHUTDOWN_TIMEOUT", "0s", "SHUTDOWN_TIMEOUT"},
		{"max header bytes", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"empty DB_PATH", "DB_PATH", "   ", "DB_PATH must not be empty"},
		{"rate rps negative", "RATE_RPS", "-1", "RATE_RPS"},
		{"rate burst", "RATE_BURST", "0", "RATE_BURST"},
		{"hsts max age negative", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"idempotency ttl", "IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
		{"unknown pending store", "PENDING_STORE", "memcached", "PENDING_STORE"},
		{"work cooldown", "WORK_COOLDOWN", "0s", "WORK_COOLDOWN"},
		{"pending ttl", "PENDING_ADOPTION_TTL", "-1m", "PENDING_ADOPTION_TTL"},
		{"name length", "PET_NAME_MAX_RUNES", "0", "PET_NAME_MAX_RUNES"},
		{"otel sample ratio", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Setenv(c.key, c.val)
			if _, err := Load(); err == nil || !containsErr(err, c.want) {
				t.Fatalf("expected %q validation error, got: %v", c.want, err)
			}
		})
	}

	t.Run("redis store needs an address", func(t *testing.T) {
		t.Setenv("PENDING_STORE", "redis")
		t.Setenv("REDIS_ADDR", " ")
		if _, err := Load(); err == nil || !containsErr(err, "REDIS_ADDR") {
			t.Fatalf("expected REDIS_ADDR validation error, got: %v", err)
		}
	})
}

// --- helpers ---

func TestHelpers_compact_and_normalizeBasePath(t *testing.T) {
	if out := compact(nil); out != nil {
		t.Fatalf("compact(nil) should return nil")
	}
	if out := compact([]string{" ", ""}); out != nil {
		t.Fatalf("compact of blanks should return nil, got %#v", out)
	}
	want := []string{"a", "b", "c"}
	if got := compact([]string{" a", " ", "b ", "  c  ", ""}); !reflect.DeepEqual(got, want) {
		t.Fatalf("compact mismatch: got %#v want %#v", got, want)
	}

	if normalizeBasePath("") != "/" {
		t.Fatalf("normalizeBasePath empty -> '/' failed")
	}
	if normalizeBasePath("v1") != "/v1" {
		t.Fatalf("normalizeBasePath missing leading slash failed")
	}
	if normalizeBasePath("/v1/") != "/v1" {
		t.Fatalf("normalizeBasePath trailing slash trim failed")
	}
	if normalizeBasePath(" / ") != "/" {
		t.Fatalf("normalizeBasePath whitespace failed")
	}
}

// Ensure tests don't inherit deployment env.
func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "DB_PATH", "LOG_LEVEL", "PENDING_STORE", "BOT_API_TOKEN", "CORS_ALLOWED_ORIGINS"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
