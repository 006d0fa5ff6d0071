package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-backend/internal/domain"
)

type fakeRegistrar struct {
	calls   int
	lastID  int64
	name    string
	created bool
	err     error
}

func (f *fakeRegistrar) GetOrCreate(_ context.Context, id int64, name string) (*domain.User, bool, error) {
	f.calls++
	f.lastID, f.name = id, name
	if f.err != nil {
		return nil, false, f.err
	}
	return &domain.User{ID: id, DisplayName: name}, f.created, nil
}

func identityRouter(token string, reg UserRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), BotAuth(token), Identify())
	if reg != nil {
		r.Use(EnsureUser(reg))
	}
	r.GET("/me", func(c *gin.Context) {
		id, _ := UserIDFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "new": IsNewUser(c)})
	})
	return r
}

func call(r http.Handler, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json %q: %v", w.Body.String(), err)
	}
	if asString(body["request_id"]) == "" {
		t.Fatalf("request_id missing: %v", body)
	}
	return asString(body["code"])
}

func TestBotAuth(t *testing.T) {
	r := identityRouter("tok", nil)

	if w := call(r, map[string]string{HeaderUserID: "1"}); w.Code != http.StatusUnauthorized || errCode(t, w) != "unauthorized" {
		t.Fatalf("missing token = %d %s", w.Code, w.Body.String())
	}
	if w := call(r, map[string]string{HeaderUserID: "1", HeaderBotToken: "nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token = %d", w.Code)
	}
	if w := call(r, map[string]string{HeaderUserID: "1", HeaderBotToken: "tok"}); w.Code != http.StatusOK {
		t.Fatalf("good token = %d", w.Code)
	}

	open := identityRouter("", nil)
	if w := call(open, map[string]string{HeaderUserID: "1"}); w.Code != http.StatusOK {
		t.Fatalf("disabled check = %d", w.Code)
	}
}

func TestIdentify(t *testing.T) {
	r := identityRouter("", nil)

	for _, bad := range []string{"", "abc", "0", "-5", "1.5"} {
		w := call(r, map[string]string{HeaderUserID: bad})
		if w.Code != http.StatusUnauthorized || errCode(t, w) != "unauthorized" {
			t.Fatalf("X-User-ID=%q -> %d", bad, w.Code)
		}
	}

	w := call(r, map[string]string{HeaderUserID: " 9007199254740993 "})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.ID != 9007199254740993 {
		t.Fatalf("id = %d", body.ID)
	}
}

func TestEnsureUser(t *testing.T) {
	reg := &fakeRegistrar{created: true}
	r := identityRouter("", reg)

	w := call(r, map[string]string{HeaderUserID: "42", HeaderUserName: "  Ann  "})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if reg.calls != 1 || reg.lastID != 42 || reg.name != "Ann" {
		t.Fatalf("registrar got %+v", reg)
	}
	if !strings.Contains(w.Body.String(), `"new":true`) {
		t.Fatalf("new-user flag missing: %s", w.Body.String())
	}

	reg.created = false
	w = call(r, map[string]string{HeaderUserID: "42"})
	if !strings.Contains(w.Body.String(), `"new":false`) {
		t.Fatalf("returning user flagged new: %s", w.Body.String())
	}

	failing := &fakeRegistrar{err: errors.New("db down")}
	w = call(identityRouter("", failing), map[string]string{HeaderUserID: "42"})
	if w.Code != http.StatusInternalServerError || errCode(t, w) != "internal_error" {
		t.Fatalf("registrar failure = %d %s", w.Code, w.Body.String())
	}
}

func TestEnsureUser_WithoutIdentify(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), EnsureUser(&fakeRegistrar{}))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := call(r, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUserIDFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := UserIDFrom(c); ok {
		t.Fatalf("unset id reported")
	}
	c.Set(ctxKeyUserID, "42")
	if _, ok := UserIDFrom(c); ok {
		t.Fatalf("string id accepted")
	}
	c.Set(ctxKeyUserID, int64(0))
	if _, ok := UserIDFrom(c); ok {
		t.Fatalf("zero id accepted")
	}
	c.Set(ctxKeyUserID, int64(5))
	if id, ok := UserIDFrom(c); !ok || id != 5 {
		t.Fatalf("id = %d ok=%v", id, ok)
	}
}
