package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buspass/internal/domain"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

var testSecret = []byte("test-secret-123")

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", RequireAuth(testSecret), func(c *gin.Context) {
		rc, _ := GetRequestContext(c)
		c.JSON(http.StatusOK, rc)
	})
	r.GET("/admin", RequireAuth(testSecret), RequireRoles("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := services.IssueToken(testSecret, userID, role, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := newTestEngine()
	w := do(r, "/me", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected incoming request id to be kept, got %q", got)
	}
}

func TestRequireAuth_MissingOrBadToken(t *testing.T) {
	r := newTestEngine()
	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", w.Code)
	}
	if w := do(r, "/me", "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", w.Code)
	}
	other, err := services.IssueToken([]byte("another-secret"), 1, "user", time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if w := do(r, "/me", other); w.Code != http.StatusUnauthorized {
		t.Fatalf("foreign signature: expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	r := newTestEngine()
	old, err := services.IssueToken(testSecret, 1, "user", time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if w := do(r, "/me", old); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestRequireAuth_StoresCaller(t *testing.T) {
	r := newTestEngine()
	w := do(r, "/me", token(t, 7, "user"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); body != `{"userId":7,"role":"user"}` {
		t.Fatalf("unexpected caller payload: %s", body)
	}
}

func TestRequireRoles(t *testing.T) {
	r := newTestEngine()
	if w := do(r, "/admin", token(t, 7, "user")); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
	if w := do(r, "/admin", token(t, 1, "admin")); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", w.Code)
	}
}

func TestGetRequestContext_Absent(t *testing.T) {
	if _, ok := GetRequestContext(nil); ok {
		t.Fatalf("expected no caller on nil context")
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(requestContextKey, domain.RequestContext{UserID: 3})
	if rc, ok := GetRequestContext(c); !ok || rc.UserID != 3 {
		t.Fatalf("expected stored caller, got %+v ok=%v", rc, ok)
	}
}
