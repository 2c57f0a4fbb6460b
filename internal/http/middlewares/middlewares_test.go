package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/learnhub/internal/actorctx"
	"github.com/geocoder89/learnhub/internal/auth"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	switch token {
	case "good":
		return &auth.Claims{UserID: "u1", Role: user.RoleStudent}, nil
	case "ghost":
		return &auth.Claims{UserID: "gone"}, nil
	default:
		return nil, auth.ErrInvalidToken
	}
}

type fakeUsers map[string]user.User

func (f fakeUsers) GetUserByID(_ context.Context, id string) (user.User, error) {
	u, ok := f[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	users := fakeUsers{
		"u1": {ID: "u1", Email: "a@b.co", Role: user.RoleStudent},
	}
	m := NewAuthMiddleware(fakeVerifier{}, users)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		id, _ := actorctx.UserIDFrom(c.Request.Context())
		c.String(http.StatusOK, id)
	})
	r.GET("/admin", m.RequireAuth(), m.RequireRole(user.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuthStatuses(t *testing.T) {
	r := newAuthRouter()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusForbidden},
		{"deleted user", "Bearer ghost", http.StatusUnauthorized},
		{"ok", "Bearer good", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tc.want, w.Body.String())
			}
			if tc.want == http.StatusOK && w.Body.String() != "u1" {
				t.Fatalf("actor id = %q, want u1", w.Body.String())
			}
			if tc.want != http.StatusOK && !strings.Contains(w.Body.String(), `"requestId"`) {
				t.Fatalf("error body missing request id: %s", w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(2, time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	r := gin.New()
	r.GET("/", rl.RateLimiterMiddleware(KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := hit(); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}

	w := hit()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}

	clock = clock.Add(61 * time.Second)
	if w := hit(); w.Code != http.StatusOK {
		t.Fatalf("after window: status %d", w.Code)
	}
}

func TestRequireJSONAllowsBodilessPost(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("bodiless post: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("form post: status %d", w.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, actorctx.RequestIDFrom(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	r.ServeHTTP(w, req)

	if w.Body.String() != "abc-123" || w.Header().Get("X-Request-Id") != "abc-123" {
		t.Fatalf("request id not propagated: body=%q header=%q", w.Body.String(), w.Header().Get("X-Request-Id"))
	}
}

