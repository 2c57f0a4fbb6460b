package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/geocoder89/learnhub/internal/auth"
	"github.com/geocoder89/learnhub/internal/cache"
	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/db"
	apphttp "github.com/geocoder89/learnhub/internal/http"
	"github.com/geocoder89/learnhub/internal/http/handlers"
	"github.com/geocoder89/learnhub/internal/learning"
	"github.com/geocoder89/learnhub/internal/repo/sqlite"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	router http.Handler
	store  *sqlite.Store
}

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		StoreDriver:        config.DriverSQLite,
		JWTSecret:          "test-secret-key",
		JWTAccessTTL:       time.Hour,
		AdminEmail:         "admin@example.com",
		AdminPassword:      "admin-password",
		AdminName:          "Test Admin",
		RateLimitPerMinute: 0,
		MaxBodyBytes:       1 << 20,
		CORSOrigins:        []string{"http://localhost:3000"},
	}
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWith(t, nil)
}

// setupAppWith lets a test adjust the config before the router is built.
func setupAppWith(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "app.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := db.EnsureAdminUser(ctx, store, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := db.SeedCourses(ctx, store); err != nil {
		t.Fatalf("seed courses: %v", err)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	memCache := cache.NewMemory(time.Minute)
	catalog := learning.NewCatalog(store, memCache, nil, log)
	reconciler := learning.NewReconciler(store, catalog, log)

	router := apphttp.NewRouter(cfg, apphttp.Deps{
		Log:      log,
		Tokens:   tokens,
		Users:    store,
		Accounts: learning.NewAccounts(store, tokens, bcrypt.MinCost, log),
		Catalog:  catalog,
		Enroller: learning.NewEnrollments(store, catalog, log),
		Profiles: learning.NewProfiles(store),
		Reviews:  learning.NewReviews(store, catalog, log),
		Progress: learning.NewProgress(store, log),
		Admin:    reconciler,
		Jobs:     store,
		Ready:    map[string]handlers.Pinger{"store": store, "cache": memCache},
	})

	return &testApp{router: router, store: store}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v body=%s", v, err, w.Body.String())
	}
	return v
}

// signupAndLogin registers a student and returns their bearer token.
func (a *testApp) signupAndLogin(t *testing.T, name, email string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/signup", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: status %d body=%s", w.Code, w.Body.String())
	}

	return a.login(t, email, "secret1")
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": email, "password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body=%s", w.Code, w.Body.String())
	}

	resp := decode[struct {
		Token string `json:"token"`
	}](t, w)
	return resp.Token
}

type courseJSON struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews"`
	Students int     `json:"students"`
}

func (a *testApp) courseByTitle(t *testing.T, title string) courseJSON {
	t.Helper()

	w := a.do(t, http.MethodGet, "/api/courses", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list courses: status %d", w.Code)
	}
	for _, c := range decode[[]courseJSON](t, w) {
		if c.Title == title {
			return c
		}
	}
	t.Fatalf("course %q not listed", title)
	return courseJSON{}
}
