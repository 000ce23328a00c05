package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"indiflow-dashboard-api/config"
	"indiflow-dashboard-api/models"
	"indiflow-dashboard-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAccessRouter(auth *services.AuthService, open bool) *gin.Engine {
	r := gin.New()
	r.Use(DashboardAccess(auth, open))
	r.GET("/dash", func(c *gin.Context) {
		_, hasClaims := c.Get(ClaimsKey)
		c.JSON(http.StatusOK, gin.H{"claims": hasClaims})
	})
	return r
}

func TestDashboardAccess(t *testing.T) {
	auth := services.NewAuthService(config.JWTConfig{Secret: "test", ExpiryHours: 1})
	devToken, _ := auth.GenerateToken(models.User{ID: 1, Role: models.RoleDeveloper})
	userToken, _ := auth.GenerateToken(models.User{ID: 2, Role: models.RoleUser})

	tests := []struct {
		name   string
		open   bool
		target string
		header string
		want   int
	}{
		{"dev flag with open access", true, "/dash?dev=1", "", http.StatusOK},
		{"dashboard flag with open access", true, "/dash?dashboard=1", "", http.StatusOK},
		{"dev flag with open access disabled", false, "/dash?dev=1", "", http.StatusUnauthorized},
		{"anonymous", true, "/dash", "", http.StatusUnauthorized},
		{"wrong flag value", true, "/dash?dev=true", "", http.StatusUnauthorized},
		{"developer bearer token", false, "/dash", "Bearer " + devToken, http.StatusOK},
		{"lower case scheme", false, "/dash", "bearer " + devToken, http.StatusOK},
		{"developer query token", false, "/dash?token=" + devToken, "", http.StatusOK},
		{"regular user token", false, "/dash", "Bearer " + userToken, http.StatusForbidden},
		{"garbage token", false, "/dash", "Bearer nope", http.StatusUnauthorized},
		{"basic auth scheme", false, "/dash", "Basic " + devToken, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAccessRouter(auth, tt.open)
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSetupCORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		origin  string
		want    string
	}{
		{"wildcard", "*", "http://anywhere.test", "*"},
		{"listed origin", "http://a.test, http://b.test", "http://b.test", "http://b.test"},
		{"unlisted origin", "http://a.test", "http://evil.test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(SetupCORS(config.CORSConfig{AllowedOrigins: tt.allowed}))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("logged %d entries, want 3", len(entries))
	}
	want := []string{"debug", "warn", "error"}
	for i, e := range entries {
		if e.Level.String() != want[i] {
			t.Errorf("entry %d level = %s, want %s", i, e.Level, want[i])
		}
	}
}
