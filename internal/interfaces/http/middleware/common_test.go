package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/stock", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func get(router *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	t.Run("mints a UUID when the client sends none", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		var fromCtx string
		router.GET("/ping", func(c *gin.Context) {
			fromCtx = c.GetString("request_id")
			c.Status(http.StatusOK)
		})

		w := get(router, "/ping", nil)

		generated := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, generated)
		assert.NoError(t, uuid.Validate(generated))
		assert.Equal(t, generated, fromCtx)
	})

	t.Run("propagates the client's request id", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := get(router, "/ping", map[string]string{"X-Request-ID": "client-req-7"})
		assert.Equal(t, "client-req-7", w.Header().Get("X-Request-ID"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	t.Run("empty whitelist sets no CORS headers", func(t *testing.T) {
		router := corsRouter(DefaultCORSConfig())

		w := get(router, "/stock", map[string]string{"Origin": "https://pos.example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("whitelisted origin is echoed with credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://backoffice.beanpos.io"}
		router := corsRouter(cfg)

		w := get(router, "/stock", map[string]string{"Origin": "https://backoffice.beanpos.io"})
		assert.Equal(t, "https://backoffice.beanpos.io", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Branch-ID")
	})

	t.Run("unlisted origin gets no headers but the request proceeds", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://backoffice.beanpos.io"}
		router := corsRouter(cfg)

		w := get(router, "/stock", map[string]string{"Origin": "https://evil.example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin without credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"*"}
		router := corsRouter(cfg)

		w := get(router, "/stock", map[string]string{"Origin": "https://anything.example.com"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight always answers 204", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://backoffice.beanpos.io"}
		cfg.MaxAge = time.Hour
		router := corsRouter(cfg)

		req := httptest.NewRequest(http.MethodOptions, "/stock", nil)
		req.Header.Set("Origin", "https://backoffice.beanpos.io")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("preflight from unknown origin still answers 204 without headers", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://backoffice.beanpos.io"}
		router := corsRouter(cfg)

		req := httptest.NewRequest(http.MethodOptions, "/stock", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowOrigins, "origins must be opt-in")
	assert.Contains(t, cfg.AllowHeaders, "X-Actor-ID")
	assert.Contains(t, cfg.ExposeHeaders, "X-Request-ID")
}

func TestSecure(t *testing.T) {
	t.Run("default headers", func(t *testing.T) {
		router := gin.New()
		router.Use(Secure())
		router.GET("/stock", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := get(router, "/stock", nil)

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
		assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=()")
		// HSTS requires HTTPS, off by default
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS when enabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		cfg.HSTSPreload = true

		router := gin.New()
		router.Use(SecureWithConfig(cfg))
		router.GET("/stock", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := get(router, "/stock", nil)
		hsts := w.Header().Get("Strict-Transport-Security")
		assert.Contains(t, hsts, "max-age=31536000")
		assert.Contains(t, hsts, "includeSubDomains")
		assert.Contains(t, hsts, "preload")
	})

	t.Run("CSP can be disabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.CSPEnabled = false

		router := gin.New()
		router.Use(SecureWithConfig(cfg))
		router.GET("/stock", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := get(router, "/stock", nil)
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
	})
}
