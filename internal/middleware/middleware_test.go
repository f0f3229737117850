package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stylemart-be/internal/auth"
	"stylemart-be/internal/metrics"
	"stylemart-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type fakeParser struct {
	claims *auth.Claims
	err    error
}

func (f fakeParser) Parse(string) (*auth.Claims, error) {
	return f.claims, f.err
}

func TestAuth(t *testing.T) {
	t.Run("Missing Token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok, "context should not contain user ID")
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		AuthMiddleware(fakeParser{})(next).ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		AuthMiddleware(fakeParser{err: errors.New("bad token")})(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		tokens := auth.NewTokens("test-secret")
		raw, err := tokens.Generate(1, "jane@example.com", utils.RoleAdmin)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, uint(1), userID)
			assert.Equal(t, utils.RoleAdmin, utils.GetUserRoleFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(tokens)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		AuthMiddleware(fakeParser{err: errors.New("should not be called")})(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAuth(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Authenticated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cart", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), 4, "a@b.c", utils.RoleUser))
		w := httptest.NewRecorder()
		RequireAuth(okHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(utils.RoleAdmin)(okHandler())

	t.Run("Anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/admin/orders", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong role", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/orders", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), 4, "a@b.c", utils.RoleUser))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/orders", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), 4, "a@b.c", utils.RoleAdmin))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCors(t *testing.T) {
	handler := CORS("http://localhost:3000")(okHandler())

	t.Run("OPTIONS request", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/test", nil))

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Normal request", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("Strict tier for checkout", func(t *testing.T) {
		l := NewRateLimiter("")
		h := l.Middleware(okHandler())

		codes := make([]int, 0, burstStrict+1)
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest("POST", "/orders/checkout", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		for _, c := range codes[:burstStrict] {
			assert.Equal(t, http.StatusOK, c)
		}
		assert.Equal(t, http.StatusTooManyRequests, codes[burstStrict])
	})

	t.Run("Tiers and identities are separate buckets", func(t *testing.T) {
		l := NewRateLimiter("")
		h := l.Middleware(okHandler())

		for i := 0; i < burstStrict; i++ {
			req := httptest.NewRequest("POST", "/auth/login", nil)
			req.RemoteAddr = "10.0.0.2:1"
			h.ServeHTTP(httptest.NewRecorder(), req)
		}

		general := httptest.NewRequest("GET", "/cart", nil)
		general.RemoteAddr = "10.0.0.2:1"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, general)
		assert.Equal(t, http.StatusOK, w.Code)

		other := httptest.NewRequest("POST", "/auth/login", nil)
		other.RemoteAddr = "10.0.0.3:1"
		w = httptest.NewRecorder()
		h.ServeHTTP(w, other)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Resolve tier", func(t *testing.T) {
		l := NewRateLimiter("internal-key")

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("X-Service-Auth", "internal-key")
		_, _, tier := l.resolveTier(req)
		assert.Equal(t, "internal", tier)

		req = httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("X-Client-Type", "frontend-heavy")
		_, _, tier = l.resolveTier(req)
		assert.Equal(t, "frontend", tier)

		_, _, tier = l.resolveTier(httptest.NewRequest("GET", "/orders", nil))
		assert.Equal(t, "general", tier)
	})

	t.Run("Identity precedence", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "1.2.3.4:5"
		assert.Equal(t, "ip:1.2.3.4", identity(req, "general"))

		req.Header.Set("X-Device-ID", "dev-1")
		assert.Equal(t, "device:dev-1", identity(req, "general"))
		assert.Equal(t, "ip:1.2.3.4", identity(req, "strict"))

		req = req.WithContext(utils.SetUserContext(req.Context(), 8, "", utils.RoleUser))
		assert.Equal(t, "user:8", identity(req, "general"))
		assert.Equal(t, "user:8", identity(req, "strict"))
	})

	t.Run("Rotating device id does not escape strict tier", func(t *testing.T) {
		l := NewRateLimiter("")
		h := l.Middleware(okHandler())

		limited := 0
		for i := 0; i < 50; i++ {
			req := httptest.NewRequest("POST", "/auth/login", nil)
			req.RemoteAddr = "10.0.0.9:4321"
			req.Header.Set("X-Device-ID", fmt.Sprintf("device-%d", i))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code == http.StatusTooManyRequests {
				limited++
			}
		}

		assert.GreaterOrEqual(t, limited, 50-burstStrict-1)
	})

	t.Run("Evicts idle visitors", func(t *testing.T) {
		l := NewRateLimiter("")
		base := time.Now()
		l.now = func() time.Time { return base }
		l.limiterFor("ip:1:general", limitGeneral, burstGeneral)

		l.now = func() time.Time { return base.Add(visitorTTL + time.Second) }
		l.evictIdle()

		l.mu.Lock()
		defer l.mu.Unlock()
		assert.Empty(t, l.visitors)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/orders/12", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/orders/{orderId}", "404")))
}
