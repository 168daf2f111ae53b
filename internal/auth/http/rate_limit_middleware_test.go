package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	authDomain "github.com/allisson/sealed/internal/auth/domain"
)

func setupRateLimitRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.Use(RateLimitMiddleware(ctx, rps, burst, newTestLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func requestAs(router *gin.Engine, identity *authDomain.Identity) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if identity != nil {
		req = req.WithContext(authDomain.WithIdentity(req.Context(), identity))
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := setupRateLimitRouter(t, 10.0, 20)
	identity := authDomain.NewIdentity("user-1", "tenant-a")

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, requestAs(router, identity).Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	router := setupRateLimitRouter(t, 0.5, 2)
	identity := authDomain.NewIdentity("user-1", "tenant-a")

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, requestAs(router, identity).Code)
	}

	w := requestAs(router, identity)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_IndependentLimitsPerCaller(t *testing.T) {
	router := setupRateLimitRouter(t, 0.5, 1)
	userA := authDomain.NewIdentity("user-1", "tenant-a")
	userB := authDomain.NewIdentity("user-1", "tenant-b")

	assert.Equal(t, http.StatusOK, requestAs(router, userA).Code)
	assert.Equal(t, http.StatusTooManyRequests, requestAs(router, userA).Code)

	// Same subject in another tenant is a different caller.
	assert.Equal(t, http.StatusOK, requestAs(router, userB).Code)
}

func TestRateLimitMiddleware_RequiresIdentity(t *testing.T) {
	router := setupRateLimitRouter(t, 10.0, 10)
	assert.Equal(t, http.StatusUnauthorized, requestAs(router, nil).Code)
}

func TestIPRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.Use(IPRateLimitMiddleware(ctx, 0.5, 1, newTestLogger()))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(remote string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = remote
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234"))
}

func TestRateLimiterStore_RemoveIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newRateLimiterStore(ctx, 1, 1)
	store.getLimiter("stale")
	store.removeIdle(time.Now().Add(time.Minute))

	_, ok := store.limiters.Load("stale")
	assert.False(t, ok)
}
