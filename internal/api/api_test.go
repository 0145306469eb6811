package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/po-analysis/backend-go/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(nil, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	_, err := uuid.Parse(w.Header().Get(middleware.RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestIDIsPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestRecoveryReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(nil, nil)
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " ", "https://c.example"})
	assert.False(t, allowAll)
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, origins)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(nil, []string{"https://app.example"})

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}
