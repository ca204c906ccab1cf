package compress

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(body string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Brotli(Options{MinLength: 64, Skip: func(c *gin.Context) bool {
		return strings.HasPrefix(c.Request.URL.Path, "/export")
	}}))
	handler := func(c *gin.Context) { c.String(http.StatusOK, body) }
	r.GET("/", handler)
	r.GET("/export.pdf", handler)
	return r
}

func TestLargeBodyIsCompressed(t *testing.T) {
	body := strings.Repeat("teacher directory ", 50)
	r := newRouter(body)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
	r.ServeHTTP(w, req)

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestSmallBodyPassesThrough(t *testing.T) {
	r := newRouter("ok")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "br")
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())
}

func TestSkippedRoute(t *testing.T) {
	body := strings.Repeat("x", 500)
	r := newRouter(body)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/export.pdf", nil)
	req.Header.Set("Accept-Encoding", "br")
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, body, w.Body.String())
}
