package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/travelpay/pkg/logctx"
)

func newRouter(base *zap.SugaredLogger, h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(base), AccessLogMiddleware(base))
	r.GET("/ping", h)
	return r
}

func TestMiddleware_PropagatesClientTraceID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	var seen string
	r := newRouter(base, func(c *gin.Context) {
		seen = logctx.TraceID(c.Request.Context())
		logctx.FromCtx(c.Request.Context(), base).Infow("inside")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "client-trace")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "client-trace", seen)
	require.Equal(t, "client-trace", w.Header().Get(HeaderRequestID))

	inside := logs.FilterMessage("inside").All()
	require.Len(t, inside, 1)
	require.Equal(t, "client-trace", inside[0].ContextMap()["trace_id"])

	access := logs.FilterMessage("http_access").All()
	require.Len(t, access, 1)
	require.Equal(t, "/ping", access[0].ContextMap()["path"])
	require.EqualValues(t, http.StatusNoContent, access[0].ContextMap()["status"])
}

func TestTraceMiddleware_GeneratesWhenMissing(t *testing.T) {
	r := newRouter(zap.NewNop().Sugar(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Len(t, w.Header().Get(HeaderRequestID), 36)
}
