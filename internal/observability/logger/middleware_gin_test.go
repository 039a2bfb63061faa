package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/pistache/internal/observability/context"
	"github.com/smallbiznis/pistache/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddlewareSeedsRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))

	var requestID, correlationID, userAgent string
	r.GET("/ping", func(c *gin.Context) {
		ctx := c.Request.Context()
		requestID = obscontext.RequestIDFromContext(ctx)
		correlationID = obscontext.CorrelationIDFromContext(ctx)
		userAgent = obscontext.UserAgentFromContext(ctx)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-42")
	req.Header.Set(correlation.Header, "cid-42")
	req.Header.Set("User-Agent", "pistachectl")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-42", requestID)
	assert.Equal(t, "cid-42", correlationID)
	assert.Equal(t, "pistachectl", userAgent)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))
	assert.Equal(t, "cid-42", w.Header().Get(correlation.Header))
}

func TestGinMiddlewareGeneratesIdentifiers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, w.Header().Get(correlation.Header))
}

func TestOperationFromSQL(t *testing.T) {
	operationFromSQL := func(sql string) string {
		op, _ := statementTarget(sql)
		return op
	}
	assert.Equal(t, "SELECT", operationFromSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "DELETE", operationFromSQL("delete from product_sizes"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}
