package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/members/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", Handler())

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/members/:id", "200"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/members/42", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/members/:id", "200"))
	assert.Equal(t, before+1, after)

	LikeToggles.WithLabelValues("like").Inc()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "datingapp_like_toggles_total")
	assert.Contains(t, w.Body.String(), "datingapp_http_request_duration_seconds")
}
