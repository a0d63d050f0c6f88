package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_middleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	app := echo.New()
	app.Use(m.middleware())
	app.GET("/examiners/:id", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, ctx.Param("id"))
	})
	app.GET("/teapot", func(ctx echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	for _, path := range []string{"/examiners/1", "/examiners/2", "/teapot", "/nowhere"} {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, promtest.ToFloat64(m.requests.WithLabelValues("/examiners/:id", http.MethodGet, "200")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.requests.WithLabelValues("/teapot", http.MethodGet, "418")))
	assert.Equal(t, 3, promtest.CollectAndCount(m.requests))
	assert.Equal(t, 3, promtest.CollectAndCount(m.duration))
}

func TestMetrics_reportGenerated(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.reportGenerated("history", "pdf")
	m.reportGenerated("history", "pdf")
	m.reportGenerated("all", "xlsx")

	assert.Equal(t, 2.0, promtest.ToFloat64(m.reports.WithLabelValues("history", "pdf")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.reports.WithLabelValues("all", "xlsx")))

	var disabled *Metrics
	assert.NotPanics(t, func() { disabled.reportGenerated("history", "pdf") })
}
