package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionMetrics_RecordAction(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewActionMetrics(reg)

	m.RecordAction("signup", "ok")
	m.RecordAction("signup", "conflict")
	m.RecordAction("signup", "conflict")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("signup", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("signup", "conflict")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("login", "ok")))
}

func TestRegisterActiveStores(t *testing.T) {
	reg := prometheus.NewRegistry()
	n := 3
	RegisterActiveStores(reg, func() int { return n })

	expected := `
# HELP binamite_session_active_stores Number of in-memory session stores currently held.
# TYPE binamite_session_active_stores gauge
binamite_session_active_stores 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "binamite_session_active_stores"))
}

func TestHTTPMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Post("/api/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/login", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/api/login", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal), "/metrics must not be counted")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
}

func TestNewRegistry_ServesMetrics(t *testing.T) {
	reg := NewRegistry()
	NewActionMetrics(reg).RecordAction("logout", "ok")

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `binamite_session_actions_total{action="logout",outcome="ok"} 1`)
}
