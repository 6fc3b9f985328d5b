package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swotlab/swotlab/internal/store"
)

type brokenStore struct{ store.Store }

func (brokenStore) Save(context.Context, store.Collection, any) error {
	return errors.New("read-only filesystem")
}

func getMetricsBody(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_New(t *testing.T) {
	m := New()
	assert.NotNil(t, m.RequestsTotal)
	assert.NotNil(t, m.ExperimentEvents)
	assert.NotNil(t, m.StoreWrites)
}

func TestMetrics_ObserveEvent(t *testing.T) {
	m := New()
	m.ObserveEvent("view", "A")
	m.ObserveEvent("view", "A")
	m.ObserveEvent("conversion", "B")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `swotlab_experiment_events_total{event="view",variant="A"} 2`)
	assert.Contains(t, body, `swotlab_experiment_events_total{event="conversion",variant="B"} 1`)
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest("POST /api/generate", 200, 5*time.Millisecond)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `swotlab_http_requests_total{code="200",route="POST /api/generate"} 1`)
	assert.Contains(t, body, `swotlab_http_request_duration_seconds_count{route="POST /api/generate"} 1`)
}

func TestMetrics_ObserveCompetitors(t *testing.T) {
	m := New()
	m.ObserveCompetitors(3)
	assert.Contains(t, getMetricsBody(t, m), "swotlab_competitors_analyzed_total 3")
}

func TestInstrumentStore(t *testing.T) {
	m := New()
	ctx := context.Background()

	ok := InstrumentStore(store.NewFileStore(t.TempDir()), m)
	require.NoError(t, ok.Save(ctx, store.Metrics, map[string]int{"viewsA": 1}))

	var got map[string]int
	found, err := ok.Load(ctx, store.Metrics, &got)
	require.NoError(t, err)
	assert.True(t, found)

	broken := InstrumentStore(brokenStore{}, m)
	assert.Error(t, broken.Save(ctx, store.Users, nil))

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `swotlab_store_writes_total{collection="metrics",result="ok"} 1`)
	assert.Contains(t, body, `swotlab_store_writes_total{collection="users",result="error"} 1`)
}
