package abtest

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/swotlab/swotlab/internal/store"
)

const (
	EventView       = "view"
	EventConversion = "conversion"
)

// Counters are the global experiment counters. They only ever increase.
type Counters struct {
	ViewsA       int64 `json:"viewsA"`
	ViewsB       int64 `json:"viewsB"`
	ConversionsA int64 `json:"conversionsA"`
	ConversionsB int64 `json:"conversionsB"`
}

// MetricsResponse is the public wire shape of Counters.
type MetricsResponse struct {
	VariantA     int64 `json:"variantA"`
	VariantB     int64 `json:"variantB"`
	ConversionsA int64 `json:"conversionsA"`
	ConversionsB int64 `json:"conversionsB"`
}

func (c Counters) Response() MetricsResponse {
	return MetricsResponse{
		VariantA:     c.ViewsA,
		VariantB:     c.ViewsB,
		ConversionsA: c.ConversionsA,
		ConversionsB: c.ConversionsB,
	}
}

func (c Counters) Views(v Variant) int64 {
	if v == A {
		return c.ViewsA
	}
	return c.ViewsB
}

func (c Counters) Conversions(v Variant) int64 {
	if v == A {
		return c.ConversionsA
	}
	return c.ConversionsB
}

// ConversionRate is conversions over views, or 0 with no views.
func (c Counters) ConversionRate(v Variant) float64 {
	views := c.Views(v)
	if views == 0 {
		return 0
	}
	return float64(c.Conversions(v)) / float64(views)
}

// EventObserver is notified after every counter increment.
type EventObserver interface {
	ObserveEvent(event, variant string)
}

// MetricsStore owns the process's counters and writes the full snapshot
// through to the metrics collection after every increment. A failed write is
// logged and dropped; the in-memory counters stay authoritative.
type MetricsStore struct {
	mu       sync.Mutex
	counters Counters

	store    store.Store
	logger   zerolog.Logger
	observer EventObserver
}

// LoadMetricsStore reads persisted counters from st. A missing or unreadable
// collection starts from zero; keys absent from the stored value read as 0.
func LoadMetricsStore(ctx context.Context, st store.Store, logger zerolog.Logger) *MetricsStore {
	m := &MetricsStore{
		store:  st,
		logger: logger.With().Str("component", "metrics").Logger(),
	}

	found, err := st.Load(ctx, store.Metrics, &m.counters)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to load metrics, starting from zero")
		m.counters = Counters{}
	} else if !found {
		m.logger.Info().Msg("no metrics stored yet, starting from zero")
	}
	return m
}

// SetObserver registers o for counter increments. Call before serving.
func (m *MetricsStore) SetObserver(o EventObserver) {
	m.observer = o
}

func (m *MetricsStore) Snapshot() Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters
}

// RecordView increments the view counter of v and persists the snapshot.
// v must be valid; the HTTP layer rejects anything else.
func (m *MetricsStore) RecordView(ctx context.Context, v Variant) Counters {
	m.mu.Lock()
	if v == A {
		m.counters.ViewsA++
	} else {
		m.counters.ViewsB++
	}
	snapshot := m.counters
	m.mu.Unlock()

	m.observe(EventView, v)
	m.persist(ctx, snapshot)
	return snapshot
}

// RecordConversion increments the conversion counter for raw and reports
// which variant it was attributed to. Anything other than "A" or "B" is
// attributed to B and logged.
// TODO: revisit with product whether invalid conversions should be rejected.
func (m *MetricsStore) RecordConversion(ctx context.Context, raw string) (Variant, Counters) {
	v, ok := ParseVariant(raw)
	if !ok {
		m.logger.Warn().Str("variant", raw).Msg("conversion with unknown variant attributed to B")
		v = B
	}

	m.mu.Lock()
	switch v {
	case A:
		m.counters.ConversionsA++
	case B:
		m.counters.ConversionsB++
	}
	snapshot := m.counters
	m.mu.Unlock()

	m.observe(EventConversion, v)
	m.persist(ctx, snapshot)
	return v, snapshot
}

// persist runs outside the lock, so two concurrent increments may reach the
// store out of order and the older snapshot can win.
func (m *MetricsStore) persist(ctx context.Context, snapshot Counters) {
	if err := m.store.Save(ctx, store.Metrics, snapshot); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist metrics")
	}
}

func (m *MetricsStore) observe(event string, v Variant) {
	if m.observer != nil {
		m.observer.ObserveEvent(event, string(v))
	}
}
