package abtest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swotlab/swotlab/internal/store"
)

type failingStore struct {
	saves int
}

func (f *failingStore) Load(context.Context, store.Collection, any) (bool, error) {
	return false, errors.New("disk on fire")
}

func (f *failingStore) Save(context.Context, store.Collection, any) error {
	f.saves++
	return errors.New("disk on fire")
}

func (f *failingStore) Close() error { return nil }

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) ObserveEvent(event, variant string) {
	r.events = append(r.events, event+":"+variant)
}

func newMetricsStore(t *testing.T) (*MetricsStore, store.Store) {
	t.Helper()
	st := store.NewFileStore(t.TempDir())
	return LoadMetricsStore(context.Background(), st, zerolog.Nop()), st
}

func TestParseVariant(t *testing.T) {
	for _, raw := range []string{"A", "B"} {
		v, ok := ParseVariant(raw)
		assert.True(t, ok)
		assert.Equal(t, Variant(raw), v)
	}
	for _, raw := range []string{"", "a", "b", "C", " A", "AB"} {
		_, ok := ParseVariant(raw)
		assert.False(t, ok, raw)
	}
}

func TestAssign_Threshold(t *testing.T) {
	tests := []struct {
		draw float64
		want Variant
	}{
		{0, A},
		{0.25, A},
		{0.4999999, A},
		{0.5, B},
		{0.99, B},
	}
	for _, tt := range tests {
		a := NewAssigner(func() float64 { return tt.draw })
		assert.Equal(t, tt.want, a.Assign(), "draw %v", tt.draw)
	}
}

func TestAssign_Fairness(t *testing.T) {
	const n = 10000
	a := NewAssigner(nil)

	countA := 0
	for i := 0; i < n; i++ {
		switch a.Assign() {
		case A:
			countA++
		case B:
		default:
			t.Fatal("assigned an invalid variant")
		}
	}

	assert.InDelta(t, 0.5, float64(countA)/n, 0.02)
}

func TestRecordView_Sequence(t *testing.T) {
	m, _ := newMetricsStore(t)
	ctx := context.Background()

	m.RecordView(ctx, A)
	m.RecordView(ctx, B)
	got := m.RecordView(ctx, A)

	assert.Equal(t, Counters{ViewsA: 2, ViewsB: 1}, got)
	assert.Equal(t, got, m.Snapshot())
}

func TestRecordView_PersistsEverySnapshot(t *testing.T) {
	m, st := newMetricsStore(t)
	ctx := context.Background()
	m.RecordView(ctx, B)

	var stored Counters
	found, err := st.Load(ctx, store.Metrics, &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Counters{ViewsB: 1}, stored)

	reloaded := LoadMetricsStore(ctx, st, zerolog.Nop())
	assert.Equal(t, Counters{ViewsB: 1}, reloaded.Snapshot())
}

func TestRecordConversion(t *testing.T) {
	m, _ := newMetricsStore(t)
	ctx := context.Background()

	v, got := m.RecordConversion(ctx, "A")
	assert.Equal(t, A, v)
	assert.Equal(t, Counters{ConversionsA: 1}, got)

	v, got = m.RecordConversion(ctx, "B")
	assert.Equal(t, B, v)
	assert.Equal(t, Counters{ConversionsA: 1, ConversionsB: 1}, got)
}

func TestRecordConversion_InvalidAttributedToB(t *testing.T) {
	m, _ := newMetricsStore(t)

	for _, raw := range []string{"X", "", "a"} {
		v, _ := m.RecordConversion(context.Background(), raw)
		assert.Equal(t, B, v, raw)
	}

	assert.Equal(t, Counters{ConversionsB: 3}, m.Snapshot())
}

func TestLoadMetricsStore_MissingKeysDefaultToZero(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metrics.json"), []byte(`{"viewsA": 4, "conversionsB": 2}`), 0o644))

	m := LoadMetricsStore(context.Background(), store.NewFileStore(dir), zerolog.Nop())
	assert.Equal(t, Counters{ViewsA: 4, ConversionsB: 2}, m.Snapshot())
}

func TestLoadMetricsStore_CorruptFileStartsFromZero(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metrics.json"), []byte(`{"viewsA": `), 0o644))

	m := LoadMetricsStore(context.Background(), store.NewFileStore(dir), zerolog.Nop())
	assert.Equal(t, Counters{}, m.Snapshot())
}

func TestMetricsStore_WriteFailureKeepsMemoryState(t *testing.T) {
	st := &failingStore{}
	m := LoadMetricsStore(context.Background(), st, zerolog.Nop())

	m.RecordView(context.Background(), A)
	m.RecordConversion(context.Background(), "A")

	assert.Equal(t, Counters{ViewsA: 1, ConversionsA: 1}, m.Snapshot())
	assert.Equal(t, 2, st.saves, "each increment attempts exactly one write, no retries")
}

// Two writers sharing one backing collection overwrite each other's whole
// snapshot: the last save wins and the other increment is lost on disk.
func TestMetricsStore_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	st := store.NewFileStore(t.TempDir())

	first := LoadMetricsStore(ctx, st, zerolog.Nop())
	second := LoadMetricsStore(ctx, st, zerolog.Nop())

	first.RecordView(ctx, A)
	second.RecordView(ctx, B)

	var stored Counters
	_, err := st.Load(ctx, store.Metrics, &stored)
	require.NoError(t, err)
	assert.Equal(t, Counters{ViewsB: 1}, stored)
}

func TestMetricsStore_Observer(t *testing.T) {
	m, _ := newMetricsStore(t)
	obs := &recordingObserver{}
	m.SetObserver(obs)

	m.RecordView(context.Background(), A)
	m.RecordConversion(context.Background(), "nope")

	assert.Equal(t, []string{"view:A", "conversion:B"}, obs.events)
}

func TestCounters_Response(t *testing.T) {
	c := Counters{ViewsA: 1, ViewsB: 2, ConversionsA: 3, ConversionsB: 4}
	assert.Equal(t, MetricsResponse{VariantA: 1, VariantB: 2, ConversionsA: 3, ConversionsB: 4}, c.Response())
}

func TestCounters_ConversionRate(t *testing.T) {
	c := Counters{ViewsA: 4, ConversionsA: 1}
	assert.InDelta(t, 0.25, c.ConversionRate(A), 1e-9)
	assert.Equal(t, 0.0, c.ConversionRate(B))
}

type record struct {
	owner   string
	variant Variant
}

func (r record) Owner() string            { return r.owner }
func (r record) AssignedVariant() Variant { return r.variant }

func TestUserSummary(t *testing.T) {
	all := []record{
		{"u1", A},
		{"u2", B},
		{"u1", A},
		{"u1", B},
		{"u2", A},
	}

	got := UserSummary("u1", all, Counters{ViewsA: 99, ConversionsA: 5, ConversionsB: 7})

	assert.Equal(t, UserMetricsSummary{
		Analyses:     3,
		VariantA:     2,
		VariantB:     1,
		ConversionsA: 5,
		ConversionsB: 7,
	}, got)
}

func TestUserSummary_NoAnalyses(t *testing.T) {
	got := UserSummary[record]("nobody", nil, Counters{ConversionsB: 2})
	assert.Equal(t, UserMetricsSummary{ConversionsB: 2}, got)
}
