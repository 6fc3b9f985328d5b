package cli

import (
	"context"
	"fmt"

	"github.com/swotlab/swotlab/internal/abtest"
	"github.com/swotlab/swotlab/internal/account"
	"github.com/swotlab/swotlab/internal/analysis"
	"github.com/swotlab/swotlab/internal/store"
	"github.com/swotlab/swotlab/internal/telemetry"
)

type services struct {
	store    store.Store
	metrics  *abtest.MetricsStore
	accounts *account.Service
	analyses *analysis.Service
	assigner *abtest.Assigner
}

// withServices opens the store, loads every collection, executes the
// function, and handles cleanup. A non-nil tel instruments the store and
// receives experiment events.
func (a *app) withServices(ctx context.Context, tel *telemetry.Metrics, fn func(*services) error) error {
	st, err := store.Open(a.cfg.Backend, a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	var port store.Store = st
	if tel != nil {
		port = telemetry.InstrumentStore(st, tel)
	}

	metrics := abtest.LoadMetricsStore(ctx, port, a.logger)
	assigner := abtest.NewAssigner(nil)
	svc := &services{
		store:    st,
		metrics:  metrics,
		accounts: account.Load(ctx, port, a.logger, account.WithSessionTTL(a.cfg.SessionTTL)),
		analyses: analysis.Load(ctx, port, assigner, metrics, a.logger),
		assigner: assigner,
	}
	if tel != nil {
		svc.metrics.SetObserver(tel)
		svc.analyses.SetObserver(tel)
	}

	return fn(svc)
}

func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", formatNumber(n/1000), n%1000)
}

func formatPercent(rate float64) string {
	if rate == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", rate*100)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
