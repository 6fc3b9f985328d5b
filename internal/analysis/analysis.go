// Package analysis runs SWOT generation requests and owns the stored
// analyses collection.
package analysis

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swotlab/swotlab/internal/abtest"
	"github.com/swotlab/swotlab/internal/requestid"
	"github.com/swotlab/swotlab/internal/store"
	"github.com/swotlab/swotlab/internal/swot"
)

var ErrNotFound = errors.New("analysis not found")

// Analysis is a stored generation owned by a user.
type Analysis struct {
	ID          string                 `json:"id"`
	OwnerID     string                 `json:"ownerId"`
	Timestamp   time.Time              `json:"timestamp"`
	Competitors []swot.CompetitorInput `json:"competitors"`
	Results     []swot.Result          `json:"results"`
	Variant     abtest.Variant         `json:"variant"`
}

func (a Analysis) Owner() string                   { return a.OwnerID }
func (a Analysis) AssignedVariant() abtest.Variant { return a.Variant }

// GenerateResponse is the wire shape of a generation.
type GenerateResponse struct {
	Variant abtest.Variant `json:"variant"`
	Results []swot.Result  `json:"results"`
}

// CompetitorObserver is told how many competitors each generation analyzed.
type CompetitorObserver interface {
	ObserveCompetitors(n int)
}

type Service struct {
	mu       sync.Mutex
	analyses []Analysis

	store    store.Store
	assigner *abtest.Assigner
	metrics  *abtest.MetricsStore
	observer CompetitorObserver
	now      func() time.Time
	logger   zerolog.Logger
}

// Load reads the analyses collection. An unreadable collection starts empty.
func Load(ctx context.Context, st store.Store, assigner *abtest.Assigner, metrics *abtest.MetricsStore, logger zerolog.Logger) *Service {
	s := &Service{
		store:    st,
		assigner: assigner,
		metrics:  metrics,
		now:      time.Now,
		logger:   logger.With().Str("component", "analysis").Logger(),
	}
	if _, err := st.Load(ctx, store.Analyses, &s.analyses); err != nil {
		s.logger.Warn().Err(err).Msg("failed to load analyses, starting empty")
		s.analyses = nil
	}
	return s
}

func (s *Service) SetObserver(o CompetitorObserver) {
	s.observer = o
}

// SetClock replaces time.Now for timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Generate analyzes competitors for an anonymous caller. Each call draws a
// fresh variant and counts a view for it; nothing is stored.
func (s *Service) Generate(ctx context.Context, competitors []swot.CompetitorInput) GenerateResponse {
	results := s.analyze(competitors)
	v := s.assigner.Assign()
	s.metrics.RecordView(ctx, v)
	return GenerateResponse{Variant: v, Results: results}
}

// Create analyzes competitors, assigns a variant, counts a view and stores
// the analysis under ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, competitors []swot.CompetitorInput) Analysis {
	a := Analysis{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Timestamp:   s.now().UTC(),
		Competitors: competitors,
		Results:     s.analyze(competitors),
		Variant:     s.assigner.Assign(),
	}
	s.metrics.RecordView(ctx, a.Variant)

	s.mu.Lock()
	s.analyses = append(s.analyses, a)
	snapshot := s.snapshot()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.logger.Info().Str("request_id", requestid.FromContext(ctx)).Str("analysis_id", a.ID).Str("variant", string(a.Variant)).Int("competitors", len(competitors)).Msg("analysis created")
	return a
}

// List returns the owner's analyses, newest first.
func (s *Service) List(ownerID string) []Analysis {
	s.mu.Lock()
	var out []Analysis
	for _, a := range s.analyses {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (s *Service) Get(ownerID, id string) (Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(ownerID, id)
	if i < 0 {
		return Analysis{}, ErrNotFound
	}
	return s.analyses[i], nil
}

// Update replaces the competitors and re-runs extraction. The id and the
// assigned variant are kept.
func (s *Service) Update(ctx context.Context, ownerID, id string, competitors []swot.CompetitorInput) (Analysis, error) {
	results := s.analyze(competitors)

	s.mu.Lock()
	i := s.index(ownerID, id)
	if i < 0 {
		s.mu.Unlock()
		return Analysis{}, ErrNotFound
	}
	s.analyses[i].Competitors = competitors
	s.analyses[i].Results = results
	s.analyses[i].Timestamp = s.now().UTC()
	updated := s.analyses[i]
	snapshot := s.snapshot()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	i := s.index(ownerID, id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.analyses = append(s.analyses[:i], s.analyses[i+1:]...)
	snapshot := s.snapshot()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// All returns every stored analysis in insertion order.
func (s *Service) All() []Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.analyses)
}

// Summary rolls up the owner's analyses by variant with the global
// conversion counters.
func (s *Service) Summary(ownerID string) abtest.UserMetricsSummary {
	return abtest.UserSummary(ownerID, s.All(), s.metrics.Snapshot())
}

func (s *Service) analyze(competitors []swot.CompetitorInput) []swot.Result {
	if s.observer != nil {
		s.observer.ObserveCompetitors(len(competitors))
	}
	return swot.Analyze(competitors)
}

// index must be called with s.mu held.
func (s *Service) index(ownerID, id string) int {
	for i, a := range s.analyses {
		if a.ID == id && a.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

func (s *Service) snapshot() []Analysis {
	return append([]Analysis{}, s.analyses...)
}

func (s *Service) persist(ctx context.Context, snapshot []Analysis) {
	if err := s.store.Save(ctx, store.Analyses, snapshot); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist analyses")
	}
}
