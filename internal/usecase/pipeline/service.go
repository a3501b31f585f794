package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
	"github.com/pricewise-in/pricewise/internal/metrics"
	"github.com/pricewise-in/pricewise/internal/usecase/normalize"
	"github.com/pricewise-in/pricewise/internal/usecase/rank"
)

// Outcome is the complete result of one search run.
type Outcome struct {
	Request        domain.SearchRequest
	Ranked         []domain.Product
	OverBudget     []domain.Product
	Excluded       []normalize.Excluded
	Recommendation domain.Recommendation
}

// Service orchestrates a search run end to end: interpret, fetch, normalize,
// rank, then index and recommend concurrently, and finally hand the outcome
// to the assistant session. A new run supersedes any run still in flight.
type Service struct {
	interpreter Interpreter
	source      ListingSource
	indexer     Indexer
	recommender Recommender
	session     SessionStarter
	logger      *zap.Logger

	mu         sync.Mutex
	gen        uint64
	cancelPrev context.CancelFunc
}

// New creates the search pipeline.
func New(
	interpreter Interpreter,
	source ListingSource,
	indexer Indexer,
	recommender Recommender,
	session SessionStarter,
	logger *zap.Logger,
) *Service {
	return &Service{
		interpreter: interpreter,
		source:      source,
		indexer:     indexer,
		recommender: recommender,
		session:     session,
		logger:      logger,
	}
}

// Run executes a search for rawText. Only ErrInvalidQuery and ErrSuperseded
// reach the caller; provider failures downstream degrade into an outcome
// with empty results and a fallback recommendation.
func (s *Service) Run(ctx context.Context, rawText string) (Outcome, error) {
	runCtx, cancel := context.WithCancel(ctx)
	gen := s.supersede(cancel)
	defer s.clear(gen, cancel)

	req, err := s.interpreter.Interpret(runCtx, rawText)
	if err != nil {
		return Outcome{}, err
	}

	listings, err := s.source.Fetch(runCtx, req.Query())
	if err != nil {
		if superseded := s.checkSuperseded(ctx, runCtx); superseded != nil {
			return Outcome{}, superseded
		}
		s.logger.Warn("Listing fetch failed, returning empty outcome", zap.Error(err))
		metrics.FallbacksTotal.WithLabelValues("pipeline").Inc()
		rec := s.recommender.Recommend(runCtx, req, nil)
		outcome := Outcome{Request: req, Recommendation: rec}
		s.session.Begin(req, nil, rec)
		return outcome, nil
	}

	products, excluded := normalize.Normalize(listings)
	ranked, overBudget := rank.Rank(products, req)

	// indexing and recommendation hit independent providers
	var wg sync.WaitGroup
	var rec domain.Recommendation

	wg.Add(2)
	go func() {
		defer wg.Done()
		s.indexer.Reset(runCtx)
		s.indexer.Index(runCtx, ranked)
	}()
	go func() {
		defer wg.Done()
		rec = s.recommender.Recommend(runCtx, req, ranked)
	}()
	wg.Wait()

	if superseded := s.checkSuperseded(ctx, runCtx); superseded != nil {
		return Outcome{}, superseded
	}

	s.session.Begin(req, ranked, rec)

	return Outcome{
		Request:        req,
		Ranked:         ranked,
		OverBudget:     overBudget,
		Excluded:       excluded,
		Recommendation: rec,
	}, nil
}

// supersede cancels the previous run and registers this run's cancel func.
// Returns the generation token identifying this run.
func (s *Service) supersede(cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	prev := s.cancelPrev
	s.cancelPrev = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return gen
}

// clear drops this run's cancel func unless a newer run already replaced it.
func (s *Service) clear(gen uint64, cancel context.CancelFunc) {
	s.mu.Lock()
	if s.gen == gen {
		s.cancelPrev = nil
	}
	s.mu.Unlock()
	cancel()
}

// checkSuperseded distinguishes a run cancelled by a newer run from a caller
// cancellation.
func (s *Service) checkSuperseded(parent, run context.Context) error {
	if run.Err() == nil {
		return nil
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	return domain.ErrSuperseded
}
