package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/treewarden/internal/config"
	"github.com/example/treewarden/internal/core/bounds"
	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/core/validation"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/ports/secondary"
)

// ErrFetchTimeout is recorded when the watchdog fires before a fetch completes.
var ErrFetchTimeout = errors.New("request timed out")

// ErrNoViewport is returned by Refresh before any viewport was requested.
var ErrNoViewport = errors.New("no viewport requested yet")

// FetchScheduler decides when a viewport change warrants a new fetch and
// keeps at most one point fetch and one orchard fetch in flight.
type FetchScheduler struct {
	geodata  secondary.GeodataClient
	store    *EntityStore
	cfg      config.FetchConfig
	logger   *zap.SugaredLogger
	now      func() time.Time
	watchdog time.Duration // hard deadline of one fetch, past any transport timeout

	mu           sync.Mutex
	generation   uint64
	cancelPoint  context.CancelFunc
	cancelArea   context.CancelFunc
	lastRequest  *primary.FetchRequest // hysteresis reference, reset on failure
	lastViewport *primary.FetchRequest // what Refresh re-runs
	lastOrchards *bounds.Box
	areaWG       sync.WaitGroup
}

// NewFetchScheduler creates a scheduler writing into store.
func NewFetchScheduler(geodata secondary.GeodataClient, store *EntityStore, cfg config.FetchConfig, logger *zap.SugaredLogger) *FetchScheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FetchScheduler{
		geodata:  geodata,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		watchdog: cfg.Watchdog(),
	}
}

// Request fetches trees for the viewport unless it barely moved since the last request.
// A request that gets superseded or cancelled returns Superseded and leaves the store alone.
func (s *FetchScheduler) Request(ctx context.Context, req primary.FetchRequest) (*primary.FetchOutcome, error) {
	if err := req.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bounds: %w", err)
	}

	s.mu.Lock()
	var prev *bounds.Box
	if s.lastRequest != nil {
		b := s.lastRequest.Bounds
		prev = &b
	}
	if !req.Force && !bounds.SignificantChange(prev, req.Bounds, s.cfg.Thresholds()) {
		s.mu.Unlock()
		s.logger.Debugw("Viewport change below threshold, skipping fetch", "bounds", req.Bounds.String())
		return &primary.FetchOutcome{Skipped: true}, nil
	}

	s.generation++
	gen := s.generation
	recorded := req
	s.lastRequest = &recorded
	s.lastViewport = &recorded
	s.cancelInFlight()
	opCtx, cancel := context.WithCancel(ctx)
	s.cancelPoint = cancel
	s.store.Loading.Set(true)
	s.mu.Unlock()
	defer cancel()

	query := secondary.TreeQuery{Bounds: req.Bounds.Expand(s.cfg.BoundsExpansion)}
	filtered := req.Zoom > 0 && req.Zoom < s.cfg.FruitTreeZoomThreshold
	if filtered {
		query.Genera = validation.FruitGenera
	}
	outcome := &primary.FetchOutcome{QueryBounds: query.Bounds, Filtered: filtered}

	results := make(chan fetchResult, 1)
	go func() {
		trees, err := s.geodata.FetchTrees(opCtx, query)
		results <- fetchResult{trees: trees, err: err}
	}()

	s.logger.Debugw("Fetching trees", "generation", gen, "bounds", query.Bounds.String(), "filtered", filtered)
	watchdog := time.NewTimer(s.watchdog)
	res, timedOut := awaitFetch(opCtx, results, watchdog.C)
	watchdog.Stop()
	if timedOut {
		// Abandon the transport. A late result lands in the buffer unread.
		cancel()
	}
	trees, err := res.trees, res.err

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debugw("Discarding superseded tree fetch", "generation", gen)
		outcome.Superseded = true
		return outcome, nil
	}
	s.cancelPoint = nil

	if timedOut {
		err = fmt.Errorf("%w after %s", ErrFetchTimeout, s.watchdog)
	} else if ctx.Err() != nil {
		s.store.Loading.Set(false)
		s.lastRequest = nil
		outcome.Superseded = true
		return outcome, nil
	}

	if err != nil {
		s.store.Trees.Set(entity.Snapshot{})
		s.store.Error.Set(err.Error())
		s.store.Loading.Set(false)
		// Let an identical retry through the hysteresis check.
		s.lastRequest = nil
		s.logger.Warnw("Tree fetch failed", "generation", gen, "error", err)
		return outcome, fmt.Errorf("failed to fetch trees: %w", err)
	}

	s.store.Trees.Set(entity.NewSnapshot(trees))
	queried := query.Bounds
	s.store.LastBounds.Set(&queried)
	s.store.LastUpdated.Set(s.now())
	s.store.Error.Set("")
	s.store.Loading.Set(false)
	outcome.TreeCount = len(trees)
	s.logger.Infow("Trees loaded", "count", len(trees), "generation", gen)

	s.startAreaFetch(context.WithoutCancel(ctx), gen, query.Bounds, req.Force)
	return outcome, nil
}

type fetchResult struct {
	trees []entity.Tree
	err   error
}

// awaitFetch waits for the transport, the watchdog or cancellation, whichever
// comes first. A result that is ready when the watchdog fires still wins.
func awaitFetch(ctx context.Context, results <-chan fetchResult, deadline <-chan time.Time) (fetchResult, bool) {
	select {
	case res := <-results:
		return res, false
	case <-deadline:
	case <-ctx.Done():
	}

	select {
	case res := <-results:
		return res, false
	default:
	}
	if err := ctx.Err(); err != nil {
		return fetchResult{err: err}, false
	}
	return fetchResult{}, true
}

// startAreaFetch launches the orchard fetch for the overscanned box. Caller holds mu.
func (s *FetchScheduler) startAreaFetch(ctx context.Context, gen uint64, pointBox bounds.Box, force bool) {
	box := pointBox.Expand(s.cfg.OrchardOverscan)
	if !force && !bounds.SignificantAreaChange(s.lastOrchards, box, s.cfg.AreaThresholds()) {
		s.logger.Debugw("Orchard box barely moved, keeping orchards", "bounds", box.String())
		return
	}

	areaCtx, cancel := context.WithTimeout(ctx, s.watchdog)
	s.cancelArea = cancel
	s.store.OrchardLoading.Set(true)
	s.areaWG.Add(1)

	go func() {
		defer s.areaWG.Done()
		defer cancel()

		if !s.isCurrent(gen) {
			return
		}
		orchards, err := s.geodata.FetchOrchards(areaCtx, box)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			s.logger.Debugw("Discarding superseded orchard fetch", "generation", gen)
			return
		}
		s.cancelArea = nil
		s.store.OrchardLoading.Set(false)

		if err != nil {
			s.store.OrchardError.Set(err.Error())
			s.logger.Warnw("Orchard fetch failed, keeping last orchards", "error", err)
			return
		}
		s.lastOrchards = &box
		s.store.Orchards.Set(orchards)
		s.store.OrchardError.Set("")
		s.store.OrchardsUpdated.Set(s.now())
		s.logger.Infow("Orchards loaded", "count", len(orchards), "generation", gen)
	}()
}

// cancelInFlight aborts the running fetches. Caller holds mu.
func (s *FetchScheduler) cancelInFlight() {
	if s.cancelPoint != nil {
		s.cancelPoint()
		s.cancelPoint = nil
	}
	if s.cancelArea != nil {
		s.cancelArea()
		s.cancelArea = nil
		s.store.OrchardLoading.Set(false)
	}
}

func (s *FetchScheduler) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

// Refresh re-runs the last request with Force set.
func (s *FetchScheduler) Refresh(ctx context.Context) (*primary.FetchOutcome, error) {
	s.mu.Lock()
	last := s.lastViewport
	s.mu.Unlock()
	if last == nil {
		return nil, ErrNoViewport
	}
	req := *last
	req.Force = true
	return s.Request(ctx, req)
}

// WaitIdle blocks until background orchard fetches have finished.
func (s *FetchScheduler) WaitIdle() {
	s.areaWG.Wait()
}

// ClearError forgets the last recorded fetch errors.
func (s *FetchScheduler) ClearError() {
	s.store.Error.Set("")
	s.store.OrchardError.Set("")
}

// Ensure FetchScheduler implements the interface
var _ primary.FetchService = (*FetchScheduler)(nil)
