// internal/search/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"k8s.io/utils/clock"

	apperrors "petopia-search/internal/common/errors"
	"petopia-search/internal/common/logger"
	"petopia-search/internal/common/metrics"
	"petopia-search/internal/common/observability"
	"petopia-search/internal/models"
	"petopia-search/internal/search/filters"
	"petopia-search/internal/search/query"
)

const (
	DefaultPageSize = 15
	DefaultDebounce = 300 * time.Millisecond
)

// Backend is the subset of the facility API the orchestrator drives.
type Backend interface {
	Search(ctx context.Context, params query.Params) (*models.FacilityPage, error)
	SearchBoundsFiltered(ctx context.Context, params query.Params) ([]models.Facility, error)
	SearchBounds(ctx context.Context, params query.Params) ([]models.Facility, error)
	Favorites(ctx context.Context) ([]models.Facility, error)
	Suggestions(ctx context.Context, params query.Params) ([]string, error)
}

type Config struct {
	PageSize        int
	Debounce        time.Duration
	BoundsLimit     int
	SuggestionLimit int
}

type Option func(*Orchestrator)

// WithClock replaces the real clock used for the free-text debounce.
func WithClock(c clock.WithDelayedExecution) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

// Orchestrator owns the displayed result set. Every change goes through
// Dispatch; fetch completions and debounce expiry re-enter it as internal
// intents so there is a single transition function.
type Orchestrator struct {
	backend Backend
	store   *filters.Store
	cfg     Config
	clock   clock.WithDelayedExecution
	logger  logger.Logger
	handler *apperrors.ErrorHandler
	obs     *observability.Observability

	ctx  context.Context
	stop context.CancelFunc

	// running background goroutines, incremented from the debounce
	// callback concurrently with Wait
	busyMu sync.Mutex
	busy   int
	idle   *sync.Cond

	mu            sync.Mutex
	state         State
	seq           uint64
	cancelFetch   context.CancelFunc
	lastQuery     query.Params
	pageCount     int // TotalPages of the last successful paginated search
	suggestSeq    uint64
	cancelSuggest context.CancelFunc
	debounceToken uint64
	timer         clock.Timer
	subscribers   map[int]func(State)
	nextSubID     int
}

func New(backend Backend, store *filters.Store, cfg Config, log logger.Logger, opts ...Option) *Orchestrator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	ctx, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		backend:     backend,
		store:       store,
		cfg:         cfg,
		clock:       clock.RealClock{},
		logger:      log.WithFields(map[string]interface{}{"component": "orchestrator"}),
		ctx:         ctx,
		stop:        stop,
		subscribers: make(map[int]func(State)),
	}
	o.idle = sync.NewCond(&o.busyMu)
	o.handler = apperrors.NewErrorHandler(o.logger)
	for _, opt := range opts {
		opt(o)
	}

	o.state = State{
		Mode:     IdleMode(),
		Filters:  store.Snapshot(),
		PageSize: cfg.PageSize,
	}
	return o
}

// State returns a copy of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Subscribe registers fn to receive the state after every transition that
// changed it. Versions only grow; fn may see them out of order when intents
// are dispatched concurrently and should drop older ones. fn must not block.
func (o *Orchestrator) Subscribe(fn func(State)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subscribers, id)
		o.mu.Unlock()
	}
}

// Dispatch applies one intent and returns the resulting state. Network calls
// it starts run in the background; their results arrive through Dispatch.
func (o *Orchestrator) Dispatch(intent Intent) State {
	o.mu.Lock()
	if o.state.Closed {
		st := o.state.clone()
		o.mu.Unlock()
		return st
	}

	changed := o.applyLocked(intent)
	if changed {
		o.state.Version++
		o.state.Filters = o.store.Snapshot()
	}
	st := o.state.clone()
	var subs []func(State)
	if changed {
		for _, fn := range o.subscribers {
			subs = append(subs, fn)
		}
	}
	o.mu.Unlock()

	if !isInternal(intent) {
		o.obs.RecordIntent(context.Background(), intent.intentName(), changed)
		o.logger.Debug("intent dispatched", map[string]interface{}{
			"intent":   intent.intentName(),
			"accepted": changed,
			"mode":     st.Mode.String(),
			"version":  st.Version,
		})
	}
	for _, fn := range subs {
		fn(st)
	}
	return st
}

// Wait blocks until no fetch or option load started by Dispatch is running.
// A debounce that has not fired yet is not waited for.
func (o *Orchestrator) Wait() {
	o.busyMu.Lock()
	for o.busy > 0 {
		o.idle.Wait()
	}
	o.busyMu.Unlock()
}

// Close cancels in-flight requests, stops the debounce timer and makes every
// later Dispatch a no-op. It returns once background work has finished.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.state.Closed {
		o.mu.Unlock()
		return
	}
	o.state.Closed = true
	o.state.Loading = false
	o.cancelDebounceLocked()
	o.stop()
	o.mu.Unlock()

	o.Wait()
}

func (o *Orchestrator) applyLocked(intent Intent) bool {
	inFavorites := o.state.Mode.Kind == FavoritesView

	switch in := intent.(type) {
	case SubmitSearch:
		if inFavorites {
			return false
		}
		o.cancelDebounceLocked()
		o.startSearchLocked(0, query.Build(o.store.Snapshot(), 0, o.cfg.PageSize))
		return true

	case ChangeQuery:
		if inFavorites {
			return false
		}
		o.store.SetSearchQuery(in.Text)
		o.scheduleDebounceLocked()
		return true

	case ChangePage:
		if o.state.Mode.Kind != PaginatedSearch {
			return false
		}
		last := o.pageCount
		if last < 1 {
			last = 1
		}
		if in.Page < 0 || in.Page >= last {
			return false
		}
		o.startSearchLocked(in.Page, query.Build(o.store.Snapshot(), in.Page, o.cfg.PageSize))
		return true

	case SearchBounds:
		if inFavorites {
			return false
		}
		if err := in.Bounds.Validate(); err != nil {
			o.logger.Warn("rejecting map bounds", map[string]interface{}{"error": err.Error()})
			return false
		}
		o.cancelDebounceLocked()
		o.startBoundsLocked(in.Bounds)
		return true

	case ShowAll:
		o.cancelDebounceLocked()
		o.startSearchLocked(0, query.Build(o.store.Snapshot(), 0, o.cfg.PageSize))
		return true

	case ShowFavorites:
		o.cancelDebounceLocked()
		o.cancelSuggestionsLocked()
		o.state.Mode = Favorites()
		o.state.Results = ResultSet{}
		o.state.Suggestions = nil
		o.state.LastError = ""
		o.startFavoritesLocked()
		return true

	case SelectRegion:
		if inFavorites {
			return false
		}
		region, changed := o.store.SelectRegion(in.Region)
		if !changed {
			return false
		}
		if region != filters.All {
			o.goTracked(func() { o.store.LoadSubRegions(o.ctx, region) })
		}
		o.refetchForFiltersLocked()
		return true

	case SelectSubRegion:
		return o.applyFilterLocked(inFavorites, func() error { return o.store.SetSubRegion(in.SubRegion) })
	case ToggleCategory:
		return o.applyFilterLocked(inFavorites, func() error { o.store.ToggleCategory(in.Value); return nil })
	case TogglePetSize:
		return o.applyFilterLocked(inFavorites, func() error { o.store.TogglePetSize(in.Value); return nil })
	case SetParking:
		return o.applyFilterLocked(inFavorites, func() error { return o.store.SetParking(in.Value) })
	case SetFacilityType:
		return o.applyFilterLocked(inFavorites, func() error { return o.store.SetFacilityType(in.Value) })
	case ResetFilters:
		return o.applyFilterLocked(inFavorites, func() error { o.store.Reset(); return nil })

	case debounceElapsed:
		if in.token != o.debounceToken {
			return false
		}
		o.timer = nil
		if o.state.Mode.Kind == PaginatedSearch {
			o.refetchIfChangedLocked(o.state.Mode.Page)
		}
		o.startSuggestionsLocked()
		return true

	case fetchCompleted:
		return o.completeFetchLocked(in)

	case suggestionsCompleted:
		return o.completeSuggestionsLocked(in)
	}

	o.logger.Warn("unknown intent", map[string]interface{}{"intent": intent.intentName()})
	return false
}

func (o *Orchestrator) applyFilterLocked(inFavorites bool, mutate func() error) bool {
	if inFavorites {
		return false
	}
	if err := mutate(); err != nil {
		o.logger.Warn("rejecting filter value", map[string]interface{}{"error": err.Error()})
		return false
	}
	o.refetchForFiltersLocked()
	return true
}

// refetchForFiltersLocked restarts paginated search from page 0 after a
// filter change. Other modes only remember the new filters.
func (o *Orchestrator) refetchForFiltersLocked() {
	if o.state.Mode.Kind == PaginatedSearch {
		o.refetchIfChangedLocked(0)
	}
}

// refetchIfChangedLocked fetches page unless the built query equals the one
// last issued.
func (o *Orchestrator) refetchIfChangedLocked(page int) bool {
	params := query.Build(o.store.Snapshot(), page, o.cfg.PageSize)
	if o.lastQuery != nil && params.Equal(o.lastQuery) {
		return false
	}
	o.startSearchLocked(page, params)
	return true
}

func (o *Orchestrator) scheduleDebounceLocked() {
	o.cancelDebounceLocked()
	token := o.debounceToken
	// the callback must not touch the clock or o.mu synchronously
	o.timer = o.clock.AfterFunc(o.cfg.Debounce, func() {
		o.goTracked(func() { o.Dispatch(debounceElapsed{token: token}) })
	})
}

func (o *Orchestrator) cancelDebounceLocked() {
	o.debounceToken++
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) startSearchLocked(page int, params query.Params) {
	o.state.Mode = Paginated(page)
	o.lastQuery = params
	size := o.cfg.PageSize

	o.startFetchLocked(kindSearch, Paginated(page), params, func(ctx context.Context) (ResultSet, error) {
		res, err := o.backend.Search(ctx, params)
		if err != nil {
			return ResultSet{}, err
		}
		return ResultSet{
			Items:      res.Content,
			TotalCount: res.TotalElements,
			Page:       page,
			TotalPages: TotalPages(res.TotalElements, size),
		}, nil
	})
}

func (o *Orchestrator) startBoundsLocked(b models.Bounds) {
	snap := o.store.Snapshot()
	filtered := query.BuildBounds(snap, b, o.cfg.BoundsLimit)
	unfiltered := query.BuildUnfilteredBounds(b, snap.SearchQuery)
	o.lastQuery = nil

	o.startFetchLocked(kindBounds, MapBounds(b), filtered, func(ctx context.Context) (ResultSet, error) {
		items, err := o.backend.SearchBoundsFiltered(ctx, filtered)
		if apperrors.IsNotFound(err) {
			metrics.BoundsFallbacks.Inc()
			o.logger.Info("filtered bounds search unavailable, retrying without filters", map[string]interface{}{
				"query": unfiltered.String(),
			})
			items, err = o.backend.SearchBounds(ctx, unfiltered)
		}
		if err != nil {
			return ResultSet{}, err
		}
		return ResultSet{Items: items, TotalCount: len(items), TotalPages: 1}, nil
	})
}

func (o *Orchestrator) startFavoritesLocked() {
	o.lastQuery = nil
	o.startFetchLocked(kindFavorites, Favorites(), nil, func(ctx context.Context) (ResultSet, error) {
		items, err := o.backend.Favorites(ctx)
		if err != nil {
			return ResultSet{}, err
		}
		return ResultSet{Items: items, TotalCount: len(items), TotalPages: TotalPages(len(items), len(items))}, nil
	})
}

// startFetchLocked supersedes any in-flight result fetch and runs fetch in
// the background. Only the completion carrying the latest sequence number
// is applied.
func (o *Orchestrator) startFetchLocked(kind fetchKind, mode SearchMode, params query.Params, fetch func(context.Context) (ResultSet, error)) {
	o.seq++
	seq := o.seq
	if o.cancelFetch != nil {
		o.cancelFetch()
	}
	ctx, cancel := context.WithCancel(o.ctx)
	o.cancelFetch = cancel
	o.state.Loading = true

	o.logger.Debug("fetch started", map[string]interface{}{
		"kind":  string(kind),
		"seq":   seq,
		"query": params.String(),
	})

	metrics.InFlightFetches.Inc()
	o.goTracked(func() {
		defer metrics.InFlightFetches.Dec()
		defer cancel()

		start := time.Now()
		results, err := fetch(ctx)
		o.obs.RecordFetch(context.Background(), string(kind), time.Since(start), outcomeOf(err))
		o.Dispatch(fetchCompleted{seq: seq, kind: kind, mode: mode, results: results, err: err})
	})
}

func (o *Orchestrator) completeFetchLocked(ev fetchCompleted) bool {
	if ev.seq != o.seq {
		metrics.StaleResponsesDiscarded.WithLabelValues(string(ev.kind)).Inc()
		o.logger.Debug("discarding superseded response", map[string]interface{}{
			"kind":   string(ev.kind),
			"seq":    ev.seq,
			"latest": o.seq,
		})
		return false
	}
	o.cancelFetch = nil
	o.state.Loading = false

	if ev.err != nil {
		metrics.SearchRequests.WithLabelValues(string(ev.kind), "failure").Inc()
		o.state.Results = ResultSet{}
		o.state.LastError = o.handler.Handle(errorCodeFor(ev.kind), ev.err, map[string]interface{}{
			"kind": string(ev.kind),
			"mode": o.state.Mode.String(),
		})
		if ev.kind == kindSearch {
			o.lastQuery = nil
		}
		return true
	}

	metrics.SearchRequests.WithLabelValues(string(ev.kind), "success").Inc()
	if ev.kind == kindSearch {
		o.pageCount = ev.results.TotalPages
	}
	o.state.Mode = ev.mode
	o.state.Results = ev.results
	o.state.LastError = ""
	return true
}

// cancelSuggestionsLocked aborts the in-flight suggestion request and makes
// its completion stale.
func (o *Orchestrator) cancelSuggestionsLocked() {
	o.suggestSeq++
	if o.cancelSuggest != nil {
		o.cancelSuggest()
		o.cancelSuggest = nil
	}
}

func (o *Orchestrator) startSuggestionsLocked() {
	o.cancelSuggestionsLocked()

	text := strings.TrimSpace(o.store.Snapshot().SearchQuery)
	if text == "" || o.cfg.SuggestionLimit <= 0 {
		o.state.Suggestions = nil
		return
	}

	seq := o.suggestSeq
	params := query.BuildSuggestions(text, o.cfg.SuggestionLimit)
	ctx, cancel := context.WithCancel(o.ctx)
	o.cancelSuggest = cancel

	o.goTracked(func() {
		defer cancel()
		start := time.Now()
		list, err := o.backend.Suggestions(ctx, params)
		o.obs.RecordFetch(context.Background(), string(kindSuggestions), time.Since(start), outcomeOf(err))
		o.Dispatch(suggestionsCompleted{seq: seq, suggestions: list, err: err})
	})
}

func (o *Orchestrator) completeSuggestionsLocked(ev suggestionsCompleted) bool {
	if ev.seq != o.suggestSeq {
		metrics.StaleResponsesDiscarded.WithLabelValues(string(kindSuggestions)).Inc()
		return false
	}
	o.cancelSuggest = nil
	if ev.err != nil {
		// typeahead is best effort and never raises a notification
		o.logger.Warn("suggestions unavailable", map[string]interface{}{
			"error": apperrors.NewOperationError(apperrors.ErrCodeSuggestionsFailed, ev.err).Error(),
		})
		o.state.Suggestions = nil
		return true
	}
	o.state.Suggestions = ev.suggestions
	return true
}

func (o *Orchestrator) goTracked(f func()) {
	o.busyMu.Lock()
	o.busy++
	o.busyMu.Unlock()

	go func() {
		defer func() {
			o.busyMu.Lock()
			o.busy--
			if o.busy == 0 {
				o.idle.Broadcast()
			}
			o.busyMu.Unlock()
		}()
		f()
	}()
}

func errorCodeFor(kind fetchKind) apperrors.ErrorCode {
	switch kind {
	case kindBounds:
		return apperrors.ErrCodeBoundsSearchFailed
	case kindFavorites:
		return apperrors.ErrCodeFavoritesLoadFailed
	case kindSuggestions:
		return apperrors.ErrCodeSuggestionsFailed
	}
	return apperrors.ErrCodeSearchFailed
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	}
	return "failure"
}

func isInternal(intent Intent) bool {
	switch intent.(type) {
	case debounceElapsed, fetchCompleted, suggestionsCompleted:
		return true
	}
	return false
}
