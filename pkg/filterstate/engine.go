package filterstate

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/matst80/slask-facets/pkg/types"
)

const DefaultDebounce = 300 * time.Millisecond

type State int

const (
	Idle State = iota
	PendingDebounce
	AwaitingResponse
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingDebounce:
		return "pending"
	case AwaitingResponse:
		return "awaiting"
	}
	return "unknown"
}

// URLWriter replaces the shareable query string without navigating.
// It is called while the engine holds its lock and must not call back into it.
type URLWriter interface {
	ReplaceQuery(rawQuery string)
}

type URLWriterFunc func(rawQuery string)

func (f URLWriterFunc) ReplaceQuery(rawQuery string) {
	f(rawQuery)
}

type Options struct {
	Debounce time.Duration
	Clock    Clock
	URL      URLWriter
	// OnResult receives every applied response together with the spec it answers.
	// Calls never overlap and a newer result is never followed by an older one.
	OnResult func(spec types.FilterSpec, result *types.QueryResult)
	// OnError receives failures of the latest request. Superseded failures are dropped.
	OnError func(spec types.FilterSpec, err error)
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	State       State
	Current     types.FilterSpec
	Pending     types.FilterSpec
	LastIssued  uint64
	LastApplied uint64
	// InFlight is the id of the latest request still unanswered, zero when none.
	InFlight    uint64
	Discarded   uint64
	Failed      bool
	Result      *types.QueryResult
}

type request struct {
	id     uint64
	spec   types.FilterSpec
	ctx    context.Context
	cancel context.CancelFunc
}

// Engine owns the live filter selection on the client. Edits are coalesced
// by a debounce timer, every issued request carries an increasing id and
// only the response to the latest id is applied.
type Engine struct {
	mu      sync.Mutex
	fetcher Fetcher
	opts    Options
	// deliver is held from deciding a response until its callback returned,
	// callbacks see responses in the order they were applied.
	deliver sync.Mutex

	ctx      context.Context
	stop     context.CancelFunc
	closed   bool
	state    State
	current  types.FilterSpec
	pending  types.FilterSpec
	timer    Timer
	timerGen uint64
	inFlight *request
	failed   bool
	result   *types.QueryResult

	lastIssued  uint64
	lastApplied uint64
	discarded   uint64
}

func NewEngine(fetcher Fetcher, initial types.FilterSpec, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	initial = initial.Clone()
	initial.Sanitize()
	ctx, stop := context.WithCancel(context.Background())
	return &Engine{
		fetcher: fetcher,
		opts:    opts,
		ctx:     ctx,
		stop:    stop,
		state:   Idle,
		current: initial,
		pending: initial.Clone(),
	}
}

// NewEngineFromQuery restores the selection from a shared url query string.
func NewEngineFromQuery(fetcher Fetcher, rawQuery string, opts Options) *Engine {
	spec, err := types.ParseQuery(rawQuery)
	if err != nil {
		log.Printf("ignoring malformed filter query %q: %v", rawQuery, err)
	}
	return NewEngine(fetcher, spec, opts)
}

// Start issues the request for the initial selection right away.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.stopTimerLocked()
	e.pending = e.current.Clone()
	req := e.issueLocked(true)
	e.mu.Unlock()
	go e.run(req)
}

// Update applies an edit to the pending selection. Changing anything but the
// page sends the user back to the first page.
func (e *Engine) Update(edit func(spec *types.FilterSpec)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	next := e.pending.Clone()
	edit(&next)
	next.Sanitize()
	if !next.EqualIgnoringPage(e.pending) {
		next.Page = 1
	}
	e.setPendingLocked(next)
}

// Set replaces the whole pending selection.
func (e *Engine) Set(spec types.FilterSpec) {
	e.Update(func(s *types.FilterSpec) {
		*s = spec.Clone()
	})
}

func (e *Engine) SetPage(page int) {
	e.Update(func(s *types.FilterSpec) {
		s.Page = page
	})
}

func (e *Engine) setPendingLocked(next types.FilterSpec) {
	e.pending = next
	e.stopTimerLocked()
	if next.Equal(e.current) {
		if e.inFlight != nil {
			e.state = AwaitingResponse
		} else {
			e.state = Idle
		}
		return
	}
	e.timerGen++
	gen := e.timerGen
	e.timer = e.opts.Clock.AfterFunc(e.opts.Debounce, func() {
		e.timerFired(gen)
	})
	e.state = PendingDebounce
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	// a timer that already fired but has not taken the lock yet becomes a no-op
	e.timerGen++
}

func (e *Engine) timerFired(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.timerGen {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	req := e.issueLocked(true)
	e.mu.Unlock()
	go e.run(req)
}

// Navigate applies a query string from history navigation. The selection
// is fetched immediately and the url is left as it is.
func (e *Engine) Navigate(rawQuery string) {
	spec, err := types.ParseQuery(rawQuery)
	if err != nil {
		log.Printf("ignoring malformed filter query %q: %v", rawQuery, err)
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.stopTimerLocked()
	e.pending = spec
	if spec.Equal(e.current) && (e.inFlight != nil || e.result != nil) {
		if e.inFlight != nil {
			e.state = AwaitingResponse
		} else {
			e.state = Idle
		}
		e.mu.Unlock()
		return
	}
	req := e.issueLocked(false)
	e.mu.Unlock()
	go e.run(req)
}

// Retry reissues the current selection after the latest request failed.
func (e *Engine) Retry() bool {
	e.mu.Lock()
	if e.closed || !e.failed || e.state != AwaitingResponse {
		e.mu.Unlock()
		return false
	}
	e.pending = e.current.Clone()
	req := e.issueLocked(false)
	e.mu.Unlock()
	go e.run(req)
	return true
}

// issueLocked promotes pending to current and creates the next request.
// Any older request in flight is cancelled, its answer would be discarded anyway.
func (e *Engine) issueLocked(writeURL bool) *request {
	e.current = e.pending.Clone()
	e.lastIssued++
	if e.inFlight != nil {
		e.inFlight.cancel()
	}
	ctx, cancel := context.WithCancel(e.ctx)
	req := &request{
		id:     e.lastIssued,
		spec:   e.current.Clone(),
		ctx:    ctx,
		cancel: cancel,
	}
	e.inFlight = req
	e.failed = false
	e.state = AwaitingResponse
	if writeURL && e.opts.URL != nil {
		e.opts.URL.ReplaceQuery(e.current.Encode())
	}
	return req
}

func (e *Engine) run(req *request) {
	result, err := e.fetcher.Fetch(req.ctx, req.spec)
	e.complete(req, result, err)
}

func (e *Engine) complete(req *request, result *types.QueryResult, err error) {
	e.deliver.Lock()
	defer e.deliver.Unlock()
	e.mu.Lock()
	if e.closed || req.id != e.lastIssued {
		e.discarded++
		e.mu.Unlock()
		req.cancel()
		return
	}
	if err != nil {
		// the request stays the latest one, a retry is up to the caller
		e.failed = true
		e.mu.Unlock()
		log.Printf("filter request %d failed: %v", req.id, err)
		if e.opts.OnError != nil {
			e.opts.OnError(req.spec, err)
		}
		return
	}
	req.cancel()
	e.inFlight = nil
	e.result = result
	e.lastApplied = req.id
	if e.state == AwaitingResponse {
		e.state = Idle
	}
	e.mu.Unlock()
	if e.opts.OnResult != nil {
		e.opts.OnResult(req.spec, result)
	}
}

// Close stops the timer and abandons any request in flight.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopTimerLocked()
	e.state = Idle
	e.inFlight = nil
	e.stop()
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		State:       e.state,
		Current:     e.current.Clone(),
		Pending:     e.pending.Clone(),
		LastIssued:  e.lastIssued,
		LastApplied: e.lastApplied,
		Discarded:   e.discarded,
		Failed:      e.failed,
		Result:      e.result,
	}
	if e.inFlight != nil {
		s.InFlight = e.inFlight.id
	}
	return s
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
