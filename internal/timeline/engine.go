package timeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"fsyncprof/internal/fsynclog"
	"fsyncprof/internal/ring"
	"fsyncprof/internal/traceevent"
)

// Buckets names the timeline lanes events are grouped into.
type Buckets struct {
	Wait   string
	Signal string
	Read   string
}

// DefaultBuckets returns the lanes used by vkd3d-proton profiles.
func DefaultBuckets() Buckets {
	return Buckets{
		Wait:   "fsync wait",
		Signal: "fsync signal",
		Read:   "NtReadFile",
	}
}

// DefaultSuppressMarkers are substrings of thread labels that belong to the
// runtime's own bookkeeping threads. Reads from those threads are dropped.
var DefaultSuppressMarkers = []string{"vkd3d", "wine_"}

// Options configures an Engine.
type Options struct {
	Window  Window
	Buckets Buckets

	// SkipReads drops every NtReadFile record.
	SkipReads bool
	// SuppressMarkers drops reads from threads whose label contains any of
	// these substrings. Nil means DefaultSuppressMarkers.
	SuppressMarkers []string

	// Context is the number of preceding records attached to a LineError.
	Context int

	Logger *zerolog.Logger
}

// Stats counts what an Engine has seen.
type Stats struct {
	Lines   int   // physical lines read
	Bytes   int64 // bytes read
	Matched int   // lines that matched a grammar

	Renames    int
	Waits      int // waits resolved by a wake
	Timeouts   int // waits resolved by a timeout
	Signals    int
	Reads      int
	Emitted    int
	Filtered   int // resolved events outside the window
	Suppressed int // reads dropped by thread markers or SkipReads

	OpenWaits      int // waits still open
	PendingSignals int // signals not yet claimed by a wake
}

// Engine turns classified records into trace events.
type Engine struct {
	names  *ThreadNames
	causes *SignalCauses
	waits  *WaitStates

	window   Window
	buckets  Buckets
	reads    bool
	suppress []string

	sink   traceevent.Sink
	recent *ring.Buffer[fsynclog.Record]
	log    zerolog.Logger
	stats  Stats
}

// New creates an Engine emitting into sink.
func New(sink traceevent.Sink, opts Options) *Engine {
	if sink == nil {
		sink = traceevent.Discard
	}
	buckets := opts.Buckets
	def := DefaultBuckets()
	if buckets.Wait == "" {
		buckets.Wait = def.Wait
	}
	if buckets.Signal == "" {
		buckets.Signal = def.Signal
	}
	if buckets.Read == "" {
		buckets.Read = def.Read
	}
	suppress := opts.SuppressMarkers
	if suppress == nil {
		suppress = DefaultSuppressMarkers
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Engine{
		names:    NewThreadNames(),
		causes:   NewSignalCauses(),
		waits:    NewWaitStates(),
		window:   opts.Window,
		buckets:  buckets,
		reads:    !opts.SkipReads,
		suppress: suppress,
		sink:     sink,
		recent:   ring.New[fsynclog.Record](opts.Context),
		log:      logger,
	}
}

// Process applies one record. Records must arrive in log order.
func (e *Engine) Process(rec fsynclog.Record) error {
	e.stats.Matched++
	var err error
	switch rec.Kind {
	case fsynclog.KindRename:
		e.names.Register(rec.TID, rec.Name)
		e.stats.Renames++
	case fsynclog.KindWaitBegin:
		if verr := e.waits.Begin(rec.TID, rec.Mode, rec.Handles, rec.TS); verr != nil {
			return e.violation(rec, verr)
		}
	case fsynclog.KindWakeTimeout:
		err = e.timeout(rec)
	case fsynclog.KindWake:
		err = e.wake(rec)
	case fsynclog.KindSetEvent, fsynclog.KindReleaseSemaphore:
		err = e.signal(rec)
	case fsynclog.KindReadFile:
		err = e.read(rec)
	}
	if err != nil {
		return err
	}
	e.recent.Push(rec)
	return nil
}

func (e *Engine) timeout(rec fsynclog.Record) error {
	res, err := e.waits.Timeout(rec.TID, rec.TS)
	if err != nil {
		return e.violation(rec, err)
	}
	e.stats.Timeouts++
	// Only the expiry is checked against the window, unlike wakes.
	if !e.window.Contains(rec.TS) {
		e.filtered(rec)
		return nil
	}
	return e.emit(traceevent.Complete(res.Description, e.names.Resolve(rec.TID), e.buckets.Wait, res.Wait.Start, res.End))
}

func (e *Engine) wake(rec fsynclog.Record) error {
	res, err := e.waits.Wake(rec.TID, rec.Handle, rec.TS)
	if err != nil {
		return e.violation(rec, err)
	}
	e.stats.Waits++
	desc := res.Description
	if cause, ok := e.causes.Take(rec.Handle); ok {
		desc += " [signal by " + e.names.Resolve(cause) + "]"
	}
	if !e.window.Overlaps(res.Wait.Start, res.End) {
		e.filtered(rec)
		return nil
	}
	return e.emit(traceevent.Complete(desc, e.names.Resolve(rec.TID), e.buckets.Wait, res.Wait.Start, res.End))
}

func (e *Engine) signal(rec fsynclog.Record) error {
	e.stats.Signals++
	// The cause is tracked even when the signal itself is outside the window,
	// so in-window wakes are still credited.
	e.causes.Record(rec.Handle, rec.TID)
	if !e.window.Contains(rec.TS) {
		e.filtered(rec)
		return nil
	}
	label := "event "
	if rec.Kind == fsynclog.KindReleaseSemaphore {
		label = "semaphore "
	}
	return e.emit(traceevent.Instant(label+string(rec.Handle), e.names.Resolve(rec.TID), e.buckets.Signal, rec.TS))
}

func (e *Engine) read(rec fsynclog.Record) error {
	e.stats.Reads++
	name := e.names.Resolve(rec.TID)
	if !e.reads || e.suppressed(name) {
		e.stats.Suppressed++
		return nil
	}
	if !e.window.Contains(rec.TS) {
		e.filtered(rec)
		return nil
	}
	desc := "handle " + rec.ReadTarget + ", " + strconv.FormatInt(rec.ReadBytes, 10) + " bytes"
	return e.emit(traceevent.Instant(desc, name, e.buckets.Read, rec.TS))
}

func (e *Engine) suppressed(name string) bool {
	for _, marker := range e.suppress {
		if marker != "" && strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

func (e *Engine) emit(ev traceevent.Event) error {
	if err := e.sink.Emit(&ev); err != nil {
		return fmt.Errorf("failed to emit trace event: %w", err)
	}
	e.stats.Emitted++
	return nil
}

func (e *Engine) filtered(rec fsynclog.Record) {
	e.stats.Filtered++
	e.log.Debug().Int("line", rec.Line).Stringer("kind", rec.Kind).Int64("ts", rec.TS).Msg("outside time window")
}

func (e *Engine) violation(rec fsynclog.Record, err error) error {
	return &LineError{
		Line:    rec.Line,
		Text:    rec.Text,
		Context: e.recent.Snapshot(),
		Err:     err,
	}
}

// Finish reports the waits still open at end of input. They are not
// emitted: an interval without an end cannot be drawn.
func (e *Engine) Finish() []PendingWait {
	pending := e.waits.Pending()
	for _, p := range pending {
		e.log.Warn().
			Str("thread", e.names.Resolve(p.TID)).
			Str("wait", p.Wait.String()).
			Int64("start_us", p.Wait.Start).
			Msg("wait still open at end of log")
	}
	return pending
}

// ThreadLabel resolves a thread id with the engine's registry.
func (e *Engine) ThreadLabel(tid fsynclog.ThreadID) string {
	return e.names.Resolve(tid)
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.OpenWaits = e.waits.Len()
	s.PendingSignals = e.causes.Len()
	return s
}
