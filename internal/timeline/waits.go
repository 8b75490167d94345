package timeline

import (
	"cmp"
	"slices"

	"fsyncprof/internal/fsynclog"
)

// WaitRecord is an open wait of one thread.
type WaitRecord struct {
	Mode    fsynclog.WaitMode
	Handles []fsynclog.HandleID
	Start   int64
}

// String renders the wait as "<mode> <h1, h2, ...>".
func (w WaitRecord) String() string {
	return w.Mode.String() + " " + fsynclog.JoinHandles(w.Handles)
}

// ResolvedWait is a wait closed by a wake or a timeout.
type ResolvedWait struct {
	TID         fsynclog.ThreadID
	Wait        WaitRecord
	End         int64
	Handle      fsynclog.HandleID // waking handle; empty on timeout
	TimedOut    bool
	Description string
}

// Duration returns End - Start in microseconds.
func (r ResolvedWait) Duration() int64 { return r.End - r.Wait.Start }

// PendingWait is a wait still open when input ended.
type PendingWait struct {
	TID  fsynclog.ThreadID
	Wait WaitRecord
}

// WaitStates holds at most one open wait per thread.
type WaitStates struct {
	open map[fsynclog.ThreadID]WaitRecord
}

// NewWaitStates creates an empty state table.
func NewWaitStates() *WaitStates {
	return &WaitStates{open: make(map[fsynclog.ThreadID]WaitRecord)}
}

// Begin opens a wait for tid.
func (s *WaitStates) Begin(tid fsynclog.ThreadID, mode fsynclog.WaitMode, handles []fsynclog.HandleID, ts int64) error {
	next := WaitRecord{Mode: mode, Handles: handles, Start: ts}
	if open, ok := s.open[tid]; ok {
		return &DuplicateWaitError{TID: tid, Open: open, Next: next}
	}
	s.open[tid] = next
	return nil
}

// Wake closes the open wait of tid because handle was signaled. When the
// thread waited for any of several handles the description also names the
// waking handle.
func (s *WaitStates) Wake(tid fsynclog.ThreadID, handle fsynclog.HandleID, ts int64) (ResolvedWait, error) {
	w, ok := s.open[tid]
	if !ok {
		return ResolvedWait{}, &UnmatchedWakeError{TID: tid, Handle: handle}
	}
	delete(s.open, tid)

	desc := w.String()
	if w.Mode == fsynclog.ModeAny && len(w.Handles) > 1 {
		desc += " woken by " + string(handle)
	}
	return ResolvedWait{
		TID:         tid,
		Wait:        w,
		End:         ts,
		Handle:      handle,
		Description: desc,
	}, nil
}

// Timeout closes the open wait of tid because it expired.
func (s *WaitStates) Timeout(tid fsynclog.ThreadID, ts int64) (ResolvedWait, error) {
	w, ok := s.open[tid]
	if !ok {
		return ResolvedWait{}, &UnmatchedTimeoutError{TID: tid}
	}
	delete(s.open, tid)
	return ResolvedWait{
		TID:         tid,
		Wait:        w,
		End:         ts,
		TimedOut:    true,
		Description: w.String() + " timeout",
	}, nil
}

// Len returns the number of open waits.
func (s *WaitStates) Len() int { return len(s.open) }

// Pending returns the open waits ordered by start time, then thread id.
func (s *WaitStates) Pending() []PendingWait {
	out := make([]PendingWait, 0, len(s.open))
	for tid, w := range s.open {
		out = append(out, PendingWait{TID: tid, Wait: w})
	}
	slices.SortFunc(out, func(a, b PendingWait) int {
		if c := cmp.Compare(a.Wait.Start, b.Wait.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.TID, b.TID)
	})
	return out
}
