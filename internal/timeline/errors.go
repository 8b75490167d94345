package timeline

import (
	"errors"
	"fmt"

	"fsyncprof/internal/fsynclog"
)

var (
	// ErrDuplicateWait is matched by every *DuplicateWaitError.
	ErrDuplicateWait = errors.New("duplicate wait")
	// ErrUnmatchedWake is matched by *UnmatchedWakeError and
	// *UnmatchedTimeoutError.
	ErrUnmatchedWake = errors.New("unmatched wake")
)

// DuplicateWaitError reports a wait that began while the thread already had
// an open wait.
type DuplicateWaitError struct {
	TID  fsynclog.ThreadID
	Open WaitRecord // the wait that is still open
	Next WaitRecord // the rejected wait
}

func (e *DuplicateWaitError) Error() string {
	return fmt.Sprintf("thread %s has a wait state already (%s since %d us), cannot begin %s",
		e.TID, e.Open, e.Open.Start, e.Next)
}

func (e *DuplicateWaitError) Unwrap() error { return ErrDuplicateWait }

// UnmatchedWakeError reports a wake for a thread with no open wait.
type UnmatchedWakeError struct {
	TID    fsynclog.ThreadID
	Handle fsynclog.HandleID
}

func (e *UnmatchedWakeError) Error() string {
	return fmt.Sprintf("thread %s was woken up by handle %s, but there is no wait state", e.TID, e.Handle)
}

func (e *UnmatchedWakeError) Unwrap() error { return ErrUnmatchedWake }

// UnmatchedTimeoutError reports a wait timeout for a thread with no open
// wait.
type UnmatchedTimeoutError struct {
	TID fsynclog.ThreadID
}

func (e *UnmatchedTimeoutError) Error() string {
	return fmt.Sprintf("thread %s timed out, but there is no wait state", e.TID)
}

func (e *UnmatchedTimeoutError) Unwrap() error { return ErrUnmatchedWake }

// LineError ties a protocol violation to the log line that triggered it.
type LineError struct {
	Line    int
	Text    string
	Context []fsynclog.Record // records processed just before Line, oldest first
	Err     error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }
