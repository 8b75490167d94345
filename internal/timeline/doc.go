// Package timeline correlates classified fsync log records into wait
// intervals and signal instants.
//
// An Engine owns all per-log state:
//
//   - ThreadNames maps thread ids to display labels from rename records
//   - SignalCauses remembers which thread last signaled each handle
//   - WaitStates holds at most one open wait per thread
//
// Records must be processed strictly in log order. A wait that begins while
// the same thread already waits, or a wake/timeout with no open wait, means
// the log is truncated or corrupt; Process then returns a *LineError wrapping
// a *DuplicateWaitError, *UnmatchedWakeError or *UnmatchedTimeoutError and
// the run must stop. Every other anomaly is tolerated.
//
// Run reads and classifies lines on one goroutine and feeds the engine on
// another, keeping the engine itself single-threaded.
package timeline
