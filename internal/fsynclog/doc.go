// Package fsynclog classifies lines of a Wine/Proton fsync debug log.
//
// The log is produced with PROTON_LOG=+fsync,+microsecs (or the equivalent
// WINEDEBUG=+fsync,+timestamp,+pid,+tid,+threadname,+microsecs with
// WINEFSYNC=1). Every line is matched against a fixed, ordered table of
// grammars:
//
//   - KindRename: a thread was given a display name
//   - KindWaitBegin: a thread started waiting on one or more handles
//   - KindWakeTimeout: the wait expired without any handle being signaled
//   - KindWake: the wait ended because a specific handle was signaled
//   - KindSetEvent, KindReleaseSemaphore: a handle was signaled
//   - KindReadFile: NtReadFile was issued
//
// Classify never fails; lines that match nothing (backtraces, other debug
// channels, truncated lines) are reported as not matched. The package keeps
// no state between lines.
package fsynclog
