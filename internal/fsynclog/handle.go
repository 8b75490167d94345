package fsynclog

import "strings"

// HandleID names a synchronization object. Values built with ParseHandle
// never carry a "0x" prefix, so "0x1A" and "1A" compare equal.
type HandleID string

// ParseHandle normalizes a textual handle by stripping one "0x" prefix.
func ParseHandle(s string) HandleID {
	return HandleID(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// ParseHandleList splits a space-separated handle list and normalizes each
// entry. Order and duplicates are preserved.
func ParseHandleList(s string) []HandleID {
	fields := strings.Fields(s)
	handles := make([]HandleID, 0, len(fields))
	for _, f := range fields {
		handles = append(handles, ParseHandle(f))
	}
	return handles
}

// JoinHandles renders handles as "a, b, c".
func JoinHandles(handles []HandleID) string {
	var sb strings.Builder
	for i, h := range handles {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(h))
	}
	return sb.String()
}
