package fsynclog

// Kind represents the grammar a log line matched.
type Kind uint8

const (
	// KindRename marks a thread display-name change.
	KindRename Kind = iota + 1
	// KindWaitBegin marks a thread starting to block.
	KindWaitBegin
	KindWakeTimeout
	KindWake
	KindSetEvent
	KindReleaseSemaphore
	KindReadFile
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindRename:
		return "rename"
	case KindWaitBegin:
		return "wait"
	case KindWakeTimeout:
		return "timeout"
	case KindWake:
		return "wake"
	case KindSetEvent:
		return "set-event"
	case KindReleaseSemaphore:
		return "release-semaphore"
	case KindReadFile:
		return "read-file"
	default:
		return "unknown"
	}
}

// IsSignal reports whether the kind satisfies pending waits on its handle.
func (k Kind) IsSignal() bool {
	return k == KindSetEvent || k == KindReleaseSemaphore
}

// ThreadID is the hexadecimal thread identifier exactly as printed in the log.
type ThreadID string

// WaitMode tells whether a wait is satisfied by any or by all of its handles.
type WaitMode uint8

const (
	ModeAny WaitMode = iota + 1
	ModeAll
)

// String returns the mode as it appears in the log ("any" or "all").
func (m WaitMode) String() string {
	switch m {
	case ModeAny:
		return "any"
	case ModeAll:
		return "all"
	default:
		return "unknown"
	}
}

// Record is one classified log line. Only the fields relevant to Kind are set.
type Record struct {
	Kind Kind
	Line int    // 1-based line number, filled in by the caller
	Text string // raw line without the line terminator

	TS  int64 // microseconds; zero for KindRename
	TID ThreadID

	Name string // KindRename

	Mode    WaitMode   // KindWaitBegin
	Handles []HandleID // KindWaitBegin, in log order

	Handle HandleID // KindWake, KindSetEvent, KindReleaseSemaphore

	ReadTarget string // KindReadFile: first NtReadFile argument
	ReadBytes  int64  // KindReadFile: seventh NtReadFile argument
}
