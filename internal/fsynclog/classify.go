package fsynclog

import (
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

const (
	tsPattern  = `(\d+\.\d+)`
	hexPattern = `([0-9A-Fa-f]+)`
	fsyncTrace = `:trace:fsync:`
)

// grammar pairs a line pattern with the function that turns its submatches
// into a Record. build returns false when the submatches do not form a valid
// record; the line then counts as unmatched.
type grammar struct {
	kind  Kind
	re    *regexp.Regexp
	build func(m []string, rec *Record) bool
}

// grammars is tried in order and the first match wins.
var grammars = []grammar{
	{
		kind:  KindRename,
		re:    regexp.MustCompile(`^.+:` + hexPattern + `:warn:threadname:.*renamed to L"(.+)"$`),
		build: buildRename,
	},
	{
		kind:  KindWaitBegin,
		re:    regexp.MustCompile(tsPattern + `:.+:` + hexPattern + fsyncTrace + `__fsync_wait_objects Waiting for (all|any) of \d+ handles: ([^,]+),.*$`),
		build: buildWaitBegin,
	},
	{
		kind:  KindWakeTimeout,
		re:    regexp.MustCompile(tsPattern + `:.+:` + hexPattern + fsyncTrace + `__fsync_wait_objects Wait timed out\.$`),
		build: buildStamped,
	},
	{
		kind:  KindWake,
		re:    regexp.MustCompile(tsPattern + `:.+:` + hexPattern + fsyncTrace + `__fsync_wait_objects Woken up by handle 0x` + hexPattern + ` .*$`),
		build: buildHandle,
	},
	{
		kind:  KindSetEvent,
		re:    regexp.MustCompile(tsPattern + `:.+:` + hexPattern + fsyncTrace + `fsync_set_event 0x` + hexPattern + `\.$`),
		build: buildHandle,
	},
	{
		kind:  KindReleaseSemaphore,
		re:    regexp.MustCompile(tsPattern + `:.+:` + hexPattern + fsyncTrace + `fsync_release_semaphore 0x` + hexPattern + `,.*$`),
		build: buildHandle,
	},
	{
		kind:  KindReadFile,
		re:    regexp.MustCompile(tsPattern + `:.+:` + hexPattern + `:trace:file:NtReadFile \((.+)\)$`),
		build: buildReadFile,
	},
}

// Classify matches line against the known grammars. The returned Record has
// Line unset. ok is false when no grammar matched.
func Classify(line string) (rec Record, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	// Every grammar mentions either a debug channel or the threadname warning;
	// skip the regexp work for the bulk of unrelated lines.
	if !strings.Contains(line, ":trace:") && !strings.Contains(line, ":warn:threadname:") {
		return Record{}, false
	}
	for _, g := range grammars {
		m := g.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rec = Record{Kind: g.kind, Text: line}
		if !g.build(m, &rec) {
			return Record{}, false
		}
		return rec, true
	}
	return Record{}, false
}

func buildRename(m []string, rec *Record) bool {
	rec.TID = ThreadID(m[1])
	rec.Name = m[2]
	return true
}

// buildStamped fills the timestamp and thread shared by every fsync grammar.
func buildStamped(m []string, rec *Record) bool {
	ts, err := ParseSeconds(m[1])
	if err != nil {
		return false
	}
	rec.TS = ts
	rec.TID = ThreadID(m[2])
	return true
}

func buildWaitBegin(m []string, rec *Record) bool {
	if !buildStamped(m, rec) {
		return false
	}
	switch m[3] {
	case "any":
		rec.Mode = ModeAny
	case "all":
		rec.Mode = ModeAll
	default:
		return false
	}
	rec.Handles = ParseHandleList(m[4])
	return len(rec.Handles) > 0
}

func buildHandle(m []string, rec *Record) bool {
	if !buildStamped(m, rec) {
		return false
	}
	rec.Handle = ParseHandle(m[3])
	return true
}

const (
	readTargetArg = 0
	readLengthArg = 6
)

func buildReadFile(m []string, rec *Record) bool {
	if !buildStamped(m, rec) {
		return false
	}
	args := strings.Split(m[3], ",")
	if len(args) <= readLengthArg {
		return false
	}
	length := strings.TrimPrefix(strings.TrimSpace(args[readLengthArg]), "0x")
	n, err := strconv.ParseUint(length, 16, 64)
	if err != nil {
		return false
	}
	bytes, err := safecast.Conv[int64](n)
	if err != nil {
		return false
	}
	rec.ReadTarget = strings.TrimSpace(args[readTargetArg])
	rec.ReadBytes = bytes
	return true
}
