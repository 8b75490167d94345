package traceevent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatFragments Format = iota // JSON objects with trailing commas
	FormatDocument                // {"traceEvents":[...]}
	FormatNDJSON                  // newline-delimited JSON
	FormatMsgpack                 // msgpack stream
)

// String returns the string representation of Format.
func (f Format) String() string {
	switch f {
	case FormatFragments:
		return "fragments"
	case FormatDocument:
		return "document"
	case FormatNDJSON:
		return "ndjson"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fragments":
		return FormatFragments, nil
	case "document", "json":
		return FormatDocument, nil
	case "ndjson":
		return FormatNDJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return FormatFragments, fmt.Errorf("invalid output format: %q (expected: fragments|document|ndjson|msgpack)", s)
	}
}

// FormatEvent encodes a single event. For the JSON formats the result has no
// separator; StreamWriter adds commas and newlines.
func FormatEvent(ev *Event, format Format) ([]byte, error) {
	if format == FormatMsgpack {
		return msgpack.Marshal(ev)
	}
	return formatJSON(ev)
}

// formatJSON keeps the key order name, ph, tid, pid, ts, dur. Instants carry
// no dur key; intervals always do, even when it is zero.
func formatJSON(ev *Event) ([]byte, error) {
	type instantEvent struct {
		Name   string `json:"name"`
		Phase  Phase  `json:"ph"`
		Thread string `json:"tid"`
		Bucket string `json:"pid"`
		TS     int64  `json:"ts"`
	}
	type completeEvent struct {
		instantEvent
		Dur int64 `json:"dur"`
	}

	base := instantEvent{
		Name:   ev.Name,
		Phase:  ev.Phase,
		Thread: ev.Thread,
		Bucket: ev.Bucket,
		TS:     ev.TS,
	}
	var v any = base
	if ev.Phase == PhaseComplete {
		v = completeEvent{instantEvent: base, Dur: ev.Dur}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
