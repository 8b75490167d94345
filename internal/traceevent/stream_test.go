package traceevent

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func sampleEvents() []Event {
	return []Event{
		Complete("any 10 [signal by 0028]", "0024 (Worker)", "fsync wait", 1_000_000, 1_000_800),
		Instant("event 10", "0028", "fsync signal", 1_000_500),
		Complete("all 18", "0030", "fsync wait", 2_000_000, 2_000_000),
	}
}

func writeAll(t *testing.T, format Format, events []Event) string {
	t.Helper()
	var buf bytes.Buffer
	sw, err := NewStreamWriter(&buf, format)
	require.NoError(t, err)
	require.NoError(t, Replay(events, sw))
	require.NoError(t, sw.Close())
	require.NoError(t, sw.Close())
	return buf.String()
}

func TestFragmentsFormat(t *testing.T) {
	got := writeAll(t, FormatFragments, sampleEvents())
	want := `{"name":"any 10 [signal by 0028]","ph":"X","tid":"0024 (Worker)","pid":"fsync wait","ts":1000000,"dur":800},
{"name":"event 10","ph":"i","tid":"0028","pid":"fsync signal","ts":1000500},
{"name":"all 18","ph":"X","tid":"0030","pid":"fsync wait","ts":2000000,"dur":0},
`
	require.Equal(t, want, got)
}

func TestFragmentsAppendToExistingArray(t *testing.T) {
	// A vkd3d-proton queue profile is an open JSON array; appending fragments
	// and a closing marker must give a parseable document.
	profile := "[\n" + writeAll(t, FormatFragments, sampleEvents()) + "{}]"
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(profile), &out))
	require.Len(t, out, 4)
}

func TestDocumentFormat(t *testing.T) {
	got := writeAll(t, FormatDocument, sampleEvents())
	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	require.NoError(t, json.Unmarshal([]byte(got), &doc))
	require.Len(t, doc.TraceEvents, 3)
	require.Equal(t, "X", doc.TraceEvents[0]["ph"])
	require.NotContains(t, doc.TraceEvents[1], "dur")

	empty := writeAll(t, FormatDocument, nil)
	require.NoError(t, json.Unmarshal([]byte(empty), &doc))
	require.Empty(t, doc.TraceEvents)
}

func TestNDJSONFormat(t *testing.T) {
	got := writeAll(t, FormatNDJSON, sampleEvents())
	lines := bytes.Split(bytes.TrimSpace([]byte(got)), []byte("\n"))
	require.Len(t, lines, 3)
	for _, l := range lines {
		require.True(t, json.Valid(l), string(l))
	}
}

func TestMsgpackFormat(t *testing.T) {
	events := sampleEvents()
	got := writeAll(t, FormatMsgpack, events)

	dec := msgpack.NewDecoder(bytes.NewReader([]byte(got)))
	var decoded []Event
	for range events {
		var ev Event
		require.NoError(t, dec.Decode(&ev))
		decoded = append(decoded, ev)
	}
	require.Equal(t, events, decoded)
}

func TestNoHTMLEscaping(t *testing.T) {
	ev := Instant("handle <pipe>, 4 bytes", "0034 (a&b)", "NtReadFile", 1)
	data, err := FormatEvent(&ev, FormatFragments)
	require.NoError(t, err)
	require.Contains(t, string(data), `"handle <pipe>, 4 bytes"`)
	require.Contains(t, string(data), `"0034 (a&b)"`)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":          FormatFragments,
		"fragments": FormatFragments,
		"DOCUMENT":  FormatDocument,
		"ndjson":    FormatNDJSON,
		"msgpack":   FormatMsgpack,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestMultiSink(t *testing.T) {
	var a, b Collector
	m := NewMultiSink(&a, &b, Discard)
	require.NoError(t, Replay(sampleEvents(), m))
	require.NoError(t, m.Close())
	require.Equal(t, a.Events, b.Events)
	require.Len(t, a.Events, 3)
}
