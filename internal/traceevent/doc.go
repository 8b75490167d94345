// Package traceevent models and serializes Chrome trace-event records.
//
// Only two phases are produced: complete events ("X", an interval with a
// duration) and instant events ("i"). The process field ("pid") carries the
// timeline bucket, such as "fsync wait", and the thread field ("tid") carries
// the resolved thread label, so the viewer groups events by bucket and thread.
//
// # Formats
//
//   - FormatFragments: one JSON object followed by a comma per event, meant
//     to be appended to an existing traceEvents array
//   - FormatDocument: a standalone {"traceEvents":[...]} document
//   - FormatNDJSON: newline-delimited JSON
//   - FormatMsgpack: a stream of msgpack maps
//
// # Sinks
//
// Producers emit into a Sink. StreamWriter writes immediately, Collector keeps
// events in memory, MultiSink fans out, and Discard drops everything.
package traceevent
