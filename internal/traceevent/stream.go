package traceevent

import (
	"bufio"
	"io"
)

// StreamWriter writes events to an io.Writer as they are emitted.
type StreamWriter struct {
	w          *bufio.Writer
	format     Format
	firstEvent bool // for document format comma handling
	closed     bool
}

// NewStreamWriter creates a StreamWriter. For FormatDocument the header is
// written immediately.
func NewStreamWriter(w io.Writer, format Format) (*StreamWriter, error) {
	sw := &StreamWriter{
		w:          bufio.NewWriter(w),
		format:     format,
		firstEvent: true,
	}
	if format == FormatDocument {
		if _, err := sw.w.WriteString("{\"traceEvents\":[\n"); err != nil {
			return nil, err
		}
	}
	return sw, nil
}

// Emit writes an event to the output.
func (t *StreamWriter) Emit(ev *Event) error {
	data, err := FormatEvent(ev, t.format)
	if err != nil {
		return err
	}

	switch t.format {
	case FormatDocument:
		if !t.firstEvent {
			if _, err := t.w.WriteString(",\n"); err != nil {
				return err
			}
		}
		t.firstEvent = false
		_, err = t.w.Write(data)
	case FormatFragments:
		data = append(data, ',', '\n')
		_, err = t.w.Write(data)
	case FormatNDJSON:
		data = append(data, '\n')
		_, err = t.w.Write(data)
	default:
		_, err = t.w.Write(data)
	}
	return err
}

// Flush writes buffered data to the underlying writer.
func (t *StreamWriter) Flush() error {
	return t.w.Flush()
}

// Close writes the document footer, if any, and flushes. Calling Close more
// than once is safe.
func (t *StreamWriter) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.format == FormatDocument {
		if _, err := t.w.WriteString("\n]}\n"); err != nil {
			return err
		}
	}
	return t.Flush()
}
