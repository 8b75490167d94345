package timeline

// Window is an inclusive time range in microseconds. A window whose Start
// equals its End is unbounded and accepts every timestamp; the zero Window
// is therefore unbounded.
type Window struct {
	Start int64
	End   int64
}

// NewWindow builds the window [start, start+duration]. A zero duration gives
// an unbounded window.
func NewWindow(start, duration int64) Window {
	return Window{Start: start, End: start + duration}
}

// Unbounded reports whether the window accepts every timestamp.
func (w Window) Unbounded() bool { return w.Start == w.End }

// Contains reports whether ts lies within the window.
func (w Window) Contains(ts int64) bool {
	if w.Unbounded() {
		return true
	}
	return ts >= w.Start && ts <= w.End
}

// Overlaps reports whether either endpoint of [start, end] lies within the
// window. An interval that covers the whole window without an endpoint
// inside it does not overlap.
func (w Window) Overlaps(start, end int64) bool {
	return w.Contains(start) || w.Contains(end)
}
