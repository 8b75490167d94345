package timeline

import "fsyncprof/internal/fsynclog"

// ThreadNames resolves thread ids to display labels.
type ThreadNames struct {
	labels map[fsynclog.ThreadID]string
}

// NewThreadNames creates an empty registry.
func NewThreadNames() *ThreadNames {
	return &ThreadNames{labels: make(map[fsynclog.ThreadID]string)}
}

// Register records the display name of tid. The label is "<tid> (<name>)";
// a later rename replaces it.
func (n *ThreadNames) Register(tid fsynclog.ThreadID, name string) {
	n.labels[tid] = string(tid) + " (" + name + ")"
}

// Resolve returns the label of tid, or tid itself when it was never named.
func (n *ThreadNames) Resolve(tid fsynclog.ThreadID) string {
	if label, ok := n.labels[tid]; ok {
		return label
	}
	return string(tid)
}

// Len returns the number of named threads.
func (n *ThreadNames) Len() int { return len(n.labels) }
