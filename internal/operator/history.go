package operator

import "sync"

// History keeps the most recent messages for clients that poll instead of
// streaming.
type History struct {
	mu    sync.Mutex
	size  int
	items []Message
}

var _ Reporter = (*History)(nil)

// NewHistory keeps up to size messages.
func NewHistory(size int) *History {
	if size <= 0 {
		size = 1
	}

	return &History{size: size, items: make([]Message, 0, size)}
}

// Report implements Reporter.
func (h *History) Report(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == h.size {
		copy(h.items, h.items[1:])
		h.items = h.items[:h.size-1]
	}

	h.items = append(h.items, msg)
}

// Messages returns the kept messages, oldest first.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.items))
	copy(out, h.items)

	return out
}
