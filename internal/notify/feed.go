package notify

import (
	"sync"

	"storefront-catalog/internal/domain"
)

// Feed keeps the most recent notifications for clients that poll.
type Feed struct {
	mu    sync.Mutex
	items []domain.Notification
	next  int
	full  bool
}

// NewFeed creates a feed holding at most capacity notifications (minimum 1).
func NewFeed(capacity int) *Feed {
	if capacity < 1 {
		capacity = 1
	}
	return &Feed{items: make([]domain.Notification, capacity)}
}

// Record appends n, evicting the oldest entry when full.
func (f *Feed) Record(n domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[f.next] = n
	f.next = (f.next + 1) % len(f.items)
	if f.next == 0 {
		f.full = true
	}
}

// Recent returns the kept notifications, newest first.
func (f *Feed) Recent() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	size := f.next
	if f.full {
		size = len(f.items)
	}
	out := make([]domain.Notification, 0, size)
	for i := 1; i <= size; i++ {
		out = append(out, f.items[(f.next-i+len(f.items))%len(f.items)])
	}
	return out
}
