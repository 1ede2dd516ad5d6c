// Package notify delivers the transient success messages emitted after catalog mutations.
package notify

import (
	"errors"
	"fmt"
	"sync"
	"time"

	EventBus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"storefront-catalog/internal/domain"
)

const topic = "catalog:notification"

var messages = map[domain.NotificationKind]string{
	domain.NotificationAdded:   "Product Added successfully!",
	domain.NotificationUpdated: "Product Updated successfully!",
	domain.NotificationDeleted: "Product deleted successfully!",
}

var errNilHandler = errors.New("notify: nil handler")

type subscriber struct {
	id string
	fn func(domain.Notification)
}

// Bus publishes notifications to subscribers synchronously, in publish order.
// EventBus carries a single dispatch handler; subscribers live in the bus's own table so each one
// can be removed individually.
type Bus struct {
	bus EventBus.Bus
	now func() time.Time

	mu   sync.RWMutex
	subs []subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	b := &Bus{bus: EventBus.New(), now: time.Now}
	// only fails for non-func handlers
	_ = b.bus.Subscribe(topic, b.dispatch)
	return b
}

// Notify builds the notification for a mutation and publishes it.
func (b *Bus) Notify(kind domain.NotificationKind, productID int64) {
	n := domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		ProductID: productID,
		Message:   messages[kind],
		At:        b.now().UTC(),
	}
	b.bus.Publish(topic, n)
}

func (b *Bus) dispatch(n domain.Notification) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(n)
	}
}

// Subscribe registers fn for every future notification. The returned func removes this
// registration only, even when the same handler was subscribed more than once.
func (b *Bus) Subscribe(fn func(domain.Notification)) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("notify: subscribe: %w", errNilHandler)
	}
	id := uuid.NewString()
	b.mu.Lock()
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}, nil
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			log.Debug().Str("component", "notify").Str("subscriber_id", id).Msg("subscriber removed")
			return
		}
	}
}

// LogNotification writes a notification to the process logger.
func LogNotification(n domain.Notification) {
	log.Info().
		Str("component", "notify").
		Str("notification_id", n.ID).
		Str("kind", string(n.Kind)).
		Int64("product_id", n.ProductID).
		Msg(n.Message)
}
