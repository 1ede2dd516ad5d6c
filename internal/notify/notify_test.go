package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-catalog/internal/domain"
)

func TestBus_NotifyDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bus.now = func() time.Time { return fixed }

	var got []domain.Notification
	unsubscribe, err := bus.Subscribe(func(n domain.Notification) { got = append(got, n) })
	require.NoError(t, err)

	bus.Notify(domain.NotificationAdded, 3)
	bus.Notify(domain.NotificationDeleted, 1)

	require.Len(t, got, 2)
	assert.Equal(t, domain.NotificationAdded, got[0].Kind)
	assert.Equal(t, int64(3), got[0].ProductID)
	assert.Equal(t, "Product Added successfully!", got[0].Message)
	assert.Equal(t, fixed, got[0].At)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.Equal(t, "Product deleted successfully!", got[1].Message)

	unsubscribe()
	unsubscribe()
	bus.Notify(domain.NotificationUpdated, 2)
	assert.Len(t, got, 2, "unsubscribed handler must not be called")
}

func TestFeed_KeepsNewestFirstAndEvicts(t *testing.T) {
	feed := NewFeed(2)
	assert.Empty(t, feed.Recent())

	feed.Record(domain.Notification{ID: "a"})
	assert.Equal(t, []domain.Notification{{ID: "a"}}, feed.Recent())

	feed.Record(domain.Notification{ID: "b"})
	feed.Record(domain.Notification{ID: "c"})
	assert.Equal(t, []domain.Notification{{ID: "c"}, {ID: "b"}}, feed.Recent())
}

func TestFeed_SubscribedToBus(t *testing.T) {
	bus := NewBus()
	feed := NewFeed(10)
	_, err := bus.Subscribe(feed.Record)
	require.NoError(t, err)

	bus.Notify(domain.NotificationUpdated, 5)
	recent := feed.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "Product Updated successfully!", recent[0].Message)
}

func TestBus_UnsubscribeRemovesOnlyThatSubscriber(t *testing.T) {
	bus := NewBus()
	feedA := NewFeed(10)
	feedB := NewFeed(10)

	_, err := bus.Subscribe(feedA.Record)
	require.NoError(t, err)
	unsubscribeB, err := bus.Subscribe(feedB.Record)
	require.NoError(t, err)

	unsubscribeB()
	bus.Notify(domain.NotificationAdded, 7)

	assert.Len(t, feedA.Recent(), 1)
	assert.Empty(t, feedB.Recent())
}

func TestBus_SameHandlerSubscribedTwice(t *testing.T) {
	bus := NewBus()
	calls := 0
	handler := func(domain.Notification) { calls++ }

	unsubscribeFirst, err := bus.Subscribe(handler)
	require.NoError(t, err)
	_, err = bus.Subscribe(handler)
	require.NoError(t, err)

	bus.Notify(domain.NotificationDeleted, 1)
	assert.Equal(t, 2, calls)

	unsubscribeFirst()
	bus.Notify(domain.NotificationDeleted, 2)
	assert.Equal(t, 3, calls)
}

func TestBus_SubscribeRejectsNil(t *testing.T) {
	_, err := NewBus().Subscribe(nil)
	assert.ErrorIs(t, err, errNilHandler)
}
