package sync

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestPublishReachesMatchingSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1, CollectionAccounts)
	defer sub.Close()

	hub.Publish(Event{Collection: CollectionAccounts, Action: "created", UserID: 1, Payload: "a"})

	event := <-sub.C
	assert.Equal(t, CollectionAccounts, event.Collection)
	assert.Equal(t, "created", event.Action)
}

func TestPublishFiltersByUser(t *testing.T) {
	hub := NewHub()
	mine := hub.Subscribe(1, CollectionTransactions)
	theirs := hub.Subscribe(2, CollectionTransactions)
	defer mine.Close()
	defer theirs.Close()

	hub.Publish(Event{Collection: CollectionTransactions, Action: "created", UserID: 1})

	assert.Equal(t, 1, len(mine.C))
	assert.Equal(t, 0, len(theirs.C))
}

func TestPublishFiltersByCollection(t *testing.T) {
	hub := NewHub()
	accounts := hub.Subscribe(1, CollectionAccounts)
	transfers := hub.Subscribe(1, CollectionTransfers)
	defer accounts.Close()
	defer transfers.Close()

	hub.Publish(Event{Collection: CollectionTransfers, Action: "created", UserID: 1})

	assert.Equal(t, 0, len(accounts.C))
	assert.Equal(t, 1, len(transfers.C))
}

func TestCloseStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1, CollectionUserData)
	sub.Close()

	// Publishing after close must not panic on the closed channel.
	hub.Publish(Event{Collection: CollectionUserData, Action: "updated", UserID: 1})

	_, open := <-sub.C
	assert.False(t, open)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1, CollectionAccounts)
	defer sub.Close()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(Event{Collection: CollectionAccounts, Action: "updated", UserID: 1})
	}
	assert.Equal(t, subscriberBuffer, len(sub.C))
}
