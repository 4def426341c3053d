package sync

import (
	stdsync "sync"

	"github.com/username/fintrack/backend/src/logger"
)

// Collection names mirror the persisted collections a client can watch.
type Collection string

const (
	CollectionAccounts     Collection = "accounts"
	CollectionTransactions Collection = "transactions"
	CollectionTransfers    Collection = "transfers"
	CollectionUserData     Collection = "userData"
)

// Event is one change notification on a single collection. Events on
// different collections are independent streams; a balance update and the
// transaction that caused it may arrive in any order.
type Event struct {
	Collection Collection  `json:"collection"`
	Action     string      `json:"action"` // "created", "updated" or "deleted"
	UserID     int64       `json:"-"`
	Payload    interface{} `json:"payload,omitempty"`
}

const subscriberBuffer = 16

// Subscription is one live stream over a single collection for a single
// user. Close it when the session ends.
type Subscription struct {
	C          <-chan Event
	ch         chan Event
	hub        *Hub
	userID     int64
	collection Collection
}

// Close unsubscribes and releases the channel. Safe to call once.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub fans mutation events out to per-collection subscribers. It carries no
// persisted state; clients reconcile against the store on (re)connect.
type Hub struct {
	mu   stdsync.Mutex
	subs map[Collection]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[Collection]map[*Subscription]struct{}),
	}
}

// Subscribe opens a stream of events for one collection, filtered to the
// given user.
func (h *Hub) Subscribe(userID int64, collection Collection) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{
		C:          ch,
		ch:         ch,
		hub:        h,
		userID:     userID,
		collection: collection,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[*Subscription]struct{})
	}
	h.subs[collection][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.collection]; ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.ch)
		}
	}
}

// Publish delivers the event to every subscriber of its collection that
// belongs to the same user. Delivery is best effort: a subscriber that is
// not draining its channel misses the event and must reconcile from the
// store, which clients do on reconnect anyway.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[event.Collection] {
		if sub.userID != event.UserID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			if logger.L != nil {
				logger.L.Warn("Dropping event for slow subscriber",
					"collection", event.Collection,
					"userID", event.UserID)
			}
		}
	}
}
