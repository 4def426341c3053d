package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/fintrack/backend/src/logger"
	syncer "github.com/username/fintrack/backend/src/sync"
	"github.com/username/fintrack/backend/src/utils"
)

var allCollections = []syncer.Collection{
	syncer.CollectionAccounts,
	syncer.CollectionTransactions,
	syncer.CollectionTransfers,
	syncer.CollectionUserData,
}

type EventsHandler struct {
	hub *syncer.Hub
}

func NewEventsHandler(hub *syncer.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// HandleEvents streams change notifications as server-sent events. Each
// collection is its own subscription stream; events across collections carry
// no ordering guarantee, so a balance update and the transaction that caused
// it may arrive in either order. Streams live until the client disconnects.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.SendJSONError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The stream lives for the whole session; the server's write timeout
	// must not sever it while the client is still reading.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.L.Warn("Could not clear write deadline for event stream", "error", err)
	}

	collections := allCollections
	if raw := r.URL.Query().Get("collections"); raw != "" {
		collections = nil
		for _, name := range strings.Split(raw, ",") {
			collections = append(collections, syncer.Collection(strings.TrimSpace(name)))
		}
	}

	// One subscription per requested collection, all funneled into a single
	// SSE response stream.
	merged := make(chan syncer.Event)
	done := r.Context().Done()
	var subs []*syncer.Subscription
	for _, collection := range collections {
		sub := h.hub.Subscribe(userID, collection)
		subs = append(subs, sub)
		go func(sub *syncer.Subscription) {
			for event := range sub.C {
				select {
				case merged <- event:
				case <-done:
					return
				}
			}
		}(sub)
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.L.Info("Event stream opened", "userID", userID, "collections", len(collections))
	for {
		select {
		case <-done:
			logger.L.Debug("Event stream closed by client", "userID", userID)
			return
		case event := <-merged:
			payload, err := json.Marshal(event)
			if err != nil {
				logger.L.Error("Failed to marshal event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Collection, payload)
			flusher.Flush()
		}
	}
}
