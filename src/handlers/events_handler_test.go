package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/username/fintrack/backend/src/logger"
	syncer "github.com/username/fintrack/backend/src/sync"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// The stream must keep delivering for the whole session even when the
// server carries a global write timeout shorter than the session.
func TestEventStreamOutlivesServerWriteTimeout(t *testing.T) {
	hub := syncer.NewHub()
	eventsHandler := NewEventsHandler(hub)

	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), userIDContextKey, int64(1))
		eventsHandler.HandleEvents(w, r.WithContext(ctx))
	}))
	server.Config.WriteTimeout = 250 * time.Millisecond
	server.Start()
	defer server.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Publish(syncer.Event{
					Collection: syncer.CollectionAccounts,
					Action:     "updated",
					UserID:     1,
					Payload:    map[string]string{"id": "a"},
				})
			}
		}
	}()

	start := time.Now()
	resp, err := http.Get(server.URL + "/api/events?collections=accounts")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readData := func() string {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			assert.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	// Keep reading until well past the server's write deadline; a severed
	// connection surfaces as a read error above.
	sawEventPastDeadline := false
	for time.Since(start) < 3*server.Config.WriteTimeout {
		data := readData()
		assert.Contains(t, data, `"collection":"accounts"`)
		if time.Since(start) > 2*server.Config.WriteTimeout {
			sawEventPastDeadline = true
			break
		}
	}
	assert.True(t, sawEventPastDeadline)
}
