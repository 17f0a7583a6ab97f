package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestConnect_SubscribesAndDeliversEvents(t *testing.T) {
	controls := make(chan controlMessage, 4)
	tokens := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens <- r.URL.Query().Get("token")
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = ws.CloseNow() }()

		ctx := context.Background()
		_, data, err := ws.Read(ctx)
		if err != nil {
			return
		}
		var msg controlMessage
		if json.Unmarshal(data, &msg) == nil {
			controls <- msg
		}
		_ = ws.Write(ctx, websocket.MessageText, []byte(`{"event":"new-order","topic":"orders","payload":{"id":5}}`))
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	inv := &recordingInvalidator{}
	b := New(inv)
	got := make(chan Event, 1)
	sub := b.Subscribe(TopicOrders, func(ev Event) { got <- ev })
	defer sub.Close()
	runBridge(t, b)

	var mu sync.Mutex
	var statuses []Status
	report := func(s Status, _ error) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Connect(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), staticToken("tok"), report)
	}()

	select {
	case ev := <-got:
		assert.Equal(t, EventNewOrder, ev.Name)
		assert.JSONEq(t, `{"id":5}`, string(ev.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	assert.Equal(t, controlMessage{Action: "subscribe", Topic: TopicOrders}, <-controls)
	assert.Equal(t, "tok", <-tokens)
	assert.Equal(t, []string{"orders", "shiftSummary"}, inv.snapshot())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Connect did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusConnecting, statuses[0])
	assert.Contains(t, statuses, StatusConnected)
	assert.Equal(t, StatusStopped, statuses[len(statuses)-1])
}

func TestConnect_RetriesUntilCancelled(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	b := New(&recordingInvalidator{})
	reconnecting := make(chan error, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Connect(ctx, addr, nil, func(s Status, err error) {
			if s == StatusReconnecting {
				select {
				case reconnecting <- err:
				default:
				}
			}
		})
	}()

	select {
	case err := <-reconnecting:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("no reconnect reported")
	}
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Connect did not return after cancel")
	}
}
