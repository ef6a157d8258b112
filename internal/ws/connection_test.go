package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpim/tenebra-wallet/internal/event"
	"github.com/tmpim/tenebra-wallet/internal/model"
)

var upgrader = websocket.Upgrader{}

type fakeStarter struct {
	url   string
	fails int32
}

func (f *fakeStarter) StartWebsocket(_ context.Context) (string, error) {
	if atomic.LoadInt32(&f.fails) > 0 {
		atomic.AddInt32(&f.fails, -1)
		return "", context.DeadlineExceeded
	}
	return f.url, nil
}

// wsTestServer accepts connections, collects the subscribe frames each
// connection replays, then runs serve against the connection.
func wsTestServer(t *testing.T, expectSubs int, serve func(connNum int, conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	var connCount int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		n := int(atomic.AddInt32(&connCount, 1))

		// Subscription replay must arrive before anything else happens on
		// the connection.
		for i := 0; i < expectSubs; i++ {
			var frame subscribeFrame
			if err := conn.ReadJSON(&frame); err != nil {
				t.Errorf("conn %d: expected subscribe frame %d: %v", n, i, err)
				return
			}
			if frame.Type != "subscribe" {
				t.Errorf("conn %d: unexpected frame type %q", n, frame.Type)
			}
		}

		serve(n, conn)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func collect[T any](t *testing.T, bus interface {
	Subscribe(topic string, fn interface{}) error
}, topic string) chan T {
	t.Helper()
	ch := make(chan T, 16)
	require.NoError(t, bus.Subscribe(topic, func(v T) { ch <- v }))
	return ch
}

func TestConnectDeliversEvents(t *testing.T) {
	srv := wsTestServer(t, len(DefaultSubscriptions), func(_ int, conn *websocket.Conn) {
		conn.WriteJSON(map[string]interface{}{"type": "hello", "motd": "welcome"})
		conn.WriteJSON(map[string]interface{}{"type": "keepalive", "server_time": "2021-02-14T00:00:00.000Z"})
		conn.WriteJSON(map[string]interface{}{
			"type": "event", "event": "transaction",
			"transaction": map[string]interface{}{
				"id": 1, "from": "t52xkdsr5l", "to": "tzwow91ylm",
				"value": 25, "time": "2021-02-14T00:00:00.000Z", "type": "transfer",
			},
		})
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	bus := event.New()
	txs := collect[*model.Transaction](t, bus, event.TopicTransaction)
	motds := collect[*model.MOTD](t, bus, event.TopicMOTD)

	c := New(&fakeStarter{url: wsURL(srv)}, bus, DefaultSubscriptions)
	c.SetBackoff(10*time.Millisecond, 50*time.Millisecond)
	require.NoError(t, c.Connect())
	defer c.Close()

	select {
	case tx := <-txs:
		assert.Equal(t, "tzwow91ylm", tx.To)
		assert.EqualValues(t, 25, tx.Value)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for transaction event")
	}

	select {
	case motd := <-motds:
		assert.Equal(t, "welcome", motd.MOTD)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for motd")
	}
}

func TestReconnectReplaysSubscriptions(t *testing.T) {
	// The server drops connection 1 right after the (verified) subscription
	// replay; connection 2 must replay again before its event is sent.
	srv := wsTestServer(t, len(DefaultSubscriptions), func(n int, conn *websocket.Conn) {
		if n == 1 {
			return // immediate drop
		}
		conn.WriteJSON(map[string]interface{}{
			"type": "event", "event": "block",
			"block": map[string]interface{}{
				"height": 1000, "address": "t52xkdsr5l", "value": 25,
				"difficulty": 1, "time": "2021-02-14T00:00:00.000Z",
			},
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	bus := event.New()
	blocks := collect[*model.Block](t, bus, event.TopicBlock)

	c := New(&fakeStarter{url: wsURL(srv)}, bus, DefaultSubscriptions)
	c.SetBackoff(10*time.Millisecond, 50*time.Millisecond)
	require.NoError(t, c.Connect())
	defer c.Close()

	select {
	case block := <-blocks:
		assert.EqualValues(t, 1000, block.Height)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for post-reconnect event")
	}
	assert.Equal(t, StateConnected, c.State())
}

func TestDialFailureBacksOffAndRecovers(t *testing.T) {
	srv := wsTestServer(t, len(DefaultSubscriptions), func(_ int, conn *websocket.Conn) {
		conn.WriteJSON(map[string]interface{}{
			"type": "event", "event": "name",
			"name": map[string]interface{}{
				"name": "example", "owner": "t52xkdsr5l",
				"registered": "2021-02-14T00:00:00.000Z", "unpaid": 0,
			},
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	bus := event.New()
	names := collect[*model.Name](t, bus, event.TopicName)

	// The first two ws/start calls fail; the layer keeps retrying.
	starter := &fakeStarter{url: wsURL(srv), fails: 2}
	c := New(starter, bus, DefaultSubscriptions)
	c.SetBackoff(10*time.Millisecond, 50*time.Millisecond)
	require.NoError(t, c.Connect())
	defer c.Close()

	select {
	case name := <-names:
		assert.Equal(t, "example", name.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event after dial failures")
	}
}

func TestCloseIsCleanAndIdempotent(t *testing.T) {
	srv := wsTestServer(t, len(DefaultSubscriptions), func(_ int, conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	c := New(&fakeStarter{url: wsURL(srv)}, event.New(), DefaultSubscriptions)
	c.SetBackoff(10*time.Millisecond, 50*time.Millisecond)
	require.NoError(t, c.Connect())

	// Wait for the connection to establish, then tear down.
	deadline := time.Now().Add(5 * time.Second)
	for c.State() != StateConnected && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, StateConnected, c.State())

	c.Close()
	assert.Equal(t, StateDisconnected, c.State())
	c.Close() // second close is a no-op

	// The connection can be started again after a full teardown.
	require.NoError(t, c.Connect())
	c.Close()
}

func TestCloseRightAfterConnect(t *testing.T) {
	// Tearing down before (or while) the first dial completes must neither
	// panic nor hang: the loop owns the done channel until it exits, and
	// cancellation closes the conn out from under the read loop. Looping
	// hits the interleavings around dial and the conn handoff.
	srv := wsTestServer(t, len(DefaultSubscriptions), func(_ int, conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	c := New(&fakeStarter{url: wsURL(srv)}, event.New(), DefaultSubscriptions)
	c.SetBackoff(10*time.Millisecond, 50*time.Millisecond)

	for i := 0; i < 25; i++ {
		require.NoError(t, c.Connect())

		closed := make(chan struct{})
		go func() {
			c.Close()
			close(closed)
		}()
		select {
		case <-closed:
		case <-time.After(5 * time.Second):
			t.Fatal("close did not return")
		}
		assert.Equal(t, StateDisconnected, c.State())
	}
}

func TestHandleMessageUnknownEvent(t *testing.T) {
	c := New(&fakeStarter{}, event.New(), nil)
	// Must not panic or publish anything.
	var msg wsMessage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"event","event":"mystery"}`), &msg))
	c.handleMessage(&msg)
}
