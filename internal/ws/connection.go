// Package ws maintains the persistent websocket connection to the Tenebra
// node and republishes its push events on the process bus.
package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/tmpim/tenebra-wallet/internal/event"
	"github.com/tmpim/tenebra-wallet/internal/model"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Subscription names understood by the node.
const (
	SubBlocks       = "blocks"
	SubTransactions = "transactions"
	SubNames        = "names"
	SubMOTD         = "motd"
)

// DefaultSubscriptions is the set a wallet client needs: blocks and
// transactions drive re-syncs, names and motd drive UI refreshes.
var DefaultSubscriptions = []string{SubBlocks, SubTransactions, SubNames, SubMOTD}

const (
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = time.Minute
)

// Starter obtains a one-time websocket URL from the node.
type Starter interface {
	StartWebsocket(ctx context.Context) (string, error)
}

// wsMessage is an incoming frame. The node multiplexes keepalives, the hello
// banner, command responses and push events over one message shape.
type wsMessage struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	ID    *int   `json:"id,omitempty"`
	OK    *bool  `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`

	Block       *model.Block       `json:"block,omitempty"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
	Name        *model.Name        `json:"name,omitempty"`
	MOTD        string             `json:"motd,omitempty"`

	ServerTime string `json:"server_time,omitempty"`
}

// subscribeFrame is the control frame replayed after every (re)connect.
type subscribeFrame struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Event string `json:"event"`
}

// Connection is the push subscription layer. It keeps one websocket to the
// node alive, reconnecting with exponential backoff, and re-establishes the
// subscription set after every reconnect (the node forgets subscriptions on
// disconnect). Events are published on the bus; consumers never see a frame
// from a connection whose subscriptions have not been replayed yet.
type Connection struct {
	starter Starter
	bus     EventBus.Bus
	log     *logrus.Entry

	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu     sync.Mutex
	state  State
	subs   map[string]bool
	conn   *websocket.Conn
	msgID  int
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a connection that will maintain the given subscription set.
func New(starter Starter, bus EventBus.Bus, subscriptions []string) *Connection {
	subs := make(map[string]bool, len(subscriptions))
	for _, s := range subscriptions {
		subs[s] = true
	}
	return &Connection{
		starter:        starter,
		bus:            bus,
		log:            logrus.WithField("component", "ws"),
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		state:          StateDisconnected,
		subs:           subs,
	}
}

// SetBackoff overrides the reconnect backoff bounds (tests use short ones).
// Must be called before Connect.
func (c *Connection) SetBackoff(initial, max time.Duration) {
	c.initialBackoff = initial
	c.maxBackoff = max
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Connect starts the connection loop. It returns immediately; the loop keeps
// dialling (with backoff) until Close is called.
func (c *Connection) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return fmt.Errorf("websocket connection already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
	return nil
}

// Close tears the connection down: closes the transport, stops the reconnect
// loop and leaves no timers or goroutines behind. The loop owns the done
// channel until it exits, so the fields are only cleared after the wait.
func (c *Connection) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	<-done

	c.mu.Lock()
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()
	c.setState(StateDisconnected)
}

// Subscribe adds an event to the subscription set. When connected, the
// control frame is sent immediately; either way the subscription survives
// reconnects from now on.
func (c *Connection) Subscribe(eventName string) error {
	c.mu.Lock()
	c.subs[eventName] = true
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return c.sendSubscribe(conn, eventName)
}

func (c *Connection) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	backoff := c.initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)

		conn, err := c.dial(ctx)
		if err != nil {
			c.log.WithError(err).Debug("websocket dial failed")
			c.setState(StateDisconnected)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
			continue
		}

		// The read loop only exits on a read error, so cancellation has to
		// close the conn out from under it. Registering this before the conn
		// is published also covers a Close that lands mid-dial.
		stop := context.AfterFunc(ctx, func() { conn.Close() })

		// Replay the whole subscription set before anything is read: the
		// node dropped it with the previous connection, and consumers must
		// not see events from a half-subscribed connection.
		if err := c.replaySubscriptions(conn); err != nil {
			c.log.WithError(err).Warn("failed to re-establish subscriptions")
			stop()
			conn.Close()
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.state = StateConnected
		c.mu.Unlock()
		backoff = c.initialBackoff
		c.log.Info("websocket connected")

		c.readLoop(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		stop()
		conn.Close()
		c.setState(StateDisconnected)
		if ctx.Err() == nil {
			c.log.Warn("websocket disconnected, reconnecting")
		}
	}
}

func (c *Connection) dial(ctx context.Context) (*websocket.Conn, error) {
	// The gateway URL is single-use and expires within seconds, so it is
	// fetched fresh for every attempt.
	wsURL, err := c.starter.StartWebsocket(ctx)
	if err != nil {
		return nil, fmt.Errorf("ws/start failed: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	return conn, nil
}

func (c *Connection) replaySubscriptions(conn *websocket.Conn) error {
	c.mu.Lock()
	subs := make([]string, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		if err := c.sendSubscribe(conn, s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connection) sendSubscribe(conn *websocket.Conn, eventName string) error {
	c.mu.Lock()
	c.msgID++
	id := c.msgID
	c.mu.Unlock()

	return conn.WriteJSON(subscribeFrame{ID: id, Type: "subscribe", Event: eventName})
}

func (c *Connection) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				c.log.WithError(err).Debug("websocket read failed")
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) handleMessage(msg *wsMessage) {
	switch msg.Type {
	case "keepalive":
		// Nothing to do; the node sends these every ten seconds.

	case "hello":
		// The hello banner doubles as the initial MOTD.
		if msg.MOTD != "" {
			c.bus.Publish(event.TopicMOTD, &model.MOTD{MOTD: msg.MOTD})
		}

	case "event":
		c.handleEvent(msg)

	case "response":
		if msg.OK != nil && !*msg.OK {
			c.log.WithField("error", msg.Error).Warn("websocket command rejected")
		}
	}
}

func (c *Connection) handleEvent(msg *wsMessage) {
	switch msg.Event {
	case "block":
		if msg.Block != nil {
			c.bus.Publish(event.TopicBlock, msg.Block)
		}
	case "transaction":
		if msg.Transaction != nil {
			c.bus.Publish(event.TopicTransaction, msg.Transaction)
		}
	case "name":
		if msg.Name != nil {
			c.bus.Publish(event.TopicName, msg.Name)
		}
	case "motd":
		c.bus.Publish(event.TopicMOTD, &model.MOTD{MOTD: msg.MOTD})
	default:
		c.log.WithField("event", msg.Event).Debug("ignoring unknown event")
	}
}
