package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// subscriptionBuffer bounds the event channel; the reader goroutine blocks
// on a full buffer so delivery order is preserved.
const subscriptionBuffer = 64

// Subscription is a live feed of user-message events from the node.
// Events are delivered on Events in the order the node sent them. When the
// stream ends, Events is closed and Err reports why.
type Subscription struct {
	conn   *websocket.Conn
	events chan UserMessageEvent

	mu  sync.Mutex
	err error

	closeOnce sync.Once
	done      chan struct{}
}

// subscribeNotification is the JSON-RPC notification wrapper pushed by the
// node for an active subscription.
type subscribeNotification struct {
	Method string `json:"method"`
	Params struct {
		Subscription string           `json:"subscription"`
		Result       UserMessageEvent `json:"result"`
	} `json:"params"`
}

// SubscribeUserMessages opens a websocket connection to the node and
// subscribes to the user-message-sent event stream.
func SubscribeUserMessages(ctx context.Context, wsURL string) (*Subscription, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  "gear_subscribeUserMessageSent",
		Params:  []interface{}{},
		ID:      1,
	}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send subscribe request: %w", err)
	}

	// The first frame acknowledges the subscription.
	var ack RPCResponse
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read subscribe ack: %w", err)
	}
	if ack.Error != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe rejected: %w", ack.Error)
	}

	sub := &Subscription{
		conn:   conn,
		events: make(chan UserMessageEvent, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	go sub.readLoop()
	return sub, nil
}

// Events returns the ordered event channel. It is closed when the
// subscription ends.
func (s *Subscription) Events() <-chan UserMessageEvent {
	return s.events
}

// Err returns the error that terminated the subscription, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears down the subscription.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *Subscription) readLoop() {
	defer close(s.events)

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Closed by the caller; not an error.
			default:
				s.setErr(fmt.Errorf("event stream: %w", err))
			}
			return
		}

		var note subscribeNotification
		if err := json.Unmarshal(frame, &note); err != nil {
			// Not a notification frame; skip.
			continue
		}
		if note.Method == "" {
			continue
		}

		select {
		case s.events <- note.Params.Result:
		case <-s.done:
			return
		}
	}
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}
