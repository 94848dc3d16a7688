package sync

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Channel is the persistent transport to the remote store. Handlers
// run on transport goroutines; the client queues their payloads and
// processes them on the UI mutator.
type Channel interface {
	// Connected reports whether the channel is currently usable.
	Connected() bool

	// Send emits one event. The payload is marshalled by the
	// transport.
	Send(event string, payload any) error

	// Handle registers a callback for an inbound event. The payload
	// is the event's first argument re-encoded as JSON, or nil for
	// bare events.
	Handle(event string, fn func(payload []byte))

	// Close tears the channel down.
	Close() error
}

// SocketChannel is a socket.io backed Channel. The underlying client
// reconnects on its own; Connected reflects the live state.
type SocketChannel struct {
	io *socket.Socket
}

// DialSocket opens a socket.io channel to rawURL. The call does not
// wait for the connection: callers poll Connected, matching the
// editor's 500ms status poll.
func DialSocket(rawURL, namespace string) (*SocketChannel, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing channel url %s: %w", rawURL, err)
	}

	opts := socket.DefaultOptions()
	if parsed.Path != "" {
		opts.SetPath(parsed.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	base := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	manager := socket.NewManager(base, opts)
	io := manager.Socket(namespace, opts)
	io.Connect()

	return &SocketChannel{io: io}, nil
}

// Connected reports whether the socket is connected.
func (c *SocketChannel) Connected() bool { return c.io.Connected() }

// Send emits one event with the payload as its single argument.
func (c *SocketChannel) Send(event string, payload any) error {
	return c.io.Emit(event, payload)
}

// Handle registers fn for an inbound event. Arguments that cannot be
// re-encoded are dropped.
func (c *SocketChannel) Handle(event string, fn func(payload []byte)) {
	c.io.On(types.EventName(event), func(args ...any) {
		if len(args) == 0 {
			fn(nil)
			return
		}
		raw, err := json.Marshal(args[0])
		if err != nil {
			return
		}
		fn(raw)
	})
}

// Close disconnects the socket.
func (c *SocketChannel) Close() error {
	c.io.Disconnect()
	return nil
}
