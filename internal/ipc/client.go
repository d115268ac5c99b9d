package ipc

import (
	"fmt"
	"net"
	"time"
)

// ConnectError reports a transport-level failure to reach the daemon,
// distinct from a protocol-level error response (which arrives as a decoded
// error message, not a Go error).
type ConnectError struct {
	Path string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("cannot connect to daemon at %s: %v", e.Path, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Client exchanges framed messages with the daemon socket. The connection is
// established lazily on the first Send and kept for reuse; since the daemon
// closes after one exchange, callers dial a fresh client per request when
// talking to this package's server.
type Client struct {
	path string
	conn net.Conn
}

// NewClient prepares a client for the socket path without connecting.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Dial connects eagerly, surfacing transport failures immediately.
func Dial(path string) (*Client, error) {
	c := NewClient(path)
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := net.DialTimeout("unix", c.path, 2*time.Second)
	if err != nil {
		return &ConnectError{Path: c.path, Err: err}
	}
	c.conn = conn
	return nil
}

// Close closes the underlying connection if one is open.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Send performs one request/response exchange. The connection stays open
// afterwards for peers that support it.
func (c *Client) Send(msg Message) (Message, error) {
	if c.conn == nil {
		if err := c.connect(); err != nil {
			return Message{}, err
		}
	}
	if err := WriteMessage(c.conn, msg); err != nil {
		return Message{}, fmt.Errorf("send request: %w", err)
	}
	response, err := ReadMessage(c.conn)
	if err != nil {
		return Message{}, fmt.Errorf("read response: %w", err)
	}
	return response, nil
}

// Request dials a fresh connection, performs a single exchange, and closes.
// This matches the server's one-exchange-per-connection behavior.
func Request(path string, msg Message) (Message, error) {
	client, err := Dial(path)
	if err != nil {
		return Message{}, err
	}
	defer client.Close()
	return client.Send(msg)
}
