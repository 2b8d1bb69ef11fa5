// Package client talks to the accessibility bridge over a Unix domain
// socket using newline-delimited JSON requests, responses and events.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/yourusername/wise/internal/models"
)

const (
	DefaultTimeout = 5 * time.Second
)

// DefaultSocketPath returns the bridge socket of the current user.
func DefaultSocketPath() string {
	return fmt.Sprintf("/tmp/wise-bridge-%d.sock", unix.Getuid())
}

// RPCError is an error reported by the bridge for one request.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("server error: %s (%s, code %d)", e.Message, e.Method, e.Code)
}

// Client is the accessibility bridge client
type Client struct {
	conn *Connection
}

// NewClient creates a new bridge client
func NewClient(socketPath string, timeout time.Duration) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		conn: NewConnection(socketPath, timeout),
	}
}

// Connect establishes connection to the bridge
func (c *Client) Connect() error {
	return c.conn.Connect()
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Done is closed when the connection to the bridge is lost.
func (c *Client) Done() <-chan struct{} {
	return c.conn.Done()
}

// Err returns why the connection was lost.
func (c *Client) Err() error {
	return c.conn.Err()
}

// request is a helper to send a request and get the response
func (c *Client) request(ctx context.Context, method string, params map[string]interface{}) (*models.Response, error) {
	if !c.conn.IsConnected() {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}

	req := models.NewRequest(uuid.New().String(), method, params)
	return c.conn.SendRequest(ctx, req)
}

// CallMethod sends a generic RPC request with the given method and parameters
func (c *Client) CallMethod(ctx context.Context, method string, params map[string]interface{}) (map[string]interface{}, error) {
	resp, err := c.request(ctx, method, params)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, &RPCError{Method: method, Code: resp.Error.Code, Message: resp.GetError()}
	}

	return resp.Result, nil
}

// Ping sends a ping request to test connectivity
func (c *Client) Ping(ctx context.Context) (map[string]interface{}, error) {
	return c.CallMethod(ctx, "ping", nil)
}

// Subscribe installs handler for eventTypes and asks the bridge to start
// sending those events. Events of all the given types reach handler in the
// order the bridge sent them.
func (c *Client) Subscribe(ctx context.Context, handler EventHandler, eventTypes ...string) error {
	if err := c.conn.Handle(handler, eventTypes...); err != nil {
		return err
	}
	_, err := c.CallMethod(ctx, "events.subscribe", map[string]interface{}{
		"types": eventTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %v: %w", eventTypes, err)
	}
	return nil
}
