package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/yourusername/wise/internal/logging"
	"github.com/yourusername/wise/internal/models"
)

// ErrClosed is returned for requests on a closed connection and for
// requests still pending when the connection drops.
var ErrClosed = errors.New("connection closed")

// eventBuffer is how many events of one type may wait for their handler
// before newer ones are dropped.
const eventBuffer = 1024

// EventHandler receives events of one type, one at a time.
type EventHandler func(*models.Event)

// Connection manages the Unix domain socket connection to the bridge.
// Requests may be sent from any goroutine; responses are matched to
// requests by id, so several requests can be in flight at once.
type Connection struct {
	socketPath string
	timeout    time.Duration

	mu      sync.Mutex
	conn    net.Conn
	pending map[string]chan *models.Response
	events  map[string]chan *models.Event
	queues  []chan *models.Event
	done    chan struct{}
	err     error

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// NewConnection creates a new connection instance
func NewConnection(socketPath string, timeout time.Duration) *Connection {
	return &Connection{
		socketPath: socketPath,
		timeout:    timeout,
		pending:    make(map[string]chan *models.Response),
		events:     make(map[string]chan *models.Event),
	}
}

// Connect establishes the Unix domain socket connection and starts reading.
func (c *Connection) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to socket %s: %w", c.socketPath, err)
	}
	c.conn = conn
	c.done = make(chan struct{})
	c.err = nil

	c.wg.Add(1)
	go c.readLoop(conn, c.done)
	return nil
}

// Close closes the connection, stops every event handler and waits for
// them to return.
func (c *Connection) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.stopHandlers()
	c.wg.Wait()
	return err
}

// Done is closed when the current connection is lost or closed.
func (c *Connection) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}

// Err returns why the last connection ended, or nil.
func (c *Connection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// IsConnected returns true if the connection is established
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Handle delivers events of the given types to handler on a goroutine of
// its own, in the order they arrive. Handlers registered by separate calls
// run concurrently. A type can have only one handler.
func (c *Connection) Handle(handler EventHandler, eventTypes ...string) error {
	ch := make(chan *models.Event, eventBuffer)

	c.mu.Lock()
	for _, t := range eventTypes {
		if _, ok := c.events[t]; ok {
			c.mu.Unlock()
			return fmt.Errorf("handler for %s already registered", t)
		}
	}
	for _, t := range eventTypes {
		c.events[t] = ch
	}
	c.queues = append(c.queues, ch)
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for ev := range ch {
			handler(ev)
		}
	}()
	return nil
}

// SendRequest sends a request and waits for its response
func (c *Connection) SendRequest(ctx context.Context, req *models.MessageEnvelope) (*models.Response, error) {
	// Apply timeout if not already set
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	data, err := req.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	id := req.Request.ID
	respChan := make(chan *models.Response, 1)

	c.mu.Lock()
	conn, done := c.conn, c.done
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = respChan
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	if c.timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			c.writeMu.Unlock()
			return nil, fmt.Errorf("failed to set write deadline: %w", err)
		}
	}
	_, err = conn.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("request cancelled or timed out: %w", ctx.Err())
	case <-done:
		return nil, fmt.Errorf("request %s: %w", req.Request.Method, ErrClosed)
	case resp := <-respChan:
		return resp, nil
	}
}

// readLoop routes responses to waiting requests and events to their
// handlers until the connection fails.
func (c *Connection) readLoop(conn net.Conn, done chan struct{}) {
	defer c.wg.Done()

	reader := bufio.NewReader(conn)
	var err error
	for {
		var line []byte
		line, err = reader.ReadBytes('\n')
		if err != nil {
			break
		}

		var envelope models.MessageEnvelope
		if jerr := json.Unmarshal(line, &envelope); jerr != nil {
			logging.Warn().Err(jerr).Msg("bridge: dropping malformed message")
			continue
		}

		switch envelope.Type {
		case models.TypeResponse:
			c.deliverResponse(envelope.Response)
		case models.TypeEvent:
			c.deliverEvent(envelope.Event)
		default:
			logging.Warn().Str("type", envelope.Type).Msg("bridge: unexpected message type")
		}
	}

	c.mu.Lock()
	c.conn = nil
	c.err = err
	close(done)
	c.mu.Unlock()
	conn.Close()
}

func (c *Connection) deliverResponse(resp *models.Response) {
	if resp == nil {
		logging.Warn().Msg("bridge: response envelope has nil response")
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	c.mu.Unlock()
	if !ok {
		logging.Debug().Str("id", resp.ID).Msg("bridge: response for abandoned request")
		return
	}
	select {
	case ch <- resp:
	default:
		logging.Warn().Str("id", resp.ID).Msg("bridge: duplicate response")
	}
}

func (c *Connection) deliverEvent(ev *models.Event) {
	if ev == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.events[ev.EventType]
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
		logging.Warn().Str("eventType", ev.EventType).Msg("bridge: event queue full, dropping event")
	}
}

// stopHandlers ends every handler goroutine.
func (c *Connection) stopHandlers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.queues {
		close(ch)
	}
	c.queues = nil
	c.events = make(map[string]chan *models.Event)
}
