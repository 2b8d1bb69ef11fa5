// Package bridgetest serves an ax.API over the bridge protocol so the
// bridge client can be tested against axtest.Runtime.
package bridgetest

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/models"
	"github.com/yourusername/wise/internal/types"
)

// Server answers bridge requests from one client using an ax.API.
type Server struct {
	api      ax.API
	listener net.Listener
	path     string

	mu         sync.Mutex
	conn       net.Conn
	subscribed map[string]bool
	methods    []string
	failing    map[string]bool
}

// NewServer starts serving api on a fresh socket and returns the server.
// Notifications raised by api are forwarded as events.
func NewServer(t *testing.T, api ax.API) *Server {
	t.Helper()
	dir, err := os.MkdirTemp("", "wise")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "bridge.sock")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &Server{
		api:        api,
		listener:   l,
		path:       path,
		subscribed: make(map[string]bool),
		failing:    make(map[string]bool),
	}
	api.SetNotificationHandler(func(element foreign.Handle, n ax.Notification, context uintptr) {
		s.Send(models.EventNotification, map[string]interface{}{
			"element":      uint64(element),
			"notification": string(n),
			"context":      uint64(context),
		})
	})

	t.Cleanup(func() {
		l.Close()
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
		os.RemoveAll(dir)
	})

	go s.serve()
	return s
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Methods returns the methods called so far.
func (s *Server) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.methods...)
}

// Fail makes method answer with an error.
func (s *Server) Fail(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[method] = true
}

// SendKey pushes a key event if the client subscribed to it.
func (s *Server) SendKey(press bool, key string) {
	eventType := models.EventKeyRelease
	if press {
		eventType = models.EventKeyPress
	}
	s.Send(eventType, map[string]interface{}{"key": key})
}

// Send pushes an event if the client subscribed to its type.
func (s *Server) Send(eventType string, data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.subscribed[eventType] {
		return
	}
	s.write(models.NewEvent(eventType, data))
}

// write must be called with mu held.
func (s *Server) write(env *models.MessageEnvelope) {
	data, err := env.Encode()
	if err != nil {
		return
	}
	s.conn.Write(data)
}

func (s *Server) serve() {
	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		var env models.MessageEnvelope
		if err := json.Unmarshal(line, &env); err != nil || env.Request == nil {
			continue
		}
		// Requests run concurrently, as handlers on the client may call
		// back while another request is waiting.
		go s.answer(env.Request)
	}
}

func (s *Server) answer(req *models.Request) {
	s.mu.Lock()
	s.methods = append(s.methods, req.Method)
	failing := s.failing[req.Method]
	s.mu.Unlock()

	var reply *models.MessageEnvelope
	if failing {
		reply = models.NewErrorResponse(req.ID, -1, "injected failure")
	} else if result, ok := s.execute(req.Method, params(req.Params)); ok {
		reply = models.NewResponse(req.ID, result)
	} else {
		reply = models.NewErrorResponse(req.ID, -32601, "unsupported request: "+req.Method)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.write(reply)
	}
}

type params map[string]interface{}

func (p params) handle(key string) foreign.Handle {
	return foreign.Handle(p.int(key))
}

func (p params) int(key string) int {
	f, _ := p[key].(float64)
	return int(f)
}

func (p params) float(key string) float64 {
	f, _ := p[key].(float64)
	return f
}

func (p params) str(key string) string {
	s, _ := p[key].(string)
	return s
}

type result = map[string]interface{}

func handleResult(h foreign.Handle) result {
	return result{"handle": uint64(h)}
}

func (s *Server) execute(method string, p params) (result, bool) {
	api := s.api
	switch method {
	case "ping":
		return result{"pong": true}, true
	case "events.subscribe":
		names, _ := p["types"].([]interface{})
		s.mu.Lock()
		for _, t := range names {
			if name, ok := t.(string); ok {
				s.subscribed[name] = true
			}
		}
		s.mu.Unlock()
		return result{}, true

	case "cf.retain":
		return handleResult(api.Retain(p.handle("handle"))), true
	case "cf.release":
		api.Release(p.handle("handle"))
		return result{}, true
	case "cf.retainCount":
		return result{"count": api.RetainCount(p.handle("handle"))}, true
	case "cf.createString":
		return handleResult(api.CreateString(p.str("value"))), true
	case "cf.stringValue":
		v, ok := api.StringValue(p.handle("handle"))
		if !ok {
			return nil, false
		}
		return result{"value": v}, true
	case "cf.arrayCount":
		return result{"count": api.ArrayCount(p.handle("handle"))}, true
	case "cf.arrayValueAt":
		return handleResult(api.ArrayValueAt(p.handle("handle"), p.int("index"))), true

	case "ax.copyAttributeValue":
		h, code := api.CopyAttributeValue(p.handle("element"), p.handle("attribute"))
		return result{"handle": uint64(h), "code": int(code)}, true
	case "ax.setAttributeValue":
		code := api.SetAttributeValue(p.handle("element"), p.handle("attribute"), p.handle("value"))
		return result{"code": int(code)}, true
	case "ax.createApplication":
		return handleResult(api.CreateApplication(p.int("pid"))), true
	case "ax.pid":
		pid, code := api.ElementPID(p.handle("element"))
		return result{"pid": pid, "code": int(code)}, true
	case "ax.windowNumber":
		n, code := api.WindowNumber(p.handle("element"))
		return result{"windowNumber": n, "code": int(code)}, true
	case "ax.createValue":
		switch p.str("type") {
		case "point":
			return handleResult(api.CreatePointValue(types.Point{X: p.float("x"), Y: p.float("y")})), true
		case "size":
			return handleResult(api.CreateSizeValue(types.Size{Width: p.float("width"), Height: p.float("height")})), true
		}
		return nil, false
	case "ax.isProcessTrusted":
		prompt, _ := p["prompt"].(bool)
		trusted, ok := api.IsProcessTrusted(prompt)
		if !ok {
			return nil, false
		}
		return result{"trusted": trusted}, true
	case "ax.addNotification":
		code := api.AddNotification(p.int("pid"), p.handle("element"), ax.Notification(p.str("notification")), uintptr(p.int("context")))
		return result{"code": int(code)}, true

	case "ns.runningApplications":
		return handleResult(api.RunningApplications(p.handle("bundleId"))), true
	case "ns.runningApplicationForPID":
		return handleResult(api.RunningApplicationForPID(p.int("pid"))), true
	case "ns.frontmostApplication":
		return handleResult(api.FrontmostApplication()), true
	case "ns.processIdentifier":
		return result{"pid": api.ProcessIdentifier(p.handle("handle"))}, true
	case "ns.bundleIdentifier":
		return handleResult(api.BundleIdentifier(p.handle("handle"))), true
	case "ns.mainScreenFrame":
		frame, ok := api.MainScreenFrame()
		if !ok {
			return result{}, true
		}
		return result{"frame": result{
			"x": frame.X, "y": frame.Y, "width": frame.Width, "height": frame.Height,
		}}, true
	}
	return nil, false
}
