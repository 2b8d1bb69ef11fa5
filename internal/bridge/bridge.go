// Package bridge implements the accessibility runtime over a connection to
// the accessibility bridge process.
//
// Transport failures surface the way the native runtime reports failure:
// calls returning a handle return Null, calls returning a status code return
// kAXErrorCannotComplete. Each failure is logged.
package bridge

import (
	"context"
	"sync"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/client"
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/hotkeys"
	"github.com/yourusername/wise/internal/logging"
	"github.com/yourusername/wise/internal/models"
	"github.com/yourusername/wise/internal/types"
)

// Bridge is an ax.API backed by the bridge process.
type Bridge struct {
	client *client.Client

	mu      sync.RWMutex
	handler ax.NotificationHandler
}

var _ ax.API = (*Bridge)(nil)

// New creates a Bridge over c. Call Start before subscribing to
// notifications.
func New(c *client.Client) *Bridge {
	return &Bridge{client: c}
}

// Start asks the bridge to forward accessibility notifications. They are
// delivered to the notification handler on a goroutine of their own.
func (b *Bridge) Start(ctx context.Context) error {
	return b.client.Subscribe(ctx, b.dispatch, models.EventNotification)
}

// ListenKeys delivers global key presses and releases to fn, in order, on a
// goroutine separate from notifications.
func (b *Bridge) ListenKeys(ctx context.Context, fn func(hotkeys.Event)) error {
	return b.client.Subscribe(ctx, func(ev *models.Event) {
		fn(hotkeys.Event{
			Press: ev.EventType == models.EventKeyPress,
			Key:   hotkeys.ParseKey(toString(ev.Data["key"])),
		})
	}, models.EventKeyPress, models.EventKeyRelease)
}

func (b *Bridge) dispatch(ev *models.Event) {
	b.mu.RLock()
	handler := b.handler
	b.mu.RUnlock()

	if handler == nil {
		logging.Debug().Msg("bridge: notification before a handler was installed")
		return
	}
	handler(
		toHandle(ev.Data["element"]),
		ax.Notification(toString(ev.Data["notification"])),
		uintptr(interfaceToInt(ev.Data["context"])),
	)
}

// call sends one request and logs a failure.
func (b *Bridge) call(method string, params map[string]interface{}) (map[string]interface{}, bool) {
	result, err := b.client.CallMethod(context.Background(), method, params)
	if err != nil {
		logging.Warn().Err(err).Str("method", method).Msg("bridge call failed")
		return nil, false
	}
	return result, true
}

func (b *Bridge) handle(method string, params map[string]interface{}) foreign.Handle {
	result, ok := b.call(method, params)
	if !ok {
		return foreign.Null
	}
	return toHandle(result["handle"])
}

func (b *Bridge) code(method string, params map[string]interface{}) (map[string]interface{}, ax.Code) {
	result, ok := b.call(method, params)
	if !ok {
		return nil, ax.ErrorCannotComplete
	}
	return result, ax.Code(interfaceToInt(result["code"]))
}

func (b *Bridge) Retain(h foreign.Handle) foreign.Handle {
	b.call("cf.retain", map[string]interface{}{"handle": handleParam(h)})
	return h
}

func (b *Bridge) Release(h foreign.Handle) {
	b.call("cf.release", map[string]interface{}{"handle": handleParam(h)})
}

func (b *Bridge) RetainCount(h foreign.Handle) int {
	result, ok := b.call("cf.retainCount", map[string]interface{}{"handle": handleParam(h)})
	if !ok {
		return 0
	}
	return int(interfaceToInt(result["count"]))
}

func (b *Bridge) CreateString(s string) foreign.Handle {
	return b.handle("cf.createString", map[string]interface{}{"value": s})
}

func (b *Bridge) StringValue(h foreign.Handle) (string, bool) {
	result, ok := b.call("cf.stringValue", map[string]interface{}{"handle": handleParam(h)})
	if !ok {
		return "", false
	}
	s, ok := result["value"].(string)
	return s, ok
}

func (b *Bridge) ArrayCount(array foreign.Handle) int {
	result, ok := b.call("cf.arrayCount", map[string]interface{}{"handle": handleParam(array)})
	if !ok {
		return 0
	}
	return int(interfaceToInt(result["count"]))
}

func (b *Bridge) ArrayValueAt(array foreign.Handle, index int) foreign.Handle {
	return b.handle("cf.arrayValueAt", map[string]interface{}{
		"handle": handleParam(array),
		"index":  index,
	})
}

func (b *Bridge) CopyAttributeValue(element, attribute foreign.Handle) (foreign.Handle, ax.Code) {
	result, code := b.code("ax.copyAttributeValue", map[string]interface{}{
		"element":   handleParam(element),
		"attribute": handleParam(attribute),
	})
	if result == nil {
		return foreign.Null, code
	}
	return toHandle(result["handle"]), code
}

func (b *Bridge) SetAttributeValue(element, attribute, value foreign.Handle) ax.Code {
	_, code := b.code("ax.setAttributeValue", map[string]interface{}{
		"element":   handleParam(element),
		"attribute": handleParam(attribute),
		"value":     handleParam(value),
	})
	return code
}

func (b *Bridge) CreateApplication(pid int) foreign.Handle {
	return b.handle("ax.createApplication", map[string]interface{}{"pid": pid})
}

func (b *Bridge) ElementPID(element foreign.Handle) (int, ax.Code) {
	result, code := b.code("ax.pid", map[string]interface{}{"element": handleParam(element)})
	if result == nil {
		return 0, code
	}
	return int(interfaceToInt(result["pid"])), code
}

func (b *Bridge) WindowNumber(element foreign.Handle) (uint32, ax.Code) {
	result, code := b.code("ax.windowNumber", map[string]interface{}{"element": handleParam(element)})
	if result == nil {
		return 0, code
	}
	return uint32(interfaceToInt(result["windowNumber"])), code
}

func (b *Bridge) CreatePointValue(p types.Point) foreign.Handle {
	return b.handle("ax.createValue", map[string]interface{}{"type": "point", "x": p.X, "y": p.Y})
}

func (b *Bridge) CreateSizeValue(s types.Size) foreign.Handle {
	return b.handle("ax.createValue", map[string]interface{}{"type": "size", "width": s.Width, "height": s.Height})
}

func (b *Bridge) RunningApplications(bundleID foreign.Handle) foreign.Handle {
	return b.handle("ns.runningApplications", map[string]interface{}{"bundleId": handleParam(bundleID)})
}

func (b *Bridge) RunningApplicationForPID(pid int) foreign.Handle {
	return b.handle("ns.runningApplicationForPID", map[string]interface{}{"pid": pid})
}

func (b *Bridge) FrontmostApplication() foreign.Handle {
	return b.handle("ns.frontmostApplication", nil)
}

func (b *Bridge) ProcessIdentifier(app foreign.Handle) int {
	result, ok := b.call("ns.processIdentifier", map[string]interface{}{"handle": handleParam(app)})
	if !ok {
		return 0
	}
	return int(interfaceToInt(result["pid"]))
}

func (b *Bridge) BundleIdentifier(app foreign.Handle) foreign.Handle {
	return b.handle("ns.bundleIdentifier", map[string]interface{}{"handle": handleParam(app)})
}

func (b *Bridge) MainScreenFrame() (types.Rect, bool) {
	result, ok := b.call("ns.mainScreenFrame", nil)
	if !ok {
		return types.Rect{}, false
	}
	return parseFrame(result["frame"])
}

func (b *Bridge) IsProcessTrusted(prompt bool) (bool, bool) {
	result, ok := b.call("ax.isProcessTrusted", map[string]interface{}{"prompt": prompt})
	if !ok {
		return false, false
	}
	return toBool(result["trusted"]), true
}

func (b *Bridge) AddNotification(pid int, element foreign.Handle, notification ax.Notification, context uintptr) ax.Code {
	_, code := b.code("ax.addNotification", map[string]interface{}{
		"pid":          pid,
		"element":      handleParam(element),
		"notification": string(notification),
		"context":      uint64(context),
	})
	return code
}

func (b *Bridge) SetNotificationHandler(handler ax.NotificationHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
}
