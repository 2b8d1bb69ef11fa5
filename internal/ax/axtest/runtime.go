// Package axtest provides an in-memory accessibility runtime for tests. It
// keeps real reference counts so tests can assert that every handle the
// program acquires is released exactly once.
package axtest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/types"
)

type kind int

const (
	kindString kind = iota
	kindArray
	kindRunningApp
	kindAppElement
	kindWindow
	kindPoint
	kindSize
)

type object struct {
	kind     kind
	count    int
	baseline int // references held by the runtime itself

	str      string
	items    []foreign.Handle
	pid      int
	bundle   foreign.Handle
	number   uint32
	position types.Point
	size     types.Size
}

// SetCall records one successful attribute write.
type SetCall struct {
	Window    foreign.Handle
	Attribute string
	Point     types.Point
	Size      types.Size
}

// Subscription records one successful AddNotification call.
type Subscription struct {
	PID          int
	Element      foreign.Handle
	Notification ax.Notification
	Context      uintptr
}

type appState struct {
	running  foreign.Handle
	windows  []foreign.Handle
	focused  foreign.Handle
	quit     bool
	bundleID string
}

// Runtime is a fake ax.API.
type Runtime struct {
	mu      sync.Mutex
	objects map[foreign.Handle]*object
	next    foreign.Handle

	apps      map[int]*appState
	frontmost int
	screen    *types.Rect
	trusted   bool
	prompted  bool

	setFailures  map[foreign.Handle]map[string]ax.Code
	copyFailures map[foreign.Handle]map[string]ax.Code
	subFailures  map[foreign.Handle]ax.Code
	failStrings  bool
	failApps     bool

	sets          []SetCall
	subscriptions []Subscription
	misuse        []string
	handler       ax.NotificationHandler
}

var _ ax.API = (*Runtime)(nil)

// NewRuntime returns an empty runtime that trusts the process.
func NewRuntime() *Runtime {
	return &Runtime{
		objects:      make(map[foreign.Handle]*object),
		next:         0x1000,
		apps:         make(map[int]*appState),
		trusted:      true,
		setFailures:  make(map[foreign.Handle]map[string]ax.Code),
		copyFailures: make(map[foreign.Handle]map[string]ax.Code),
		subFailures:  make(map[foreign.Handle]ax.Code),
	}
}

// newObject must be called with mu held.
func (r *Runtime) newObject(o *object) foreign.Handle {
	h := r.next
	r.next += 8
	if o.count == 0 {
		o.count = 1
	}
	r.objects[h] = o
	return h
}

func (r *Runtime) live(h foreign.Handle) (*object, bool) {
	o, ok := r.objects[h]
	if !ok || o.count <= 0 {
		return nil, false
	}
	return o, true
}

// AddApplication registers a running application.
func (r *Runtime) AddApplication(pid int, bundleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bundle foreign.Handle
	if bundleID != "" {
		bundle = r.newObject(&object{kind: kindString, str: bundleID, baseline: 1})
	}
	running := r.newObject(&object{kind: kindRunningApp, pid: pid, bundle: bundle, baseline: 1})
	r.apps[pid] = &appState{running: running, bundleID: bundleID}
}

// AddWindow adds a window to the application with the given pid and
// returns its element handle.
func (r *Runtime) AddWindow(pid int, number uint32, frame types.Rect) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[pid]
	if !ok {
		panic(fmt.Sprintf("axtest: no application with pid %d", pid))
	}
	h := r.newObject(&object{
		kind:     kindWindow,
		pid:      pid,
		number:   number,
		position: frame.Origin(),
		size:     frame.Size(),
		baseline: 1,
	})
	app.windows = append(app.windows, h)
	return h
}

// SetFocusedWindow makes window the focused window of pid. Null clears it.
func (r *Runtime) SetFocusedWindow(pid int, window foreign.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[pid].focused = window
}

// SetFrontmost makes pid the frontmost application.
func (r *Runtime) SetFrontmost(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frontmost = pid
}

// SetScreen sets the main screen frame.
func (r *Runtime) SetScreen(frame types.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screen = &frame
}

// SetTrusted sets the answer to IsProcessTrusted.
func (r *Runtime) SetTrusted(trusted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trusted = trusted
}

// Quit marks the application with pid as exited. Its windows become
// invalid elements.
func (r *Runtime) Quit(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[pid].quit = true
}

// FailSet makes writes of attribute on element return code.
func (r *Runtime) FailSet(element foreign.Handle, attribute string, code ax.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setFailures[element] == nil {
		r.setFailures[element] = make(map[string]ax.Code)
	}
	r.setFailures[element][attribute] = code
}

// FailCopy makes reads of attribute on element return code. Since
// application elements are created on demand, element Null matches any
// application element.
func (r *Runtime) FailCopy(element foreign.Handle, attribute string, code ax.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.copyFailures[element] == nil {
		r.copyFailures[element] = make(map[string]ax.Code)
	}
	r.copyFailures[element][attribute] = code
}

// FailSubscribe makes AddNotification on element return code.
func (r *Runtime) FailSubscribe(element foreign.Handle, code ax.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subFailures[element] = code
}

// FailStrings makes CreateString return Null.
func (r *Runtime) FailStrings(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failStrings = fail
}

// FailApplications makes CreateApplication return Null.
func (r *Runtime) FailApplications(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failApps = fail
}

// Frame returns the current frame of a window.
func (r *Runtime) Frame(window foreign.Handle) types.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.objects[window]
	return types.Rect{X: o.position.X, Y: o.position.Y, Width: o.size.Width, Height: o.size.Height}
}

// MoveWindow changes a window frame as the application itself would,
// without recording a SetCall.
func (r *Runtime) MoveWindow(window foreign.Handle, frame types.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.objects[window]
	o.position = frame.Origin()
	o.size = frame.Size()
}

// SetCalls returns the successful attribute writes so far.
func (r *Runtime) SetCalls() []SetCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SetCall(nil), r.sets...)
}

// ResetSetCalls forgets recorded writes.
func (r *Runtime) ResetSetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = nil
}

// Subscriptions returns the successful AddNotification calls so far.
func (r *Runtime) Subscriptions() []Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Subscription(nil), r.subscriptions...)
}

// Prompted reports whether IsProcessTrusted was asked to prompt.
func (r *Runtime) Prompted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompted
}

// Outstanding returns the number of references held by the program that
// have not been released. It is zero when nothing leaked.
func (r *Runtime) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.objects {
		n += o.count - o.baseline
	}
	return n
}

// Misuse returns descriptions of over-releases and uses of dead handles.
func (r *Runtime) Misuse() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.misuse...)
}

// Deliver sends notification for element to every matching subscription
// and returns how many were delivered. The handler runs without the
// runtime lock held, as the real runtime calls back from its run loop.
func (r *Runtime) Deliver(element foreign.Handle, notification ax.Notification) int {
	r.mu.Lock()
	handler := r.handler
	var contexts []uintptr
	for _, s := range r.subscriptions {
		if s.Element == element && s.Notification == notification {
			contexts = append(contexts, s.Context)
		}
	}
	r.mu.Unlock()

	if handler == nil {
		return 0
	}
	for _, ctx := range contexts {
		handler(element, notification, ctx)
	}
	return len(contexts)
}

// Retain implements foreign.Runtime.
func (r *Runtime) Retain(h foreign.Handle) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.live(h)
	if !ok {
		r.misuse = append(r.misuse, fmt.Sprintf("retain of dead handle %#x", h))
		return h
	}
	o.count++
	return h
}

// Release implements foreign.Runtime.
func (r *Runtime) Release(h foreign.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(h)
}

func (r *Runtime) release(h foreign.Handle) {
	o, ok := r.live(h)
	if !ok {
		r.misuse = append(r.misuse, fmt.Sprintf("release of dead handle %#x", h))
		return
	}
	o.count--
	if o.count < o.baseline && o.baseline > 0 {
		r.misuse = append(r.misuse, fmt.Sprintf("over-release of runtime-owned handle %#x", h))
	}
	if o.count == 0 && o.kind == kindArray {
		for _, item := range o.items {
			r.release(item)
		}
	}
}

// RetainCount implements foreign.Runtime.
func (r *Runtime) RetainCount(h foreign.Handle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.objects[h]; ok {
		return o.count
	}
	return 0
}

func (r *Runtime) CreateString(s string) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStrings {
		return foreign.Null
	}
	return r.newObject(&object{kind: kindString, str: s})
}

func (r *Runtime) StringValue(h foreign.Handle) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.live(h)
	if !ok || o.kind != kindString {
		return "", false
	}
	return o.str, true
}

// newArray retains items on behalf of the array. Must be called with mu held.
func (r *Runtime) newArray(items []foreign.Handle) foreign.Handle {
	for _, item := range items {
		r.objects[item].count++
	}
	return r.newObject(&object{kind: kindArray, items: append([]foreign.Handle(nil), items...)})
}

func (r *Runtime) ArrayCount(array foreign.Handle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.live(array)
	if !ok || o.kind != kindArray {
		return 0
	}
	return len(o.items)
}

func (r *Runtime) ArrayValueAt(array foreign.Handle, index int) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.live(array)
	if !ok || o.kind != kindArray || index < 0 || index >= len(o.items) {
		return foreign.Null
	}
	return o.items[index]
}

func (r *Runtime) CopyAttributeValue(element, attribute foreign.Handle) (foreign.Handle, ax.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attr, ok := r.live(attribute)
	if !ok || attr.kind != kindString {
		return foreign.Null, ax.ErrorIllegalArgument
	}
	o, ok := r.live(element)
	if !ok {
		return foreign.Null, ax.ErrorInvalidUIElement
	}
	if code, ok := r.copyFailures[element][attr.str]; ok {
		return foreign.Null, code
	}
	if o.kind == kindAppElement {
		if code, ok := r.copyFailures[foreign.Null][attr.str]; ok {
			return foreign.Null, code
		}
	}
	if app := r.apps[o.pid]; app == nil || app.quit {
		return foreign.Null, ax.ErrorInvalidUIElement
	}

	switch {
	case o.kind == kindAppElement && attr.str == "AXWindows":
		return r.newArray(r.apps[o.pid].windows), ax.Success
	case o.kind == kindAppElement && attr.str == "AXFocusedWindow":
		focused := r.apps[o.pid].focused
		if focused.IsNull() {
			return foreign.Null, ax.Success
		}
		r.objects[focused].count++
		return focused, ax.Success
	case o.kind == kindWindow && attr.str == "AXPosition":
		return r.newObject(&object{kind: kindPoint, position: o.position}), ax.Success
	case o.kind == kindWindow && attr.str == "AXSize":
		return r.newObject(&object{kind: kindSize, size: o.size}), ax.Success
	default:
		return foreign.Null, ax.ErrorAttributeUnsupported
	}
}

func (r *Runtime) SetAttributeValue(element, attribute, value foreign.Handle) ax.Code {
	r.mu.Lock()
	defer r.mu.Unlock()

	attr, ok := r.live(attribute)
	if !ok || attr.kind != kindString {
		return ax.ErrorIllegalArgument
	}
	o, ok := r.live(element)
	if !ok || o.kind != kindWindow {
		return ax.ErrorInvalidUIElement
	}
	if app := r.apps[o.pid]; app == nil || app.quit {
		return ax.ErrorInvalidUIElement
	}
	if code, ok := r.setFailures[element][attr.str]; ok {
		return code
	}
	v, ok := r.live(value)
	if !ok {
		return ax.ErrorIllegalArgument
	}

	switch {
	case attr.str == "AXPosition" && v.kind == kindPoint:
		o.position = v.position
		r.sets = append(r.sets, SetCall{Window: element, Attribute: attr.str, Point: v.position})
	case attr.str == "AXSize" && v.kind == kindSize:
		o.size = v.size
		r.sets = append(r.sets, SetCall{Window: element, Attribute: attr.str, Size: v.size})
	default:
		return ax.ErrorIllegalArgument
	}
	return ax.Success
}

func (r *Runtime) CreateApplication(pid int) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failApps {
		return foreign.Null
	}
	return r.newObject(&object{kind: kindAppElement, pid: pid})
}

func (r *Runtime) ElementPID(element foreign.Handle) (int, ax.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.live(element)
	if !ok || (o.kind != kindWindow && o.kind != kindAppElement) {
		return 0, ax.ErrorInvalidUIElement
	}
	return o.pid, ax.Success
}

func (r *Runtime) WindowNumber(element foreign.Handle) (uint32, ax.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.live(element)
	if !ok || o.kind != kindWindow {
		return 0, ax.ErrorIllegalArgument
	}
	return o.number, ax.Success
}

func (r *Runtime) CreatePointValue(p types.Point) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newObject(&object{kind: kindPoint, position: p})
}

func (r *Runtime) CreateSizeValue(s types.Size) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newObject(&object{kind: kindSize, size: s})
}

func (r *Runtime) RunningApplications(bundleID foreign.Handle) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.live(bundleID)
	if !ok || s.kind != kindString {
		return foreign.Null
	}
	pids := make([]int, 0, len(r.apps))
	for pid := range r.apps {
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	var matches []foreign.Handle
	for _, pid := range pids {
		app := r.apps[pid]
		if !app.quit && app.bundleID == s.str {
			matches = append(matches, app.running)
		}
	}
	return r.newArray(matches)
}

func (r *Runtime) RunningApplicationForPID(pid int) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[pid]
	if !ok || app.quit {
		return foreign.Null
	}
	r.objects[app.running].count++
	return app.running
}

func (r *Runtime) FrontmostApplication() foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[r.frontmost]
	if !ok || app.quit {
		return foreign.Null
	}
	r.objects[app.running].count++
	return app.running
}

func (r *Runtime) ProcessIdentifier(app foreign.Handle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.live(app)
	if !ok || o.kind != kindRunningApp {
		return 0
	}
	return o.pid
}

func (r *Runtime) BundleIdentifier(app foreign.Handle) foreign.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.live(app)
	if !ok || o.kind != kindRunningApp {
		return foreign.Null
	}
	return o.bundle
}

func (r *Runtime) MainScreenFrame() (types.Rect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen == nil {
		return types.Rect{}, false
	}
	return *r.screen, true
}

func (r *Runtime) IsProcessTrusted(prompt bool) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStrings {
		return false, false
	}
	if prompt {
		r.prompted = true
	}
	return r.trusted, true
}

func (r *Runtime) AddNotification(pid int, element foreign.Handle, notification ax.Notification, context uintptr) ax.Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live(element); !ok {
		return ax.ErrorInvalidUIElement
	}
	if code, ok := r.subFailures[element]; ok {
		return code
	}
	for _, s := range r.subscriptions {
		if s.Element == element && s.Notification == notification {
			return ax.ErrorNotificationAlreadyRegistered
		}
	}
	r.subscriptions = append(r.subscriptions, Subscription{
		PID:          pid,
		Element:      element,
		Notification: notification,
		Context:      context,
	})
	return ax.Success
}

func (r *Runtime) SetNotificationHandler(handler ax.NotificationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}
