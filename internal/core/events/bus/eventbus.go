package bus

import (
	"reflect"

	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/observability/log"
)

type listener struct {
	required *models.Bitmask
	handler  any
	active   bool
}

// Manager is a synchronous, type keyed publish/subscribe hub. Each event
// type has its own ordered listener list; every listener carries the mask
// of components its target must own.
//
// Manager is not safe for concurrent use.
type Manager struct {
	world    MaskSource
	log      *log.Logger
	handlers map[reflect.Type][]*listener
	metrics  Metrics
}

// New creates a Manager that gates listeners with masks from world.
func New(world MaskSource, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{
		world:    world,
		log:      logger.Named("events"),
		handlers: make(map[reflect.Type][]*listener),
	}
}

// Register appends handler to the listeners of T and returns its index.
// handler only runs for events whose target owns every component in
// required; a nil or empty mask accepts every target.
func Register[T Event](m *Manager, required *models.Bitmask, handler func(T)) int {
	typ := reflect.TypeFor[T]()
	l := &listener{required: required.Clone(), handler: handler, active: true}
	m.handlers[typ] = append(m.handlers[typ], l)
	idx := len(m.handlers[typ]) - 1
	m.log.Debug("listener registered",
		log.String("event", typ.String()),
		log.Int("index", idx),
		log.String("mask", l.required.String()),
	)
	return idx
}

// Unregister deactivates the listener at index. The index is not reused.
func Unregister[T Event](m *Manager, index int) bool {
	ls := m.handlers[reflect.TypeFor[T]()]
	if index < 0 || index >= len(ls) || !ls[index].active {
		return false
	}
	ls[index].active = false
	ls[index].handler = nil
	return true
}

// Listeners returns the number of active listeners for T.
func Listeners[T Event](m *Manager) int {
	n := 0
	for _, l := range m.handlers[reflect.TypeFor[T]()] {
		if l.active {
			n++
		}
	}
	return n
}

// Send delivers event to every listener of T whose required mask is
// satisfied by the target's current mask. Sending a type nobody listens
// to does nothing. Listeners registered while Send runs first hear the
// next event.
func Send[T Event](m *Manager, event T) {
	ls, ok := m.handlers[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	m.metrics.Sent++

	var mask *models.Bitmask
	if m.world != nil {
		mask, _ = m.world.Mask(event.Target())
	}
	for _, l := range ls {
		if !l.active {
			continue
		}
		if !mask.HasComponents(l.required) {
			m.metrics.Filtered++
			continue
		}
		m.metrics.Delivered++
		l.handler.(func(T))(event)
	}
}

// Metrics returns a snapshot of the delivery counters.
func (m *Manager) Metrics() Metrics { return m.metrics }
