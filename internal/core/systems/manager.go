package systems

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/zengine/internal/core/observability/log"
)

var (
	ErrSystemExists   = errors.New("system already registered")
	ErrSystemNotFound = errors.New("system not found")
)

// processedCounter is implemented by systems embedding Base.
type processedCounter interface {
	Processed() uint64
}

type entry struct {
	system   System
	priority Priority
	seq      int
	enabled  bool
	metrics  Metrics
}

// Manager runs registered systems in a fixed order: higher priority first,
// ties broken by registration order. It is single threaded; every Update
// runs each enabled system to completion before starting the next.
type Manager struct {
	log     *log.Logger
	entries []*entry
	byName  map[string]*entry
	seq     int
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{log: logger.Named("systems"), byName: make(map[string]*entry)}
}

// Register adds s with the given priority.
func (m *Manager) Register(s System, priority Priority) error {
	name := s.Name()
	if _, ok := m.byName[name]; ok {
		return errors.Wrapf(ErrSystemExists, "system %q", name)
	}
	e := &entry{system: s, priority: priority, seq: m.seq, enabled: true}
	m.seq++
	m.entries = append(m.entries, e)
	m.byName[name] = e
	sort.SliceStable(m.entries, func(i, j int) bool {
		if m.entries[i].priority != m.entries[j].priority {
			return m.entries[i].priority > m.entries[j].priority
		}
		return m.entries[i].seq < m.entries[j].seq
	})
	m.log.Debug("system registered", log.String("system", name), log.Uint16("priority", uint16(priority)))
	return nil
}

// Get returns the system registered under name.
func (m *Manager) Get(name string) (System, bool) {
	e, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return e.system, true
}

// Enable resumes a disabled system.
func (m *Manager) Enable(name string) error { return m.setEnabled(name, true) }

// Disable skips a system on subsequent updates.
func (m *Manager) Disable(name string) error { return m.setEnabled(name, false) }

func (m *Manager) setEnabled(name string, on bool) error {
	e, ok := m.byName[name]
	if !ok {
		return errors.Wrapf(ErrSystemNotFound, "system %q", name)
	}
	e.enabled = on
	return nil
}

// Order returns the names of all systems in execution order.
func (m *Manager) Order() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.system.Name()
	}
	return out
}

// Update runs every enabled system once.
func (m *Manager) Update(dt float64) {
	for _, e := range m.entries {
		if !e.enabled {
			continue
		}
		var before uint64
		counter, counts := e.system.(processedCounter)
		if counts {
			before = counter.Processed()
		}

		start := time.Now()
		e.system.Update(dt)
		elapsed := time.Since(start)

		mt := &e.metrics
		mt.ExecutionCount++
		mt.TotalExecutionTime += elapsed
		mt.AverageExecutionTime = mt.TotalExecutionTime / time.Duration(mt.ExecutionCount)
		if elapsed > mt.MaxExecutionTime {
			mt.MaxExecutionTime = elapsed
		}
		mt.LastExecutionTime = start
		if counts {
			mt.EntitiesProcessed += counter.Processed() - before
		}
	}
}

// Metrics returns the metrics recorded for the named system.
func (m *Manager) Metrics(name string) (Metrics, bool) {
	e, ok := m.byName[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}
