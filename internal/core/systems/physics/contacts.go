package physics

import (
	"sort"

	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/observability/log"
	"github.com/zeusync/zengine/pkg/generic"
)

// DefaultEvictAfter is how many updates an inactive contact record is kept
// before it is dropped.
const DefaultEvictAfter = 60

// Manifold is one contact manifold reported by a physics step.
type Manifold interface {
	// NumContacts returns the number of contact points in the manifold.
	NumContacts() int
	// Bodies returns the user data of both participating bodies.
	Bodies() (a, b any)
}

// ManifoldSource lists the manifolds of the step that just completed.
type ManifoldSource interface {
	Manifolds() []Manifold
}

// ContactListener hears one call per entity pair whenever contact between
// the pair starts or stops.
type ContactListener interface {
	ContactBegan(pair models.Pair, m Manifold)
	ContactEnded(pair models.Pair)
}

type contactRecord struct {
	pair     models.Pair
	lastSeen uint64
	manifold Manifold
	active   bool
}

// ContactCache turns the unordered per-step manifold lists of a physics
// engine into edge triggered began/ended notifications per entity pair.
//
// Frames are counted by Update itself, so a physics step that never runs
// cannot make a live contact look stale. Whether a pair is touching is an
// explicit flag on its record rather than derived from frame arithmetic.
type ContactCache struct {
	log        *log.Logger
	frame      uint64
	evictAfter uint64
	records    map[models.Pair]*contactRecord
	listeners  []ContactListener
	recycler   *generic.Pool[*contactRecord]
	ended      []*contactRecord
}

// NewContactCache creates a cache that drops inactive records after
// evictAfter updates. Non-positive values select DefaultEvictAfter.
func NewContactCache(evictAfter int, logger *log.Logger) *ContactCache {
	if evictAfter <= 0 {
		evictAfter = DefaultEvictAfter
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &ContactCache{
		log:        logger.Named("contacts"),
		evictAfter: uint64(evictAfter),
		records:    make(map[models.Pair]*contactRecord),
		recycler: generic.NewPool(
			func() *contactRecord { return &contactRecord{} },
			func(r *contactRecord) { *r = contactRecord{} },
		),
	}
}

// AddListener subscribes l to began/ended notifications.
func (c *ContactCache) AddListener(l ContactListener) {
	c.listeners = append(c.listeners, l)
}

// Frame returns the number of completed updates.
func (c *ContactCache) Frame() uint64 { return c.frame }

// Len returns the number of records currently held, active or not.
func (c *ContactCache) Len() int { return len(c.records) }

// Active returns the number of pairs currently in contact.
func (c *ContactCache) Active() int {
	n := 0
	for _, r := range c.records {
		if r.active {
			n++
		}
	}
	return n
}

// Update consumes the manifolds of one physics step. Manifolds without
// contact points or without an entity tag on both bodies are skipped.
func (c *ContactCache) Update(src ManifoldSource) {
	c.frame++

	for _, m := range src.Manifolds() {
		if m == nil || m.NumContacts() <= 0 {
			continue
		}
		ua, ub := m.Bodies()
		a, okA := EntityOf(ua)
		b, okB := EntityOf(ub)
		if !okA || !okB || a == b {
			continue
		}

		key := models.MakePair(a, b)
		rec, ok := c.records[key]
		if !ok {
			rec = c.recycler.Get()
			rec.pair = key
			c.records[key] = rec
		}
		rec.lastSeen = c.frame
		rec.manifold = m
		if !rec.active {
			rec.active = true
			c.log.Debug("contact began",
				log.Uint64("a", uint64(key.A)),
				log.Uint64("b", uint64(key.B)),
				log.Uint64("frame", c.frame),
			)
			for _, l := range c.listeners {
				l.ContactBegan(key, m)
			}
		}
	}

	c.ended = c.ended[:0]
	for key, rec := range c.records {
		switch {
		case rec.active && rec.lastSeen != c.frame:
			rec.active = false
			rec.manifold = nil
			c.ended = append(c.ended, rec)
		case !rec.active && c.frame-rec.lastSeen > c.evictAfter:
			delete(c.records, key)
			c.recycler.Put(rec)
		}
	}

	sort.Slice(c.ended, func(i, j int) bool {
		pi, pj := c.ended[i].pair, c.ended[j].pair
		if pi.A != pj.A {
			return pi.A < pj.A
		}
		return pi.B < pj.B
	})
	for _, rec := range c.ended {
		c.log.Debug("contact ended",
			log.Uint64("a", uint64(rec.pair.A)),
			log.Uint64("b", uint64(rec.pair.B)),
			log.Uint64("frame", c.frame),
		)
		for _, l := range c.listeners {
			l.ContactEnded(rec.pair)
		}
	}
}

// Contact returns the manifold between e1 and e2 if they touched during
// the latest update. The manifold is only valid until the next step.
func (c *ContactCache) Contact(e1, e2 models.EntityID) (Manifold, bool) {
	rec, ok := c.records[models.MakePair(e1, e2)]
	if !ok || !rec.active || rec.lastSeen != c.frame {
		return nil, false
	}
	return rec.manifold, true
}
