package resource

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/zengine/internal/core/observability/log"
	"github.com/zeusync/zengine/pkg/generic"
)

// Source fetches the raw bytes of a named resource. It may be called from
// several goroutines at once by Preload.
type Source func(ctx context.Context, name string) ([]byte, error)

// Decoder turns raw bytes into a resource value.
type Decoder[T any] func(name string, data []byte) (T, error)

// FileSource reads resources from files below root.
func FileSource(root string) Source {
	return func(_ context.Context, name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(root, name))
	}
}

type entry[T any] struct {
	handle generic.Handle[T]
	sum    uint64
}

type loaded[T any] struct {
	value T
	sum   uint64
}

// Library loads named resources once and hands out pool handles to them.
// Renderers, audio mixers and font packers keep only the handle and read
// the value through Get, so a resource can be released or reloaded
// between frames without leaving stale pointers behind.
//
// Every entry remembers the xxhash of the bytes it was decoded from;
// Reload skips decoding when the source did not change.
//
// Library is not safe for concurrent use; only fetch and decode run in
// parallel.
type Library[T any] struct {
	kind   string
	log    *log.Logger
	source Source
	decode Decoder[T]
	pool   *generic.HandlePool[T]
	byName map[string]entry[T]
}

// NewLibrary creates a library of the given kind, e.g. "texture".
func NewLibrary[T any](kind string, source Source, decode Decoder[T], logger *log.Logger) *Library[T] {
	if logger == nil {
		logger = log.Nop()
	}
	return &Library[T]{
		kind:   kind,
		log:    logger.Named("resource." + kind),
		source: source,
		decode: decode,
		pool:   generic.NewHandlePool[T](),
		byName: make(map[string]entry[T]),
	}
}

func (l *Library[T]) fetch(ctx context.Context, name string) (loaded[T], error) {
	data, err := l.source(ctx, name)
	if err != nil {
		return loaded[T]{}, err
	}
	v, err := l.decode(name, data)
	if err != nil {
		return loaded[T]{}, err
	}
	return loaded[T]{value: v, sum: xxhash.Sum64(data)}, nil
}

// Lookup returns the handle of an already loaded resource.
func (l *Library[T]) Lookup(name string) (generic.Handle[T], bool) {
	e, ok := l.byName[name]
	return e.handle, ok
}

// Checksum returns the xxhash of the bytes name was last decoded from.
func (l *Library[T]) Checksum(name string) (uint64, bool) {
	e, ok := l.byName[name]
	return e.sum, ok
}

// Load returns the handle for name, loading it on first use.
func (l *Library[T]) Load(ctx context.Context, name string) (generic.Handle[T], error) {
	if h, ok := l.Lookup(name); ok {
		return h, nil
	}
	res, err := l.fetch(ctx, name)
	if err != nil {
		return generic.Handle[T]{}, errors.Wrapf(err, "load %s %q", l.kind, name)
	}
	return l.insert(name, res), nil
}

func (l *Library[T]) insert(name string, res loaded[T]) generic.Handle[T] {
	h := l.pool.NewHandle(res.value)
	l.byName[name] = entry[T]{handle: h, sum: res.sum}
	l.log.Debug("resource loaded", log.String("name", name), log.String("handle", h.String()))
	return h
}

// Preload loads every missing name concurrently. Values are inserted into
// the library on the calling goroutine once all loads succeeded; if any
// load fails nothing is inserted.
func (l *Library[T]) Preload(ctx context.Context, names ...string) error {
	missing := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := l.Lookup(n); !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	results := make([]loaded[T], len(missing))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range missing {
		g.Go(func() error {
			res, err := l.fetch(gctx, name)
			if err != nil {
				return errors.Wrapf(err, "load %s %q", l.kind, name)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range missing {
		l.insert(name, results[i])
	}
	return nil
}

// Get returns the resource h refers to.
func (l *Library[T]) Get(h generic.Handle[T]) (*T, bool) {
	return l.pool.Get(h)
}

// Release frees the named resource; every handle to it becomes invalid.
func (l *Library[T]) Release(name string) bool {
	e, ok := l.byName[name]
	if !ok {
		return false
	}
	delete(l.byName, name)
	l.log.Debug("resource released", log.String("name", name))
	return l.pool.Free(e.handle)
}

// Reload fetches a loaded resource again and, when its bytes changed,
// replaces the value in place. Existing handles keep working and observe
// the new value. It reports whether the value was replaced.
func (l *Library[T]) Reload(ctx context.Context, name string) (bool, error) {
	e, ok := l.byName[name]
	if !ok {
		return false, errors.Wrapf(ErrNotLoaded, "%s %q", l.kind, name)
	}
	data, err := l.source(ctx, name)
	if err != nil {
		return false, errors.Wrapf(err, "reload %s %q", l.kind, name)
	}
	sum := xxhash.Sum64(data)
	if sum == e.sum {
		return false, nil
	}
	v, err := l.decode(name, data)
	if err != nil {
		return false, errors.Wrapf(err, "reload %s %q", l.kind, name)
	}
	l.pool.Set(e.handle, v)
	l.byName[name] = entry[T]{handle: e.handle, sum: sum}
	l.log.Debug("resource reloaded", log.String("name", name))
	return true, nil
}

// Len returns the number of loaded resources.
func (l *Library[T]) Len() int { return l.pool.Len() }
