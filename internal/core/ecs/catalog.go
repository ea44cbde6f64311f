package ecs

import (
	"io"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Catalog describes prefabs by name. Component constructors are referenced
// by the name they were registered under in a ConstructorRegistry.
//
//	prefabs:
//	  crate:
//	    components:
//	      - type: transform
//	        params: {x: 4, y: 2}
//	      - type: collision
type Catalog struct {
	Prefabs map[string]PrefabConfig `json:"prefabs" yaml:"prefabs"`
}

type PrefabConfig struct {
	Components []ComponentConfig `json:"components" yaml:"components"`
}

type ComponentConfig struct {
	Type   string `json:"type" yaml:"type"`
	Params Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadCatalog decodes a catalog from YAML.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &Catalog{Prefabs: map[string]PrefabConfig{}}, nil
		}
		return nil, errors.Wrap(err, "decode prefab catalog")
	}
	return &c, nil
}

// Build turns every described prefab into a Prefab using reg.
func (c *Catalog) Build(reg *ConstructorRegistry) (map[string]*Prefab, error) {
	names := make([]string, 0, len(c.Prefabs))
	for name := range c.Prefabs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]*Prefab, len(names))
	for _, name := range names {
		pc := c.Prefabs[name]
		if len(pc.Components) == 0 {
			return nil, errors.Wrapf(ErrEmptyPrefab, "prefab %q", name)
		}
		p := &Prefab{Name: name, Constructors: make([]Constructor, 0, len(pc.Components))}
		for i, cc := range pc.Components {
			ctor, err := reg.New(cc.Type, cc.Params)
			if err != nil {
				return nil, errors.Wrapf(err, "prefab %q component %d", name, i)
			}
			p.Constructors = append(p.Constructors, ctor)
		}
		out[name] = p
	}
	return out, nil
}

// ConstructorFactory creates a constructor from catalog parameters.
type ConstructorFactory func(params Params) (Constructor, error)

// ConstructorRegistry maps catalog type names to constructor factories.
type ConstructorRegistry struct {
	factories map[string]ConstructorFactory
}

func NewConstructorRegistry() *ConstructorRegistry {
	return &ConstructorRegistry{factories: make(map[string]ConstructorFactory)}
}

// Register adds a factory under name.
func (r *ConstructorRegistry) Register(name string, f ConstructorFactory) error {
	if _, ok := r.factories[name]; ok {
		return errors.Wrapf(ErrConstructorExists, "type %q", name)
	}
	r.factories[name] = f
	return nil
}

// New creates a constructor of the named type.
func (r *ConstructorRegistry) New(name string, params Params) (Constructor, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownConstructor, "type %q", name)
	}
	return f(params)
}

// Params holds constructor parameters decoded from a catalog.
type Params map[string]any

// Float returns a numeric parameter, def when it is missing.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, errors.Wrapf(ErrInvalidParam, "%s: want number, got %T", key, v)
}

// String returns a string parameter, def when it is missing.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidParam, "%s: want string, got %T", key, v)
	}
	return s, nil
}

// Bool returns a boolean parameter, def when it is missing.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.Wrapf(ErrInvalidParam, "%s: want bool, got %T", key, v)
	}
	return b, nil
}
