package typeexpr

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Builtin scalar type names, always present in a Catalog.
var scalars = []string{
	"bool", "byte", "char",
	"int8", "int16", "int32", "int64",
	"uint8", "uint16", "uint32", "uint64",
	"float", "double", "string",
}

// Field is one member of a record type
type Field struct {
	Name string `yaml:"name" toml:"name"`
	Type string `yaml:"type" toml:"type"`
}

// Type is a named type declared in a catalog file
type Type struct {
	Name   string  `yaml:"name" toml:"name"`
	Fields []Field `yaml:"fields,omitempty" toml:"fields,omitempty"`
}

// catalogFile is the on-disk layout of YAML and TOML catalog files
type catalogFile struct {
	Types []Type `yaml:"types" toml:"types"`
}

// Catalog resolves type names. Types are only ever added, so a name that
// resolved once keeps resolving to the same term.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewCatalog creates a catalog holding only the builtin scalars
func NewCatalog() *Catalog {
	c := &Catalog{types: make(map[string]Type, len(scalars))}
	for _, name := range scalars {
		c.types[name] = Type{Name: name}
	}
	return c
}

// LoadCatalog builds a catalog from every YAML or TOML file matching a
// doublestar pattern (e.g. "types/**/*.yaml"). An empty pattern yields the
// builtin catalog.
func LoadCatalog(pattern string) (*Catalog, error) {
	c := NewCatalog()
	if pattern == "" {
		return c, nil
	}

	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)

	var pending []Type
	for _, path := range paths {
		types, err := readCatalogFile(path)
		if err != nil {
			return nil, err
		}
		pending = append(pending, types...)
	}

	if err := c.Register(pending...); err != nil {
		return nil, err
	}
	return c, nil
}

func readCatalogFile(path string) ([]Type, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var file catalogFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".toml":
		err = toml.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return file.Types, nil
}

// Register adds named types atomically: either all of them are added or
// none. Field types may reference scalars, existing types, or other types
// in the same batch; records may not contain themselves.
func (c *Catalog) Register(types ...Type) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	batch := make(map[string]Type, len(types))
	for _, t := range types {
		if !validName(t.Name) {
			return fmt.Errorf("invalid type name %q", t.Name)
		}
		if _, exists := c.types[t.Name]; exists {
			return fmt.Errorf("duplicate type %q", t.Name)
		}
		if _, exists := batch[t.Name]; exists {
			return fmt.Errorf("duplicate type %q", t.Name)
		}
		batch[t.Name] = t
	}

	lookup := func(name string) (Type, bool) {
		if t, ok := batch[name]; ok {
			return t, true
		}
		t, ok := c.types[name]
		return t, ok
	}

	for _, t := range types {
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			if f.Name == "" || seen[f.Name] {
				return fmt.Errorf("type %q: invalid or duplicate field %q", t.Name, f.Name)
			}
			seen[f.Name] = true
			if _, ok := lookup(f.Type); !ok {
				return fmt.Errorf("type %q: field %q has unknown type %q", t.Name, f.Name, f.Type)
			}
		}
	}

	for _, t := range types {
		if path := findCycle(t.Name, lookup, nil); path != nil {
			return fmt.Errorf("recursive type: %s", strings.Join(path, " -> "))
		}
	}

	for name, t := range batch {
		c.types[name] = t
	}
	return nil
}

func findCycle(name string, lookup func(string) (Type, bool), stack []string) []string {
	for i, s := range stack {
		if s == name {
			return append(append([]string(nil), stack[i:]...), name)
		}
	}
	t, ok := lookup(name)
	if !ok {
		return nil
	}
	stack = append(stack, name)
	for _, f := range t.Fields {
		if path := findCycle(f.Type, lookup, stack); path != nil {
			return path
		}
	}
	return nil
}

// Lookup resolves a type name to a term
func (c *Catalog) Lookup(name string) (Term, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.types[name]
	if !ok {
		return Term{}, false
	}
	return Term{Kind: kindOf(t), Name: name}, true
}

// Type returns the declaration of a named type
func (c *Catalog) Type(name string) (Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.types[name]
	if !ok {
		return Type{}, false
	}
	t.Fields = append([]Field(nil), t.Fields...)
	return t, true
}

// Names returns every known type name, sorted
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func kindOf(t Type) Kind {
	switch {
	case isScalar(t.Name):
		return KindScalar
	case len(t.Fields) > 0:
		return KindRecord
	default:
		return KindReference
	}
}

func isScalar(name string) bool {
	for _, s := range scalars {
		if s == name {
			return true
		}
	}
	return false
}
