package typeexpr

import "strings"

// Kind classifies a single term of a type expression
type Kind int

const (
	KindScalar Kind = iota
	KindRecord
	KindReference
	KindVariable
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRecord:
		return "record"
	case KindReference:
		return "reference"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Term is one resolved component of a type expression. Records are
// identified by name; their fields live in the Catalog.
type Term struct {
	Kind Kind
	Name string
}

// Descriptor is the canonical, immutable form of a parsed type expression.
// The zero value describes nothing and is never returned by a successful
// parse.
type Descriptor struct {
	alternatives [][]Term
	canonical    string
}

func newDescriptor(alternatives [][]Term) Descriptor {
	parts := make([]string, len(alternatives))
	for i, alt := range alternatives {
		names := make([]string, len(alt))
		for j, term := range alt {
			names[j] = term.Name
		}
		parts[i] = strings.Join(names, " ")
	}
	return Descriptor{
		alternatives: alternatives,
		canonical:    strings.Join(parts, " | "),
	}
}

// String returns the canonical expression
func (d Descriptor) String() string {
	return d.canonical
}

// IsZero reports whether d is the zero descriptor
func (d Descriptor) IsZero() bool {
	return len(d.alternatives) == 0
}

// Equal reports structural equality
func (d Descriptor) Equal(other Descriptor) bool {
	return d.canonical == other.canonical
}

// Alternatives returns a copy of the alternative term sequences
func (d Descriptor) Alternatives() [][]Term {
	out := make([][]Term, len(d.alternatives))
	for i, alt := range d.alternatives {
		out[i] = append([]Term(nil), alt...)
	}
	return out
}

// Variables returns the distinct type variables in order of appearance
func (d Descriptor) Variables() []string {
	var vars []string
	seen := make(map[string]bool)
	for _, alt := range d.alternatives {
		for _, term := range alt {
			if term.Kind == KindVariable && !seen[term.Name] {
				seen[term.Name] = true
				vars = append(vars, term.Name)
			}
		}
	}
	return vars
}

// IsGeneric reports whether the descriptor contains type variables
func (d Descriptor) IsGeneric() bool {
	return len(d.Variables()) > 0
}

// Compatible reports whether a producer typed a can feed a consumer typed b.
// Some alternative of a must unify with some alternative of b: same length,
// and term by term either equal or bound through a variable consistently.
func Compatible(a, b Descriptor) bool {
	for _, left := range a.alternatives {
		for _, right := range b.alternatives {
			if unify(left, right) {
				return true
			}
		}
	}
	return false
}

func unify(left, right []Term) bool {
	if len(left) != len(right) {
		return false
	}

	// Variables on each side live in separate namespaces.
	u := newUnifier()
	for i := range left {
		if !u.unify(side("L", left[i]), side("R", right[i])) {
			return false
		}
	}
	return true
}

// node is either a namespaced variable key or a concrete term.
type node struct {
	variable string
	term     Term
}

func side(prefix string, t Term) node {
	if t.Kind == KindVariable {
		return node{variable: prefix + t.Name}
	}
	return node{term: t}
}

// unifier is a small union-find over variables with an optional concrete
// binding per equivalence class.
type unifier struct {
	parent map[string]string
	bound  map[string]Term
}

func newUnifier() *unifier {
	return &unifier{
		parent: make(map[string]string),
		bound:  make(map[string]Term),
	}
}

func (u *unifier) find(v string) string {
	for {
		p, ok := u.parent[v]
		if !ok {
			return v
		}
		v = p
	}
}

func (u *unifier) unify(a, b node) bool {
	switch {
	case a.variable != "" && b.variable != "":
		ra, rb := u.find(a.variable), u.find(b.variable)
		if ra == rb {
			return true
		}
		ta, okA := u.bound[ra]
		tb, okB := u.bound[rb]
		if okA && okB && ta != tb {
			return false
		}
		u.parent[ra] = rb
		if okA && !okB {
			u.bound[rb] = ta
		}
		delete(u.bound, ra)
		return true
	case a.variable != "":
		return u.bind(a.variable, b.term)
	case b.variable != "":
		return u.bind(b.variable, a.term)
	default:
		return a.term == b.term
	}
}

func (u *unifier) bind(v string, t Term) bool {
	root := u.find(v)
	if existing, ok := u.bound[root]; ok {
		return existing == t
	}
	u.bound[root] = t
	return true
}
