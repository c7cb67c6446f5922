package typeexpr

import (
	"strings"

	"github.com/jellydator/ttlcache/v3"
)

// Validator parses type expressions against a catalog, caching successful
// results. Failures are never cached so that types registered later become
// usable.
type Validator struct {
	catalog *Catalog
	cache   *ttlcache.Cache[string, Descriptor]
}

// NewValidator creates a validator. A zero cacheSize disables caching.
func NewValidator(catalog *Catalog, cacheSize uint64) *Validator {
	if catalog == nil {
		catalog = NewCatalog()
	}
	v := &Validator{catalog: catalog}
	if cacheSize > 0 {
		v.cache = ttlcache.New(
			ttlcache.WithCapacity[string, Descriptor](cacheSize),
		)
	}
	return v
}

// Catalog returns the catalog used for name resolution
func (v *Validator) Catalog() *Catalog {
	return v.catalog
}

// Parse converts an expression into its canonical descriptor
func (v *Validator) Parse(expr string) (Descriptor, error) {
	if v.cache != nil {
		if item := v.cache.Get(expr); item != nil {
			return item.Value(), nil
		}
	}

	desc, err := parse(expr, v.catalog)
	if err != nil {
		return Descriptor{}, err
	}

	if v.cache != nil {
		v.cache.Set(expr, desc, ttlcache.NoTTL)
	}
	return desc, nil
}

// CacheLen reports how many parsed expressions are cached
func (v *Validator) CacheLen() int {
	if v.cache == nil {
		return 0
	}
	return v.cache.Len()
}

// Parse parses an expression against the builtin scalars only
func Parse(expr string) (Descriptor, error) {
	return parse(expr, builtin)
}

var builtin = NewCatalog()

func parse(expr string, catalog *Catalog) (Descriptor, error) {
	if strings.TrimSpace(expr) == "" {
		return Descriptor{}, syntaxErrorf(expr, -1, "empty expression")
	}

	var alternatives [][]Term
	start := 0
	for {
		end := strings.IndexByte(expr[start:], '|')
		last := end < 0
		if last {
			end = len(expr)
		} else {
			end += start
		}

		alt, err := parseAlternative(expr, start, end, catalog)
		if err != nil {
			return Descriptor{}, err
		}
		alternatives = append(alternatives, alt)

		if last {
			break
		}
		start = end + 1
	}

	return newDescriptor(alternatives), nil
}

func parseAlternative(expr string, start, end int, catalog *Catalog) ([]Term, error) {
	var terms []Term
	i := start
	for i < end {
		if isSpace(expr[i]) {
			i++
			continue
		}
		j := i
		for j < end && !isSpace(expr[j]) {
			j++
		}

		term, err := parseTerm(expr, i, expr[i:j], catalog)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
		i = j
	}

	if len(terms) == 0 {
		return nil, syntaxErrorf(expr, start, "empty alternative")
	}
	return terms, nil
}

func parseTerm(expr string, offset int, token string, catalog *Catalog) (Term, error) {
	if name, ok := strings.CutPrefix(token, "$"); ok {
		if !validIdent(name) {
			return Term{}, syntaxErrorf(expr, offset, "malformed type variable %q", token)
		}
		return Term{Kind: KindVariable, Name: token}, nil
	}

	if !validName(token) {
		return Term{}, syntaxErrorf(expr, offset, "malformed type name %q", token)
	}

	term, ok := catalog.Lookup(token)
	if !ok {
		return Term{}, syntaxErrorf(expr, offset, "unknown type %q", token)
	}
	return term, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// validName accepts IDENT segments separated by '/' or '.'
func validName(s string) bool {
	if s == "" {
		return false
	}
	segStart := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '/' || s[i] == '.' {
			if !validIdent(s[segStart:i]) {
				return false
			}
			segStart = i + 1
		}
	}
	return true
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
