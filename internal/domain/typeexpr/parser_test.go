package typeexpr

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		canonical string
		kinds     [][]Kind
	}{
		{
			name:      "scalar",
			expr:      "int32",
			canonical: "int32",
			kinds:     [][]Kind{{KindScalar}},
		},
		{
			name:      "whitespace normalized",
			expr:      "  int32 \t string  ",
			canonical: "int32 string",
			kinds:     [][]Kind{{KindScalar, KindScalar}},
		},
		{
			name:      "alternatives",
			expr:      "int32|double",
			canonical: "int32 | double",
			kinds:     [][]Kind{{KindScalar}, {KindScalar}},
		},
		{
			name:      "variable",
			expr:      "$T int32 | $T",
			canonical: "$T int32 | $T",
			kinds:     [][]Kind{{KindVariable, KindScalar}, {KindVariable}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.canonical, desc.String())
			assert.False(t, desc.IsZero())

			alts := desc.Alternatives()
			require.Len(t, alts, len(tt.kinds))
			for i, alt := range alts {
				require.Len(t, alt, len(tt.kinds[i]))
				for j, term := range alt {
					assert.Equal(t, tt.kinds[i][j], term.Kind, "term %d/%d", i, j)
				}
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"|",
		"int32 |",
		"| int32",
		"int32 || double",
		"$",
		"$1T",
		"in-t32",
		"a//b",
		"/a",
		"a.",
		"unknown_type",
		"plumber/std/Missing",
	}

	for _, expr := range invalid {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTypeExpression), "got %v", err)

			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	v := NewValidator(nil, 16)

	first, err := v.Parse("int32 string | $T")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := v.Parse("int32 string | $T")
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}

	uncached, err := Parse("int32 string | $T")
	require.NoError(t, err)
	assert.True(t, first.Equal(uncached))
	assert.Equal(t, 1, v.CacheLen())
}

func TestValidatorDoesNotCacheFailures(t *testing.T) {
	catalog := NewCatalog()
	v := NewValidator(catalog, 16)

	_, err := v.Parse("acme/Point")
	require.ErrorIs(t, err, ErrInvalidTypeExpression)
	assert.Equal(t, 0, v.CacheLen())

	require.NoError(t, catalog.Register(Type{Name: "acme/Point", Fields: []Field{
		{Name: "x", Type: "double"},
		{Name: "y", Type: "double"},
	}}))

	desc, err := v.Parse("acme/Point")
	require.NoError(t, err)
	assert.Equal(t, KindRecord, desc.Alternatives()[0][0].Kind)
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"int32", "int32", true},
		{"int32", "int64", false},
		{"int32 string", "int32", false},
		{"$T", "int32", true},
		{"int32", "$T", true},
		{"$T $T", "int32 int32", true},
		{"$T $T", "int32 string", false},
		{"$A $B", "int32 string", true},
		{"$A $A", "$B int32", true},
		{"$A $A int32", "$B $C $C", true},
		{"$A $A", "$B $C", true},
		{"int32 | string", "string", true},
		{"int32 | double", "string | bool", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"~"+tt.b, func(t *testing.T) {
			a, err := Parse(tt.a)
			require.NoError(t, err)
			b, err := Parse(tt.b)
			require.NoError(t, err)

			assert.Equal(t, tt.want, Compatible(a, b))
		})
	}
}

func TestVariables(t *testing.T) {
	desc, err := Parse("$T int32 $U | $T")
	require.NoError(t, err)
	assert.Equal(t, []string{"$T", "$U"}, desc.Variables())
	assert.True(t, desc.IsGeneric())

	plain, err := Parse("int32")
	require.NoError(t, err)
	assert.False(t, plain.IsGeneric())
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "std"), 0o755))

	yamlDoc := `types:
  - name: plumber/std/request_local/String
    fields:
      - name: token
        type: uint32
  - name: plumber/std/Raw
`
	tomlDoc := `[[types]]
name = "acme/Request"

[[types.fields]]
name = "body"
type = "plumber/std/request_local/String"

[[types.fields]]
name = "size"
type = "uint64"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "std", "string.yaml"), []byte(yamlDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.toml"), []byte(tomlDoc), 0o644))

	catalog, err := LoadCatalog(filepath.Join(dir, "**", "*.{yaml,toml}"))
	require.NoError(t, err)

	term, ok := catalog.Lookup("plumber/std/request_local/String")
	require.True(t, ok)
	assert.Equal(t, KindRecord, term.Kind)

	term, ok = catalog.Lookup("plumber/std/Raw")
	require.True(t, ok)
	assert.Equal(t, KindReference, term.Kind)

	req, ok := catalog.Type("acme/Request")
	require.True(t, ok)
	require.Len(t, req.Fields, 2)
	assert.Equal(t, "body", req.Fields[0].Name)

	v := NewValidator(catalog, 0)
	desc, err := v.Parse("acme/Request | plumber/std/Raw")
	require.NoError(t, err)
	assert.Equal(t, "acme/Request | plumber/std/Raw", desc.String())
}

func TestLoadCatalogEmptyPattern(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Contains(t, catalog.Names(), "int32")
}

func TestRegisterRejects(t *testing.T) {
	tests := []struct {
		name  string
		types []Type
	}{
		{"scalar redefinition", []Type{{Name: "int32"}}},
		{"bad name", []Type{{Name: "a b"}}},
		{"duplicate in batch", []Type{{Name: "x/A"}, {Name: "x/A"}}},
		{"unknown field type", []Type{{Name: "x/A", Fields: []Field{{Name: "f", Type: "x/Missing"}}}}},
		{"duplicate field", []Type{{Name: "x/A", Fields: []Field{{Name: "f", Type: "int32"}, {Name: "f", Type: "int64"}}}}},
		{"self recursive", []Type{{Name: "x/A", Fields: []Field{{Name: "self", Type: "x/A"}}}}},
		{"mutually recursive", []Type{
			{Name: "x/A", Fields: []Field{{Name: "b", Type: "x/B"}}},
			{Name: "x/B", Fields: []Field{{Name: "a", Type: "x/A"}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := NewCatalog()
			before := len(catalog.Names())

			assert.Error(t, catalog.Register(tt.types...))
			assert.Len(t, catalog.Names(), before, "failed batch must not be partially applied")
		})
	}
}

func TestRegisterForwardReference(t *testing.T) {
	catalog := NewCatalog()
	err := catalog.Register(
		Type{Name: "x/Outer", Fields: []Field{{Name: "inner", Type: "x/Inner"}}},
		Type{Name: "x/Inner", Fields: []Field{{Name: "v", Type: "int8"}}},
	)
	require.NoError(t, err)

	_, ok := catalog.Lookup("x/Outer")
	assert.True(t, ok)
}

func TestLoadCatalogRecursiveGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "types", "std", "net"), 0o755))
	doc := "types:\n  - name: std/net/Addr\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types", "std", "net", "addr.yaml"), []byte(doc), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	catalog, err := LoadCatalog("types/**/*.yaml")
	require.NoError(t, err)

	term, ok := catalog.Lookup("std/net/Addr")
	require.True(t, ok)
	assert.Equal(t, KindReference, term.Kind)
}
