// Package typeexpr parses pipe type expressions into canonical descriptors.
//
// # Grammar
//
// A type expression is a list of alternatives separated by '|'. Each
// alternative is a whitespace separated sequence of terms, and each term is
// either a type name or a type variable:
//
//	int32
//	plumber/std/request_local/String
//	$T
//	int32 string | $T
//
// Type names resolve against a Catalog: builtin scalars plus named types
// loaded from YAML or TOML files. A named type with fields is a record; a
// named type without fields is an opaque reference to an external type.
//
// # Usage
//
//	catalog, err := typeexpr.LoadCatalog("types/**/*.yaml")
//	validator := typeexpr.NewValidator(catalog, 1024)
//
//	desc, err := validator.Parse("plumber/std/request_local/String")
//	if errors.Is(err, typeexpr.ErrInvalidTypeExpression) {
//		// reject the pipe definition
//	}
//
//	typeexpr.Compatible(producer, consumer)
package typeexpr
