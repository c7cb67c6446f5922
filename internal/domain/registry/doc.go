// Package registry keeps the pipes a task defines.
//
// A Registry validates each definition (name, flags, type expression),
// allocates ids in order starting at 0 and resolves ids back to pipes for
// the I/O façade. Names are unique within one registry. Closing the
// registry ends every stream and invalidates all ids.
//
// Example Usage:
//
//	reg := registry.New(registry.WithCapacity(4096))
//	id, err := reg.Define("out", pipe.FlagOutput, "int32")
//	p, err := reg.Lookup(id)
package registry
