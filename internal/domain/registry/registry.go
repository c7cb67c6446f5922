package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/typeexpr"
)

// MaxNameLen bounds pipe names
const MaxNameLen = 255

var (
	ErrDuplicatePipeName = errors.New("duplicate pipe name")
	ErrInvalidPipeName   = errors.New("invalid pipe name")
	ErrUnknownPipe       = errors.New("unknown pipe")
	ErrTaskFinalized     = errors.New("task finalized")
)

func init() {
	pipe.RegisterKind(ErrDuplicatePipeName, "DuplicatePipeName")
	pipe.RegisterKind(ErrInvalidPipeName, "InvalidPipeName")
	pipe.RegisterKind(ErrUnknownPipe, "UnknownPipe")
	pipe.RegisterKind(ErrTaskFinalized, "TaskFinalized")
}

// Registry owns every pipe defined by one task. IDs are slice indexes:
// allocated in order from 0 and never reused, since pipes are only torn
// down together with the registry.
type Registry struct {
	validator *typeexpr.Validator
	capacity  int

	mu      sync.RWMutex
	pipes   []*pipe.Pipe
	names   map[string]pipe.ID
	inputs  int
	outputs int
	closed  bool
}

// Option configures a Registry
type Option func(*Registry)

// WithValidator sets the type-expression validator (default: builtin scalars)
func WithValidator(v *typeexpr.Validator) Option {
	return func(r *Registry) { r.validator = v }
}

// WithCapacity sets the buffer capacity of every pipe created
func WithCapacity(capacity int) Option {
	return func(r *Registry) { r.capacity = capacity }
}

// New creates an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{
		capacity: pipe.DefaultCapacity,
		names:    make(map[string]pipe.ID),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.validator == nil {
		r.validator = typeexpr.NewValidator(nil, 0)
	}
	return r
}

// Define validates and registers a new pipe, returning its id. Checks run
// in order: name, duplicate name, flags, type expression, so a taken name
// is reported as such whatever the other arguments are.
func (r *Registry) Define(name string, flags pipe.Flags, typeExpr string) (pipe.ID, error) {
	if name == "" || len(name) > MaxNameLen {
		return 0, fmt.Errorf("define pipe %q: %w: name must be 1..%d bytes", name, ErrInvalidPipeName, MaxNameLen)
	}

	// Parsing is pure, so it can run before taking the lock.
	desc, typeErr := r.validator.Parse(typeExpr)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, fmt.Errorf("define pipe %q: %w", name, ErrTaskFinalized)
	}
	if existing, ok := r.names[name]; ok {
		return 0, fmt.Errorf("define pipe %q: %w (id %s)", name, ErrDuplicatePipeName, existing)
	}
	if err := flags.Validate(); err != nil {
		return 0, fmt.Errorf("define pipe %q: %w", name, err)
	}
	if typeErr != nil {
		return 0, fmt.Errorf("define pipe %q: %w", name, typeErr)
	}

	id := pipe.ID(len(r.pipes))
	r.pipes = append(r.pipes, pipe.New(id, name, flags, desc, r.capacity))
	r.names[name] = id
	if flags.IsInput() {
		r.inputs++
	} else {
		r.outputs++
	}
	return id, nil
}

// Lookup returns the pipe behind id
func (r *Registry) Lookup(id pipe.ID) (*pipe.Pipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed || int(id) >= len(r.pipes) {
		return nil, &pipe.OpError{Op: "lookup", Pipe: id, Kind: ErrUnknownPipe}
	}
	return r.pipes[id], nil
}

// LookupByName returns the pipe registered under name
func (r *Registry) LookupByName(name string) (*pipe.Pipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[name]
	if r.closed || !ok {
		return nil, &pipe.OpError{Op: "lookup", Name: name, Kind: ErrUnknownPipe, Msg: "no pipe with this name"}
	}
	return r.pipes[id], nil
}

// Pipes returns the registered pipes ordered by id
func (r *Registry) Pipes() []*pipe.Pipe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil
	}
	return append([]*pipe.Pipe(nil), r.pipes...)
}

// Stats returns a snapshot of every pipe ordered by id
func (r *Registry) Stats() []pipe.Stats {
	pipes := r.Pipes()
	stats := make([]pipe.Stats, len(pipes))
	for i, p := range pipes {
		stats[i] = p.Stats()
	}
	return stats
}

// Len returns how many pipes are live
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pipes)
}

// InputCount returns how many live pipes are INPUT
func (r *Registry) InputCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inputs
}

// OutputCount returns how many live pipes are OUTPUT
func (r *Registry) OutputCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.outputs
}

// Close tears the registry down. Every pipe is released, later lookups
// fail with ErrUnknownPipe and later defines with ErrTaskFinalized. Close
// is idempotent and reports whether this call closed the registry.
func (r *Registry) Close() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	r.closed = true
	for _, p := range r.pipes {
		p.MarkEOF()
	}
	r.pipes = nil
	r.names = nil
	r.inputs, r.outputs = 0, 0
	return true
}

// Closed reports whether Close has been called
func (r *Registry) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}
