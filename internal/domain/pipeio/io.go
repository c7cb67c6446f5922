// Package pipeio exposes pipe operations keyed by pipe id.
//
// IO is the task's view: it reads INPUT pipes and writes OUTPUT pipes.
// Endpoint is the surrounding framework's view of the same buffers: it fills
// INPUT pipes and collects OUTPUT pipes. Neither blocks; an empty read means
// "nothing yet" unless the pipe reports EOF.
package pipeio

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/registry"
)

// Recorder receives operation outcomes, typically Prometheus counters
type Recorder interface {
	RecordPipeBytes(op string, n int)
	RecordPipeError(op, kind string)
}

type nopRecorder struct{}

func (nopRecorder) RecordPipeBytes(string, int)    {}
func (nopRecorder) RecordPipeError(string, string) {}

// Option configures IO and Endpoint
type Option func(*access)

// WithLogger logs failed operations at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(a *access) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRecorder attaches a metrics sink
func WithRecorder(r Recorder) Option {
	return func(a *access) {
		if r != nil {
			a.recorder = r
		}
	}
}

type direction int

const (
	anyDirection direction = iota
	inputOnly
	outputOnly
)

// access resolves ids and enforces direction for both views
type access struct {
	registry *registry.Registry
	logger   *zap.Logger
	recorder Recorder
}

func newAccess(reg *registry.Registry, opts []Option) access {
	a := access{
		registry: reg,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a access) lookup(op string, id pipe.ID, want direction) (*pipe.Pipe, error) {
	p, err := a.registry.Lookup(id)
	if err != nil {
		return nil, a.fail(op, id, err)
	}

	switch {
	case want == inputOnly && !p.Flags().IsInput():
		return nil, a.fail(op, id, &pipe.OpError{Op: op, Pipe: id, Name: p.Name(), Kind: pipe.ErrInvalidPipeDirection, Msg: "pipe is not INPUT"})
	case want == outputOnly && !p.Flags().IsOutput():
		return nil, a.fail(op, id, &pipe.OpError{Op: op, Pipe: id, Name: p.Name(), Kind: pipe.ErrInvalidPipeDirection, Msg: "pipe is not OUTPUT"})
	}
	return p, nil
}

func (a access) fail(op string, id pipe.ID, err error) error {
	kind := pipe.Kind(err)
	a.recorder.RecordPipeError(op, kind)
	a.logger.Debug("Pipe operation failed",
		zap.String("op", op),
		zap.Uint32("pipe", uint32(id)),
		zap.String("kind", kind),
		zap.Error(err),
	)
	return err
}

func (a access) read(op string, id pipe.ID, want direction, n int) ([]byte, error) {
	p, err := a.lookup(op, id, want)
	if err != nil {
		return nil, err
	}
	data := p.Read(n)
	a.recorder.RecordPipeBytes(op, len(data))
	return data, nil
}

func (a access) write(op string, id pipe.ID, want direction, data []byte) (int, error) {
	p, err := a.lookup(op, id, want)
	if err != nil {
		return 0, err
	}
	n, err := p.Write(data)
	if err != nil {
		return 0, a.fail(op, id, err)
	}
	a.recorder.RecordPipeBytes(op, n)
	return n, nil
}

func (a access) writeToken(op string, id pipe.ID, want direction, token pipe.Token) error {
	p, err := a.lookup(op, id, want)
	if err != nil {
		return err
	}
	if err := p.WriteScopeToken(token); err != nil {
		return a.fail(op, id, err)
	}
	return nil
}

func (a access) readToken(op string, id pipe.ID, want direction) (pipe.Token, bool, error) {
	p, err := a.lookup(op, id, want)
	if err != nil {
		return 0, false, err
	}
	token, ok := p.ReadScopeToken()
	return token, ok, nil
}

func (a access) markEOF(op string, id pipe.ID, want direction) error {
	p, err := a.lookup(op, id, want)
	if err != nil {
		return err
	}
	if p.MarkEOF() {
		a.logger.Debug("Pipe reached EOF",
			zap.Uint32("pipe", uint32(id)),
			zap.String("name", p.Name()),
		)
	}
	return nil
}

func (a access) status(op string, id pipe.ID) (pipe.Status, error) {
	p, err := a.lookup(op, id, anyDirection)
	if err != nil {
		return 0, err
	}
	return p.EOFStatus(), nil
}

// IO is the task-side façade
type IO struct {
	access
}

// New creates the task-side façade over reg
func New(reg *registry.Registry, opts ...Option) *IO {
	return &IO{access: newAccess(reg, opts)}
}

// PipeRead reads up to n bytes from an INPUT pipe; fewer (or none) when
// less is available.
func (f *IO) PipeRead(id pipe.ID, n int) ([]byte, error) {
	return f.read("read", id, inputOnly, n)
}

// PipeWrite writes to an OUTPUT pipe
func (f *IO) PipeWrite(id pipe.ID, data []byte) (int, error) {
	return f.write("write", id, outputOnly, data)
}

// PipeWriteScopeToken marks a scope boundary on an OUTPUT pipe
func (f *IO) PipeWriteScopeToken(id pipe.ID, token pipe.Token) error {
	return f.writeToken("write_scope_token", id, outputOnly, token)
}

// PipeReadScopeToken takes the scope token at the read cursor of an INPUT
// pipe, if there is one.
func (f *IO) PipeReadScopeToken(id pipe.ID) (pipe.Token, bool, error) {
	return f.readToken("read_scope_token", id, inputOnly)
}

// PipeEOF reports the end-of-stream status of any pipe
func (f *IO) PipeEOF(id pipe.ID) (pipe.Status, error) {
	return f.status("eof", id)
}

// PipeClose ends the stream of an OUTPUT pipe. Closing twice is harmless.
func (f *IO) PipeClose(id pipe.ID) error {
	return f.markEOF("close", id, outputOnly)
}
