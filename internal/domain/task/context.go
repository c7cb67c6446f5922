package task

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipeio"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/shared/id"
)

// Context is everything one task instance is bound to: its environment, its
// pipe registry and the two I/O views over that registry.
type Context struct {
	id        id.TaskID
	env       *Environment
	registry  *registry.Registry
	io        *pipeio.IO
	endpoint  *pipeio.Endpoint
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	createdAt time.Time

	mu          sync.Mutex
	finalizedAt *time.Time
}

// Option configures a Context
type Option func(*Context)

// WithLogger sets the logger task output is written to
func WithLogger(logger *logging.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records pipe traffic on metrics
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(c *Context) { c.metrics = metrics }
}

// NewContext binds a task to its environment and registry
func NewContext(taskID id.TaskID, env *Environment, reg *registry.Registry, opts ...Option) *Context {
	c := &Context{
		id:        taskID,
		env:       env,
		registry:  reg,
		logger:    logging.NewNop(),
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("task", string(taskID)))

	ioOpts := []pipeio.Option{pipeio.WithLogger(c.logger.Logger)}
	if c.metrics != nil {
		ioOpts = append(ioOpts, pipeio.WithRecorder(c.metrics))
	}
	c.io = pipeio.New(reg, ioOpts...)
	c.endpoint = pipeio.NewEndpoint(reg, ioOpts...)
	return c
}

func (c *Context) TaskID() id.TaskID            { return c.id }
func (c *Context) Version() string              { return c.env.Version() }
func (c *Context) Constants() map[string]int    { return c.env.Constants() }
func (c *Context) Registry() *registry.Registry { return c.registry }
func (c *Context) IO() *pipeio.IO               { return c.io }
func (c *Context) Endpoint() *pipeio.Endpoint   { return c.endpoint }
func (c *Context) CreatedAt() time.Time         { return c.createdAt }
func (c *Context) Environment() *Environment    { return c.env }

// Define registers a pipe on the task's registry
func (c *Context) Define(name string, flags pipe.Flags, typeExpr string) (pipe.ID, error) {
	timer := monitoring.NewTimer(c.metrics, "registry", "define")

	pid, err := c.registry.Define(name, flags, typeExpr)
	if err != nil {
		timer.Stop("error")
		if c.metrics != nil {
			c.metrics.RecordPipeError("define", pipe.Kind(err))
		}
		c.logger.Debug("Pipe definition rejected",
			zap.String("name", name),
			zap.Stringer("flags", flags),
			zap.String("kind", pipe.Kind(err)),
			zap.Error(err),
		)
		return 0, err
	}
	timer.Stop("success")

	if c.metrics != nil {
		c.metrics.RecordPipeDefined(flags.Direction())
	}
	c.logger.Debug("Pipe defined",
		zap.Uint32("pipe", uint32(pid)),
		zap.String("name", name),
		zap.Stringer("flags", flags),
		zap.String("type", typeExpr),
	)
	return pid, nil
}

// LogWrite forwards a task log message at one of the LOG_* levels
func (c *Context) LogWrite(level logging.Level, msg string) {
	c.logger.Write(level, msg)
}

// Finalize tears the task down: every pipe reaches EOF and is released.
// It reports whether this call did the teardown.
func (c *Context) Finalize() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalizedAt != nil {
		return false
	}
	now := time.Now()
	c.finalizedAt = &now
	c.registry.Close()
	c.logger.Debug("Task finalized", zap.Duration("lifetime", now.Sub(c.createdAt)))
	return true
}

// Finalized reports whether Finalize has run
func (c *Context) Finalized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalizedAt != nil
}

// Info is a point-in-time summary of a task
type Info struct {
	ID        id.TaskID `json:"id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Pipes     int       `json:"pipes"`
	Inputs    int       `json:"inputs"`
	Outputs   int       `json:"outputs"`
	Finalized bool      `json:"finalized"`
}

// Info returns a summary of the task
func (c *Context) Info() Info {
	return Info{
		ID:        c.id,
		Version:   c.env.Version(),
		CreatedAt: c.createdAt,
		Pipes:     c.registry.Len(),
		Inputs:    c.registry.InputCount(),
		Outputs:   c.registry.OutputCount(),
		Finalized: c.Finalized(),
	}
}
