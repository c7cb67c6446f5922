package task

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/shared/id"
)

// ErrUnknownTask is returned for ids that name no live task
var ErrUnknownTask = errors.New("unknown task")

func init() {
	pipe.RegisterKind(ErrUnknownTask, "UnknownTask")
}

// Manager hosts task contexts in process
type Manager struct {
	mu      sync.RWMutex
	tasks   map[id.TaskID]*Context // Protected by mu
	env     *Environment
	regOpts []registry.Option
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewManager creates a task manager. regOpts apply to the registry of every
// task it creates.
func NewManager(env *Environment, logger *logging.Logger, regOpts ...registry.Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		tasks:   make(map[id.TaskID]*Context),
		env:     env,
		regOpts: regOpts,
		logger:  logger,
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Environment returns the environment shared by all tasks
func (m *Manager) Environment() *Environment {
	return m.env
}

// Create starts a new task with an empty registry
func (m *Manager) Create() *Context {
	ctx := NewContext(id.NewTaskID(), m.env, registry.New(m.regOpts...),
		WithLogger(m.logger),
		WithMetrics(m.metrics),
	)

	m.mu.Lock()
	m.tasks[ctx.TaskID()] = ctx
	active := len(m.tasks)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncTasksTotal()
		m.metrics.SetTasksActive(active)
	}
	m.logger.Info("Task created", zap.String("task", string(ctx.TaskID())))
	return ctx
}

// Get retrieves a live task
func (m *Manager) Get(taskID id.TaskID) (*Context, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ctx, ok := m.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrUnknownTask)
	}
	return ctx, nil
}

// List returns a summary of every live task, oldest first
func (m *Manager) List() []Info {
	m.mu.RLock()
	tasks := make([]*Context, 0, len(m.tasks))
	for _, ctx := range m.tasks {
		tasks = append(tasks, ctx)
	}
	m.mu.RUnlock()

	// ULIDs sort by creation time
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].TaskID() < tasks[j].TaskID() })

	infos := make([]Info, len(tasks))
	for i, ctx := range tasks {
		infos[i] = ctx.Info()
	}
	return infos
}

// Finalize tears a task down and forgets it
func (m *Manager) Finalize(taskID id.TaskID) error {
	m.mu.Lock()
	ctx, ok := m.tasks[taskID]
	if ok {
		delete(m.tasks, taskID)
	}
	active := len(m.tasks)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("task %s: %w", taskID, ErrUnknownTask)
	}

	ctx.Finalize()
	if m.metrics != nil {
		m.metrics.SetTasksActive(active)
	}
	m.logger.Info("Task finalized", zap.String("task", string(taskID)))
	return nil
}

// Shutdown finalizes every live task
func (m *Manager) Shutdown() int {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = make(map[id.TaskID]*Context)
	m.mu.Unlock()

	for _, ctx := range tasks {
		ctx.Finalize()
	}
	if m.metrics != nil {
		m.metrics.SetTasksActive(0)
	}
	return len(tasks)
}

// Len returns the number of live tasks
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}
