package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/task"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/shared/id"
)

const (
	// DefaultReadSize is used when a read or drain names no size
	DefaultReadSize = 64 * 1024
	// MaxReadSize bounds a single read or drain
	MaxReadSize = 1 << 20
)

// Handlers contains all HTTP handlers
type Handlers struct {
	tasks   *task.Manager
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(tasks *task.Manager, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		tasks:   tasks,
		metrics: metrics,
		logger:  logger,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "pipecore",
		"version": h.tasks.Environment().Version(),
	})
}

// Health handles liveness checks
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"tasks":  h.tasks.Len(),
	})
}

// Version returns the runtime version string
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.tasks.Environment().Version()})
}

// Constants returns the PIPE_* and LOG_* constant table
func (h *Handlers) Constants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"constants": h.tasks.Environment().Constants()})
}

// CreateTask starts a task with an empty registry
func (h *Handlers) CreateTask(c *gin.Context) {
	ctx := h.tasks.Create()
	c.JSON(http.StatusCreated, ctx.Info())
}

// ListTasks lists all live tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.tasks.List()})
}

// GetTask returns a summary of one task
func (h *Handlers) GetTask(c *gin.Context) {
	ctx, ok := h.task(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctx.Info())
}

// FinalizeTask tears a task down
func (h *Handlers) FinalizeTask(c *gin.Context) {
	ctx, ok := h.task(c)
	if !ok {
		return
	}
	if err := h.tasks.Finalize(ctx.TaskID()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task_id": ctx.TaskID()})
}

// DefineRequest is the body of a pipe definition
type DefineRequest struct {
	Name  string    `json:"name"`
	Flags FlagValue `json:"flags"`
	Type  string    `json:"type"`
}

// DefineResponse describes a newly defined pipe
type DefineResponse struct {
	ID    pipe.ID `json:"id"`
	Name  string  `json:"name"`
	Flags string  `json:"flags"`
	Type  string  `json:"type"`
}

// DefinePipe registers a pipe on a task
func (h *Handlers) DefinePipe(c *gin.Context) {
	ctx, ok := h.task(c)
	if !ok {
		return
	}

	var req DefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	// Unparseable flags define with none, so name and duplicate checks
	// still run first; the parse error then replaces the generic one.
	flags, flagErr := req.Flags.Flags()
	if flagErr != nil {
		flags = 0
	}

	pid, err := ctx.Define(req.Name, flags, req.Type)
	if err != nil {
		if flagErr != nil && errors.Is(err, pipe.ErrInvalidFlags) {
			err = flagErr
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, DefineResponse{
		ID:    pid,
		Name:  req.Name,
		Flags: flags.String(),
		Type:  req.Type,
	})
}

// ListPipes returns a snapshot of every pipe of a task
func (h *Handlers) ListPipes(c *gin.Context) {
	ctx, ok := h.task(c)
	if !ok {
		return
	}
	stats := ctx.Registry().Stats()
	sort.Slice(stats, func(i, j int) bool { return stats[i].ID < stats[j].ID })
	c.JSON(http.StatusOK, gin.H{"pipes": stats})
}

// task resolves the :task parameter, writing the error response on failure
func (h *Handlers) task(c *gin.Context) (*task.Context, bool) {
	raw := c.Param("task")
	taskID, err := id.ParseTaskID(raw)
	if err != nil {
		respondError(c, fmt.Errorf("task %q: %w", raw, task.ErrUnknownTask))
		return nil, false
	}
	ctx, err := h.tasks.Get(taskID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ctx, true
}

// pipeID resolves the :pipe parameter
func pipeID(c *gin.Context) (pipe.ID, bool) {
	raw := c.Param("pipe")
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, fmt.Errorf("%w: pipe id %q is not a number", ErrBadRequest, raw))
		return 0, false
	}
	return pipe.ID(n), true
}

// readSize resolves the n query parameter
func readSize(c *gin.Context) (int, bool) {
	raw := c.Query("n")
	if raw == "" {
		return DefaultReadSize, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondError(c, fmt.Errorf("%w: n must be a non-negative integer", ErrBadRequest))
		return 0, false
	}
	if n > MaxReadSize {
		n = MaxReadSize
	}
	return n, true
}
