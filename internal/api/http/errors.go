package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/task"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/typeexpr"
)

// ErrBadRequest covers malformed bodies and parameters
var ErrBadRequest = errors.New("bad request")

func init() {
	pipe.RegisterKind(ErrBadRequest, "BadRequest")
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, typeexpr.ErrInvalidTypeExpression),
		errors.Is(err, pipe.ErrInvalidFlags),
		errors.Is(err, registry.ErrInvalidPipeName),
		errors.Is(err, pipe.ErrInvalidScopeToken):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrUnknownPipe),
		errors.Is(err, task.ErrUnknownTask):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrDuplicatePipeName),
		errors.Is(err, pipe.ErrInvalidPipeDirection),
		errors.Is(err, pipe.ErrPipeClosed),
		errors.Is(err, registry.ErrTaskFinalized):
		return http.StatusConflict
	case errors.Is(err, pipe.ErrPipeFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status and kind
func respondError(c *gin.Context, err error) {
	kind := pipe.Kind(err)
	if kind == "" {
		kind = "Internal"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), ErrorResponse{Error: err.Error(), Kind: kind})
}
