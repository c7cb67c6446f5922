package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/logging"
)

// LogBatchRequest is a batch of task log messages
type LogBatchRequest struct {
	Entries []LogRequest `json:"entries"`
}

// WriteLog forwards task log messages to the server log. The body is either
// a single {"level", "message"} entry or {"entries": [...]}.
func (h *Handlers) WriteLog(c *gin.Context) {
	ctx, ok := h.task(c)
	if !ok {
		return
	}

	var batch struct {
		LogRequest
		LogBatchRequest
	}
	if err := c.ShouldBindJSON(&batch); err != nil {
		respondError(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	entries := batch.Entries
	if batch.Message != "" {
		entries = append(entries, batch.LogRequest)
	}
	if len(entries) == 0 {
		respondError(c, fmt.Errorf("%w: no log entries provided", ErrBadRequest))
		return
	}

	// validate everything first so a batch is logged all or nothing
	levels := make([]logging.Level, len(entries))
	for i, entry := range entries {
		level, err := logging.ParseLevel(entry.Level)
		if err != nil {
			respondError(c, fmt.Errorf("%w: entry %d: %v", ErrBadRequest, i, err))
			return
		}
		levels[i] = level
	}

	for i, entry := range entries {
		ctx.LogWrite(levels[i], entry.Message)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"entries_received": len(entries),
	})
}
