package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/task"
)

// pipeCtx resolves both the task and pipe parameters
func (h *Handlers) pipeCtx(c *gin.Context) (*task.Context, pipe.ID, bool) {
	ctx, ok := h.task(c)
	if !ok {
		return nil, 0, false
	}
	pid, ok := pipeID(c)
	if !ok {
		return nil, 0, false
	}
	return ctx, pid, true
}

func bindWrite(c *gin.Context) (WriteRequest, bool) {
	var req WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return req, false
	}
	return req, true
}

// respondRead writes data together with the status left after reading
func respondRead(c *gin.Context, data []byte, status pipe.Status) {
	if data == nil {
		data = []byte{}
	}
	c.JSON(http.StatusOK, ReadResponse{Data: data, Status: status.String()})
}

// ReadPipe reads from an INPUT pipe on behalf of the task
func (h *Handlers) ReadPipe(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}
	n, ok := readSize(c)
	if !ok {
		return
	}

	data, err := ctx.IO().PipeRead(pid, n)
	if err != nil {
		respondError(c, err)
		return
	}
	status, err := ctx.IO().PipeEOF(pid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondRead(c, data, status)
}

// WritePipe writes to an OUTPUT pipe on behalf of the task
func (h *Handlers) WritePipe(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}
	req, ok := bindWrite(c)
	if !ok {
		return
	}

	n, err := ctx.IO().PipeWrite(pid, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, WriteResponse{Written: n})
}

// WriteScopeToken marks a scope boundary on an OUTPUT pipe
func (h *Handlers) WriteScopeToken(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	if err := ctx.IO().PipeWriteScopeToken(pid, req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: req.Token, Present: true})
}

// ReadScopeToken takes the scope token at the read cursor of an INPUT pipe
func (h *Handlers) ReadScopeToken(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}

	token, present, err := ctx.IO().PipeReadScopeToken(pid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token, Present: present})
}

// PipeEOF reports the end-of-stream status of any pipe
func (h *Handlers) PipeEOF(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}

	status, err := ctx.IO().PipeEOF(pid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{ID: pid, Status: status.String()})
}

// ClosePipe ends the stream of an OUTPUT pipe
func (h *Handlers) ClosePipe(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}

	if err := ctx.IO().PipeClose(pid); err != nil {
		respondError(c, err)
		return
	}
	status, err := ctx.IO().PipeEOF(pid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{ID: pid, Status: status.String()})
}

// FeedPipe delivers bytes (and optionally EOF) into an INPUT pipe
func (h *Handlers) FeedPipe(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}
	req, ok := bindWrite(c)
	if !ok {
		return
	}

	ep := ctx.Endpoint()
	n := 0
	if len(req.Data) > 0 {
		var err error
		if n, err = ep.Feed(pid, req.Data); err != nil {
			respondError(c, err)
			return
		}
	}

	// EOF only once everything was accepted; the caller resends the rest
	closed := false
	if req.EOF && n == len(req.Data) {
		if err := ep.CloseInput(pid); err != nil {
			respondError(c, err)
			return
		}
		closed = true
	}
	c.JSON(http.StatusOK, WriteResponse{Written: n, Closed: closed})
}

// FeedScopeToken delivers a scope boundary into an INPUT pipe
func (h *Handlers) FeedScopeToken(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	if err := ctx.Endpoint().FeedScopeToken(pid, req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: req.Token, Present: true})
}

// DrainPipe collects bytes the task wrote to an OUTPUT pipe
func (h *Handlers) DrainPipe(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}
	n, ok := readSize(c)
	if !ok {
		return
	}

	ep := ctx.Endpoint()
	data, err := ep.Drain(pid, n)
	if err != nil {
		respondError(c, err)
		return
	}
	status, err := ep.Status(pid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondRead(c, data, status)
}

// DrainScopeToken collects the scope token at the read cursor of an OUTPUT
// pipe
func (h *Handlers) DrainScopeToken(c *gin.Context) {
	ctx, pid, ok := h.pipeCtx(c)
	if !ok {
		return
	}

	token, present, err := ctx.Endpoint().DrainScopeToken(pid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token, Present: present})
}
