package pipeio

import (
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/registry"
)

// Endpoint is the framework side of a task's pipes: whatever transport
// connects tasks feeds INPUT pipes and drains OUTPUT pipes through it.
type Endpoint struct {
	access
}

// NewEndpoint creates the framework-side view over reg
func NewEndpoint(reg *registry.Registry, opts ...Option) *Endpoint {
	return &Endpoint{access: newAccess(reg, opts)}
}

// Feed delivers bytes into an INPUT pipe
func (e *Endpoint) Feed(id pipe.ID, data []byte) (int, error) {
	return e.write("feed", id, inputOnly, data)
}

// FeedScopeToken delivers a scope boundary into an INPUT pipe
func (e *Endpoint) FeedScopeToken(id pipe.ID, token pipe.Token) error {
	return e.writeToken("feed_scope_token", id, inputOnly, token)
}

// CloseInput signals that no more data will arrive on an INPUT pipe
func (e *Endpoint) CloseInput(id pipe.ID) error {
	return e.markEOF("close_input", id, inputOnly)
}

// Drain collects up to n bytes the task wrote to an OUTPUT pipe
func (e *Endpoint) Drain(id pipe.ID, n int) ([]byte, error) {
	return e.read("drain", id, outputOnly, n)
}

// DrainScopeToken collects the scope token at the read cursor of an OUTPUT
// pipe, if there is one.
func (e *Endpoint) DrainScopeToken(id pipe.ID) (pipe.Token, bool, error) {
	return e.readToken("drain_scope_token", id, outputOnly)
}

// Status reports the end-of-stream status of any pipe
func (e *Endpoint) Status(id pipe.ID) (pipe.Status, error) {
	return e.status("status", id)
}
