package http

import (
	"encoding/json"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
)

// FlagValue accepts pipe flags either as a number or as names such as
// "OUTPUT|ASYNC". Unknown names are kept as an error and reported by Flags,
// so they surface as InvalidFlags rather than as a malformed body.
type FlagValue struct {
	flags pipe.Flags
	err   error
}

// NewFlagValue wraps already parsed flags
func NewFlagValue(f pipe.Flags) FlagValue {
	return FlagValue{flags: f}
}

// Flags returns the decoded flags
func (f FlagValue) Flags() (pipe.Flags, error) {
	return f.flags, f.err
}

func (f *FlagValue) UnmarshalJSON(b []byte) error {
	var n uint32
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlagValue{flags: pipe.Flags(n)}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("flags must be a number or a string")
	}
	flags, err := pipe.ParseFlags(s)
	*f = FlagValue{flags: flags, err: err}
	return nil
}

func (f FlagValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint32(f.flags))
}

// WriteRequest carries bytes for write and feed
type WriteRequest struct {
	Data []byte `json:"data"`
	// EOF closes an INPUT pipe once all of Data was accepted (feed only)
	EOF bool `json:"eof,omitempty"`
}

// WriteResponse reports how much of a write was accepted
type WriteResponse struct {
	Written int  `json:"written"`
	Closed  bool `json:"closed,omitempty"`
}

// ReadResponse carries bytes for read and drain
type ReadResponse struct {
	Data   []byte `json:"data"`
	Status string `json:"status"`
}

// TokenRequest carries a scope token
type TokenRequest struct {
	Token pipe.Token `json:"token"`
}

// TokenResponse reports the token at the read cursor, if any
type TokenResponse struct {
	Token   pipe.Token `json:"token"`
	Present bool       `json:"present"`
}

// StatusResponse reports the end-of-stream status of a pipe
type StatusResponse struct {
	ID     pipe.ID `json:"id"`
	Status string  `json:"status"`
}

// LogRequest is a task log message
type LogRequest struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
