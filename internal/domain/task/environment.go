package task

import (
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/logging"
)

// Environment is the process-wide, read-only configuration every task sees:
// the runtime version and the named constants for pipe flags and log levels.
type Environment struct {
	version   string
	constants map[string]int
}

// NewEnvironment resolves the environment once at startup
func NewEnvironment(version string) *Environment {
	constants := pipe.Constants()
	for name, value := range logging.Levels() {
		constants[name] = value
	}
	return &Environment{
		version:   version,
		constants: constants,
	}
}

// Version returns the runtime version string
func (e *Environment) Version() string {
	return e.version
}

// Constants returns a copy of the constant table
func (e *Environment) Constants() map[string]int {
	out := make(map[string]int, len(e.constants))
	for k, v := range e.constants {
		out[k] = v
	}
	return out
}

// Constant looks up a single constant
func (e *Environment) Constant(name string) (int, bool) {
	v, ok := e.constants[name]
	return v, ok
}
