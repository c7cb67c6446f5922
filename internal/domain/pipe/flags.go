package pipe

import (
	"fmt"
	"strings"
)

// ID addresses a pipe inside one task's registry. IDs are allocated from 0
// upward and never reused during the task lifetime.
type ID uint32

// String returns the decimal form of the id
func (id ID) String() string {
	return fmt.Sprintf("%d", uint32(id))
}

// Flags is the bit set passed to a pipe definition
type Flags uint32

const (
	FlagInput  Flags = 1 << iota // task reads from the pipe
	FlagOutput                   // task writes to the pipe
	FlagAsync                    // producer and consumer may run on different goroutines
	FlagShadow                   // output that duplicates another pipe's data
)

const knownFlags = FlagInput | FlagOutput | FlagAsync | FlagShadow

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagInput, "INPUT"},
	{FlagOutput, "OUTPUT"},
	{FlagAsync, "ASYNC"},
	{FlagShadow, "SHADOW"},
}

// Validate enforces exactly one of INPUT/OUTPUT and no unknown bits
func (f Flags) Validate() error {
	if f&^knownFlags != 0 {
		return fmt.Errorf("%w: unknown bits 0x%x", ErrInvalidFlags, uint32(f&^knownFlags))
	}
	in, out := f.IsInput(), f.IsOutput()
	if in == out {
		return fmt.Errorf("%w: exactly one of INPUT or OUTPUT is required, got %s", ErrInvalidFlags, f)
	}
	return nil
}

// IsInput reports whether the INPUT bit is set
func (f Flags) IsInput() bool { return f&FlagInput != 0 }

// IsOutput reports whether the OUTPUT bit is set
func (f Flags) IsOutput() bool { return f&FlagOutput != 0 }

// IsAsync reports whether the ASYNC bit is set
func (f Flags) IsAsync() bool { return f&FlagAsync != 0 }

// IsShadow reports whether the SHADOW bit is set
func (f Flags) IsShadow() bool { return f&FlagShadow != 0 }

// Direction returns "input", "output" or "invalid"
func (f Flags) Direction() string {
	switch {
	case f.IsInput() && !f.IsOutput():
		return "input"
	case f.IsOutput() && !f.IsInput():
		return "output"
	default:
		return "invalid"
	}
}

// String renders the flags as NAME|NAME
func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if rest := f &^ knownFlags; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// ParseFlags converts names such as "OUTPUT|ASYNC" into Flags. Names are
// case-insensitive and may be separated by '|' or ','.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
	for _, field := range fields {
		flag, ok := lookupFlag(field)
		if !ok {
			return 0, fmt.Errorf("%w: unknown flag %q", ErrInvalidFlags, field)
		}
		f |= flag
	}
	return f, nil
}

func lookupFlag(name string) (Flags, bool) {
	name = strings.TrimPrefix(strings.ToUpper(name), "PIPE_")
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	return 0, false
}

// Constants returns the flag values keyed by their framework names
// (PIPE_INPUT, PIPE_OUTPUT, ...).
func Constants() map[string]int {
	out := make(map[string]int, len(flagNames))
	for _, fn := range flagNames {
		out["PIPE_"+fn.name] = int(fn.flag)
	}
	return out
}
