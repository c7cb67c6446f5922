package pipe

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/typeexpr"
)

// DefaultCapacity is the buffer limit used when none is configured (64KB)
const DefaultCapacity = 64 * 1024

// Status is the end-of-stream state of a pipe
type Status int

const (
	StatusOpen Status = iota
	StatusEOFPendingData
	StatusEOFDrained
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusEOFPendingData:
		return "EOF_PENDING_DATA"
	case StatusEOFDrained:
		return "EOF_DRAINED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus is the inverse of Status.String
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusOpen, StatusEOFPendingData, StatusEOFDrained} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Token marks a logical boundary in a pipe's byte stream. Zero is not a
// valid token.
type Token uint32

type mark struct {
	offset uint64
	token  Token
}

// Pipe is a directional, typed byte buffer with read/write cursors, pending
// scope tokens and an end-of-stream flag. Direction rules are enforced by
// the I/O façade; the buffer itself accepts reads and writes from whichever
// side of the framework owns it.
type Pipe struct {
	id       ID
	name     string
	flags    Flags
	desc     typeexpr.Descriptor
	capacity int

	mu      sync.Mutex
	buf     []byte // unread bytes are buf[rpos:]
	rpos    int
	written uint64 // write cursor, absolute
	read    uint64 // read cursor, absolute
	tokens  []mark // ordered by offset
	eof     bool
}

// New creates an empty pipe. A non-positive capacity selects
// DefaultCapacity.
func New(id ID, name string, flags Flags, desc typeexpr.Descriptor, capacity int) *Pipe {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pipe{
		id:       id,
		name:     name,
		flags:    flags,
		desc:     desc,
		capacity: capacity,
	}
}

func (p *Pipe) ID() ID                          { return p.id }
func (p *Pipe) Name() string                    { return p.name }
func (p *Pipe) Flags() Flags                    { return p.flags }
func (p *Pipe) Descriptor() typeexpr.Descriptor { return p.desc }
func (p *Pipe) Capacity() int                   { return p.capacity }

// Write appends b at the write cursor. When only part of b fits, the part
// that fits is written and its length returned without error; when nothing
// fits the call fails with ErrPipeFull.
func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.eof {
		return 0, p.opError("write", ErrPipeClosed)
	}
	if len(b) == 0 {
		return 0, nil
	}

	free := p.capacity - p.buffered()
	if free <= 0 {
		return 0, p.opError("write", ErrPipeFull)
	}

	n := len(b)
	if n > free {
		n = free
	}

	p.compact()
	p.buf = append(p.buf, b[:n]...)
	p.written += uint64(n)
	return n, nil
}

// Read consumes up to max bytes from the read cursor. It never crosses a
// pending scope token: when a token sits at the cursor, Read returns nothing
// until ReadScopeToken takes it. An empty result with an open pipe means
// "retry later"; with EOF set and no data it is permanent.
func (p *Pipe) Read(max int) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	if max <= 0 {
		return nil
	}

	avail := p.written - p.read
	if len(p.tokens) > 0 {
		if limit := p.tokens[0].offset - p.read; limit < avail {
			avail = limit
		}
	}

	n := uint64(max)
	if n > avail {
		n = avail
	}
	if n == 0 {
		return nil
	}

	out := make([]byte, n)
	copy(out, p.buf[p.rpos:p.rpos+int(n)])
	p.rpos += int(n)
	p.read += n

	if p.rpos == len(p.buf) {
		p.buf = p.buf[:0]
		p.rpos = 0
	}
	return out
}

// WriteScopeToken attaches token to the current write position
func (p *Pipe) WriteScopeToken(token Token) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if token == 0 {
		return p.opError("write_scope_token", ErrInvalidScopeToken)
	}
	if p.eof {
		return p.opError("write_scope_token", ErrPipeClosed)
	}

	p.tokens = append(p.tokens, mark{offset: p.written, token: token})
	return nil
}

// ReadScopeToken takes the token sitting exactly at the read cursor
func (p *Pipe) ReadScopeToken() (Token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.tokens) == 0 || p.tokens[0].offset != p.read {
		return 0, false
	}

	token := p.tokens[0].token
	p.tokens = p.tokens[1:]
	return token, true
}

// MarkEOF closes the write side. It is idempotent and reports whether this
// call performed the transition.
func (p *Pipe) MarkEOF() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.eof {
		return false
	}
	p.eof = true
	return true
}

// EOFStatus distinguishes an open pipe from an ended one with unread data
// (bytes or tokens) and an ended, fully drained one.
func (p *Pipe) EOFStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status()
}

// Len returns the number of unread bytes
func (p *Pipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.buffered()
}

// Stats is a point-in-time snapshot of a pipe
type Stats struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Flags         string `json:"flags"`
	Direction     string `json:"direction"`
	Type          string `json:"type"`
	Capacity      int    `json:"capacity"`
	Buffered      int    `json:"buffered"`
	Written       uint64 `json:"written"`
	Read          uint64 `json:"read"`
	PendingTokens int    `json:"pending_tokens"`
	Status        string `json:"status"`
}

// Stats returns a consistent snapshot of the pipe state
func (p *Pipe) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		ID:            p.id,
		Name:          p.name,
		Flags:         p.flags.String(),
		Direction:     p.flags.Direction(),
		Type:          p.desc.String(),
		Capacity:      p.capacity,
		Buffered:      p.buffered(),
		Written:       p.written,
		Read:          p.read,
		PendingTokens: len(p.tokens),
		Status:        p.status().String(),
	}
}

func (p *Pipe) status() Status {
	switch {
	case !p.eof:
		return StatusOpen
	case p.written > p.read || len(p.tokens) > 0:
		return StatusEOFPendingData
	default:
		return StatusEOFDrained
	}
}

func (p *Pipe) buffered() int {
	return int(p.written - p.read)
}

// compact moves unread bytes to the front once at least half of the backing
// array is consumed.
func (p *Pipe) compact() {
	if p.rpos == 0 || p.rpos < len(p.buf)/2 {
		return
	}
	n := copy(p.buf, p.buf[p.rpos:])
	p.buf = p.buf[:n]
	p.rpos = 0
}

func (p *Pipe) opError(op string, kind error) error {
	return &OpError{Op: op, Pipe: p.id, Name: p.name, Kind: kind}
}
