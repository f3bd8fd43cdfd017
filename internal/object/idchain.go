package object

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/slotbox/internal/stream"
)

// ID addresses one slot within a container. Valid ids are 0..127.
type ID int8

const (
	// InvalidID marks resolution failure and full containers.
	InvalidID ID = -1
	// MaxID is the largest addressable slot; the wire reserves the
	// high bit of each chain byte for continuation.
	MaxID ID = 127
	// MaxDepth bounds how many containers deep an object can live.
	MaxDepth = 3
)

var ErrBadChain = errors.New("object: malformed id chain")

// Chain is a decoded id chain, root-most id first.
type Chain []ID

func (c Chain) String() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, len(c))
	for i, id := range c {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ".")
}

// Clone copies c; walker callbacks receive chains that alias an
// internal buffer and must clone before retaining.
func (c Chain) Clone() Chain {
	out := make(Chain, len(c))
	copy(out, c)
	return out
}

// EncodeChain writes the wire form of c: one byte per id, low seven
// bits the id, high bit set when another id follows.
func EncodeChain(c Chain, out stream.DataOut) bool {
	if len(c) == 0 || len(c) > MaxDepth {
		return false
	}
	for i, id := range c {
		if id < 0 {
			return false
		}
		b := byte(id) & 0x7F
		if i < len(c)-1 {
			b |= 0x80
		}
		if !out.Put(b) {
			return false
		}
	}
	return true
}

// DecodeChain reads a wire-encoded chain from in. It consumes exactly
// the chain's bytes and fails on a truncated stream or a continuation
// past MaxDepth.
func DecodeChain(in stream.DataIn) (Chain, bool) {
	c := make(Chain, 0, MaxDepth)
	for {
		if len(c) == MaxDepth {
			return nil, false
		}
		if !in.HasNext() {
			return nil, false
		}
		b := in.Next()
		c = append(c, ID(b&0x7F))
		if b&0x80 == 0 {
			return c, true
		}
	}
}

// ParseChain parses a dotted chain such as "1.2.3".
func ParseChain(s string) (Chain, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > MaxDepth {
		return nil, fmt.Errorf("%w: %q", ErrBadChain, s)
	}
	c := make(Chain, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > int(MaxID) {
			return nil, fmt.Errorf("%w: %q", ErrBadChain, s)
		}
		c = append(c, ID(n))
	}
	return c, nil
}
