// Package comms frames commands for transport: one hex text line per
// request, one per response, with inline annotations for humans
// watching a session.
package comms

import (
	"io"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// HexIn decodes one request line into a byte stream. Two adjacent hex
// digits form a byte; whitespace and <annotation> spans may sit
// between bytes, which lets a logged session replay as-is. The first
// character that is none of those ends the stream.
type HexIn struct {
	line []byte
	pos  int
}

func NewHexIn(line []byte) *HexIn {
	return &HexIn{line: line}
}

func (in *HexIn) HasNext() bool {
	_, _, ok := in.peek()
	return ok
}

func (in *HexIn) Next() byte {
	b, next, ok := in.peek()
	if !ok {
		return 0
	}
	in.pos = next
	return b
}

func (in *HexIn) peek() (b byte, next int, ok bool) {
	i := skipFiller(in.line, in.pos)
	if i+1 >= len(in.line) {
		return 0, 0, false
	}
	hi := hexVal(in.line[i])
	lo := hexVal(in.line[i+1])
	if hi < 0 || lo < 0 {
		return 0, 0, false
	}
	return byte(hi<<4 | lo), i + 2, true
}

func skipFiller(p []byte, i int) int {
	for i < len(p) {
		switch {
		case p[i] == ' ' || p[i] == '\t' || p[i] == '\r' || p[i] == '\n':
			i++
		case p[i] == '<':
			for i < len(p) && p[i] != '>' {
				i++
			}
			if i < len(p) {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// HexOut encodes response bytes as uppercase hex pairs separated by
// spaces. The first write error latches; later calls become no-ops.
type HexOut struct {
	w     io.Writer
	wrote bool
	err   error
}

func NewHexOut(w io.Writer) *HexOut {
	return &HexOut{w: w}
}

func (out *HexOut) Put(b byte) bool {
	if out.err != nil {
		return false
	}
	var buf [3]byte
	n := 0
	if out.wrote {
		buf[n] = ' '
		n++
	}
	buf[n] = hexDigits[b>>4]
	buf[n+1] = hexDigits[b&0x0F]
	_, out.err = out.w.Write(buf[:n+2])
	out.wrote = true
	return out.err == nil
}

func (out *HexOut) Write(p []byte) bool {
	for _, b := range p {
		if !out.Put(b) {
			return false
		}
	}
	return true
}

// Annotate emits a <text> span. Binary readers skip it; characters
// that would break the framing are rewritten.
func (out *HexOut) Annotate(text string) {
	if out.err != nil {
		return
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '\n', '\r':
			return '.'
		}
		return r
	}, text)
	if out.wrote {
		cleaned = " <" + cleaned + ">"
	} else {
		cleaned = "<" + cleaned + ">"
	}
	_, out.err = io.WriteString(out.w, cleaned)
	out.wrote = true
}

// EndResponse terminates the response line.
func (out *HexOut) EndResponse() error {
	if out.err != nil {
		return out.err
	}
	_, out.err = out.w.Write([]byte{'\n'})
	return out.err
}

// Err returns the first write error, if any.
func (out *HexOut) Err() error { return out.err }
