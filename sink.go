package tcpoosc

import (
	"bytes"
	"os"
)

// Sink is the character sink the unparser writes through (component
// B). It is deliberately narrower than io.Writer so that a
// fixed-buffer-backed implementation never needs to grow or return
// partial-write errors for callers that already size their buffer.
type Sink interface {
	WriteByte(b byte) error
	WriteString(s string) (int, error)
}

// FileSink writes to an *os.File as bytes arrive. The CLI does not
// use it; it renders into a BufferSink and writes that out.
type FileSink struct {
	f *os.File
}

// NewFileSink wraps an already-open file.
func NewFileSink(f *os.File) *FileSink { return &FileSink{f: f} }

func (s *FileSink) WriteByte(b byte) error {
	_, err := s.f.Write([]byte{b})
	return err
}

func (s *FileSink) WriteString(str string) (int, error) {
	return s.f.WriteString(str)
}

// BufferSink writes into an in-memory buffer; tests use it so the
// rendered text can be asserted on directly, and the CLI renders the
// compiled program into one before printing or writing it.
type BufferSink struct {
	buf bytes.Buffer
}

// NewBufferSink returns an empty in-memory sink.
func NewBufferSink() *BufferSink { return &BufferSink{} }

func (s *BufferSink) WriteByte(b byte) error {
	return s.buf.WriteByte(b)
}

func (s *BufferSink) WriteString(str string) (int, error) {
	return s.buf.WriteString(str)
}

// String returns everything written so far.
func (s *BufferSink) String() string { return s.buf.String() }

// FixedBufferSink writes into a caller-supplied fixed-size byte slice
// and reports an error instead of growing once capacity is exhausted,
// matching §4's "fixed-buffer-backed implementation" requirement for
// callers (e.g. embedded targets) that cannot allocate.
type FixedBufferSink struct {
	data []byte
	len  int
}

// NewFixedBufferSink wraps a pre-allocated slice.
func NewFixedBufferSink(data []byte) *FixedBufferSink {
	return &FixedBufferSink{data: data}
}

func (s *FixedBufferSink) WriteByte(b byte) error {
	if s.len >= len(s.data) {
		return errSinkFull
	}
	s.data[s.len] = b
	s.len++
	return nil
}

func (s *FixedBufferSink) WriteString(str string) (int, error) {
	for i := 0; i < len(str); i++ {
		if err := s.WriteByte(str[i]); err != nil {
			return i, err
		}
	}
	return len(str), nil
}

// Bytes returns the portion of the backing slice written so far.
func (s *FixedBufferSink) Bytes() []byte { return s.data[:s.len] }

var errSinkFull = &CompileError{Kind: ErrAllocationFailure, Message: "fixed-buffer sink exhausted"}
