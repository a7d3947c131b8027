package vm

import (
	"bufio"
	"context"
	"strconv"
	"strings"
)

// defaultPortCapacity is the reference channel capacity: 1, so a sender
// blocks until a receiver accepts. Tests and performance-sensitive callers
// may override it per §9.C of the spec; raising it preserves FIFO ordering
// and end-of-stream propagation, it only changes how much the producer can
// get ahead of the consumer.
const defaultPortCapacity = 1

// InPort is the receiving end of a VM's input stream. A closed, drained
// InPort signals end-of-stream to the VM's Input instruction.
type InPort = <-chan Cell

// OutPort is the sending end of a VM's output stream.
type OutPort = chan<- Cell

// NewPort creates a bounded single-Cell channel pair with the given
// capacity, usable as one VM's OutPort wired to another's InPort (or to one
// of the adapters below).
func NewPort(capacity int) chan Cell {
	if capacity < 1 {
		capacity = defaultPortCapacity
	}
	return make(chan Cell, capacity)
}

// Pipe wires a's output directly into b's input, returning the channel so
// the caller retains the ability to close it or inspect it. This is the
// full extent of the "wire VMs together" primitive the core owns; any
// specific multi-VM topology (a permutation-scanned amplifier chain, a
// painting-robot loop) is assembled by a driver on top of this and
// LoggingConnector, not by the vm package.
func Pipe(a, b *VM, capacity int) chan Cell {
	ch := NewPort(capacity)
	a.out = ch
	b.in = ch
	return ch
}

// StringSource parses text into one integer per line and sends each on out,
// closing out once exhausted (or once ctx is cancelled, whichever comes
// first). It is meant to run in its own goroutine; Err returns the first
// parse failure, if any, once the goroutine has finished sending.
type StringSource struct {
	out chan<- Cell
	err error
}

// NewStringSource returns a source that will send text's integers on out
// when Run is called.
func NewStringSource(out chan<- Cell) *StringSource {
	return &StringSource{out: out}
}

// Run parses text and sends its integers on the source's output channel,
// one per line, then closes it. Run is intended to be invoked with `go`; an
// empty text sends nothing. Cancelling ctx stops Run from sending further
// values (used by RunProgram to abandon a source the VM no longer reads
// from).
func (s *StringSource) Run(ctx context.Context, text string) {
	defer close(s.out)
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			s.err = err
			return
		}
		select {
		case s.out <- v:
		case <-ctx.Done():
			return
		}
	}
}

// Err reports the first line-parse failure encountered by Run, if any.
func (s *StringSource) Err() error {
	return s.err
}

// StringSink receives Cells until its input channel closes, accumulating
// each value's decimal representation with no separator.
type StringSink struct {
	in     <-chan Cell
	result chan string
}

// NewStringSink returns a sink that will accumulate values received on in.
func NewStringSink(in <-chan Cell) *StringSink {
	return &StringSink{in: in, result: make(chan string, 1)}
}

// Run drains the sink's input channel until it closes, then publishes the
// accumulated string for Result to retrieve. Intended to be invoked with
// `go`.
func (s *StringSink) Run() {
	var b strings.Builder
	for v := range s.in {
		b.WriteString(strconv.FormatInt(v, 10))
	}
	s.result <- b.String()
}

// Result blocks until Run has observed end-of-stream and returns the
// accumulated output text.
func (s *StringSink) Result() string {
	return <-s.result
}

// LoggingConnector forwards every value received on in to out while
// recording it, decimal plus newline, in an internal log. It is the
// "optional value-logging on a connector" the spec names as the one
// permitted observability surface, and doubles as the closing link of a
// feedback ring between the last and first VM in a pipeline.
type LoggingConnector struct {
	in     <-chan Cell
	out    chan<- Cell
	log    strings.Builder
	result chan string
}

// NewLoggingConnector returns a connector forwarding in to out.
func NewLoggingConnector(in <-chan Cell, out chan<- Cell) *LoggingConnector {
	return &LoggingConnector{in: in, out: out, result: make(chan string, 1)}
}

// Run forwards values from in to out until in closes, then closes out and
// publishes the accumulated log for Result. Intended to be invoked with
// `go`.
func (c *LoggingConnector) Run() {
	defer close(c.out)
	for v := range c.in {
		c.log.WriteString(strconv.FormatInt(v, 10))
		c.log.WriteByte('\n')
		c.out <- v
	}
	c.result <- c.log.String()
}

// Result blocks until Run has observed end-of-stream on its input and
// returns the accumulated log.
func (c *LoggingConnector) Result() string {
	return <-c.result
}
