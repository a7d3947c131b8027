package vm

import (
	"errors"
	"fmt"
)

// The VM distinguishes three fatal failure kinds. None is recoverable inside
// the VM: every one surfaces from Run as an error wrapping one of these
// sentinels, so a host can classify it with errors.Is. This mirrors the
// three-way fault split (ErrHalted/ErrNotPermitted/ErrSIGSEGV) used by other
// small VMs in this family, adapted to a VM that reports through a returned
// error instead of only a panic.
var (
	// ErrMalformedProgram covers parse failure, unknown opcode, unknown mode
	// digit, and an immediate-mode write target.
	ErrMalformedProgram = errors.New("intcode: malformed program")

	// ErrPortMisuse covers a receive from an unconfigured input port or a
	// send on an unconfigured output port.
	ErrPortMisuse = errors.New("intcode: port misuse")

	// ErrPeerClosed covers an input port closed while a value is required,
	// or an output port closed while a value is being sent.
	ErrPeerClosed = errors.New("intcode: peer closed")
)

// Fault carries one of the sentinel errors above plus context useful for
// diagnosing where execution went wrong.
type Fault struct {
	Kind error
	IP   int64
	Msg  string
}

func (f *Fault) Error() string {
	if f.IP >= 0 {
		return fmt.Sprintf("%s at ip=%d: %s", f.Kind, f.IP, f.Msg)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func (f *Fault) Unwrap() error {
	return f.Kind
}

// fault builds a Fault with no known IP context (used by components, such as
// Memory parsing, that run before a VM's instruction pointer exists).
func fault(kind error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, IP: -1, Msg: fmt.Sprintf(format, args...)}
}

// faultAt builds a Fault tagged with the instruction pointer at which it was
// raised.
func faultAt(kind error, ip int64, format string, args ...any) *Fault {
	return &Fault{Kind: kind, IP: ip, Msg: fmt.Sprintf(format, args...)}
}
