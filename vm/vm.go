// Package vm implements a register-less Intcode virtual machine: a single
// mutable linear memory of signed 64-bit cells, a fetch-decode-execute loop,
// and a pair of unidirectional single-Cell channels used for Input and
// Output instructions. Instances are meant to be wired together — directly,
// through Pipe, or through a LoggingConnector closing a feedback ring — and
// run one goroutine per VM.
package vm

import (
	"context"
)

// VM is one Intcode machine: its memory, instruction pointer, relative
// base, and the two ports it uses for Input/Output. A VM is not safe for
// concurrent use by more than one goroutine at a time; per the spec, only
// the goroutine that calls Run may touch its state while it is running, and
// host-facing accessors (SetMemory, GetMemory, Snapshot, Restore, ResetIP)
// must only be called while the VM is not running.
type VM struct {
	mem *Memory
	ip  int64
	rb  int64

	in  <-chan Cell
	out chan<- Cell
}

// NewVM constructs a VM from program text with no input or output port
// configured. Input/Output instructions on a VM built this way fault with
// ErrPortMisuse.
func NewVM(programText string) (*VM, error) {
	mem, err := NewMemory(programText)
	if err != nil {
		return nil, err
	}
	return &VM{mem: mem}, nil
}

// NewVMWithIO constructs a VM from program text wired to the given input
// and output ports.
func NewVMWithIO(programText string, in <-chan Cell, out chan<- Cell) (*VM, error) {
	v, err := NewVM(programText)
	if err != nil {
		return nil, err
	}
	v.in, v.out = in, out
	return v, nil
}

// SetIO (re)configures the VM's ports. Must only be called while the VM is
// not running.
func (v *VM) SetIO(in <-chan Cell, out chan<- Cell) {
	v.in, v.out = in, out
}

// SetMemory writes value directly into the VM's memory, growing it if
// necessary. Used by hosts to inject state (e.g. noun/verb) before Run.
func (v *VM) SetMemory(addr int64, value Cell) {
	v.mem.Set(addr, value)
}

// GetMemory reads directly from the VM's memory.
func (v *VM) GetMemory(addr int64) Cell {
	return v.mem.Get(addr)
}

// MemoryLen reports the current number of addressable memory cells.
func (v *VM) MemoryLen() int {
	return v.mem.Len()
}

// IP reports the VM's current instruction pointer.
func (v *VM) IP() int64 { return v.ip }

// RB reports the VM's current relative base.
func (v *VM) RB() int64 { return v.rb }

// Snapshot returns an independent copy of the VM's memory.
func (v *VM) Snapshot() []Cell {
	return v.mem.Snapshot()
}

// Restore replaces the VM's memory with an independent copy of cells.
func (v *VM) Restore(cells []Cell) {
	v.mem.Restore(cells)
}

// ResetIP sets the instruction pointer and relative base back to 0, mirroring
// the effect of constructing a fresh VM on the same memory. There is no way
// to reset IP alone: the VM exposes RB for reading only and has no RB
// setter.
func (v *VM) ResetIP() {
	v.ip = 0
	v.rb = 0
}

// Run drives the fetch-decode-execute loop until a Halt instruction, an
// unconfigured port is used, or a peer disappears. It returns nil only on a
// clean Halt. Per §5 of the spec, the only two suspension points are the
// Output send and the Input receive; everything else in this loop runs
// without yielding.
func (v *VM) Run(ctx context.Context) error {
	for {
		inst, err := Decode(v.mem, v.ip)
		if err != nil {
			return err
		}
		halted, err := v.execute(ctx, inst)
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// Step decodes and executes exactly one instruction, reporting whether it
// was a Halt. It is the primitive the interactive debugger single-steps
// with; Run is just Step looped to completion.
func (v *VM) Step(ctx context.Context) (halted bool, err error) {
	inst, err := Decode(v.mem, v.ip)
	if err != nil {
		return false, err
	}
	return v.execute(ctx, inst)
}

func (v *VM) execute(ctx context.Context, inst Instruction) (halted bool, err error) {
	switch inst.Op {
	case OpAdd:
		return false, v.arith(inst, func(a, b Cell) Cell { return a + b })
	case OpMul:
		return false, v.arith(inst, func(a, b Cell) Cell { return a * b })
	case OpInput:
		return false, v.doInput(ctx, inst)
	case OpOutput:
		return false, v.doOutput(ctx, inst)
	case OpJumpIfTrue:
		return false, v.jumpIf(inst, func(c Cell) bool { return c != 0 })
	case OpJumpIfFalse:
		return false, v.jumpIf(inst, func(c Cell) bool { return c == 0 })
	case OpLessThan:
		return false, v.compare(inst, func(a, b Cell) bool { return a < b })
	case OpEquals:
		return false, v.compare(inst, func(a, b Cell) bool { return a == b })
	case OpAdjustRB:
		return false, v.adjustRB(inst)
	case OpHalt:
		if v.out != nil {
			close(v.out)
		}
		return true, nil
	default:
		return false, faultAt(ErrMalformedProgram, v.ip, "unknown opcode %d", inst.Op)
	}
}

func (v *VM) arith(inst Instruction, op func(a, b Cell) Cell) error {
	a, err := inst.A.readValue(v.mem, v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	b, err := inst.B.readValue(v.mem, v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	addr, err := inst.D.writeAddress(v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	v.mem.Set(addr, op(a, b))
	v.ip += int64(inst.Width)
	return nil
}

func (v *VM) compare(inst Instruction, cmp func(a, b Cell) bool) error {
	a, err := inst.A.readValue(v.mem, v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	b, err := inst.B.readValue(v.mem, v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	addr, err := inst.D.writeAddress(v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	var result Cell
	if cmp(a, b) {
		result = 1
	}
	v.mem.Set(addr, result)
	v.ip += int64(inst.Width)
	return nil
}

func (v *VM) jumpIf(inst Instruction, cond func(Cell) bool) error {
	c, err := inst.A.readValue(v.mem, v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	target, err := inst.B.readValue(v.mem, v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	if cond(c) {
		if target < 0 {
			return faultAt(ErrMalformedProgram, v.ip, "negative jump target %d", target)
		}
		v.ip = target
		return nil
	}
	v.ip += int64(inst.Width)
	return nil
}

func (v *VM) adjustRB(inst Instruction) error {
	o, err := inst.S.readValue(v.mem, v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	v.rb += o
	v.ip += int64(inst.Width)
	return nil
}

func (v *VM) doInput(ctx context.Context, inst Instruction) error {
	if v.in == nil {
		return faultAt(ErrPortMisuse, v.ip, "input instruction with no input port configured")
	}
	addr, err := inst.D.writeAddress(v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	select {
	case val, ok := <-v.in:
		if !ok {
			return faultAt(ErrPeerClosed, v.ip, "input port closed while a value was required")
		}
		v.mem.Set(addr, val)
		v.ip += int64(inst.Width)
		return nil
	case <-ctx.Done():
		return faultAt(ErrPeerClosed, v.ip, "context cancelled while awaiting input: %v", ctx.Err())
	}
}

func (v *VM) doOutput(ctx context.Context, inst Instruction) error {
	if v.out == nil {
		return faultAt(ErrPortMisuse, v.ip, "output instruction with no output port configured")
	}
	val, err := inst.S.readValue(v.mem, v.rb)
	if err != nil {
		return wrapAt(err, v.ip)
	}
	select {
	case v.out <- val:
		v.ip += int64(inst.Width)
		return nil
	case <-ctx.Done():
		return faultAt(ErrPeerClosed, v.ip, "context cancelled while sending output: %v", ctx.Err())
	}
}
