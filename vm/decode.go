package vm

// Mode is a parameter's addressing mode.
type Mode int

const (
	Position Mode = iota
	Immediate
	Relative
)

func decodeMode(word Cell, paramIndex int) (Mode, error) {
	div := int64(1)
	for i := 0; i < paramIndex+2; i++ {
		div *= 10
	}
	digit := (word / div) % 10
	switch digit {
	case 0:
		return Position, nil
	case 1:
		return Immediate, nil
	case 2:
		return Relative, nil
	default:
		return 0, fault(ErrMalformedProgram, "unknown parameter mode digit %d", digit)
	}
}

// Param is a single decoded parameter: its addressing mode and the raw word
// read from the instruction's parameter slot.
type Param struct {
	Mode Mode
	Raw  Cell
}

// readValue resolves p to the value it denotes, given the memory it is
// read through and the VM's current relative base.
func (p Param) readValue(mem *Memory, rb int64) (Cell, error) {
	switch p.Mode {
	case Position:
		if p.Raw < 0 {
			return 0, fault(ErrMalformedProgram, "negative position address %d", p.Raw)
		}
		return mem.Get(p.Raw), nil
	case Immediate:
		return p.Raw, nil
	case Relative:
		addr := p.Raw + rb
		if addr < 0 {
			return 0, fault(ErrMalformedProgram, "negative relative address %d", addr)
		}
		return mem.Get(addr), nil
	default:
		return 0, fault(ErrMalformedProgram, "unknown parameter mode %d", p.Mode)
	}
}

// writeAddress resolves p to the address a write instruction should target.
// Immediate mode is never valid for a write parameter.
func (p Param) writeAddress(rb int64) (int64, error) {
	switch p.Mode {
	case Position:
		if p.Raw < 0 {
			return 0, fault(ErrMalformedProgram, "negative position address %d", p.Raw)
		}
		return p.Raw, nil
	case Relative:
		addr := p.Raw + rb
		if addr < 0 {
			return 0, fault(ErrMalformedProgram, "negative relative address %d", addr)
		}
		return addr, nil
	case Immediate:
		return 0, fault(ErrMalformedProgram, "write parameter cannot be immediate")
	default:
		return 0, fault(ErrMalformedProgram, "unknown parameter mode %d", p.Mode)
	}
}

// Opcode is the decoded, mode-stripped instruction opcode.
type Opcode int

const (
	OpAdd         Opcode = 1
	OpMul         Opcode = 2
	OpInput       Opcode = 3
	OpOutput      Opcode = 4
	OpJumpIfTrue  Opcode = 5
	OpJumpIfFalse Opcode = 6
	OpLessThan    Opcode = 7
	OpEquals      Opcode = 8
	OpAdjustRB    Opcode = 9
	OpHalt        Opcode = 99
)

// width is the instruction's total word count (opcode word plus parameters).
func (op Opcode) width() (int, error) {
	switch op {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		return 4, nil
	case OpInput, OpOutput, OpAdjustRB:
		return 2, nil
	case OpJumpIfTrue, OpJumpIfFalse:
		return 3, nil
	case OpHalt:
		return 1, nil
	default:
		return 0, fault(ErrMalformedProgram, "unknown opcode %d", op)
	}
}

// Instruction is a decoded instruction: a tagged sum of the ten Intcode
// opcodes. Only the Param-typed fields relevant to Op are meaningful; the
// rest are zero. Using a closed tag plus flat fields keeps
// decode and execute free of virtual dispatch, which a register-free
// interpreter this small has no use for.
type Instruction struct {
	Op     Opcode
	A, B   Param // read parameters (Add/Mul/LessThan/Equals: a, b; JumpIf*: cond, target)
	D      Param // write parameter (Add/Mul/Input/LessThan/Equals)
	S      Param // read parameter (Output, AdjustRB offset)
	Width  int
}

// Decode reads the instruction at ip from mem and decodes its opcode and
// parameters. It does not itself read past the instruction width other than
// via Memory.Get, whose past-the-end reads are defined to be zero.
func Decode(mem *Memory, ip int64) (Instruction, error) {
	word := mem.Get(ip)
	opRaw := word % 100
	op := Opcode(opRaw)
	width, err := op.width()
	if err != nil {
		return Instruction{}, wrapAt(err, ip)
	}

	param := func(i int) (Param, error) {
		mode, err := decodeMode(word, i)
		if err != nil {
			return Param{}, err
		}
		return Param{Mode: mode, Raw: mem.Get(ip + int64(i) + 1)}, nil
	}

	inst := Instruction{Op: op, Width: width}
	switch op {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		a, err := param(0)
		if err != nil {
			return Instruction{}, wrapAt(err, ip)
		}
		b, err := param(1)
		if err != nil {
			return Instruction{}, wrapAt(err, ip)
		}
		d, err := param(2)
		if err != nil {
			return Instruction{}, wrapAt(err, ip)
		}
		inst.A, inst.B, inst.D = a, b, d
	case OpInput:
		d, err := param(0)
		if err != nil {
			return Instruction{}, wrapAt(err, ip)
		}
		inst.D = d
	case OpOutput:
		s, err := param(0)
		if err != nil {
			return Instruction{}, wrapAt(err, ip)
		}
		inst.S = s
	case OpJumpIfTrue, OpJumpIfFalse:
		a, err := param(0)
		if err != nil {
			return Instruction{}, wrapAt(err, ip)
		}
		b, err := param(1)
		if err != nil {
			return Instruction{}, wrapAt(err, ip)
		}
		inst.A, inst.B = a, b
	case OpAdjustRB:
		s, err := param(0)
		if err != nil {
			return Instruction{}, wrapAt(err, ip)
		}
		inst.S = s
	case OpHalt:
		// no parameters
	}
	return inst, nil
}

func wrapAt(err error, ip int64) error {
	if f, ok := err.(*Fault); ok && f.IP < 0 {
		f.IP = ip
		return f
	}
	return err
}
