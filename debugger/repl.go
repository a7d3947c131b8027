// Package debugger is an interactive single-step console for an Intcode
// VM, grounded on rcornwell-S370's command/reader.ConsoleReader: the same
// github.com/peterh/liner prompt/history/completion loop, driving a
// different machine. Because §5 of the spec grants a VM's state to exactly
// one goroutine at a time, the REPL *is* that goroutine for the whole
// session it is attached to — it never hands the VM to a background Run
// while also single-stepping it itself.
package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"intcode/vm"
)

var commands = []string{"step", "run", "mem", "setmem", "ip", "rb", "break", "continue", "help", "quit"}

// REPL drives a single VM under manual or breakpointed control.
type REPL struct {
	v          *vm.VM
	out        io.Writer
	prompt     string
	breakpoint map[int64]bool
}

// New constructs a REPL attached to v. out receives all REPL output
// (defaults to the terminal when used via Run, but is exposed here so
// tests can capture it).
func New(v *vm.VM, out io.Writer) *REPL {
	return &REPL{v: v, out: out, prompt: "intcode> ", breakpoint: make(map[int64]bool)}
}

// Run starts an interactive liner session, reading commands until the user
// quits or aborts the prompt (Ctrl-D/Ctrl-C).
func (r *REPL) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var matches []string
		for _, c := range commands {
			if strings.HasPrefix(c, partial) {
				matches = append(matches, c)
			}
		}
		sort.Strings(matches)
		return matches
	})

	for {
		input, err := line.Prompt(r.prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line.AppendHistory(input)

		quit, err := r.Dispatch(ctx, input)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

// Dispatch runs a single REPL command line, reporting whether the session
// should end. It is split out from Run so it can be exercised by tests and
// by a non-interactive driver without a liner terminal attached.
func (r *REPL) Dispatch(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "step":
		halted, err := r.v.Step(ctx)
		if err != nil {
			return false, err
		}
		if halted {
			fmt.Fprintln(r.out, "halted")
		} else {
			fmt.Fprintf(r.out, "ip=%d rb=%d\n", r.v.IP(), r.v.RB())
		}
		return false, nil

	case "run", "continue":
		for {
			if r.breakpoint[r.v.IP()] && cmd == "continue" {
				fmt.Fprintf(r.out, "breakpoint hit at ip=%d\n", r.v.IP())
				return false, nil
			}
			halted, err := r.v.Step(ctx)
			if err != nil {
				return false, err
			}
			if halted {
				fmt.Fprintln(r.out, "halted")
				return false, nil
			}
		}

	case "mem":
		addr, err := parseAddr(args)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "mem[%d] = %d\n", addr, r.v.GetMemory(addr))
		return false, nil

	case "setmem":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: setmem <addr> <value>")
		}
		addr, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return false, fmt.Errorf("bad address %q: %w", args[0], err)
		}
		val, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return false, fmt.Errorf("bad value %q: %w", args[1], err)
		}
		r.v.SetMemory(addr, val)
		return false, nil

	case "ip":
		fmt.Fprintf(r.out, "ip=%d\n", r.v.IP())
		return false, nil

	case "rb":
		fmt.Fprintf(r.out, "rb=%d\n", r.v.RB())
		return false, nil

	case "break":
		addr, err := parseAddr(args)
		if err != nil {
			return false, err
		}
		r.breakpoint[addr] = true
		fmt.Fprintf(r.out, "breakpoint set at %d\n", addr)
		return false, nil

	case "help":
		fmt.Fprintln(r.out, strings.Join(commands, ", "))
		return false, nil

	case "quit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q (try: help)", cmd)
	}
}

func parseAddr(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: <cmd> <addr>")
	}
	addr, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", args[0], err)
	}
	return addr, nil
}
