// Command intcode runs an Intcode program: a one-shot batch run, an
// interactive single-step debugger session, or a run with its output
// stream mirrored live to a websocket monitor. It is the thin wiring layer
// over vm, debugger, and monitor that the teacher project's own main.go
// plays for its simulation — argument handling and goroutine startup only,
// no puzzle-specific logic (the noun/verb search, the amplifier
// permutation scan, and similar drivers are explicitly out of scope; see
// §1 of the spec).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"intcode/debugger"
	"intcode/internal/obslog"
	"intcode/monitor"
	"intcode/vm"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "intcode:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("intcode", flag.ExitOnError)
	programPath := fs.String("program", "", "path to an Intcode program file (comma-separated integers); required")
	inputPath := fs.String("input", "", "path to a textual input stream (one integer per line); empty for none")
	debug := fs.Bool("debug", false, "launch an interactive single-step debugger instead of running to completion")
	monitorAddr := fs.String("monitor-addr", "", "if set, serve a live websocket monitor of the output stream on this address (e.g. :8080)")
	capacity := fs.Int("channel-capacity", 1, "capacity of the VM's input/output ports (>=1) with --monitor-addr; batch runs always use capacity 1")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *debug && *monitorAddr != "" {
		return errors.New("--debug and --monitor-addr are mutually exclusive: the debugger REPL is the only goroutine allowed to drive the VM while attached")
	}
	if *programPath == "" {
		return errors.New("--program is required")
	}

	logger := obslog.Default()

	programText, err := readFile(*programPath)
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}
	inputText := ""
	if *inputPath != "" {
		inputText, err = readFile(*inputPath)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	switch {
	case *debug:
		return runDebugger(ctx, programText)
	case *monitorAddr != "":
		return runMonitored(ctx, logger, programText, inputText, *monitorAddr, *capacity)
	default:
		return runBatch(ctx, logger, programText, inputText)
	}
}

func runBatch(ctx context.Context, logger *slog.Logger, programText, inputText string) error {
	logger.Info("run started")
	out, err := vm.RunProgram(ctx, programText, inputText)
	if err != nil {
		logger.Error("run halted with fault", "error", err)
		return err
	}
	logger.Info("run halted cleanly")
	fmt.Println(out)
	return nil
}

func runDebugger(ctx context.Context, programText string) error {
	v, err := vm.NewVM(programText)
	if err != nil {
		return err
	}
	repl := debugger.New(v, os.Stdout)
	return repl.Run(ctx)
}

func runMonitored(ctx context.Context, logger *slog.Logger, programText, inputText string, addr string, capacity int) error {
	hub := monitor.NewHub()
	srv := monitor.NewServer(hub, addr)
	srvErrCh := make(chan error, 1)
	go func() { srvErrCh <- srv.Start() }()
	defer srv.Shutdown(context.Background())

	inCh := vm.NewPort(capacity)
	tappedOut := vm.NewPort(capacity)
	sinkIn := vm.NewPort(capacity)

	v, err := vm.NewVMWithIO(programText, inCh, tappedOut)
	if err != nil {
		return err
	}

	source := vm.NewStringSource(inCh)
	go source.Run(ctx, inputText)

	go monitor.Tap(hub, "intcode", tappedOut, sinkIn)

	sink := vm.NewStringSink(sinkIn)
	go sink.Run()

	logger.Info("monitored run started", "monitor_addr", addr)
	runErr := v.Run(ctx)
	if runErr != nil {
		logger.Error("run halted with fault", "error", runErr)
		// A clean Halt closes tappedOut itself, releasing Tap and then the
		// sink. A fault does not, so close it here or Result() below would
		// block forever on a VM that died mid-run.
		close(tappedOut)
	} else {
		logger.Info("run halted cleanly")
	}
	fmt.Println(sink.Result())
	return runErr
}

func readFile(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
