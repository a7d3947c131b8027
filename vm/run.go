package vm

import "context"

// RunProgram is the one-shot driver helper: it constructs a VM for
// programText, wires a StringSource over inputText to its input and a
// StringSink to its output, runs the VM to completion, and returns the
// sink's accumulated output text. It is the minimal harness a caller needs
// to exercise a program without building its own pipeline; anything beyond
// one VM and one input/output stream (an amplifier chain, a painting-robot
// loop) is a driver's job, not this package's.
func RunProgram(ctx context.Context, programText, inputText string) (string, error) {
	inCh := NewPort(defaultPortCapacity)
	outCh := NewPort(defaultPortCapacity)

	v, err := NewVMWithIO(programText, inCh, outCh)
	if err != nil {
		return "", err
	}

	srcCtx, cancelSrc := context.WithCancel(ctx)
	defer cancelSrc()

	source := NewStringSource(inCh)
	go source.Run(srcCtx, inputText)

	sink := NewStringSink(outCh)
	go sink.Run()

	runErr := v.Run(ctx)

	// A clean Halt already closed outCh, releasing the sink. A fault did
	// not reach Halt, so the sink is still waiting; close it ourselves so
	// Result() below cannot block forever on a VM that died mid-run.
	if runErr != nil {
		close(outCh)
	}

	// The source may still be live (the program never drained its input);
	// cancelling here lets it return without leaking a goroutine.
	cancelSrc()

	out := sink.Result()
	if runErr != nil {
		return out, runErr
	}
	if err := source.Err(); err != nil {
		return out, fault(ErrMalformedProgram, "parsing input stream: %v", err)
	}
	return out, nil
}
