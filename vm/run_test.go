package vm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunProgramEmptyInputNoInputInstruction(t *testing.T) {
	got, err := RunProgram(context.Background(), "104,42,99", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "42" {
		t.Fatalf("got %q, want %q", got, "42")
	}
}

func TestRunProgramAbandonsLiveSourceAfterHalt(t *testing.T) {
	// This program never reads its input; RunProgram must still return
	// promptly rather than waiting on a source that the VM never drains.
	const program = "104,7,99"
	done := make(chan struct{})
	go func() {
		_, err := RunProgram(context.Background(), program, "1\n2\n3\n")
		if err != nil {
			t.Error(err)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunProgram did not return promptly; source goroutine likely leaked")
	}
}

func TestRunProgramPropagatesMalformedProgramFault(t *testing.T) {
	_, err := RunProgram(context.Background(), "not,a,program", "")
	if !errors.Is(err, ErrMalformedProgram) {
		t.Fatalf("got %v, want ErrMalformedProgram", err)
	}
}

func TestRunProgramContextCancellation(t *testing.T) {
	// A program that loops forever emitting output; only the context
	// deadline can end the run.
	const program = "104,1,1105,1,0"
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := RunProgram(ctx, program, "")
	if err == nil {
		t.Fatal("expected the run to fail once the context deadline passed")
	}
}
