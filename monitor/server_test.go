package monitor

import (
	"encoding/json"
	"testing"
	"time"

	"intcode/vm"
)

func TestTapForwardsAndBroadcasts(t *testing.T) {
	h := NewHub()
	upstream := make(chan vm.Cell, 2)
	downstream := make(chan vm.Cell, 2)

	go Tap(h, "amp0", upstream, downstream)

	upstream <- 10
	upstream <- 20
	close(upstream)

	if got := <-downstream; got != 10 {
		t.Fatalf("downstream got %d, want 10", got)
	}
	if got := <-downstream; got != 20 {
		t.Fatalf("downstream got %d, want 20", got)
	}
	if _, ok := <-downstream; ok {
		t.Fatal("expected downstream closed after upstream closed")
	}

	var seqs []int64
	for i := 0; i < 2; i++ {
		select {
		case msg := <-h.Broadcast:
			var ev Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatal(err)
			}
			seqs = append(seqs, ev.Seq)
		case <-time.After(time.Second):
			t.Fatal("expected two broadcast events from Tap")
		}
	}
	if seqs[0] != 0 || seqs[1] != 1 {
		t.Fatalf("got seqs %v, want [0 1]", seqs)
	}
}
