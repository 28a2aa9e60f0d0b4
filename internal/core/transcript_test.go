package core

import (
	"fmt"
	"testing"

	"github.com/dkeye/Huddle/internal/domain"
)

func TestTranscriptLog_AppendOrder(t *testing.T) {
	tlog := NewTranscriptLog()
	const n = 25

	for i := range n {
		got := tlog.Append("r", domain.TranscriptEntry{Username: "A", Text: fmt.Sprintf("line %d", i)})
		if got != i+1 {
			t.Fatalf("Append() len = %d, want %d", got, i+1)
		}
	}

	snap := tlog.Snapshot("r")
	if len(snap) != n {
		t.Fatalf("Snapshot() len = %d, want %d", len(snap), n)
	}
	for i, e := range snap {
		if want := fmt.Sprintf("line %d", i); e.Text != want {
			t.Errorf("Snapshot()[%d].Text = %q, want %q", i, e.Text, want)
		}
	}
}

func TestTranscriptLog_EarlierEntriesUnchanged(t *testing.T) {
	tlog := NewTranscriptLog()
	tlog.Append("r", domain.TranscriptEntry{Username: "A", Text: "first", Timestamp: "10:00:00"})
	before := tlog.Snapshot("r")

	before[0].Text = "tampered"
	tlog.Append("r", domain.TranscriptEntry{Username: "B", Text: "second", Timestamp: "10:00:01"})

	after := tlog.Snapshot("r")
	if len(after) != 2 {
		t.Fatalf("Snapshot() len = %d, want 2", len(after))
	}
	if after[0] != (domain.TranscriptEntry{Username: "A", Text: "first", Timestamp: "10:00:00"}) {
		t.Errorf("first entry changed: %+v", after[0])
	}
}

func TestTranscriptLog_UnknownRoom(t *testing.T) {
	tlog := NewTranscriptLog()
	if got := tlog.Snapshot("nope"); got != nil {
		t.Errorf("Snapshot() = %v, want nil", got)
	}
	if got := tlog.Len("nope"); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}
