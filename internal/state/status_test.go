package state

import (
	"testing"
	"time"
)

func TestChangeStatusLine(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 5, 17, 42, 0, 0, time.UTC)
	status := &ChangeStatus{now: func() time.Time { return now }}

	if got := status.Line(); got != "" {
		t.Fatalf("expected empty line before changes, got %q", got)
	}

	status.Record("a.md")
	status.Record("a.md")
	status.Record("b.md")
	now = now.Add(2 * time.Minute)

	want := "2 changed on disk · 2 minutes ago"
	if got := status.Line(); got != want {
		t.Fatalf("Line mismatch: got %q, want %q", got, want)
	}
	if got := status.Seq(); got != 3 {
		t.Fatalf("Seq = %d, want 3", got)
	}

	now = now.Add(time.Minute)
	if got := status.Seq(); got != 3 {
		t.Fatalf("expected Seq to ignore the clock, got %d", got)
	}
}

func TestNilChangeStatus(t *testing.T) {
	t.Parallel()

	var status *ChangeStatus
	status.Record("a.md")
	if status.Line() != "" || status.Seq() != 0 {
		t.Fatal("expected nil status to render empty")
	}
}

func TestStatusCmdNilState(t *testing.T) {
	t.Parallel()

	var st *State
	if st.StatusCmd(time.Second) != nil {
		t.Fatal("expected nil command for nil state")
	}

	st = &State{Status: &ChangeStatus{}}
	if st.StatusCmd(time.Millisecond) == nil {
		t.Fatal("expected command")
	}
}
