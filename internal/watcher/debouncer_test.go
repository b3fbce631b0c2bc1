package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitBatch(t *testing.T, d *Debouncer, timeout time.Duration) []FileEvent {
	t.Helper()
	select {
	case events := <-d.Output():
		return events
	case <-time.After(timeout):
		t.Fatal("timeout waiting for debounced events")
		return nil
	}
}

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with short window
	d := NewDebouncer(50*time.Millisecond, 4)
	defer d.Stop()

	// When: a single event is added
	d.Add(FileEvent{Path: "CLAUDE.md", Operation: OpCreate, Timestamp: time.Now()})

	// Then: the event passes through after the debounce window
	events := waitBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, "CLAUDE.md", events[0].Path)
	assert.Equal(t, OpCreate, events[0].Operation)
}

func TestDebouncer_MultipleEventsForSameFile_Coalesces(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(100*time.Millisecond, 4)
	defer d.Stop()

	// When: the same file is written repeatedly
	for i := 0; i < 5; i++ {
		d.Add(FileEvent{Path: "AGENTS.md", Operation: OpModify})
		time.Sleep(10 * time.Millisecond)
	}

	// Then: one event comes out
	events := waitBatch(t, d, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, OpModify, events[0].Operation)
}

func TestDebouncer_BatchIsSortedByPath(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, 4)
	defer d.Stop()

	d.Add(FileEvent{Path: "b.md", Operation: OpCreate})
	d.Add(FileEvent{Path: "a.md", Operation: OpCreate})
	d.Add(FileEvent{Path: ".gitignore", Operation: OpRulesChange})

	events := waitBatch(t, d, time.Second)
	require.Len(t, events, 3)
	assert.Equal(t, ".gitignore", events[0].Path)
	assert.Equal(t, "a.md", events[1].Path)
	assert.Equal(t, "b.md", events[2].Path)
	assert.True(t, RulesChanged(events))
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name  string
		first Operation
		next  Operation
		want  Operation
		keep  bool
	}{
		{name: "create then modify stays create", first: OpCreate, next: OpModify, want: OpCreate, keep: true},
		{name: "create then delete cancels", first: OpCreate, next: OpDelete, keep: false},
		{name: "create then rename cancels", first: OpCreate, next: OpRename, keep: false},
		{name: "delete then create is modify", first: OpDelete, next: OpCreate, want: OpModify, keep: true},
		{name: "modify then delete is delete", first: OpModify, next: OpDelete, want: OpDelete, keep: true},
		{name: "rules change is sticky", first: OpRulesChange, next: OpModify, want: OpRulesChange, keep: true},
		{name: "rules change wins", first: OpCreate, next: OpRulesChange, want: OpRulesChange, keep: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := &pendingEvent{event: FileEvent{Path: "x", Operation: tt.first}, firstOp: tt.first}
			got, keep := coalesce(prev, FileEvent{Path: "x", Operation: tt.next})

			assert.Equal(t, tt.keep, keep)
			if tt.keep {
				assert.Equal(t, tt.want, got.Operation)
			}
		})
	}
}

func TestDebouncer_CreateThenDelete_NoEvent(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, 4)
	defer d.Stop()

	d.Add(FileEvent{Path: "tmp.md", Operation: OpCreate})
	d.Add(FileEvent{Path: "tmp.md", Operation: OpDelete})

	select {
	case events := <-d.Output():
		t.Fatalf("expected no events, got %v", events)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncer_Stop_ClosesOutputAndIgnoresAdds(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, 4)

	d.Stop()
	d.Stop()
	d.Add(FileEvent{Path: "late.md", Operation: OpCreate})

	_, ok := <-d.Output()
	assert.False(t, ok)
}
