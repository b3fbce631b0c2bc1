package watcher

import (
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away.
	OpRename
	// OpRulesChange indicates an ignore file changed: a .gitignore,
	// .git/info/exclude or the global excludes file.
	OpRulesChange
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	case OpRulesChange:
		return "RULES_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a file system event.
type FileEvent struct {
	// Path is relative to the work tree root, or absolute for files outside
	// it such as the global excludes file.
	Path string

	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// RulesChanged reports whether any event in batch touched an ignore file.
func RulesChanged(batch []FileEvent) bool {
	for _, e := range batch {
		if e.Operation == OpRulesChange {
			return true
		}
	}
	return false
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 200ms
	DebounceWindow time.Duration

	// MaxDepth limits which directories are watched, matching the scan depth.
	// Default: 2
	MaxDepth int

	// SkipDirs are directory names never watched.
	SkipDirs []string

	// EventBufferSize is the size of the batch channel buffer.
	// Default: 16
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		MaxDepth:        2,
		EventBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = defaults.MaxDepth
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}
