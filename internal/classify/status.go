// Package classify reduces resolver verdicts, tracked state and the catalog
// to a single status per path.
package classify

import (
	"fmt"
)

// Status is the classification of one path.
type Status int

const (
	// StatusNone means layer has nothing to say about the path.
	StatusNone Status = iota
	// StatusLayered is untracked and hidden by .git/info/exclude.
	StatusLayered
	// StatusExposed is hidden by .git/info/exclude but still tracked.
	StatusExposed
	// StatusDiscovered is a known context path, on disk, untracked, not hidden.
	StatusDiscovered
	// StatusStale is an exclude entry whose target no longer exists.
	StatusStale
	// StatusIgnored is hidden by a .gitignore or the global excludes file.
	StatusIgnored
	// StatusTracked is a known context path committed to the repository.
	StatusTracked
)

var statusNames = map[Status]string{
	StatusNone:       "none",
	StatusLayered:    "layered",
	StatusExposed:    "exposed",
	StatusDiscovered: "discovered",
	StatusStale:      "stale",
	StatusIgnored:    "ignored",
	StatusTracked:    "tracked",
}

// String returns the lower-case status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler so statuses read well in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for k, v := range statusNames {
		if v == string(text) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Problem reports whether the status needs the user's attention.
func (s Status) Problem() bool {
	return s == StatusExposed || s == StatusStale
}

// Counts tallies entries by status.
type Counts map[Status]int

// Count tallies the statuses of entries.
func Count(entries []Entry) Counts {
	counts := make(Counts)
	for _, e := range entries {
		counts[e.Status]++
	}
	return counts
}
