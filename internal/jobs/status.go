// Package jobs tracks job applications extracted from inbound emails and
// user-submitted job descriptions in a spreadsheet-backed store.
package jobs

import "strings"

// Status is the application progress for one (company, title) entry.
type Status string

// Valid application statuses, in ascending priority order.
const (
	StatusPending   Status = "pending"
	StatusInterview Status = "interview scheduled"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
)

// Priority returns the ordering rank of a status. Unknown statuses rank
// below every valid one so they can never displace a stored value.
func (s Status) Priority() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInterview:
		return 1
	case StatusAccepted:
		return 2
	case StatusRejected:
		return 3
	default:
		return -1
	}
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	return s.Priority() >= 0
}

// ParseStatus normalizes raw text into a Status. The second return value is
// false when the text is not a recognized status.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// ShouldAdvance reports whether next may replace current under the
// forward-only rule: a status only moves up in priority, never back.
func ShouldAdvance(current, next Status) bool {
	return next.Priority() > current.Priority()
}
