package jobs

import (
	"strings"

	"github.com/google/uuid"
)

// Application is one tracked job application. Identity is the
// (company, title) pair, compared case-insensitively; every other field is
// merged on subsequent sightings.
type Application struct {
	ID          string `json:"id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Company     string `json:"company_name"`
	Title       string `json:"job_title"`
	Status      Status `json:"application_status"`
	UserApplied bool   `json:"user_applied"`
}

// Tracker holds the in-memory working copy of the application book between
// a load and a save. It is not safe for concurrent use.
type Tracker struct {
	apps []Application
}

// NewTracker creates a tracker over an existing set of applications.
func NewTracker(apps []Application) *Tracker {
	return &Tracker{apps: apps}
}

// Applications returns the tracked entries in insertion order.
func (t *Tracker) Applications() []Application {
	return t.apps
}

// Find returns the entry matching the (company, title) identity, or nil.
func (t *Tracker) Find(company, title string) *Application {
	for i := range t.apps {
		if strings.EqualFold(t.apps[i].Company, company) && strings.EqualFold(t.apps[i].Title, title) {
			return &t.apps[i]
		}
	}
	return nil
}

// Merge folds an update into the tracker and reports whether a new entry was
// created.
//
// Merge rules: once an entry carries UserApplied=true, its status may only
// advance in priority order; entries without the flag take the incoming
// status as-is. UserApplied itself is sticky: it can be set but never
// cleared. Source fields (id, sender) are refreshed when the update carries
// non-empty values.
func (t *Tracker) Merge(update Application) bool {
	existing := t.Find(update.Company, update.Title)
	if existing == nil {
		if update.ID == "" {
			update.ID = "user-" + uuid.NewString()
		}
		t.apps = append(t.apps, update)
		return true
	}

	if update.UserApplied {
		existing.UserApplied = true
	}

	if existing.UserApplied {
		if ShouldAdvance(existing.Status, update.Status) {
			existing.Status = update.Status
		}
	} else {
		existing.Status = update.Status
	}

	if update.ID != "" {
		existing.ID = update.ID
	}
	if update.SenderName != "" {
		existing.SenderName = update.SenderName
	}
	if update.SenderEmail != "" {
		existing.SenderEmail = update.SenderEmail
	}

	return false
}

// AppliedCount returns the number of entries the user has applied to.
func (t *Tracker) AppliedCount() int {
	count := 0
	for _, a := range t.apps {
		if a.UserApplied {
			count++
		}
	}
	return count
}
