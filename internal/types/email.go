// Package types defines the shared domain records passed between the
// workflow stages, the stores, and the CLI.
package types

import "time"

// Category is one of the four triage labels an email can receive.
type Category string

// The closed set of triage categories.
const (
	CategorySpam    Category = "spam"
	CategoryJob     Category = "job"
	CategoryUrgent  Category = "urgent"
	CategoryGeneral Category = "general"
)

// AllCategories returns the categories in their canonical order.
// Classification fallback resolution scans them in this order.
func AllCategories() []Category {
	return []Category{CategorySpam, CategoryJob, CategoryUrgent, CategoryGeneral}
}

// Email is a single message record. It is created when first fetched from
// the mail source, gains a Summary during summarization, and is marked
// Processed with a Category by whichever handler completes it. Records are
// never deleted.
type Email struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Sender    string    `json:"sender"`  // display name
	Address   string    `json:"address"` // sender address
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Summary   string    `json:"summary,omitempty"`
	Processed bool      `json:"processed"`
	Category  Category  `json:"category,omitempty"`
}
