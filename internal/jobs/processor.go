package jobs

import (
	"context"
	"fmt"

	"github.com/jonathan/email-tracker/internal/llm"
	"github.com/jonathan/email-tracker/internal/types"
)

// Processor records job-related emails into the application book.
type Processor struct {
	client llm.Client
	book   *Book
}

// NewProcessor creates a processor that extracts with client and persists
// through book.
func NewProcessor(client llm.Client, book *Book) *Processor {
	return &Processor{client: client, book: book}
}

// Record extracts application details from a job email and folds them into
// the book. Each call is a full load, merge and save cycle so the spreadsheet
// on disk always reflects the last recorded email.
func (p *Processor) Record(ctx context.Context, email types.Email) error {
	details := ExtractDetails(ctx, p.client, email.Subject, email.Summary)

	tracker, err := p.book.Load()
	if err != nil {
		return fmt.Errorf("failed to load application book: %w", err)
	}

	tracker.Merge(Application{
		ID:          email.ID,
		SenderName:  email.Sender,
		SenderEmail: email.Address,
		Company:     details.Company,
		Title:       details.Title,
		Status:      details.Status,
		UserApplied: false,
	})

	if err := p.book.Save(tracker); err != nil {
		return fmt.Errorf("failed to save application book: %w", err)
	}
	return nil
}
