package jobs

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/email-tracker/internal/llm"
)

// submitSenderName marks book entries that came from the user rather than an
// inbound email.
const submitSenderName = "User Application"

const defaultContactEmail = "user-applied@example.com"

// maxSubmitExcerpt caps how many characters of a pasted job description are
// sent to the extraction model.
const maxSubmitExcerpt = 1000

// SubmitOptions carries a user-submitted job description into the tracker.
type SubmitOptions struct {
	// Description is the job posting or description text.
	Description string `validate:"required,min=10"`
	// ContactEmail optionally overrides the contact recorded on the entry.
	ContactEmail string `validate:"omitempty,email"`
}

// SubmitApplication records a job the user applied to outside the email
// pipeline. The description is run through the same extraction model as job
// emails; unlike email processing, a submission that cannot identify the
// company or title is rejected so the book never gains placeholder rows the
// user did not ask for.
func SubmitApplication(ctx context.Context, client llm.Client, book *Book, opts SubmitOptions) (Application, error) {
	validate := validator.New()
	if err := validate.Struct(opts); err != nil {
		return Application{}, fmt.Errorf("invalid submission: %w", err)
	}

	excerpt := opts.Description
	if runes := []rune(excerpt); len(runes) > maxSubmitExcerpt {
		excerpt = string(runes[:maxSubmitExcerpt])
	}

	details := ExtractDetails(ctx, client, "User Job Application", excerpt)
	if details.Company == "Unknown Company" {
		return Application{}, fmt.Errorf("could not identify the company from the description")
	}
	if details.Title == "Unknown Job Title" {
		return Application{}, fmt.Errorf("could not identify the job title from the description")
	}

	contact := opts.ContactEmail
	if contact == "" {
		contact = defaultContactEmail
	}

	tracker, err := book.Load()
	if err != nil {
		return Application{}, fmt.Errorf("failed to load application book: %w", err)
	}

	tracker.Merge(Application{
		SenderName:  submitSenderName,
		SenderEmail: contact,
		Company:     details.Company,
		Title:       details.Title,
		Status:      StatusPending,
		UserApplied: true,
	})

	if err := book.Save(tracker); err != nil {
		return Application{}, fmt.Errorf("failed to save application book: %w", err)
	}

	entry := tracker.Find(details.Company, details.Title)
	if entry == nil {
		return Application{}, fmt.Errorf("submitted application was not recorded")
	}
	return *entry, nil
}
