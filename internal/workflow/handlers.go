package workflow

import (
	"context"
	"fmt"

	"github.com/jonathan/email-tracker/internal/types"
)

// handleMark is the handler for spam and general emails: mark each one
// processed under its category. A persistence failure records an error and
// leaves the id out of the processed set so the email retries next run.
func (e *Engine) handleMark(ctx context.Context, category types.Category, bucket []types.Email) handlerResult {
	var result handlerResult
	for _, email := range bucket {
		if err := e.store.MarkProcessed(ctx, email.ID, category); err != nil {
			result.errors = append(result.errors,
				fmt.Sprintf("failed to mark email %s processed: %v", email.ID, err))
			continue
		}
		result.processedIDs = append(result.processedIDs, email.ID)
	}
	return result
}

// handleUrgent marks each email processed and raises a best-effort desktop
// notification. Processed accounting follows the persistence step alone; a
// notification failure is recorded but never unwinds a successful mark.
func (e *Engine) handleUrgent(ctx context.Context, bucket []types.Email) handlerResult {
	var result handlerResult
	for _, email := range bucket {
		if err := e.store.MarkProcessed(ctx, email.ID, types.CategoryUrgent); err != nil {
			result.errors = append(result.errors,
				fmt.Sprintf("failed to mark email %s processed: %v", email.ID, err))
			continue
		}
		result.processedIDs = append(result.processedIDs, email.ID)

		if err := e.notifier.Notify("Urgent email from "+email.Sender, email.Subject); err != nil {
			result.errors = append(result.errors,
				fmt.Sprintf("failed to notify for email %s: %v", email.ID, err))
		}
	}
	return result
}

// handleJob records each email in the application book, then marks it
// processed. Extraction itself never fails (it falls back to placeholder
// details); a book persistence failure is recorded but, as with urgent
// notifications, the email-row update alone decides processed status.
func (e *Engine) handleJob(ctx context.Context, bucket []types.Email) handlerResult {
	var result handlerResult
	for _, email := range bucket {
		if err := e.jobs.Record(ctx, email); err != nil {
			result.errors = append(result.errors,
				fmt.Sprintf("failed to record job application from email %s: %v", email.ID, err))
		}

		if err := e.store.MarkProcessed(ctx, email.ID, types.CategoryJob); err != nil {
			result.errors = append(result.errors,
				fmt.Sprintf("failed to mark email %s processed: %v", email.ID, err))
			continue
		}
		result.processedIDs = append(result.processedIDs, email.ID)
	}
	return result
}
