package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/email-tracker/internal/llm"
	"github.com/jonathan/email-tracker/internal/prompts"
)

// FallbackSummary stands in for a summary when the model or storage fails,
// so every email still carries non-empty text into classification.
const FallbackSummary = "Failed to summarize email content."

// summarize attaches a model-generated synopsis to each email in batch
// order. Per-email failures are recorded and replaced with the fallback
// text; one bad email never aborts the batch.
func (e *Engine) summarize(ctx context.Context, state State) (State, error) {
	for i := range state.Emails {
		email := &state.Emails[i]
		if email.Summary != "" {
			continue // backlog email summarized on a previous run
		}

		prompt := prompts.Summarization(email.Subject, email.Body, email.Sender)
		text, err := e.client.GenerateContent(ctx, prompt, llm.TierLite)
		if err != nil {
			state.Errors = append(state.Errors,
				fmt.Sprintf("failed to summarize email %s: %v", email.ID, err))
			email.Summary = FallbackSummary
			continue
		}

		email.Summary = strings.TrimSpace(text)
		if email.Summary == "" {
			email.Summary = FallbackSummary
		}

		if err := e.store.SaveSummary(ctx, email.ID, email.Summary); err != nil {
			state.Errors = append(state.Errors,
				fmt.Sprintf("failed to save summary for email %s: %v", email.ID, err))
		}
	}

	state.Stage = StageClassify
	return state, nil
}
