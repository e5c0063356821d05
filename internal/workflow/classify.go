package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/email-tracker/internal/llm"
	"github.com/jonathan/email-tracker/internal/prompts"
	"github.com/jonathan/email-tracker/internal/types"
)

// classify buckets each email under one of the four categories. A per-email
// model failure defaults the email into the general bucket so nothing is
// dropped from the run.
func (e *Engine) classify(ctx context.Context, state State) (State, error) {
	state.Classified = emptyBuckets()

	for i := range state.Emails {
		email := &state.Emails[i]

		prompt := prompts.Classification(email.Subject, email.Summary, email.Sender)
		response, err := e.client.GenerateContent(ctx, prompt, llm.TierLite)

		category := types.CategoryGeneral
		if err != nil {
			state.Errors = append(state.Errors,
				fmt.Sprintf("failed to classify email %s: %v", email.ID, err))
		} else {
			category = SanitizeLabel(response)
		}

		email.Category = category
		state.Classified[category] = append(state.Classified[category], *email)
	}

	state.Stage = StageProcessParallel
	return state, nil
}

// SanitizeLabel coerces a raw model response into exactly one category. The
// model is prompted for a bare label but not guaranteed to emit one, so the
// resolution order is: exact match on the trimmed lower-cased response, then
// the first category whose label word appears anywhere in the response, then
// the general fallback.
func SanitizeLabel(raw string) types.Category {
	cleaned := strings.ToLower(strings.TrimSpace(raw))

	for _, category := range types.AllCategories() {
		if cleaned == string(category) {
			return category
		}
	}

	words := strings.Fields(cleaned)
	for _, category := range types.AllCategories() {
		for _, word := range words {
			if word == string(category) {
				return category
			}
		}
	}

	return types.CategoryGeneral
}
