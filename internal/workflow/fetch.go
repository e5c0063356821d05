package workflow

import (
	"context"
	"fmt"
)

// fetch pulls new messages from the mail source, stores the ones not seen
// before, then rebuilds the batch from every unprocessed record in storage.
// The batch can exceed the fetch limit when earlier runs left a backlog.
//
// Unlike the later stages, fetch is fail-loud: a mail-source or storage
// failure aborts the stage and the engine wrapper short-circuits the run,
// because every downstream stage assumes a populated batch.
func (e *Engine) fetch(ctx context.Context, state State) (State, error) {
	fetched, err := e.mail.Fetch(ctx, state.FetchLimit)
	if err != nil {
		return state, fmt.Errorf("failed to fetch emails: %w", err)
	}

	for _, email := range fetched {
		if _, err := e.store.InsertIfAbsent(ctx, email); err != nil {
			return state, fmt.Errorf("failed to store fetched email: %w", err)
		}
	}

	batch, err := e.store.Unprocessed(ctx)
	if err != nil {
		return state, fmt.Errorf("failed to load unprocessed emails: %w", err)
	}

	state.Emails = batch
	state.Classified = emptyBuckets()
	state.Stage = StageSummarize
	return state, nil
}
