package workflow

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/email-tracker/internal/types"
)

// handlerResult is what one category handler reports back at the join point.
type handlerResult struct {
	processedIDs []string
	errors       []string
}

// dispatch fans the four classification buckets out to their category
// handlers on a pool of four workers, waits for all of them, and merges the
// results. Every bucket is submitted even when empty. A panicking handler is
// converted to an error naming its category and the other results still
// merge. The surviving batch is the original batch minus every id any
// handler reported processed; unreported ids stay for the next run.
func (e *Engine) dispatch(ctx context.Context, state State) (State, error) {
	var (
		group     errgroup.Group
		mu        sync.Mutex
		processed = make(map[string]bool)
	)
	group.SetLimit(len(types.AllCategories()))

	for _, category := range types.AllCategories() {
		category := category
		bucket := state.Classified[category]

		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					state.Errors = append(state.Errors,
						fmt.Sprintf("handler for category %s panicked: %v", category, r))
					mu.Unlock()
				}
			}()

			result := e.handle(ctx, category, bucket)

			mu.Lock()
			for _, id := range result.processedIDs {
				processed[id] = true
			}
			state.Errors = append(state.Errors, result.errors...)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	var surviving []types.Email
	for _, email := range state.Emails {
		if !processed[email.ID] {
			surviving = append(surviving, email)
		}
	}

	state.Emails = surviving
	state.Stage = StageEnd
	return state, nil
}

// handle routes one bucket to its category handler.
func (e *Engine) handle(ctx context.Context, category types.Category, bucket []types.Email) handlerResult {
	switch category {
	case types.CategoryUrgent:
		return e.handleUrgent(ctx, bucket)
	case types.CategoryJob:
		return e.handleJob(ctx, bucket)
	default:
		return e.handleMark(ctx, category, bucket)
	}
}
