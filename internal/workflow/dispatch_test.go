package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/email-tracker/internal/types"
)

func classifiedState(buckets map[types.Category][]types.Email) State {
	state := NewState(0, false)
	state.Stage = StageProcessParallel
	for category, bucket := range buckets {
		state.Classified[category] = bucket
		state.Emails = append(state.Emails, bucket...)
	}
	return state
}

func TestDispatch_SurvivorsAreBatchMinusProcessed(t *testing.T) {
	store := newMemStore(
		types.Email{ID: "s1"}, types.Email{ID: "g1"},
		types.Email{ID: "g2"}, types.Email{ID: "u1"},
	)
	store.failMark["g2"] = true

	engine := NewEngine(staticLLM(""), store, &fakeMail{}, &fakeJobs{}, &fakeNotifier{})
	state := classifiedState(map[types.Category][]types.Email{
		types.CategorySpam:    {{ID: "s1"}},
		types.CategoryGeneral: {{ID: "g1"}, {ID: "g2"}},
		types.CategoryUrgent:  {{ID: "u1"}},
	})

	out, err := engine.dispatch(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, StageEnd, out.Stage)

	// The unmarkable email survives for the next run, everything else is gone.
	require.Len(t, out.Emails, 1)
	assert.Equal(t, "g2", out.Emails[0].ID)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "failed to mark email g2 processed")

	assert.True(t, store.get("s1").Processed)
	assert.Equal(t, types.CategorySpam, store.get("s1").Category)
	assert.True(t, store.get("g1").Processed)
	assert.False(t, store.get("g2").Processed)
	assert.True(t, store.get("u1").Processed)
}

func TestDispatch_UrgentNotifiesBestEffort(t *testing.T) {
	store := newMemStore(types.Email{ID: "u1", Sender: "Alice", Subject: "Server down"})
	notifier := &fakeNotifier{err: fmt.Errorf("no notification daemon")}

	engine := NewEngine(staticLLM(""), store, &fakeMail{}, &fakeJobs{}, notifier)
	state := classifiedState(map[types.Category][]types.Email{
		types.CategoryUrgent: {{ID: "u1", Sender: "Alice", Subject: "Server down"}},
	})

	out, err := engine.dispatch(context.Background(), state)
	require.NoError(t, err)

	// Notification failure is recorded but the email still counts processed.
	assert.Empty(t, out.Emails)
	assert.True(t, store.get("u1").Processed)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "failed to notify for email u1")
	require.Len(t, notifier.titles, 1)
	assert.Equal(t, "Urgent email from Alice", notifier.titles[0])
}

func TestDispatch_JobEmailsAreRecordedThenMarked(t *testing.T) {
	store := newMemStore(types.Email{ID: "j1"})
	recorder := &fakeJobs{}

	engine := NewEngine(staticLLM(""), store, &fakeMail{}, recorder, &fakeNotifier{})
	state := classifiedState(map[types.Category][]types.Email{
		types.CategoryJob: {{ID: "j1", Subject: "Interview"}},
	})

	out, err := engine.dispatch(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, []string{"j1"}, recorder.recorded)
	assert.True(t, store.get("j1").Processed)
	assert.Equal(t, types.CategoryJob, store.get("j1").Category)
	assert.Empty(t, out.Emails)
	assert.Empty(t, out.Errors)
}

func TestDispatch_JobRecordFailureStillMarksProcessed(t *testing.T) {
	store := newMemStore(types.Email{ID: "j1"})
	recorder := &fakeJobs{err: fmt.Errorf("spreadsheet locked")}

	engine := NewEngine(staticLLM(""), store, &fakeMail{}, recorder, &fakeNotifier{})
	state := classifiedState(map[types.Category][]types.Email{
		types.CategoryJob: {{ID: "j1"}},
	})

	out, err := engine.dispatch(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, store.get("j1").Processed)
	assert.Empty(t, out.Emails)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "failed to record job application from email j1")
}

func TestDispatch_PanickingHandlerDoesNotAbortOthers(t *testing.T) {
	store := newMemStore(types.Email{ID: "g1"}, types.Email{ID: "u1"})
	// A nil notifier makes the urgent handler panic on its notify call.
	engine := NewEngine(staticLLM(""), store, &fakeMail{}, &fakeJobs{}, nil)

	state := classifiedState(map[types.Category][]types.Email{
		types.CategoryGeneral: {{ID: "g1"}},
		types.CategoryUrgent:  {{ID: "u1"}},
	})

	out, err := engine.dispatch(context.Background(), state)
	require.NoError(t, err)

	// The general handler's work survives the urgent handler's panic.
	assert.True(t, store.get("g1").Processed)

	found := false
	for _, msg := range out.Errors {
		if strings.Contains(msg, "urgent") && strings.Contains(msg, "panicked") {
			found = true
		}
	}
	assert.True(t, found, "expected a panic error naming the urgent category, got %v", out.Errors)

	// A panicking handler forfeits its processed report, so its email stays
	// in the batch even though the mark itself landed before the panic.
	require.Len(t, out.Emails, 1)
	assert.Equal(t, "u1", out.Emails[0].ID)
}
