package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/email-tracker/internal/llm"
	"github.com/jonathan/email-tracker/internal/types"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		marker   Stage
		expected Stage
		ok       bool
	}{
		{StageFetch, StageFetch, true},
		{StageSummarize, StageSummarize, true},
		{StageClassify, StageClassify, true},
		{StageProcess, StageProcessParallel, true},
		{StageProcessParallel, StageProcessParallel, true},
		{StageEnd, StageEnd, true},
		{Stage("bogus"), Stage(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.marker), func(t *testing.T) {
			next, ok := Route(tt.marker)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, next)
		})
	}
}

func TestRun_FetchFailureShortCircuits(t *testing.T) {
	mail := &fakeMail{err: fmt.Errorf("connection refused")}
	llmCalls := 0
	client := &fakeLLM{generate: func(string, llm.ModelTier) (string, error) {
		llmCalls++
		return "", nil
	}}

	engine := NewEngine(client, newMemStore(), mail, &fakeJobs{}, &fakeNotifier{})
	final := engine.Run(context.Background(), NewState(5, false))

	assert.Equal(t, StageEnd, final.Stage)
	assert.Empty(t, final.Emails)
	require.Len(t, final.Errors, 1)
	assert.Contains(t, final.Errors[0], "Error in fetch:")
	assert.Contains(t, final.Errors[0], "connection refused")
	assert.Zero(t, llmCalls, "no stage after fetch should have run")
}

// A stage that keeps failing routes back to itself; the execution bound must
// end the run instead of looping forever.
func TestRun_RepeatedStageFailureTerminates(t *testing.T) {
	// A nil generate func makes every summarize call panic.
	client := &fakeLLM{}

	engine := NewEngine(client, newMemStore(), &fakeMail{emails: []types.Email{{ID: "1", Subject: "Hi"}}}, &fakeJobs{}, &fakeNotifier{})

	done := make(chan State, 1)
	go func() {
		done <- engine.Run(context.Background(), NewState(1, false))
	}()

	select {
	case final := <-done:
		assert.Equal(t, StageEnd, final.Stage)

		var stageFailures, limitHits int
		for _, msg := range final.Errors {
			if strings.HasPrefix(msg, "Error in summarize:") {
				stageFailures++
			}
			if strings.Contains(msg, "stage limit") {
				limitHits++
			}
		}
		assert.Equal(t, maxStageRuns-1, stageFailures, "every re-entry should record a failure")
		assert.Equal(t, 1, limitHits)
	case <-time.After(5 * time.Second):
		t.Fatal("engine.Run did not return: stage failure self-loops forever")
	}
}

func TestRun_UnknownStageEndsRun(t *testing.T) {
	engine := NewEngine(staticLLM(""), newMemStore(), &fakeMail{}, &fakeJobs{}, &fakeNotifier{})

	state := NewState(1, false)
	state.Stage = Stage("typo_stage")
	final := engine.Run(context.Background(), state)

	assert.Equal(t, StageEnd, final.Stage)
	require.Len(t, final.Errors, 1)
	assert.Contains(t, final.Errors[0], `no route for stage "typo_stage"`)
}

// End-to-end: three emails where one succeeds cleanly, one fails
// summarization and carries the fallback text, and one fails classification
// and defaults to general. All three must complete with two recorded errors.
func TestRun_EndToEndWithPartialFailures(t *testing.T) {
	emails := []types.Email{
		{ID: "1", Subject: "Weekly notes", Body: "notes"},
		{ID: "2", Subject: "Cursed message", Body: "???"},
		{ID: "3", Subject: "Odd one", Body: "text"},
	}
	store := newMemStore()
	client := &fakeLLM{generate: func(prompt string, _ llm.ModelTier) (string, error) {
		subject := promptSubject(prompt)
		if strings.Contains(prompt, "summarization expert") {
			if subject == "Cursed message" {
				return "", fmt.Errorf("model choked")
			}
			return "summary of " + subject, nil
		}
		// Classification prompt.
		if subject == "Odd one" {
			return "", fmt.Errorf("model choked again")
		}
		return "general", nil
	}}

	engine := NewEngine(client, store, &fakeMail{emails: emails}, &fakeJobs{}, &fakeNotifier{})
	final := engine.Run(context.Background(), NewState(3, false))

	assert.Equal(t, StageEnd, final.Stage)
	assert.Empty(t, final.Emails, "every email should have been processed")
	assert.Len(t, final.Classified[types.CategoryGeneral], 3)
	require.Len(t, final.Errors, 2)
	assert.Contains(t, final.Errors[0], "failed to summarize email 2")
	assert.Contains(t, final.Errors[1], "failed to classify email 3")

	for _, id := range []string{"1", "2", "3"} {
		stored := store.get(id)
		assert.True(t, stored.Processed, "email %s should be processed", id)
		assert.Equal(t, types.CategoryGeneral, stored.Category)
	}

	// The failing email carries the fallback through the pipeline, but only
	// successful summaries are persisted.
	var cursed *types.Email
	for i := range final.Classified[types.CategoryGeneral] {
		if final.Classified[types.CategoryGeneral][i].ID == "2" {
			cursed = &final.Classified[types.CategoryGeneral][i]
		}
	}
	require.NotNil(t, cursed)
	assert.Equal(t, FallbackSummary, cursed.Summary)
	assert.Empty(t, store.get("2").Summary)
}

func TestRun_ObserverCanReplaceState(t *testing.T) {
	seen := []Stage{}
	observer := func(state State) (State, error) {
		seen = append(seen, state.Stage)
		state.Debug = true
		return state, nil
	}

	engine := NewEngine(
		staticLLM("general"), newMemStore(),
		&fakeMail{emails: []types.Email{{ID: "1", Subject: "Hi"}}},
		&fakeJobs{}, &fakeNotifier{}, observer,
	)
	final := engine.Run(context.Background(), NewState(1, false))

	assert.Equal(t, StageEnd, final.Stage)
	assert.True(t, final.Debug, "observer replacement state should carry forward")
	assert.Equal(t, []Stage{StageSummarize, StageClassify, StageProcessParallel, StageEnd}, seen)
	assert.Empty(t, final.Errors)
}

func TestRun_ObserverFailuresAreContained(t *testing.T) {
	erroring := func(state State) (State, error) {
		return state, fmt.Errorf("progress pipe closed")
	}
	panicking := func(State) (State, error) {
		panic("observer bug")
	}

	engine := NewEngine(
		staticLLM("general"), newMemStore(),
		&fakeMail{emails: []types.Email{{ID: "1", Subject: "Hi"}}},
		&fakeJobs{}, &fakeNotifier{}, erroring, panicking,
	)
	final := engine.Run(context.Background(), NewState(1, false))

	assert.Equal(t, StageEnd, final.Stage)
	assert.Empty(t, final.Emails, "observer failures must not stop processing")

	var callbackErrors int
	for _, msg := range final.Errors {
		if strings.HasPrefix(msg, "Callback error:") {
			callbackErrors++
		}
	}
	// Two failing observers after each of the four stage executions.
	assert.Equal(t, 8, callbackErrors)
}

// Fetch twice with no new mail: identifier dedup keeps the unprocessed set
// stable instead of doubling it.
func TestFetch_IsIdempotentAcrossRuns(t *testing.T) {
	emails := []types.Email{{ID: "1", Subject: "a"}, {ID: "2", Subject: "b"}}
	store := newMemStore()
	engine := NewEngine(staticLLM(""), store, &fakeMail{emails: emails}, &fakeJobs{}, &fakeNotifier{})

	first, err := engine.fetch(context.Background(), NewState(2, false))
	require.NoError(t, err)
	second, err := engine.fetch(context.Background(), NewState(2, false))
	require.NoError(t, err)

	assert.Equal(t, StageSummarize, first.Stage)
	assert.Len(t, first.Emails, 2)
	assert.Equal(t, first.Emails, second.Emails)
}

func TestFetch_IncludesBacklogBeyondFetchedBatch(t *testing.T) {
	backlog := types.Email{ID: "old", Subject: "left over"}
	store := newMemStore(backlog)
	mail := &fakeMail{emails: []types.Email{{ID: "new", Subject: "fresh"}}}

	engine := NewEngine(staticLLM(""), store, mail, &fakeJobs{}, &fakeNotifier{})
	out, err := engine.fetch(context.Background(), NewState(1, false))
	require.NoError(t, err)

	require.Len(t, out.Emails, 2)
	ids := []string{out.Emails[0].ID, out.Emails[1].ID}
	assert.ElementsMatch(t, []string{"old", "new"}, ids)
}
