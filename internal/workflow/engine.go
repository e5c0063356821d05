package workflow

import (
	"context"
	"fmt"

	"github.com/jonathan/email-tracker/internal/llm"
	"github.com/jonathan/email-tracker/internal/types"
)

// EmailStore is the persistence surface the pipeline needs for email records.
type EmailStore interface {
	InsertIfAbsent(ctx context.Context, e types.Email) (bool, error)
	Unprocessed(ctx context.Context) ([]types.Email, error)
	SaveSummary(ctx context.Context, id, summary string) error
	MarkProcessed(ctx context.Context, id string, category types.Category) error
}

// MailFetcher pulls new messages from the mail source.
type MailFetcher interface {
	Fetch(ctx context.Context, limit int) ([]types.Email, error)
}

// JobRecorder folds a job email into the application book.
type JobRecorder interface {
	Record(ctx context.Context, email types.Email) error
}

// Notifier raises user-facing alerts for urgent emails.
type Notifier interface {
	Notify(title, message string) error
}

// Observer runs after every stage with the stage's resulting state and may
// return a replacement. Observers are used for live progress reporting; an
// observer failure is recorded on the state but never aborts the run.
type Observer func(State) (State, error)

// Engine sequences the pipeline stages over a shared state value. All
// collaborators are injected at construction; the engine creates nothing
// lazily.
type Engine struct {
	client    llm.Client
	store     EmailStore
	mail      MailFetcher
	jobs      JobRecorder
	notifier  Notifier
	observers []Observer
}

// NewEngine wires an engine from its collaborators.
func NewEngine(client llm.Client, store EmailStore, mail MailFetcher, jobs JobRecorder, notifier Notifier, observers ...Observer) *Engine {
	return &Engine{
		client:    client,
		store:     store,
		mail:      mail,
		jobs:      jobs,
		notifier:  notifier,
		observers: observers,
	}
}

type stageFunc func(ctx context.Context, state State) (State, error)

// maxStageRuns bounds how many stage executions one run may take. A failing
// non-fetch stage keeps its own marker and routes back to itself, so without
// a bound the loop would never terminate.
const maxStageRuns = 25

// Run executes stages from the state's current marker until the terminal
// stage is reached. Errors never escape the engine: every failure mode ends
// up as a string on the returned state's error list.
func (e *Engine) Run(ctx context.Context, state State) State {
	for runs := 0; state.Stage != StageEnd; runs++ {
		if runs >= maxStageRuns {
			state.Errors = append(state.Errors,
				fmt.Sprintf("run aborted: stage limit of %d executions reached at %s", maxStageRuns, state.Stage))
			state.Stage = StageEnd
			break
		}

		node, ok := Route(state.Stage)
		if !ok {
			state.Errors = append(state.Errors, fmt.Sprintf("no route for stage %q", state.Stage))
			state.Stage = StageEnd
			break
		}

		var fn stageFunc
		switch node {
		case StageFetch:
			fn = e.fetch
		case StageSummarize:
			fn = e.summarize
		case StageClassify:
			fn = e.classify
		case StageProcessParallel:
			fn = e.dispatch
		default:
			state.Stage = StageEnd
			continue
		}

		state = e.runStage(ctx, node, fn, state)
	}
	return state
}

// runStage invokes one stage with failure containment and observer fan-out.
// A stage failure preserves the incoming state, records a diagnostic, and
// for the fetch stage forces the run to end since no batch exists to carry
// forward.
func (e *Engine) runStage(ctx context.Context, stage Stage, fn stageFunc, in State) State {
	out, err := invoke(ctx, fn, in)
	if err != nil {
		out = in
		out.Errors = append(out.Errors, fmt.Sprintf("Error in %s: %v", stage, err))
		if stage == StageFetch {
			out.Stage = StageEnd
		}
	}

	for _, observer := range e.observers {
		next, err := callObserver(observer, out)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Callback error: %v", err))
			continue
		}
		out = next
	}

	return out
}

// invoke runs a stage function, converting a panic into an ordinary error.
func invoke(ctx context.Context, fn stageFunc, in State) (out State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn(ctx, in)
}

// callObserver shields the engine from a panicking observer.
func callObserver(observer Observer, in State) (out State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return observer(in)
}
