// Package workflow drives a batch of emails through the staged pipeline:
// fetch, summarize, classify, then parallel per-category processing.
package workflow

import (
	"github.com/jonathan/email-tracker/internal/types"
)

// Stage identifies one step of the pipeline. Stage values double as the
// state marker carried between steps; the router consults the marker to pick
// the next stage to run.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageSummarize Stage = "summarize"
	StageClassify  Stage = "classify"
	// StageProcess is a legacy alias for StageProcessParallel kept so older
	// state snapshots still route.
	StageProcess         Stage = "process"
	StageProcessParallel Stage = "process_parallel"
	StageEnd             Stage = "end"
)

// State is the aggregate passed from stage to stage. Stages treat it as a
// value: each takes the incoming state and returns the next version, never
// holding a reference across the handoff. The error list is append-only
// within a run.
type State struct {
	// Emails is the current working batch.
	Emails []types.Email
	// Classified buckets the batch by category for this run. All four
	// category keys are always present once classification has run.
	Classified map[types.Category][]types.Email
	// Errors accumulates diagnostics from every stage without aborting
	// the run.
	Errors []string
	// Stage is the marker the router consults for the next step.
	Stage Stage
	// FetchLimit is the target number of new messages to pull from the
	// mail source.
	FetchLimit int
	// Debug enables verbose per-stage reporting by observers.
	Debug bool
}

// NewState builds the initial state for a run.
func NewState(fetchLimit int, debug bool) State {
	return State{
		Classified: emptyBuckets(),
		Stage:      StageFetch,
		FetchLimit: fetchLimit,
		Debug:      debug,
	}
}

// emptyBuckets returns a fresh classification map with every category
// present and empty.
func emptyBuckets() map[types.Category][]types.Email {
	buckets := make(map[types.Category][]types.Email, len(types.AllCategories()))
	for _, c := range types.AllCategories() {
		buckets[c] = nil
	}
	return buckets
}

// Route maps a stage marker to the stage that should execute next. The table
// is explicit so an unknown marker surfaces as a routing failure instead of
// silently creating a dead state. Markers route to themselves, with the
// legacy process alias folded into the canonical parallel stage.
func Route(s Stage) (Stage, bool) {
	switch s {
	case StageFetch:
		return StageFetch, true
	case StageSummarize:
		return StageSummarize, true
	case StageClassify:
		return StageClassify, true
	case StageProcess, StageProcessParallel:
		return StageProcessParallel, true
	case StageEnd:
		return StageEnd, true
	}
	return "", false
}
