// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/email-tracker/internal/jobs"
	"github.com/jonathan/email-tracker/internal/store"
	"github.com/jonathan/email-tracker/internal/types"
	"github.com/jonathan/email-tracker/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStageProgress outputs a one-box snapshot of the pipeline after a
// stage completes. Wired as a workflow observer in debug mode.
func (p *Printer) PrintStageProgress(state workflow.State) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Stage:   %s\n", state.Stage))
	sb.WriteString(fmt.Sprintf("Batch:   %d emails\n", len(state.Emails)))

	classified := 0
	for _, bucket := range state.Classified {
		classified += len(bucket)
	}
	if classified > 0 {
		sb.WriteString("\nBuckets:\n")
		for _, category := range types.AllCategories() {
			sb.WriteString(fmt.Sprintf("  %-8s %d\n", category, len(state.Classified[category])))
		}
	}

	sb.WriteString(fmt.Sprintf("\nErrors so far: %d", len(state.Errors)))

	p.printBox("PIPELINE PROGRESS", sb.String())
}

// PrintRunSummary outputs the final outcome of a pipeline run, including any
// accumulated errors.
func (p *Printer) PrintRunSummary(state workflow.State) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Remaining in batch: %d\n", len(state.Emails)))
	sb.WriteString("\nProcessed by category:\n")
	for _, category := range types.AllCategories() {
		sb.WriteString(fmt.Sprintf("  %-8s %d\n", category, len(state.Classified[category])))
	}

	if len(state.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("\nErrors (%d):\n", len(state.Errors)))
		count := min(len(state.Errors), maxItemsToShow)
		for i := 0; i < count; i++ {
			msg := state.Errors[i]
			if len(msg) > 50 {
				msg = msg[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", msg))
		}
		if len(state.Errors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(state.Errors)-maxItemsToShow))
		}
	} else {
		sb.WriteString("\n✅ No errors")
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStoreStats outputs email table totals and the category breakdown.
func (p *Printer) PrintStoreStats(stats store.Stats) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total emails:  %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Processed:     %d\n", stats.Processed))
	sb.WriteString(fmt.Sprintf("Unprocessed:   %d\n", stats.Unprocessed()))

	if len(stats.ByCategory) > 0 {
		sb.WriteString("\nBy category:\n")
		for _, category := range types.AllCategories() {
			if count, ok := stats.ByCategory[string(category)]; ok {
				sb.WriteString(fmt.Sprintf("  %-8s %d\n", category, count))
			}
		}
	}

	p.printBox("EMAIL STORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintApplications outputs the tracked job applications.
func (p *Printer) PrintApplications(apps []jobs.Application) {
	if len(apps) == 0 {
		p.printBox("JOB APPLICATIONS", "No applications tracked")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tracking %d applications:\n\n", len(apps)))

	for i, app := range apps {
		title := fmt.Sprintf("%s @ %s", app.Title, app.Company)
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", title))
		sb.WriteString(fmt.Sprintf("  Status: %s", app.Status))
		if app.UserApplied {
			sb.WriteString("  [applied]")
		}
		sb.WriteString("\n")
		if i < len(apps)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("JOB APPLICATIONS", strings.TrimSuffix(sb.String(), "\n"))
}
