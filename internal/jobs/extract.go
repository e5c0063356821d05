package jobs

import (
	"context"
	"strings"

	"github.com/jonathan/email-tracker/internal/llm"
	"github.com/jonathan/email-tracker/internal/prompts"
)

// Details is the structured result of extracting job information from text.
type Details struct {
	Company string
	Title   string
	Status  Status
}

// DefaultDetails is the placeholder triple recorded when extraction cannot
// produce usable fields after all attempts.
func DefaultDetails() Details {
	return Details{
		Company: "Unknown Company",
		Title:   "Unknown Job Title",
		Status:  StatusPending,
	}
}

// Prompt field labels the extraction model is instructed to emit.
const (
	keyCompany = "Company Name"
	keyTitle   = "Job Title"
	keyStatus  = "Application Status"
)

const maxExtractRetries = 2

// ExtractDetails asks the model for company, title and status from an email
// subject and summary. A response is accepted once at least two of the three
// fields parse; short responses are retried up to maxExtractRetries times.
// Extraction never fails the caller: after the attempt budget is spent the
// placeholder triple is returned.
func ExtractDetails(ctx context.Context, client llm.Client, subject, summary string) Details {
	prompt := prompts.JobExtraction(subject, summary)

	for attempt := 0; attempt <= maxExtractRetries; attempt++ {
		response, err := client.GenerateContent(ctx, prompt, llm.TierStandard)
		if err != nil {
			continue
		}

		fields := ParseKeyValues(response)
		if len(fields) < 2 {
			continue
		}

		details := DefaultDetails()
		if company := fields[keyCompany]; company != "" {
			details.Company = company
		}
		if title := fields[keyTitle]; title != "" {
			details.Title = title
		}
		if status, ok := ParseStatus(fields[keyStatus]); ok {
			details.Status = status
		}
		return details
	}

	return DefaultDetails()
}

// ParseKeyValues pulls the known "Key: value" lines out of a model response.
// Only recognized keys are collected; anything else the model emits around
// them is ignored. Values are trimmed and keys with empty values dropped.
func ParseKeyValues(text string) map[string]string {
	known := []string{keyCompany, keyTitle, keyStatus}

	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*"))
		for _, key := range known {
			rest, ok := strings.CutPrefix(line, key)
			if !ok {
				continue
			}
			rest, ok = strings.CutPrefix(strings.TrimSpace(rest), ":")
			if !ok {
				continue
			}
			if value := strings.TrimSpace(rest); value != "" {
				fields[key] = value
			}
			break
		}
	}
	return fields
}
