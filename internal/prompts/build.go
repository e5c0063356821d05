package prompts

// Summarization renders the email summarization prompt for one message.
func Summarization(subject, body, sender string) string {
	template := MustGet("summarization.json", "summarize-email")
	return Format(template, map[string]string{
		"Subject": subject,
		"Body":    body,
		"Sender":  sender,
	})
}

// Classification renders the few-shot category classification prompt.
// Classification runs on summaries rather than full bodies.
func Classification(subject, summary, sender string) string {
	template := MustGet("classification.json", "classify-email")
	return Format(template, map[string]string{
		"Subject": subject,
		"Summary": summary,
		"Sender":  sender,
	})
}

// JobExtraction renders the structured key-value extraction prompt used for
// job emails and user-submitted job descriptions.
func JobExtraction(subject, summary string) string {
	template := MustGet("jobs.json", "extract-details")
	return Format(template, map[string]string{
		"Subject": subject,
		"Summary": summary,
	})
}
