package therapy

import (
	"fmt"
	"strings"
)

// DefaultHistoryHeader is the content written to a freshly created
// session-history file.
const DefaultHistoryHeader = "# Therapy Session History\n\n"

const clientNamePrefix = "Client Name: "

// HasPreviousSessions reports whether loaded history holds anything beyond
// the default header.
func HasPreviousSessions(loaded, defaultContent string) bool {
	actual := strings.TrimSpace(loaded)
	return actual != "" && actual != strings.TrimSpace(defaultContent)
}

// LastClientName scans history for the most recent "Client Name:" line.
// The literal values "None" and "Unknown" mean no name was recorded.
func LastClientName(history string) string {
	var name string
	for _, line := range strings.Split(history, "\n") {
		if !strings.HasPrefix(line, clientNamePrefix) {
			continue
		}
		name = strings.TrimSpace(strings.TrimPrefix(line, clientNamePrefix))
	}
	if name == "None" || name == "Unknown" {
		return ""
	}
	return name
}

// ComposeHistory appends one finished session's block after the previously
// loaded content. Prior content is carried verbatim as a prefix; nothing is
// ever rewritten or dropped.
func ComposeHistory(prior, startTime, clientName, transcript string, trackNames bool) string {
	var b strings.Builder
	b.WriteString(prior)
	fmt.Fprintf(&b, "\n\n--- Session: %s ---\n", startTime)
	if trackNames {
		if clientName == "" {
			clientName = "Unknown"
		}
		b.WriteString(clientNamePrefix + clientName + "\n")
	}
	b.WriteString(transcript)
	return b.String()
}
