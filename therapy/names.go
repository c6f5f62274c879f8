package therapy

import "strings"

// nameIndicators are scanned in order; the first one present in the
// lowercased message wins.
var nameIndicators = []string{"i'm ", "im ", "name is ", "call me ", "i am "}

// nameStoplist holds bare first words that are greetings or answers, not names.
var nameStoplist = []string{"hello", "hi", "hey", "yes", "no"}

var goodbyeIndicators = []string{"bye", "goodbye", "see you", "farewell", "going now", "leave"}

// ExtractName pulls a likely client name out of a free-text message.
// It returns "" when no plausible name is found.
func ExtractName(message string) string {
	lower := strings.ToLower(message)

	for _, indicator := range nameIndicators {
		idx := strings.Index(lower, indicator)
		if idx < 0 {
			continue
		}
		rest := message[idx+len(indicator):]
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		return capitalize(strings.Trim(fields[0], ".,!?"))
	}

	// No indicator phrase: assume a bare name reply unless the first word is
	// a common greeting or yes/no answer.
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return ""
	}
	first := strings.Trim(fields[0], ".,!?")
	if first == "" {
		return ""
	}
	for _, stop := range nameStoplist {
		if strings.EqualFold(first, stop) {
			return ""
		}
	}
	return capitalize(first)
}

// IsGoodbye reports whether the message contains any goodbye phrase.
func IsGoodbye(message string) bool {
	lower := strings.ToLower(message)
	for _, indicator := range goodbyeIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
