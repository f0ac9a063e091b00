package chat

import (
	"regexp"
	"strings"
)

// Marker introduces the suggestions block in raw model output; Separator
// splits the English and Thai segments. Both are part of the prompt contract
// the model is asked to follow, and neither can be trusted to be present.
const (
	Marker    = "Suggested phrases:"
	Separator = "---"
)

var numberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// Reply is the parsed form of a complete model response.
type Reply struct {
	// Main is the displayable content: English segment, then the separator
	// and Thai segment when the model produced them.
	Main string
	// Thai is the translation segment extracted from Main, empty when the
	// model omitted or lost it.
	Thai string
	// Suggestions are the follow-up phrases, in model order.
	Suggestions []string
}

// Parse splits a full model response into main content and suggestions,
// tolerating partially compliant output.
//
// With marker and separator both present, the suggestions block between them
// is excised and the Thai segment is re-appended after the English part so
// Main keeps exactly one separator. With a marker but no separator the Thai
// segment is lost; that is the historical behavior and callers display Main
// as-is. With no marker the whole text passes through untouched.
func Parse(full string) Reply {
	r := Reply{Main: full, Suggestions: []string{}}

	markerIdx := strings.Index(full, Marker)
	if markerIdx >= 0 {
		englishPart := strings.TrimSpace(full[:markerIdx])
		rest := full[markerIdx:]

		if sepIdx := strings.Index(rest, Separator); sepIdx >= 0 {
			suggestionsBlock := strings.TrimSpace(strings.Replace(rest[:sepIdx], Marker, "", 1))
			thaiWithSeparator := rest[sepIdx:]
			r.Main = strings.TrimSpace(englishPart + "\n" + thaiWithSeparator)
			r.Suggestions = splitSuggestions(suggestionsBlock)
		} else {
			suggestionsBlock := strings.TrimSpace(strings.Replace(rest, Marker, "", 1))
			r.Main = englishPart
			r.Suggestions = splitSuggestions(suggestionsBlock)
		}
	}

	if _, thai, found := strings.Cut(r.Main, Separator); found {
		r.Thai = strings.TrimSpace(thai)
	}
	return r
}

// splitSuggestions turns the raw suggestions block into an ordered list,
// stripping a leading "<digits>. " prefix when present. Non-numbered lines
// are kept verbatim after trimming.
func splitSuggestions(block string) []string {
	out := []string{}
	for _, line := range strings.Split(block, "\n") {
		cleaned := strings.TrimSpace(numberPrefix.ReplaceAllString(line, ""))
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// EnglishPortion returns the English half of a parsed main content, i.e.
// everything before the first separator. The session uses this to pick the
// text sent for speech synthesis.
func EnglishPortion(main string) string {
	english, _, _ := strings.Cut(main, Separator)
	return strings.TrimSpace(english)
}
