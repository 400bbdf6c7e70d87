package enrich

import (
	"fmt"
	"regexp"
	"strings"
)

// Labels of the lines the pipeline maintains in a record's extra field.
const (
	labelCitationCount     = "Citation Count"
	labelOpenAlexID        = "OpenAlex ID"
	labelSemanticScholarID = "Semantic Scholar ID"
	labelTLDR              = "TL;DR"
)

var citationCountLine = regexp.MustCompile(`(?i)Citation Count:\s*\d+`)

// upsertCitationCount sets the Citation Count line in extra, replacing an
// existing one instead of appending a duplicate.
func upsertCitationCount(extra string, count int) string {
	line := fmt.Sprintf("%s: %d", labelCitationCount, count)
	if citationCountLine.MatchString(extra) {
		return citationCountLine.ReplaceAllString(extra, line)
	}
	return appendExtraLine(extra, line)
}

// addExtraLabel appends "Label: value" unless the label is already present.
func addExtraLabel(extra, label, value string) string {
	if value == "" || hasExtraLabel(extra, label) {
		return extra
	}
	return appendExtraLine(extra, label+": "+value)
}

func hasExtraLabel(extra, label string) bool {
	return strings.Contains(strings.ToLower(extra), strings.ToLower(label)+":")
}

func appendExtraLine(extra, line string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return line
	}
	return extra + "\n" + line
}
