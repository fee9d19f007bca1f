package engine

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// trial window bounds, in bytes of normalized text around a "trial"
// occurrence. Dates inside the window near end/expire wording are taken as
// the trial end date regardless of where they fall relative to receipt.
const (
	trialWindowBefore = 80
	trialWindowAfter  = 160
)

// dateCandidateRes locate date-shaped substrings; actual interpretation is
// delegated to the dateparse library. Relative phrasings ("in 3 days") are
// intentionally not candidates: a miss is a soft degradation, never a
// fabricated date.
var dateCandidateRes = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,\s*|\s+)\d{4}`),
	regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+\d{4}`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
}

var ordinalSuffixRe = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\b`)

type dateCandidate struct {
	pos int
	raw string
}

// ExtractDate pulls the most relevant date from the content. Strategy, in
// priority order: (a) the first parseable date inside a window around trial
// end/expire wording; (b) the earliest parseable date strictly later than
// receivedAt. The bool result is false on a miss; parse failures inside the
// date library are treated as misses too.
func ExtractDate(content *NormalizedContent, receivedAt time.Time) (time.Time, string, bool) {
	candidates := findDateCandidates(content.Text)
	if len(candidates) == 0 {
		return time.Time{}, "", false
	}

	if c, ok := trialWindowCandidate(content.Text, candidates); ok {
		if parsed, ok := parseDate(c.raw); ok {
			return parsed, c.raw, true
		}
	}

	var best time.Time
	var bestRaw string
	found := false
	for _, c := range candidates {
		parsed, ok := parseDate(c.raw)
		if !ok || !parsed.After(receivedAt) {
			continue
		}
		if !found || parsed.Before(best) {
			best, bestRaw, found = parsed, c.raw, true
		}
	}
	return best, bestRaw, found
}

// findDateCandidates returns date-shaped substrings ordered by position,
// deduplicating overlapping hits from different expressions.
func findDateCandidates(text string) []dateCandidate {
	seen := make(map[int]struct{})
	var candidates []dateCandidate
	for _, re := range dateCandidateRes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if _, dup := seen[loc[0]]; dup {
				continue
			}
			seen[loc[0]] = struct{}{}
			candidates = append(candidates, dateCandidate{pos: loc[0], raw: text[loc[0]:loc[1]]})
		}
	}
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].pos < candidates[j-1].pos; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	return candidates
}

// trialWindowCandidate returns the first candidate falling inside a text
// window that surrounds the word "trial" and also mentions ending or
// expiring.
func trialWindowCandidate(text string, candidates []dateCandidate) (dateCandidate, bool) {
	offset := 0
	for {
		i := strings.Index(text[offset:], "trial")
		if i < 0 {
			return dateCandidate{}, false
		}
		i += offset

		start := i - trialWindowBefore
		if start < 0 {
			start = 0
		}
		end := i + trialWindowAfter
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]

		if strings.Contains(window, "end") || strings.Contains(window, "expir") {
			for _, c := range candidates {
				if c.pos >= start && c.pos < end {
					return c, true
				}
			}
		}
		offset = i + len("trial")
	}
}

// parseDate normalizes a candidate and hands it to the date library. The
// result is pinned to UTC midnight; extracted dates are calendar dates, not
// instants.
func parseDate(raw string) (time.Time, bool) {
	cleaned := ordinalSuffixRe.ReplaceAllString(raw, "$1")
	parsed, err := dateparse.ParseIn(cleaned, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
}
