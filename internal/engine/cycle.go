package engine

import (
	"regexp"

	"github.com/ronnydonkey/subtracker/internal/core"
)

// cyclePatterns map billing cadence keywords to cycles. Order is fixed and
// the first matching cycle wins, so a message mentioning both "monthly" and
// "per year" resolves the same way on every run.
var cyclePatterns = []struct {
	cycle core.BillingCycle
	re    *regexp.Regexp
}{
	{core.CycleWeekly, regexp.MustCompile(`\b(?:weekly|per week|a week|each week|every week|/\s*(?:wk|week))\b`)},
	{core.CycleMonthly, regexp.MustCompile(`\b(?:monthly|per month|a month|each month|every month|/\s*(?:mo|month))\b`)},
	{core.CycleQuarterly, regexp.MustCompile(`\b(?:quarterly|per quarter|every (?:3|three) months|each quarter)\b`)},
	{core.CycleSemiAnnually, regexp.MustCompile(`\b(?:semi-?annual(?:ly)?|every (?:6|six) months|twice a year)\b`)},
	{core.CycleAnnually, regexp.MustCompile(`\b(?:annual(?:ly)?|yearly|per year|a year|each year|every year|/\s*(?:yr|year))\b`)},
}

// ExtractBillingCycle returns the first billing cadence mentioned in the
// content, or "" when none is found.
func ExtractBillingCycle(content *NormalizedContent) core.BillingCycle {
	for _, p := range cyclePatterns {
		if p.re.MatchString(content.Text) {
			return p.cycle
		}
	}
	return ""
}
