package engine

import (
	"regexp"

	"github.com/ronnydonkey/subtracker/internal/core"
)

// PatternSet is an ordered sequence of regular expressions associated with
// one detection type. Sets are compiled once at startup and shared,
// immutable, across all detections.
type PatternSet struct {
	Type     core.DetectionType
	Patterns []*regexp.Regexp
}

// PatternLibrary holds one PatternSet per detection type in the canonical
// type order.
type PatternLibrary struct {
	sets []PatternSet
}

// Pattern vocabularies run against normalized (lowercase) content. The sets
// are deliberately narrow: a phrase must carry the lifecycle event itself,
// not just subscription vocabulary, so that e.g. a renewal receipt does not
// light up trial_signup.
var defaultPatterns = map[core.DetectionType][]string{
	core.TypeTrialSignup: {
		`your (?:free )?trial (?:has )?(?:started|begun|is now active)`,
		`(?:started|activated|began) your (?:free )?trial`,
		`welcome to your (?:free )?trial`,
		`free trial (?:has )?(?:started|activated|begun)`,
		`signed up for (?:a |your )?(?:free )?trial`,
		`trial period (?:has )?(?:started|begun)`,
	},
	core.TypeTrialReminder: {
		`trial (?:is |will )?end(?:s|ed|ing)?\b`,
		`trial (?:is about to |will )?expire`,
		`trial ends? (?:on|in)\b`,
		`days? left (?:in|of) your (?:free )?trial`,
		`before your (?:free )?trial ends`,
		`trial period is (?:almost )?over`,
	},
	core.TypeBillingConfirmation: {
		`(?:subscription|membership|plan) has been renewed`,
		`payment (?:was |has been )?(?:received|successful|confirmed|processed)`,
		`(?:you(?:'ve| have) been|you were|successfully) charged`,
		`next billing date`,
		`renewal confirmation`,
		`your (?:receipt|invoice) (?:from|for|is)`,
		`thank you for your payment`,
		`we(?:'ve| have) billed`,
	},
	core.TypeSubscriptionStart: {
		`(?:subscription|membership) (?:has )?(?:started|begun|been activated)`,
		`thank you for subscribing`,
		`welcome to (?:your new |the )`,
		`subscription (?:is )?(?:confirmed|now active)`,
		`membership is (?:now )?active`,
		`you(?:'re| are) now subscribed`,
	},
	core.TypePriceChange: {
		`price (?:increase|change|update)`,
		`price (?:is|will be) (?:chang|increas|go)ing`,
		`price will (?:increase|change|go up)`,
		`new (?:price|pricing|rate)`,
		`pricing update`,
		`rate (?:change|increase)`,
		`cost of your (?:subscription|membership|plan) (?:is|will)`,
	},
}

// NewPatternLibrary compiles the built-in vocabularies plus any extra
// per-type expressions from configuration. Invalid extra expressions are
// reported rather than silently dropped.
func NewPatternLibrary(extra map[core.DetectionType][]string) (*PatternLibrary, error) {
	sets := make([]PatternSet, 0, len(core.DetectionTypes))
	for _, dt := range core.DetectionTypes {
		exprs := make([]string, 0, len(defaultPatterns[dt])+len(extra[dt]))
		exprs = append(exprs, defaultPatterns[dt]...)
		exprs = append(exprs, extra[dt]...)

		patterns := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, re)
		}
		sets = append(sets, PatternSet{Type: dt, Patterns: patterns})
	}
	return &PatternLibrary{sets: sets}, nil
}

// Candidate is one detection type the classifier matched, together with the
// evidence backing it.
type Candidate struct {
	Type core.DetectionType
	// Matches holds the matched snippet for every pattern that fired, in
	// pattern order. The first entry becomes the audit snippet.
	Matches []string
}

// Classify tests every pattern set against the content and returns the
// candidate types, in canonical type order. A message may legitimately
// produce several candidates; collapsing them to a best guess is the
// caller's decision, not the classifier's.
func (l *PatternLibrary) Classify(content *NormalizedContent) []Candidate {
	var candidates []Candidate
	for _, set := range l.sets {
		var matches []string
		for _, re := range set.Patterns {
			if m := re.FindString(content.Text); m != "" {
				matches = append(matches, m)
			}
		}
		if len(matches) > 0 {
			candidates = append(candidates, Candidate{Type: set.Type, Matches: matches})
		}
	}
	return candidates
}
