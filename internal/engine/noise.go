package engine

import (
	"strings"
)

// NoiseFilter rejects low-value marketing and phishing mail before the
// extraction stages run. A match short-circuits the whole pipeline to an
// empty detection list.
type NoiseFilter struct {
	phrases           []string
	disposableDomains map[string]struct{}
}

// noisePhrases match promotional and scam phrasing. All entries are
// lowercase; the filter runs against normalized content.
var noisePhrases = []string{
	"unsubscribe here",
	"click here to unsubscribe",
	"act now",
	"limited time offer",
	"congratulations you won",
	"congratulations, you won",
	"you have been selected",
	"claim your prize",
	"this is not spam",
	"100% free",
	"risk-free",
	"double your",
	"earn money fast",
	"work from home",
	"hot singles",
	"viagra",
	"lottery winner",
}

// disposableDomains host throwaway mailboxes; nothing arriving from them
// describes a real subscription.
var disposableDomains = []string{
	"mailinator.com",
	"guerrillamail.com",
	"10minutemail.com",
	"tempmail.com",
	"temp-mail.org",
	"throwawaymail.com",
	"getnada.com",
	"trashmail.com",
	"sharklasers.com",
	"yopmail.com",
}

// NewNoiseFilter builds a filter from the built-in lists plus any extra
// phrases supplied by configuration.
func NewNoiseFilter(extraPhrases []string) *NoiseFilter {
	phrases := make([]string, 0, len(noisePhrases)+len(extraPhrases))
	phrases = append(phrases, noisePhrases...)
	for _, p := range extraPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			phrases = append(phrases, p)
		}
	}

	domains := make(map[string]struct{}, len(disposableDomains))
	for _, d := range disposableDomains {
		domains[d] = struct{}{}
	}

	return &NoiseFilter{
		phrases:           phrases,
		disposableDomains: domains,
	}
}

// IsNoise reports whether a message is marketing noise or comes from a
// disposable mailbox.
func (f *NoiseFilter) IsNoise(content *NormalizedContent, from string) bool {
	for _, phrase := range f.phrases {
		if strings.Contains(content.Text, phrase) {
			return true
		}
	}
	if domain := senderDomain(from); domain != "" {
		if _, ok := f.disposableDomains[domain]; ok {
			return true
		}
	}
	return false
}

// senderDomain extracts the lowercased domain from an address, tolerating
// the "Display Name <user@host>" form.
func senderDomain(from string) string {
	if start := strings.LastIndex(from, "<"); start >= 0 {
		if end := strings.Index(from[start:], ">"); end > 0 {
			from = from[start+1 : start+end]
		}
	}
	at := strings.LastIndex(from, "@")
	if at < 0 || at == len(from)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(from[at+1:]))
}
