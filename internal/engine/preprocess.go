package engine

import (
	"regexp"
	"strings"

	"github.com/ronnydonkey/subtracker/internal/core"
)

// NormalizedContent is the single searchable text blob every downstream
// matcher runs against. It is derived per call and never persisted.
type NormalizedContent struct {
	// Text is the lowercased concatenation of subject, plain body and
	// de-markuped HTML body.
	Text string
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	htmlStyleRe  = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// minimal entity set the stripper decodes; anything else passes through.
var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// Normalize flattens a message into NormalizedContent. It fails fast with
// InvalidMessageError when subject and both bodies are empty, mirroring the
// constructor-level invariant for messages built outside NewEmailMessage.
func Normalize(msg *core.EmailMessage) (*NormalizedContent, error) {
	if msg.Subject == "" && msg.BodyText == "" && msg.BodyHTML == "" {
		return nil, &core.InvalidMessageError{Reason: "subject, bodyText and bodyHtml are all empty"}
	}

	parts := make([]string, 0, 3)
	if msg.Subject != "" {
		parts = append(parts, msg.Subject)
	}
	if msg.BodyText != "" {
		parts = append(parts, msg.BodyText)
	}
	if msg.BodyHTML != "" {
		parts = append(parts, StripHTML(msg.BodyHTML))
	}

	text := strings.ToLower(strings.Join(parts, "\n"))
	text = whitespaceRe.ReplaceAllString(text, " ")
	return &NormalizedContent{Text: strings.TrimSpace(text)}, nil
}

// StripHTML removes markup and decodes the minimal entity set without
// pulling in an HTML parser. Script and style blocks are dropped wholesale
// so their contents never leak into pattern matching.
func StripHTML(html string) string {
	text := htmlStyleRe.ReplaceAllString(html, " ")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = htmlEntities.Replace(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
