package engine

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ServiceResolver derives a canonical service name from the sender domain
// and, failing that, from body phrasing. An unresolved name is a hard stop
// for the whole detection: a subscription nobody can attribute is not
// actionable.
type ServiceResolver struct {
	registry *ServiceRegistry
	titler   cases.Caser
}

// genericDomainPrefixes are stripped from sender domains before registry
// lookup; they carry routing information, not identity.
var genericDomainPrefixes = []string{
	"mail.",
	"noreply.",
	"no-reply.",
	"notifications.",
	"email.",
}

// bodyServicePatterns capture a service name from subscription phrasing in
// normalized (lowercase) content. Order matters: the most explicit phrasing
// is tried first.
var bodyServicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`thank you for subscribing to ([a-z0-9][a-z0-9.+&'-]{0,29}(?: [a-z0-9.+&'-]{1,20}){0,2})`),
	regexp.MustCompile(`welcome to ([a-z0-9][a-z0-9.+&'-]{0,29}(?: [a-z0-9.+&'-]{1,20}){0,2})`),
	regexp.MustCompile(`your ([a-z0-9][a-z0-9.+&'-]{0,29}) subscription`),
	regexp.MustCompile(`([a-z0-9][a-z0-9.+&'-]{0,29}) membership`),
}

// NewServiceResolver creates a resolver backed by the given registry.
func NewServiceResolver(registry *ServiceRegistry) *ServiceResolver {
	return &ServiceResolver{
		registry: registry,
		titler:   cases.Title(language.English),
	}
}

// Resolve returns the canonical service name for a message, or "" when no
// attribution is possible.
func (r *ServiceResolver) Resolve(from string, content *NormalizedContent) string {
	domain := senderDomain(from)

	if domain != "" && !r.registry.IsGenericDomain(domain) {
		root := domain
		for _, prefix := range genericDomainPrefixes {
			root = strings.TrimPrefix(root, prefix)
		}
		if name, ok := r.registry.Lookup(root); ok {
			return name
		}
		if label, _, _ := strings.Cut(root, "."); label != "" {
			return r.titler.String(label)
		}
	}

	for _, pattern := range bodyServicePatterns {
		if m := pattern.FindStringSubmatch(content.Text); m != nil {
			name := strings.Trim(m[1], " .,:;!-'")
			if name != "" {
				return r.titler.String(name)
			}
		}
	}

	return ""
}
