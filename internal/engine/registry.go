package engine

import (
	"sort"
	"strings"
)

// ServiceRegistry maps known lowercase service identifiers to canonical
// display names and lists the generic mail-provider domains that carry no
// service identity of their own. It is built once at startup and never
// mutated afterwards, so it is safe to share across concurrent detections.
type ServiceRegistry struct {
	services       map[string]string
	sortedIDs      []string
	genericDomains map[string]struct{}
}

// knownServices is the built-in identifier to display-name table. Matching
// against sender domains is substring-based, so identifiers stay short.
var knownServices = map[string]string{
	"netflix":     "Netflix",
	"spotify":     "Spotify",
	"hulu":        "Hulu",
	"disneyplus":  "Disney+",
	"hbomax":      "HBO Max",
	"youtube":     "YouTube",
	"twitch":      "Twitch",
	"audible":     "Audible",
	"kindle":      "Kindle",
	"adobe":       "Adobe",
	"dropbox":     "Dropbox",
	"slack":       "Slack",
	"notion":      "Notion",
	"github":      "GitHub",
	"gitlab":      "GitLab",
	"figma":       "Figma",
	"canva":       "Canva",
	"zoom":        "Zoom",
	"linkedin":    "LinkedIn",
	"medium":      "Medium",
	"substack":    "Substack",
	"patreon":     "Patreon",
	"openai":      "OpenAI",
	"anthropic":   "Anthropic",
	"icloud":      "iCloud",
	"evernote":    "Evernote",
	"grammarly":   "Grammarly",
	"duolingo":    "Duolingo",
	"masterclass": "MasterClass",
	"skillshare":  "Skillshare",
	"coursera":    "Coursera",
	"nytimes":     "The New York Times",
	"wsj":         "The Wall Street Journal",
	"economist":   "The Economist",
	"spotless":    "Spotless",
	"nordvpn":     "NordVPN",
	"expressvpn":  "ExpressVPN",
	"1password":   "1Password",
	"lastpass":    "LastPass",
	"peloton":     "Peloton",
	"strava":      "Strava",
	"headspace":   "Headspace",
	"calm":        "Calm",
}

// genericMailDomains are providers and relays whose domains never identify
// a subscription service. Matching is suffix-based so subdomains of a relay
// are covered too.
var genericMailDomains = []string{
	"gmail.com",
	"googlemail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
	"live.com",
	"aol.com",
	"icloud.com",
	"me.com",
	"privaterelay.appleid.com",
	"appleid.com",
	"protonmail.com",
	"proton.me",
	"mail.com",
	"gmx.com",
	"zoho.com",
	"fastmail.com",
	"noreply.com",
	"example.com",
}

// NewServiceRegistry builds a registry from the built-in tables plus any
// extra identifier to display-name entries supplied by configuration.
func NewServiceRegistry(extraServices map[string]string) *ServiceRegistry {
	services := make(map[string]string, len(knownServices)+len(extraServices))
	for id, name := range knownServices {
		services[strings.ToLower(id)] = name
	}
	for id, name := range extraServices {
		if id == "" || name == "" {
			continue
		}
		services[strings.ToLower(id)] = name
	}

	ids := make([]string, 0, len(services))
	for id := range services {
		ids = append(ids, id)
	}
	// Longest identifier first so "disneyplus" beats "disney" style
	// prefixes; ties break alphabetically for reproducibility.
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) > len(ids[j])
		}
		return ids[i] < ids[j]
	})

	generic := make(map[string]struct{}, len(genericMailDomains))
	for _, d := range genericMailDomains {
		generic[d] = struct{}{}
	}

	return &ServiceRegistry{
		services:       services,
		sortedIDs:      ids,
		genericDomains: generic,
	}
}

// Lookup returns the canonical display name for the first known identifier
// contained in root.
func (r *ServiceRegistry) Lookup(root string) (string, bool) {
	root = strings.ToLower(root)
	for _, id := range r.sortedIDs {
		if strings.Contains(root, id) {
			return r.services[id], true
		}
	}
	return "", false
}

// IsGenericDomain reports whether domain belongs to a generic mail provider
// or relay, checking the domain itself and every parent suffix.
func (r *ServiceRegistry) IsGenericDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for {
		if _, ok := r.genericDomains[domain]; ok {
			return true
		}
		dot := strings.Index(domain, ".")
		if dot < 0 {
			return false
		}
		domain = domain[dot+1:]
	}
}
