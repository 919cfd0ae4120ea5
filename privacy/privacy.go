// Package privacy redacts window titles and app names before they leave the
// machine. Everything here is pure and deterministic.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

const (
	// PrivateApp replaces any app that is whitelisted or looks sensitive
	PrivateApp = "PrivateApp"

	placeholderPrefix = "Doc-"
	titleWordLimit    = 4
	ellipsis          = "…"
)

// Keywords whose presence replaces the whole title
var sensitivePatterns = []string{
	`\bbank(ing)?\b`,
	`\bcredit\b`,
	`\bpassword\b`,
	`\bmedical\b`,
	`\btherapy\b`,
	`\bdoctor\b`,
	`\btinder\b`,
	`\bbumble\b`,
	`\bhinge\b`,
	`\bdating\b`,
	`\bpaypal\b`,
	`\bvenmo\b`,
	`\btax(es)?\b`,
	`\bporn\b`,
	`\badult\b`,
	`\bcasino\b`,
	`\bgambling\b`,
}

var sensitive = compile(sensitivePatterns)

func compile(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile("(?i)"+p))
	}
	return out
}

// IsSensitive reports whether s matches any rule in the ruleset
func IsSensitive(s string) bool {
	for _, re := range sensitive {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// AnonymizeTitle replaces sensitive titles with a one-way placeholder and
// shortens the rest to their first few words.
func AnonymizeTitle(title string) string {
	if IsSensitive(title) {
		sum := sha256.Sum256([]byte(title))
		return placeholderPrefix + hex.EncodeToString(sum[:])[:8]
	}

	words := strings.Fields(title)
	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + ellipsis
}

// AnonymizeApp hides whitelisted and sensitive apps behind PrivateApp
func AnonymizeApp(app string, whitelist []string) string {
	for _, w := range whitelist {
		if w == app {
			return PrivateApp
		}
	}
	if IsSensitive(app) {
		return PrivateApp
	}
	return app
}

// Filter applies the rules when Enabled is set and passes values through otherwise
type Filter struct {
	Enabled   bool
	Whitelist []string
}

// Apply redacts the current window and the recent-apps list together so the
// context sent upstream never leaks what the title hides.
func (f Filter) Apply(app, title string, recentApps []string) (string, string, []string) {
	if !f.Enabled {
		return app, title, recentApps
	}

	apps := make([]string, 0, len(recentApps))
	for _, a := range recentApps {
		a = AnonymizeApp(a, f.Whitelist)
		dup := false
		for _, seen := range apps {
			if seen == a {
				dup = true
				break
			}
		}
		if !dup {
			apps = append(apps, a)
		}
	}
	return AnonymizeApp(app, f.Whitelist), AnonymizeTitle(title), apps
}
