package decode

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// urlPattern accepts explicit schemes, www-prefixed hosts and bare
// host.tld forms followed by at least one more non-space character. The
// match must not continue a word; letters, digits and underscore in any
// script count as word characters, unlike RE2's ASCII-only \b.
var urlPattern = regexp.MustCompile(
	`(?i)(?:^|[^\p{L}\p{N}_])((?:https?://|www\d{0,3}[.]|[a-z0-9.\-]+[.][a-z]{2,})(?:[^\s()<>]+|\(([^\s()<>]+|(\([^\s()<>]+\)))*\))+)`,
)

// IsURL reports whether text contains something that looks like a URL.
func IsURL(text string) bool {
	return text != "" && urlPattern.MatchString(text)
}

// Unique drops empty strings, normalizes to NFC and removes duplicates,
// keeping the first occurrence.
func Unique(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		n := norm.NFC.String(t)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// OrderURLFirst returns texts with URLs moved to the front. Relative order
// inside both groups is kept.
func OrderURLFirst(texts []string) []string {
	out := make([]string, 0, len(texts))
	var rest []string
	for _, t := range texts {
		if IsURL(t) {
			out = append(out, t)
		} else {
			rest = append(rest, t)
		}
	}
	return append(out, rest...)
}
