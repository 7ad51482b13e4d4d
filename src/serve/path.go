package serve

import (
	"regexp"
	"strings"
)

var absoluteURLRe = regexp.MustCompile(`^(\w+:)?//`)

// DefaultServePath derives the path the dev server mounts the app under from
// the base href and deploy URL. It returns false when the combination cannot
// be served locally: either value is an absolute URL, or both are
// root-relative and disagree.
func DefaultServePath(baseHref, deployURL string) (string, bool) {
	if baseHref == "" && deployURL == "" {
		return "", true
	}
	if absoluteURLRe.MatchString(baseHref) || absoluteURLRe.MatchString(deployURL) {
		return "", false
	}

	// The dev server always starts at "/", so relative and root-relative base
	// hrefs are equivalent. A base href without a trailing slash names a file
	// whose directory is the base.
	var parts []string
	for _, p := range strings.Split(baseHref, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if baseHref != "" && !strings.HasSuffix(baseHref, "/") && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	normalized := "/"
	if len(parts) > 0 {
		normalized = "/" + strings.Join(parts, "/") + "/"
	}

	if strings.HasPrefix(deployURL, "/") {
		if strings.HasPrefix(baseHref, "/") && normalized != deployURL {
			return "", false
		}
		return deployURL, true
	}
	return normalized + deployURL, true
}

// NormalizeServePath gives p a leading slash and strips a trailing one.
// The root path normalizes to "/".
func NormalizeServePath(p string) string {
	p = strings.TrimSuffix(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// ResolveServePath picks the serve path: an explicit value wins, otherwise
// the default derived from baseHref and deployURL. The bool is false when the
// default was unsupported and "/" was used instead.
func ResolveServePath(explicit *string, baseHref, deployURL string) (string, bool) {
	if explicit != nil {
		return NormalizeServePath(*explicit), true
	}
	p, ok := DefaultServePath(baseHref, deployURL)
	return NormalizeServePath(p), ok
}
