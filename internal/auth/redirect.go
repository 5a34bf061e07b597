package auth

import (
	"net/url"
	"strings"
)

// SafeRedirect reports whether target, resolved against the request host,
// stays on that host over http or https. Relative paths are safe.
func SafeRedirect(host, target string) bool {
	if target == "" || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return false
	}
	base := &url.URL{Scheme: "http", Host: host, Path: "/"}
	ref, err := url.Parse(target)
	if err != nil {
		return false
	}
	resolved := base.ResolveReference(ref)
	return (resolved.Scheme == "http" || resolved.Scheme == "https") && resolved.Host == host
}
