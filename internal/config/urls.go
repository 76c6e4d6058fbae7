package config

import (
	"net/url"
	"regexp"
	"strings"
)

var appURLPath = regexp.MustCompile(`^/home/amazon_aws/\w{20}/\d{3}$`)

// ValidateOrgURL reports whether rawURL looks like an Okta organization URL:
// https, a host, and an empty or root path with no query or fragment.
func ValidateOrgURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https" &&
		u.Host != "" &&
		(u.Path == "" || u.Path == "/") &&
		u.RawQuery == "" && !u.ForceQuery &&
		u.Fragment == ""
}

// ValidateAppURL reports whether rawURL looks like an Okta AWS app tile URL.
// Custom Okta domains are allowed, so the host is not checked.
func ValidateAppURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != "" && appURLPath.MatchString(u.Path)
}

// BaseURL returns the scheme://host origin of rawURL.
func BaseURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// NormalizeURL trims user input and prefixes https:// when it is missing.
func NormalizeURL(input string) string {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "https://") {
		return input
	}
	return "https://" + input
}
