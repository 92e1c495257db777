package transform

import (
	"net/url"
	"strings"
)

// maxPhotoURLs caps photo lists; broker exports occasionally repeat entire
// galleries per row
const maxPhotoURLs = 50

// placeholderDomains hosts we reject outright, including their subdomains
var placeholderDomains = []string{
	"example.com",
	"example.org",
	"example.net",
	"placeholder.com",
}

// SanitizePhotoURLs filters a photo list down to well-formed, non-placeholder
// http(s) URLs, removes duplicates preserving first occurrence, and caps the
// result at maxPhotoURLs.
func SanitizePhotoURLs(urls []string) []string {
	var sanitized []string
	seen := make(map[string]bool, len(urls))

	for _, raw := range urls {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || seen[trimmed] {
			continue
		}

		parsed, err := url.Parse(trimmed)
		if err != nil {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		if parsed.Host == "" || isPlaceholderHost(parsed.Host) {
			continue
		}

		seen[trimmed] = true
		sanitized = append(sanitized, trimmed)
		if len(sanitized) == maxPhotoURLs {
			break
		}
	}

	return sanitized
}

func isPlaceholderHost(host string) bool {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i != -1 {
		host = host[:i]
	}
	for _, domain := range placeholderDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
