package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxValueLength is the longest search value accepted from a form.
const MaxValueLength = 100

// BadgePattern defines the valid badge format: alphanumeric and hyphens.
var BadgePattern = regexp.MustCompile(`^[a-zA-Z0-9-]{1,16}$`)

// LicensePattern defines characters that can appear on a plate: alphanumeric, spaces, hyphens.
var LicensePattern = regexp.MustCompile(`^[a-zA-Z0-9 -]{1,16}$`)

// NormalizeValue trims a submitted value and collapses inner whitespace.
func NormalizeValue(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// ValidateValue checks a free-text search value.
func ValidateValue(value string) (bool, string) {
	if utf8.RuneCountInString(value) > MaxValueLength {
		return false, "Search value is too long"
	}
	if !utf8.ValidString(value) {
		return false, "Search value contains invalid characters"
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return false, "Search value contains invalid characters"
		}
	}
	return true, ""
}

// ValidateBadge checks if a badge number matches the allowed pattern.
func ValidateBadge(badge string) bool {
	return BadgePattern.MatchString(badge)
}

// ValidateLicense checks if a license pattern matches the allowed characters.
func ValidateLicense(license string) bool {
	return LicensePattern.MatchString(license)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
