package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// RegistrableDomain returns the registrable root domain of a URL: the
// public-suffix-plus-one, e.g. "example.co.uk" for "https://a.example.co.uk/x".
// This is the scope consent cookies are committed under (with a leading dot).
func RegistrableDomain(rawURL string) (string, error) {
	host := rawURL
	if strings.Contains(rawURL, "://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("parsing %q: %w", rawURL, err)
		}
		host = u.Hostname()
	} else if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	return publicsuffix.EffectiveTLDPlusOne(host)
}

// MakeURL turns a bare website domain into a crawlable https URL. Already
// schemed input is returned untouched.
func MakeURL(website string) string {
	if strings.Contains(website, "://") {
		return website
	}
	return "https://" + website
}
