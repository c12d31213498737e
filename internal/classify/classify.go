// Package classify turns raw request metadata into semantic categories.
// All functions are pure: no I/O, no errors, malformed input degrades to a
// defined fallback category.
package classify

import (
	"net/url"
	"strings"

	ua "github.com/mileusna/useragent"

	"github.com/linklens/linklens/internal/model"
)

// socialDomains is matched before emailDomains; a domain present in both
// lists resolves to Social.
var socialDomains = []string{
	"twitter.com",
	"x.com",
	"linkedin.com",
	"facebook.com",
	"instagram.com",
	"whatsapp.com",
	"wa.me",
	"t.me",
	"reddit.com",
	"pinterest.com",
	"tiktok.com",
	"youtube.com",
	"snapchat.com",
}

// emailDomains is a best-effort heuristic: personal mail domains like
// gmail.com count as Email even when the referrer is a mail-hosted page
// rather than an actual mail client link.
var emailDomains = []string{
	"mail.google.com",
	"outlook.com",
	"mail.yahoo.com",
	"mail.aol.com",
	"mail.com",
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"icloud.com",
	"protonmail.com",
}

// Device infers the device category from a user-agent string.
// Returns DeviceUnknown when the user agent is absent. A malformed user
// agent degrades to Desktop.
func Device(userAgent string) model.DeviceCategory {
	if userAgent == "" {
		return model.DeviceUnknown
	}

	parsed := ua.Parse(userAgent)

	if parsed.Tablet {
		return model.DeviceTablet
	}
	if parsed.Mobile {
		return model.DeviceMobile
	}

	os := strings.ToLower(parsed.OS)
	if strings.Contains(os, "android") || strings.Contains(os, "ios") {
		return model.DeviceMobile
	}

	return model.DeviceDesktop
}

// Browser returns the browser family name, or "" when the user agent is
// absent or the family cannot be determined.
func Browser(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	return ua.Parse(userAgent).Name
}

// Source classifies a referrer string into a traffic source category.
// Empty or whitespace-only referrers are Direct. Otherwise the referrer is
// substring-matched (case-insensitive) against the social list, then the
// email list; any other well-formed absolute URL is Website, and everything
// else falls back to Direct.
func Source(referrer string) model.SourceCategory {
	ref := strings.TrimSpace(referrer)
	if ref == "" {
		return model.SourceDirect
	}

	lower := strings.ToLower(ref)

	for _, domain := range socialDomains {
		if strings.Contains(lower, domain) {
			return model.SourceSocial
		}
	}

	for _, domain := range emailDomains {
		if strings.Contains(lower, domain) {
			return model.SourceEmail
		}
	}

	if parsed, err := url.Parse(ref); err == nil && parsed.Scheme != "" && parsed.Host != "" {
		return model.SourceWebsite
	}

	return model.SourceDirect
}
