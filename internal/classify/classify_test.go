package classify

import (
	"testing"

	"github.com/linklens/linklens/internal/model"
)

const (
	uaChromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaIPhone        = "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1"
	uaIPad          = "Mozilla/5.0 (iPad; CPU OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1"
	uaAndroidPhone  = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Mobile Safari/537.36"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
)

func TestDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		userAgent string
		want      model.DeviceCategory
	}{
		{"empty", "", model.DeviceUnknown},
		{"windows chrome", uaChromeWindows, model.DeviceDesktop},
		{"iphone", uaIPhone, model.DeviceMobile},
		{"ipad", uaIPad, model.DeviceTablet},
		{"android phone", uaAndroidPhone, model.DeviceMobile},
		{"linux firefox", uaFirefoxLinux, model.DeviceDesktop},
		{"garbage degrades to desktop", "not a real user agent", model.DeviceDesktop},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Device(tt.userAgent); got != tt.want {
				t.Errorf("Device(%q) = %q, want %q", tt.userAgent, got, tt.want)
			}
		})
	}
}

func TestBrowser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{"empty", "", ""},
		{"chrome", uaChromeWindows, "Chrome"},
		{"firefox", uaFirefoxLinux, "Firefox"},
		{"safari iphone", uaIPhone, "Safari"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Browser(tt.userAgent); got != tt.want {
				t.Errorf("Browser(%q) = %q, want %q", tt.userAgent, got, tt.want)
			}
		})
	}
}

func TestSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		referrer string
		want     model.SourceCategory
	}{
		{"empty", "", model.SourceDirect},
		{"whitespace only", "   ", model.SourceDirect},
		{"twitter", "https://twitter.com/someuser/status/123", model.SourceSocial},
		{"x dot com", "https://x.com/someuser", model.SourceSocial},
		{"reddit uppercase", "HTTPS://WWW.REDDIT.COM/r/golang", model.SourceSocial},
		{"telegram", "https://t.me/somechannel", model.SourceSocial},
		{"gmail", "https://mail.google.com/mail/u/0/", model.SourceEmail},
		{"outlook", "https://outlook.com/mail/inbox", model.SourceEmail},
		{"plain website", "https://news.ycombinator.com/item?id=1", model.SourceWebsite},
		// t.co is Twitter's shortener but is not on the social list, so a
		// valid URL referrer from it classifies as Website.
		{"t.co is not social", "https://t.co/abc", model.SourceWebsite},
		{"not a url", "just some text", model.SourceDirect},
		{"relative path", "/internal/page", model.SourceDirect},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Source(tt.referrer); got != tt.want {
				t.Errorf("Source(%q) = %q, want %q", tt.referrer, got, tt.want)
			}
		})
	}
}

func TestSource_SocialBeatsEmail(t *testing.T) {
	t.Parallel()

	// A referrer containing domains from both lists must resolve to Social
	// because the social list is checked first.
	ref := "https://mail.google.com/redirect?to=youtube.com"
	if got := Source(ref); got != model.SourceSocial {
		t.Errorf("Source(%q) = %q, want %q", ref, got, model.SourceSocial)
	}
}
