package middleware

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent turns a User-Agent header into a short display name such
// as "Chrome on Windows 10" or "Safari on iPhone". CCTNS terminals and
// scripted clients that carry no browser token fall back to the product name.
func ParseUserAgent(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return unknownDevice
	}
	ua := useragent.New(header)
	if ua.Bot() {
		name, _ := ua.Browser()
		return strings.TrimSpace("Bot " + name)
	}

	browser, _ := ua.Browser()
	if browser == "" {
		browser, _ = ua.Engine()
	}
	if browser == "" {
		browser = header
		if i := strings.IndexAny(browser, "/ "); i > 0 {
			browser = browser[:i]
		}
	}

	platform := ua.OS()
	if ua.Mobile() && ua.Platform() != "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "unknown platform"
	}
	return strings.Join(strings.Fields(browser+" on "+platform), " ")
}
