// internal/domain/analytics/useragent.go
package analytics

import "strings"

// Classification buckets for user agent strings. Substring heuristics are
// good enough for dashboard breakdowns; anything unrecognized lands in
// "Other".
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
)

// ClassifyDevice buckets a user agent into Mobile, Tablet or Desktop.
// Tablet markers are checked first since iPads also advertise Mobile.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return DeviceTablet
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// ClassifyBrowser identifies the browser family. Order matters: Edge and
// Opera embed "Chrome" in their user agents, and Chrome embeds "Safari".
func ClassifyBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		return "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident"):
		return "IE"
	default:
		return "Other"
	}
}

// ClassifyOS identifies the operating system. Mobile platforms come
// first because Android user agents also contain "Linux".
func ClassifyOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		return "iOS"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		return "MacOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Other"
	}
}
