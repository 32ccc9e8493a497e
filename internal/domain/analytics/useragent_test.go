// internal/domain/analytics/useragent_test.go
package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaChromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	uaSafariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1"
	uaSafariIPad    = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0"
	uaEdgeWindows   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0"
	uaChromeAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Mobile Safari/537.36"
	uaSafariMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15"
)

func TestClassifyDevice(t *testing.T) {
	assert.Equal(t, DeviceDesktop, ClassifyDevice(uaChromeWindows))
	assert.Equal(t, DeviceMobile, ClassifyDevice(uaSafariIPhone))
	// iPads report Mobile too, but tablet wins
	assert.Equal(t, DeviceTablet, ClassifyDevice(uaSafariIPad))
	assert.Equal(t, DeviceMobile, ClassifyDevice(uaChromeAndroid))
	assert.Equal(t, DeviceDesktop, ClassifyDevice(""))
}

func TestClassifyBrowser(t *testing.T) {
	assert.Equal(t, "Chrome", ClassifyBrowser(uaChromeWindows))
	assert.Equal(t, "Safari", ClassifyBrowser(uaSafariIPhone))
	assert.Equal(t, "Firefox", ClassifyBrowser(uaFirefoxLinux))
	// Edge advertises Chrome and Safari; Edge must win
	assert.Equal(t, "Edge", ClassifyBrowser(uaEdgeWindows))
	assert.Equal(t, "Safari", ClassifyBrowser(uaSafariMac))
	assert.Equal(t, "Other", ClassifyBrowser("curl/8.5.0"))
}

func TestClassifyOS(t *testing.T) {
	assert.Equal(t, "Windows", ClassifyOS(uaChromeWindows))
	assert.Equal(t, "iOS", ClassifyOS(uaSafariIPhone))
	assert.Equal(t, "iOS", ClassifyOS(uaSafariIPad))
	assert.Equal(t, "Linux", ClassifyOS(uaFirefoxLinux))
	// Android user agents also contain Linux; Android must win
	assert.Equal(t, "Android", ClassifyOS(uaChromeAndroid))
	assert.Equal(t, "MacOS", ClassifyOS(uaSafariMac))
	assert.Equal(t, "Other", ClassifyOS("curl/8.5.0"))
}
