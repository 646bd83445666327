// Package ios provides XCUITest-specific options for Appium sessions
// targeting iOS devices and simulators.
package ios

// prefix is prepended to every non-standard capability, as required by the
// W3C capability naming rules.
const prefix = "appium:"

// Capabilities defines the XCUITest desired capabilities. Zero values are
// omitted from the session request.
//
// See https://appium.github.io/appium-xcuitest-driver/latest/reference/capabilities/
type Capabilities struct {
	// DeviceName is the simulator or device to target, e.g. "iPhone 15".
	DeviceName string
	// PlatformVersion is the iOS version, e.g. "17.2".
	PlatformVersion string
	// UDID targets a specific device.
	UDID string
	// App is the path or URL of the .app or .ipa to install and run.
	App string
	// BundleID is the bundle of an installed app to attach to.
	BundleID string
	// NoReset, when true, keeps app data between sessions.
	NoReset bool
	// WDALocalPort is the local port WebDriverAgent forwards through.
	WDALocalPort int
	// WebviewConnectTimeout is how long, in milliseconds, to wait for a
	// webview page to become connectable before listing contexts.
	WebviewConnectTimeout int
}

// Entries returns the capabilities as prefixed key/value pairs for the
// session request.
func (c Capabilities) Entries() map[string]interface{} {
	entries := map[string]interface{}{
		"platformName":            "iOS",
		prefix + "automationName": "XCUITest",
	}
	set := func(key string, value interface{}) {
		entries[prefix+key] = value
	}
	if c.DeviceName != "" {
		set("deviceName", c.DeviceName)
	}
	if c.PlatformVersion != "" {
		set("platformVersion", c.PlatformVersion)
	}
	if c.UDID != "" {
		set("udid", c.UDID)
	}
	if c.App != "" {
		set("app", c.App)
	}
	if c.BundleID != "" {
		set("bundleId", c.BundleID)
	}
	if c.NoReset {
		set("noReset", true)
	}
	if c.WDALocalPort > 0 {
		set("wdaLocalPort", c.WDALocalPort)
	}
	if c.WebviewConnectTimeout > 0 {
		set("webviewConnectTimeout", c.WebviewConnectTimeout)
	}
	return entries
}
