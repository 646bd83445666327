// Package android provides UiAutomator2-specific options for Appium
// sessions targeting Android devices and emulators.
package android

// CapabilitiesKey is the capability naming the automation backend.
const CapabilitiesKey = "appium:automationName"

// prefix is prepended to every non-standard capability, as required by the
// W3C capability naming rules.
const prefix = "appium:"

// Capabilities defines the UiAutomator2 desired capabilities. Zero values
// are omitted from the session request.
//
// See https://github.com/appium/appium-uiautomator2-driver#capabilities
type Capabilities struct {
	// DeviceName is the kind of device to target, e.g. "Android Emulator".
	DeviceName string
	// UDID targets a specific connected device by serial.
	UDID string
	// App is the path or URL of the APK to install and run. Leave empty
	// together with AppPackage to attach to an installed app.
	App string
	// AppPackage is the Java package of the app to run.
	AppPackage string
	// AppActivity is the activity to launch, e.g. ".MainActivity".
	AppActivity string
	// NoReset, when true, keeps app data between sessions.
	NoReset bool
	// AutoGrantPermissions grants requested permissions at install time,
	// avoiding permission dialogs during tests.
	AutoGrantPermissions bool
	// ChromedriverExecutable is the path of the chromedriver binary used
	// to back webview contexts. Must match the WebView version on the
	// device.
	ChromedriverExecutable string
	// NewCommandTimeout is how long, in seconds, the server keeps an idle
	// session alive.
	NewCommandTimeout int
}

// Entries returns the capabilities as prefixed key/value pairs for the
// session request.
func (c Capabilities) Entries() map[string]interface{} {
	entries := map[string]interface{}{
		"platformName":            "Android",
		prefix + "automationName": "UiAutomator2",
	}
	set := func(key string, value interface{}) {
		entries[prefix+key] = value
	}
	if c.DeviceName != "" {
		set("deviceName", c.DeviceName)
	}
	if c.UDID != "" {
		set("udid", c.UDID)
	}
	if c.App != "" {
		set("app", c.App)
	}
	if c.AppPackage != "" {
		set("appPackage", c.AppPackage)
	}
	if c.AppActivity != "" {
		set("appActivity", c.AppActivity)
	}
	if c.NoReset {
		set("noReset", true)
	}
	if c.AutoGrantPermissions {
		set("autoGrantPermissions", true)
	}
	if c.ChromedriverExecutable != "" {
		set("chromedriverExecutable", c.ChromedriverExecutable)
	}
	if c.NewCommandTimeout > 0 {
		set("newCommandTimeout", c.NewCommandTimeout)
	}
	return entries
}
