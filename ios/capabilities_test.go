package ios

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEntries(t *testing.T) {
	caps := Capabilities{
		DeviceName:            "iPhone 15",
		PlatformVersion:       "17.2",
		BundleID:              "com.example.app",
		NoReset:               true,
		WDALocalPort:          8100,
		WebviewConnectTimeout: 5000,
	}
	want := map[string]interface{}{
		"platformName":                 "iOS",
		"appium:automationName":        "XCUITest",
		"appium:deviceName":            "iPhone 15",
		"appium:platformVersion":       "17.2",
		"appium:bundleId":              "com.example.app",
		"appium:noReset":               true,
		"appium:wdaLocalPort":          8100,
		"appium:webviewConnectTimeout": 5000,
	}
	if diff := cmp.Diff(want, caps.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestEntriesOmitsZeroValues(t *testing.T) {
	want := map[string]interface{}{
		"platformName":          "iOS",
		"appium:automationName": "XCUITest",
	}
	if diff := cmp.Diff(want, Capabilities{}.Entries()); diff != "" {
		t.Errorf("Entries() of zero capabilities mismatch (-want +got):\n%s", diff)
	}
}
