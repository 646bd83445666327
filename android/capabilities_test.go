package android

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEntries(t *testing.T) {
	caps := Capabilities{
		DeviceName:             "Android Emulator",
		App:                    "/apps/example.apk",
		AppPackage:             "com.example.app",
		AppActivity:            ".MainActivity",
		NoReset:                true,
		AutoGrantPermissions:   true,
		ChromedriverExecutable: "/drivers/chromedriver",
		NewCommandTimeout:      120,
	}
	want := map[string]interface{}{
		"platformName":                  "Android",
		"appium:automationName":         "UiAutomator2",
		"appium:deviceName":             "Android Emulator",
		"appium:app":                    "/apps/example.apk",
		"appium:appPackage":             "com.example.app",
		"appium:appActivity":            ".MainActivity",
		"appium:noReset":                true,
		"appium:autoGrantPermissions":   true,
		"appium:chromedriverExecutable": "/drivers/chromedriver",
		"appium:newCommandTimeout":      120,
	}
	if diff := cmp.Diff(want, caps.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestEntriesOmitsZeroValues(t *testing.T) {
	want := map[string]interface{}{
		"platformName":          "Android",
		"appium:automationName": "UiAutomator2",
	}
	if diff := cmp.Diff(want, Capabilities{}.Entries()); diff != "" {
		t.Errorf("Entries() of zero capabilities mismatch (-want +got):\n%s", diff)
	}
}
