package uidriver_test

import (
	"fmt"
	"os"
	"time"

	"github.com/appgrid/uidriver"
	"github.com/appgrid/uidriver/android"
)

// This example starts a local Appium server, drives the login screen of a
// hybrid Android app, follows the app into its webview, and reads the
// resulting page title. It requires a running emulator and the appium
// command on PATH, so it has no verifiable output.
func Example() {
	const webview = "WEBVIEW_com.example.app"

	service, err := uidriver.NewAppiumService("appium", 4723, uidriver.Output(os.Stderr))
	if err != nil {
		panic(err)
	}
	defer service.Stop()

	caps := uidriver.Capabilities{}
	caps.AddAndroid(android.Capabilities{
		DeviceName:  "Android Emulator",
		AppPackage:  "com.example.app",
		AppActivity: ".MainActivity",
	})

	session, err := uidriver.NewSession(caps, service.Addr())
	if err != nil {
		panic(err)
	}
	defer session.Quit()

	login := uidriver.NewPage(session, "login", map[string]uidriver.Locator{
		"username": uidriver.ID("com.example.app:id/username"),
		"password": uidriver.ID("com.example.app:id/password"),
		"submit":   uidriver.AccessibilityID("log in"),
	})
	if err := login.Fill(map[string]string{
		"username": "gopher",
		"password": "hunter2",
	}, "submit"); err != nil {
		panic(err)
	}

	// Logging in opens the embedded dashboard; wait for its webview to
	// attach before switching.
	if err := session.WaitWithTimeout(uidriver.ContextAttached(webview), 30*time.Second); err != nil {
		panic(err)
	}
	if err := session.SwitchContext(webview); err != nil {
		panic(err)
	}

	title, err := session.Title()
	if err != nil {
		panic(err)
	}
	fmt.Println(title)

	if err := session.SwitchContext(uidriver.NativeContext); err != nil {
		panic(err)
	}
}
