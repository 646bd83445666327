/*
Package uidriver is a client for remote UI automation endpoints speaking
the W3C WebDriver protocol with the Appium extensions. It targets hybrid
applications: one session drives both the native surface and any embedded
webviews, switching between them as contexts.

A session is created against a running endpoint (an Appium server or a
browser driver) and must be released on every exit path:

	caps := uidriver.Capabilities{}
	caps.AddAndroid(android.Capabilities{
		AppPackage:  "com.example.app",
		AppActivity: ".MainActivity",
	})

	s, err := uidriver.NewSession(caps, "")
	if err != nil {
		// handle
	}
	defer s.Quit()

Element lookup should go through WaitForElement, which polls until the
locator resolves; plain FindElement races against asynchronous UI changes:

	elem, err := s.WaitForElement(uidriver.AccessibilityID("login"), 10*time.Second)
	if err != nil {
		// handle
	}
	if err := elem.Tap(); err != nil {
		// handle
	}

Hybrid flows switch into a webview context and back; switching invalidates
every handle resolved before the switch:

	if err := s.Wait(uidriver.ContextAttached("WEBVIEW_com.example.app")); err != nil {
		// handle
	}
	if err := s.SwitchContext("WEBVIEW_com.example.app"); err != nil {
		// handle
	}
	// ... drive the page with CSS/XPath locators ...
	if err := s.SwitchContext(uidriver.NativeContext); err != nil {
		// handle
	}

Screens are modeled as Pages: an explicit table of semantic field names to
locators plus actions composed from session primitives.
*/
package uidriver
