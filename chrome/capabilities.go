// Package chrome provides options for the chromedriver process that backs
// webview contexts, and for driving a standalone Chrome directly.
package chrome

import (
	"fmt"

	crx3 "github.com/mediabuyerbot/go-crx3"
)

// CapabilitiesKey is the key in the top-level capabilities map under which
// chromedriver expects its options.
const CapabilitiesKey = "goog:chromeOptions"

// Capabilities defines the Chrome-specific desired capabilities. Store an
// instance in the session capabilities under CapabilitiesKey, or via
// Capabilities.AddChrome in the root package.
type Capabilities struct {
	// Path is the file path to the Chrome binary to use.
	Path string `json:"binary,omitempty"`
	// Args are command-line arguments passed to the Chrome binary in
	// addition to the chromedriver-supplied ones.
	Args []string `json:"args,omitempty"`
	// Extensions are base64-encoded packed extensions (.crx) to install
	// at startup. Use AddExtension to append a local file.
	Extensions []string `json:"extensions,omitempty"`
	// Prefs are applied to the preferences of the user profile in use.
	Prefs map[string]interface{} `json:"prefs,omitempty"`
	// DebuggerAddr attaches chromedriver to an already-running Chrome or
	// WebView debugger at host:port instead of launching a browser.
	DebuggerAddr string `json:"debuggerAddress,omitempty"`
	// AndroidPackage names the app whose WebView chromedriver should
	// attach to when driving a device directly.
	AndroidPackage string `json:"androidPackage,omitempty"`
	// W3C selects the W3C-compliant wire dialect. Chrome 75+ defaults to
	// it; older versions need this set explicitly.
	W3C bool `json:"w3c"`
}

// AddExtension reads an already-packed .crx file and appends its base64
// encoding to Extensions.
func (c *Capabilities) AddExtension(path string) error {
	ext := crx3.Extension(path)
	if !ext.IsCRX3() {
		return fmt.Errorf("%s is not a CRX3 extension", path)
	}
	encoded, err := ext.Base64()
	if err != nil {
		return err
	}
	c.Extensions = append(c.Extensions, string(encoded))
	return nil
}
