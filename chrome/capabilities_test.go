package chrome

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCapabilitiesJSON(t *testing.T) {
	caps := Capabilities{
		Args:         []string{"--headless", "--disable-gpu"},
		DebuggerAddr: "localhost:9222",
	}
	data, err := json.Marshal(caps)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	want := map[string]interface{}{
		"args":            []interface{}{"--headless", "--disable-gpu"},
		"debuggerAddress": "localhost:9222",
		// The w3c flag is always serialized; chromedriver's default
		// changed across versions and an absent key is ambiguous.
		"w3c": false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("serialized capabilities mismatch (-want +got):\n%s", diff)
	}
}

func TestAddExtensionRejectsNonCRX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-extension.crx")
	if err := os.WriteFile(path, []byte("not a crx"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	var caps Capabilities
	if err := caps.AddExtension(path); err == nil {
		t.Error("AddExtension on a non-CRX file succeeded, want error")
	}
	if len(caps.Extensions) != 0 {
		t.Errorf("Extensions has %d entries after a failed add, want 0", len(caps.Extensions))
	}
}
