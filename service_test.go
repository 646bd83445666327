package uidriver

import (
	"bytes"
	"os/exec"
	"testing"
	"time"
)

func TestServiceOptions(t *testing.T) {
	var buf bytes.Buffer
	s, err := newService(exec.Command("true"), "", 4723,
		Output(&buf),
		Env("APPIUM_HOME=/tmp/appium"),
		StartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("newService returned error: %v", err)
	}

	if got, want := s.Addr(), "http://localhost:4723"; got != want {
		t.Errorf("Addr() = %q, want %q", got, want)
	}
	if s.startTimeout != 5*time.Second {
		t.Errorf("startTimeout = %v, want 5s", s.startTimeout)
	}
	if s.cmd.Stdout != &buf || s.cmd.Stderr != &buf {
		t.Error("server output is not directed at the configured writer")
	}

	found := false
	for _, v := range s.cmd.Env {
		if v == "APPIUM_HOME=/tmp/appium" {
			found = true
			break
		}
	}
	if !found {
		t.Error("configured environment variable missing from the server environment")
	}
}

func TestStartReapsUnresponsiveServer(t *testing.T) {
	s, err := newService(exec.Command("sleep", "60"), "", 41233, StartTimeout(600*time.Millisecond))
	if err != nil {
		t.Fatalf("newService returned error: %v", err)
	}
	if err := s.start(); err == nil {
		t.Fatal("start() of a server that never answers /status succeeded, want error")
	}
	// The unresponsive process must be killed and reaped, not left as a
	// zombie until the parent exits.
	if s.cmd.ProcessState == nil {
		t.Error("killed server process was not reaped")
	}
}

func TestStartTimeoutRejectsNonPositive(t *testing.T) {
	if _, err := newService(exec.Command("true"), "", 4723, StartTimeout(0)); err == nil {
		t.Error("newService with StartTimeout(0) succeeded, want error")
	}
	if _, err := newService(exec.Command("true"), "", 4723, StartTimeout(-time.Second)); err == nil {
		t.Error("newService with a negative start timeout succeeded, want error")
	}
}
