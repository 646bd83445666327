package uidriver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/golang/glog"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*Service) error

// Output directs the server's stdout and stderr to the writer.
func Output(w io.Writer) ServiceOption {
	return func(s *Service) error {
		s.output = w
		return nil
	}
}

// Env appends environment variables, each in "KEY=VALUE" form, to the
// server's environment.
func Env(vars ...string) ServiceOption {
	return func(s *Service) error {
		s.env = append(s.env, vars...)
		return nil
	}
}

// StartTimeout bounds how long to poll the server's /status endpoint at
// startup before giving up. The default is 30 seconds.
func StartTimeout(d time.Duration) ServiceOption {
	return func(s *Service) error {
		if d <= 0 {
			return fmt.Errorf("start timeout must be positive, got %v", d)
		}
		s.startTimeout = d
		return nil
	}
}

// Service controls a locally-running automation server subprocess.
type Service struct {
	port int
	addr string
	cmd  *exec.Cmd

	startTimeout time.Duration
	env          []string
	output       io.Writer

	stopped bool
}

// Addr returns the base URL the server listens on, suitable for passing to
// NewSession.
func (s *Service) Addr() string {
	return s.addr
}

// NewAppiumService starts an Appium server in the background. The command
// is typically "appium"; it must be on PATH or given as an absolute path.
func NewAppiumService(command string, port int, opts ...ServiceOption) (*Service, error) {
	cmd := exec.Command(command, "--port", strconv.Itoa(port), "--base-path", "/")
	s, err := newService(cmd, "", port, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewChromeDriverService starts a ChromeDriver instance in the background,
// for driving a standalone browser or a device webview directly.
func NewChromeDriverService(path string, port int, opts ...ServiceOption) (*Service, error) {
	cmd := exec.Command(path, "--port="+strconv.Itoa(port))
	s, err := newService(cmd, "", port, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

func newService(cmd *exec.Cmd, urlPrefix string, port int, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		port:         port,
		addr:         fmt.Sprintf("http://localhost:%d%s", port, urlPrefix),
		startTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	cmd.Stdout = s.output
	cmd.Stderr = s.output
	cmd.Env = append(os.Environ(), s.env...)
	s.cmd = cmd
	return s, nil
}

func (s *Service) start() error {
	if err := s.cmd.Start(); err != nil {
		return err
	}

	deadline := time.Now().Add(s.startTimeout)
	for time.Now().Before(deadline) {
		time.Sleep(500 * time.Millisecond)
		resp, err := http.Get(s.addr + "/status")
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
	}

	if err := s.cmd.Process.Kill(); err != nil {
		glog.Warningf("killing unresponsive server on port %d: %v", s.port, err)
	}
	if err := s.cmd.Wait(); err != nil && err.Error() != "signal: killed" {
		glog.Warningf("reaping unresponsive server on port %d: %v", s.port, err)
	}
	return fmt.Errorf("server did not respond on port %d within %v", s.port, s.startTimeout)
}

// Stop shuts the server down. It is idempotent: stopping an
// already-stopped service is a no-op.
func (s *Service) Stop() error {
	if s.stopped {
		return nil
	}
	s.stopped = true

	if err := s.cmd.Process.Kill(); err != nil {
		return err
	}
	if err := s.cmd.Wait(); err != nil && err.Error() != "signal: killed" {
		return err
	}
	return nil
}
