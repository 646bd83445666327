// Remote automation client. Speaks the W3C WebDriver protocol with the
// Appium extensions (contexts, orientation) over HTTP; legacy JSON wire
// replies are decoded for older endpoints.

package uidriver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/appgrid/uidriver/log"
)

const (
	// DefaultEndpoint is the address of a locally running Appium server.
	DefaultEndpoint = "http://127.0.0.1:4723"

	// jsonType is the content type of every request and reply.
	jsonType = "application/json"

	// w3cElementKey is the W3C WebDriver element identifier key.
	w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

	// legacyElementKey is the pre-W3C element identifier key.
	legacyElementKey = "ELEMENT"
)

type remoteSession struct {
	endpoint string
	caps     Capabilities
	client   *http.Client

	mu      sync.Mutex
	id      string
	context string
	// epoch counts context switches. Element handles record the epoch at
	// resolution time; a mismatch on use means the handle predates a
	// switch and is stale by definition.
	epoch uint64
}

// NewSession connects to the remote automation endpoint and starts a new
// session with the desired capabilities. An empty endpoint means
// DefaultEndpoint. The session targets the native context until
// SwitchContext is called.
//
// The caller owns the session and must release it with Quit on every exit
// path.
func NewSession(caps Capabilities, endpoint string) (Session, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	s := &remoteSession{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		caps:     caps,
		context:  NativeContext,
		client:   &http.Client{Timeout: 5 * time.Minute},
	}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

// serverReply is the common shape of endpoint replies. Legacy endpoints
// populate Status; W3C endpoints report errors inside Value.
type serverReply struct {
	SessionID *string         `json:"sessionId"`
	Status    *int            `json:"status"`
	Value     json.RawMessage `json:"value"`
}

// wireError is the W3C error payload carried in a reply value.
type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *remoteSession) requestURL(template string, args ...interface{}) string {
	return s.endpoint + fmt.Sprintf(template, args...)
}

func (s *remoteSession) execute(method, url string, data []byte) ([]byte, error) {
	debugLog("-> %s %s\n%s", method, url, data)
	request, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", jsonType)
	if data != nil {
		request.Header.Set("Content-Type", jsonType)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	buf, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	debugLog("<- %s\n%s", response.Status, buf)

	reply := new(serverReply)
	if jsonErr := json.Unmarshal(buf, reply); jsonErr != nil {
		if response.StatusCode >= 400 {
			return nil, newError(CodeUnknownError, response.Status)
		}
		return nil, jsonErr
	}

	// W3C endpoints signal failure with an error object in the value;
	// legacy endpoints use a non-zero status field.
	var we wireError
	if json.Unmarshal(reply.Value, &we) == nil && we.Error != "" {
		return nil, newError(normalizeCode(we.Error), we.Message)
	}
	if reply.Status != nil && *reply.Status != 0 {
		msg := we.Message
		if msg == "" {
			msg = extractLegacyMessage(reply.Value)
		}
		return nil, errorFromStatus(*reply.Status, msg)
	}
	if response.StatusCode >= 400 {
		return nil, newError(CodeUnknownError, response.Status)
	}
	return buf, nil
}

// extractLegacyMessage pulls a human-readable message out of a legacy
// error value, which is an arbitrary object with a "message" field.
func extractLegacyMessage(raw json.RawMessage) string {
	var v struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &v) == nil {
		return v.Message
	}
	return ""
}

func (s *remoteSession) voidCommand(urlTemplate string, params interface{}) error {
	var data []byte
	if params != nil {
		var err error
		data, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}
	_, err := s.execute("POST", s.requestURL(urlTemplate, s.ID()), data)
	return err
}

func (s *remoteSession) stringCommand(urlTemplate string) (string, error) {
	response, err := s.execute("GET", s.requestURL(urlTemplate, s.ID()), nil)
	if err != nil {
		return "", err
	}

	reply := new(struct{ Value *string })
	if err := json.Unmarshal(response, reply); err != nil {
		return "", err
	}
	if reply.Value == nil {
		return "", fmt.Errorf("nil return value")
	}
	return *reply.Value, nil
}

func (s *remoteSession) stringsCommand(urlTemplate string) ([]string, error) {
	response, err := s.execute("GET", s.requestURL(urlTemplate, s.ID()), nil)
	if err != nil {
		return nil, err
	}

	reply := new(struct{ Value []string })
	if err := json.Unmarshal(response, reply); err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (s *remoteSession) boolCommand(urlTemplate string) (bool, error) {
	response, err := s.execute("GET", s.requestURL(urlTemplate, s.ID()), nil)
	if err != nil {
		return false, err
	}

	reply := new(struct{ Value bool })
	if err := json.Unmarshal(response, reply); err != nil {
		return false, err
	}
	return reply.Value, nil
}

func (s *remoteSession) start() error {
	// Send both capability shapes; Appium and modern drivers read
	// "capabilities", Selenium 2-era servers read "desiredCapabilities".
	data, err := json.Marshal(map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": s.caps,
		},
		"desiredCapabilities": s.caps,
	})
	if err != nil {
		return err
	}

	response, err := s.execute("POST", s.requestURL("/session"), data)
	if err != nil {
		return err
	}

	reply := new(serverReply)
	if err := json.Unmarshal(response, reply); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if reply.SessionID != nil {
		s.id = *reply.SessionID
	} else {
		// W3C shape: the session id lives inside the value.
		var value struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal(reply.Value, &value); err != nil {
			return err
		}
		s.id = value.SessionID
	}
	if s.id == "" {
		return newError(CodeSessionNotCreated, "endpoint returned no session id")
	}
	return nil
}

func (s *remoteSession) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *remoteSession) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *remoteSession) Status() (*Status, error) {
	response, err := s.execute("GET", s.requestURL("/status"), nil)
	if err != nil {
		return nil, err
	}

	status := new(struct{ Value Status })
	if err := json.Unmarshal(response, status); err != nil {
		return nil, err
	}
	return &status.Value, nil
}

func (s *remoteSession) Capabilities() (Capabilities, error) {
	response, err := s.execute("GET", s.requestURL("/session/%s", s.ID()), nil)
	if err != nil {
		return nil, err
	}

	c := new(struct{ Value Capabilities })
	if err := json.Unmarshal(response, c); err != nil {
		return nil, err
	}
	return c.Value, nil
}

func (s *remoteSession) Quit() error {
	s.mu.Lock()
	if s.id == "" {
		s.mu.Unlock()
		return nil
	}
	id := s.id
	// The lease is surrendered before the wire call: even if the DELETE
	// fails, the session must not be released twice.
	s.id = ""
	s.mu.Unlock()

	_, err := s.execute("DELETE", s.requestURL("/session/%s", id), nil)
	if err != nil {
		glog.Warningf("session %s teardown failed: %v", id, err)
	}
	return err
}

// Element resolution.

func (s *remoteSession) find(loc Locator, base string, plural bool) ([]byte, error) {
	if loc.Value == "" {
		return nil, newError(CodeInvalidSelector, "empty locator value")
	}
	data, err := json.Marshal(map[string]string{
		"using": string(loc.Strategy),
		"value": loc.Value,
	})
	if err != nil {
		return nil, err
	}

	suffix := ""
	if plural {
		suffix = "s"
	}
	return s.execute("POST", s.requestURL(base+suffix, s.ID()), data)
}

// elementID decodes a wire element reference in either the W3C or the
// legacy shape.
func elementID(ref map[string]string) string {
	if id, ok := ref[w3cElementKey]; ok {
		return id
	}
	return ref[legacyElementKey]
}

func (s *remoteSession) decodeElement(data []byte) (Element, error) {
	reply := new(struct{ Value map[string]string })
	if err := json.Unmarshal(data, reply); err != nil {
		return nil, err
	}
	id := elementID(reply.Value)
	if id == "" {
		return nil, newError(CodeNoSuchElement, "endpoint returned no element reference")
	}
	return &remoteElement{session: s, id: id, epoch: s.currentEpoch()}, nil
}

func (s *remoteSession) decodeElements(data []byte) ([]Element, error) {
	reply := new(struct{ Value []map[string]string })
	if err := json.Unmarshal(data, reply); err != nil {
		return nil, err
	}

	epoch := s.currentEpoch()
	elems := make([]Element, 0, len(reply.Value))
	for _, ref := range reply.Value {
		if id := elementID(ref); id != "" {
			elems = append(elems, &remoteElement{session: s, id: id, epoch: epoch})
		}
	}
	return elems, nil
}

func (s *remoteSession) FindElement(loc Locator) (Element, error) {
	response, err := s.find(loc, "/session/%s/element", false)
	if err != nil {
		return nil, err
	}
	return s.decodeElement(response)
}

func (s *remoteSession) FindElements(loc Locator) ([]Element, error) {
	response, err := s.find(loc, "/session/%s/element", true)
	if err != nil {
		return nil, err
	}
	return s.decodeElements(response)
}

func (s *remoteSession) ActiveElement() (Element, error) {
	response, err := s.execute("GET", s.requestURL("/session/%s/element/active", s.ID()), nil)
	if err != nil {
		return nil, err
	}
	return s.decodeElement(response)
}

// Contexts.

func (s *remoteSession) Contexts() ([]string, error) {
	return s.stringsCommand("/session/%s/contexts")
}

func (s *remoteSession) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context
}

func (s *remoteSession) SwitchContext(id string) error {
	available, err := s.Contexts()
	if err != nil {
		return err
	}
	found := false
	for _, c := range available {
		if c == id {
			found = true
			break
		}
	}
	if !found {
		return newError(CodeNoSuchContext,
			fmt.Sprintf("context %q not in %v", id, available))
	}

	if err := s.voidCommand("/session/%s/context", map[string]string{"name": id}); err != nil {
		return err
	}

	s.mu.Lock()
	s.context = id
	s.epoch++
	s.mu.Unlock()
	return nil
}

// Navigation and page state.

func (s *remoteSession) Get(url string) error {
	return s.voidCommand("/session/%s/url", map[string]string{"url": url})
}

func (s *remoteSession) CurrentURL() (string, error) {
	return s.stringCommand("/session/%s/url")
}

func (s *remoteSession) Title() (string, error) {
	return s.stringCommand("/session/%s/title")
}

func (s *remoteSession) PageSource() (string, error) {
	return s.stringCommand("/session/%s/source")
}

func (s *remoteSession) Screenshot() ([]byte, error) {
	data, err := s.stringCommand("/session/%s/screenshot")
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(data)
}

// Device state.

func (s *remoteSession) Orientation() (Orientation, error) {
	o, err := s.stringCommand("/session/%s/orientation")
	if err != nil {
		return "", err
	}
	return Orientation(strings.ToUpper(o)), nil
}

func (s *remoteSession) SetOrientation(o Orientation) error {
	return s.voidCommand("/session/%s/orientation", map[string]string{
		"orientation": string(o),
	})
}

func (s *remoteSession) WindowRect() (*Rect, error) {
	response, err := s.execute("GET", s.requestURL("/session/%s/window/rect", s.ID()), nil)
	if err != nil {
		return nil, err
	}

	reply := new(struct{ Value Rect })
	if err := json.Unmarshal(response, reply); err != nil {
		return nil, err
	}
	return &reply.Value, nil
}

func (s *remoteSession) ResizeWindow(width, height int) error {
	return s.voidCommand("/session/%s/window/rect", map[string]int{
		"width":  width,
		"height": height,
	})
}

func (s *remoteSession) SetImplicitWaitTimeout(timeout time.Duration) error {
	return s.voidCommand("/session/%s/timeouts", map[string]int64{
		"implicit": timeout.Milliseconds(),
	})
}

func (s *remoteSession) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	if args == nil {
		args = make([]interface{}, 0)
	}
	data, err := json.Marshal(map[string]interface{}{
		"script": script,
		"args":   args,
	})
	if err != nil {
		return nil, err
	}

	response, err := s.execute("POST", s.requestURL("/session/%s/execute/sync", s.ID()), data)
	if err != nil {
		return nil, err
	}

	reply := new(struct{ Value interface{} })
	if err := json.Unmarshal(response, reply); err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (s *remoteSession) Log(typ log.Type) ([]log.Message, error) {
	data, err := json.Marshal(map[string]log.Type{"type": typ})
	if err != nil {
		return nil, err
	}
	response, err := s.execute("POST", s.requestURL("/session/%s/log", s.ID()), data)
	if err != nil {
		return nil, err
	}

	// The wire carries timestamps as epoch milliseconds.
	reply := new(struct {
		Value []struct {
			Timestamp int64     `json:"timestamp"`
			Level     log.Level `json:"level"`
			Message   string    `json:"message"`
		}
	})
	if err := json.Unmarshal(response, reply); err != nil {
		return nil, err
	}

	messages := make([]log.Message, len(reply.Value))
	for i, m := range reply.Value {
		messages[i] = log.Message{
			Timestamp: time.UnixMilli(m.Timestamp),
			Level:     m.Level,
			Message:   m.Message,
		}
	}
	return messages, nil
}

// Input actions.

// pointerActions wraps a single-finger action sequence into the W3C
// /actions payload.
func pointerActions(actions []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"actions": []map[string]interface{}{
			{
				"type":       "pointer",
				"id":         "finger1",
				"parameters": map[string]interface{}{"pointerType": "touch"},
				"actions":    actions,
			},
		},
	}
}

func (s *remoteSession) performActions(payload map[string]interface{}) error {
	return s.voidCommand("/session/%s/actions", payload)
}

func (s *remoteSession) Tap(x, y int) error {
	return s.performActions(pointerActions([]map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": x, "y": y, "origin": "viewport"},
		{"type": "pointerDown", "button": 0},
		{"type": "pause", "duration": 50},
		{"type": "pointerUp", "button": 0},
	}))
}

// remoteElement is a lease on a remote UI element. The epoch pins the
// handle to the context it was resolved in.
type remoteElement struct {
	session *remoteSession
	id      string
	epoch   uint64
}

// live fails with ErrStaleElement when the handle predates a context
// switch or the owning session has been released.
func (e *remoteElement) live() error {
	if e.session.ID() == "" {
		return newError(CodeStaleElement, "session has been released")
	}
	if e.session.currentEpoch() != e.epoch {
		return newError(CodeStaleElement, "handle predates a context switch")
	}
	return nil
}

func (e *remoteElement) voidCommand(suffix string, params interface{}) error {
	if err := e.live(); err != nil {
		return err
	}
	return e.session.voidCommand(fmt.Sprintf("/session/%%s/element/%s%s", e.id, suffix), params)
}

func (e *remoteElement) stringCommand(suffix string) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return e.session.stringCommand(fmt.Sprintf("/session/%%s/element/%s%s", e.id, suffix))
}

func (e *remoteElement) boolCommand(suffix string) (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	return e.session.boolCommand(fmt.Sprintf("/session/%%s/element/%s%s", e.id, suffix))
}

func (e *remoteElement) Click() error {
	return e.voidCommand("/click", nil)
}

func (e *remoteElement) SendKeys(text string) error {
	// W3C takes the whole string under "text"; legacy endpoints take a
	// split "value" array. Send both.
	chars := make([]string, 0, len(text))
	for _, c := range text {
		chars = append(chars, string(c))
	}
	return e.voidCommand("/value", map[string]interface{}{
		"text":  text,
		"value": chars,
	})
}

func (e *remoteElement) Clear() error {
	return e.voidCommand("/clear", nil)
}

func (e *remoteElement) Submit() error {
	return e.voidCommand("/submit", nil)
}

func (e *remoteElement) Text() (string, error) {
	return e.stringCommand("/text")
}

func (e *remoteElement) TagName() (string, error) {
	return e.stringCommand("/name")
}

func (e *remoteElement) Attribute(name string) (string, bool, error) {
	if err := e.live(); err != nil {
		return "", false, err
	}
	url := e.session.requestURL("/session/%s/element/%s/attribute/%s", e.session.ID(), e.id, name)
	response, err := e.session.execute("GET", url, nil)
	if err != nil {
		return "", false, err
	}

	// A null value means the attribute is absent, which is distinct from
	// an attribute with an empty value.
	reply := new(struct{ Value *string })
	if err := json.Unmarshal(response, reply); err != nil {
		return "", false, err
	}
	if reply.Value == nil {
		return "", false, nil
	}
	return *reply.Value, true, nil
}

func (e *remoteElement) CSSProperty(name string) (string, error) {
	return e.stringCommand("/css/" + name)
}

func (e *remoteElement) IsDisplayed() (bool, error) {
	return e.boolCommand("/displayed")
}

func (e *remoteElement) IsEnabled() (bool, error) {
	return e.boolCommand("/enabled")
}

func (e *remoteElement) IsSelected() (bool, error) {
	return e.boolCommand("/selected")
}

func (e *remoteElement) Rect() (*Rect, error) {
	if err := e.live(); err != nil {
		return nil, err
	}
	url := e.session.requestURL("/session/%s/element/%s/rect", e.session.ID(), e.id)
	response, err := e.session.execute("GET", url, nil)
	if err != nil {
		return nil, err
	}

	reply := new(struct{ Value Rect })
	if err := json.Unmarshal(response, reply); err != nil {
		return nil, err
	}
	return &reply.Value, nil
}

func (e *remoteElement) FindElement(loc Locator) (Element, error) {
	if err := e.live(); err != nil {
		return nil, err
	}
	response, err := e.session.find(loc, fmt.Sprintf("/session/%%s/element/%s/element", e.id), false)
	if err != nil {
		return nil, err
	}
	return e.session.decodeElement(response)
}

func (e *remoteElement) FindElements(loc Locator) ([]Element, error) {
	if err := e.live(); err != nil {
		return nil, err
	}
	response, err := e.session.find(loc, fmt.Sprintf("/session/%%s/element/%s/element", e.id), true)
	if err != nil {
		return nil, err
	}
	return e.session.decodeElements(response)
}

func (e *remoteElement) Tap() error {
	if err := e.live(); err != nil {
		return err
	}
	return e.session.performActions(pointerActions([]map[string]interface{}{
		{
			"type":     "pointerMove",
			"duration": 0,
			"x":        0,
			"y":        0,
			"origin":   map[string]interface{}{w3cElementKey: e.id},
		},
		{"type": "pointerDown", "button": 0},
		{"type": "pause", "duration": 50},
		{"type": "pointerUp", "button": 0},
	}))
}

// MarshalJSON encodes the element as a wire reference, so handles can be
// passed as script arguments.
func (e *remoteElement) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		w3cElementKey:    e.id,
		legacyElementKey: e.id,
	})
}
