// Package mockdriver provides an in-process W3C WebDriver endpoint with
// the Appium context extensions, backed by httptest. Package tests drive
// the client against it instead of a real device.
//
// The package deliberately speaks raw wire strings rather than importing
// the client, so both the client's requests and its decoding are exercised
// end to end.
package mockdriver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// NativeContext mirrors the identifier reported by Appium servers.
const NativeContext = "NATIVE_APP"

const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Element is a fake UI element registered with the server.
type Element struct {
	Text       string
	TagName    string
	Attributes map[string]string
	CSS        map[string]string
	Displayed  bool
	Enabled    bool
	Selected   bool
	Rect       [4]int // x, y, width, height

	// AppearAfterFinds hides the element until it has been looked up
	// that many times, to exercise wait loops.
	AppearAfterFinds int

	id       string
	context  string
	strategy string
	value    string
	finds    int
	clicks   int
	typed    []string
	cleared  int
}

// LogEntry is a fake remote log message.
type LogEntry struct {
	Timestamp int64  `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Server is a fake automation endpoint.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	nextID      int
	sessionID   string
	active      bool
	quitCount   int
	contexts    []string
	current     string
	elements    []*Element
	sessionCaps map[string]interface{}

	title       string
	url         string
	source      string
	screenshot  []byte
	orientation string
	// NoOrientation and NoResize make the respective commands fail with
	// "unsupported operation", like endpoints that cannot simulate them.
	NoOrientation bool
	NoResize      bool
	windowRect    [4]int
	logs          map[string][]LogEntry
	scriptResult  interface{}
	actionCount   int
}

// New starts a mock endpoint with only the native context attached.
func New() *Server {
	s := &Server{
		contexts:    []string{NativeContext},
		current:     NativeContext,
		orientation: "PORTRAIT",
		windowRect:  [4]int{0, 0, 1080, 1920},
		screenshot:  []byte("\x89PNG fake"),
		logs:        make(map[string][]LogEntry),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the endpoint address for NewSession.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the underlying HTTP server down.
func (s *Server) Close() { s.srv.Close() }

// AddContext attaches a context, e.g. a webview starting up.
func (s *Server) AddContext(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = append(s.contexts, id)
}

// AddElement registers an element findable by (strategy, value) in the
// given context and returns it for later inspection.
func (s *Server) AddElement(context, strategy, value string, el *Element) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	el.id = fmt.Sprintf("elem-%d", s.nextID)
	el.context = context
	el.strategy = strategy
	el.value = value
	s.elements = append(s.elements, el)
	return el
}

// SetPage configures the webview page state reported by the server.
func (s *Server) SetPage(url, title, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url, s.title, s.source = url, title, source
}

// SetTitle updates the reported page title.
func (s *Server) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// SetLog seeds remote log entries for a log type.
func (s *Server) SetLog(typ string, entries []LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[typ] = entries
}

// SetScriptResult sets the value returned by execute/sync.
func (s *Server) SetScriptResult(v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scriptResult = v
}

// QuitCount reports how many times the session was deleted.
func (s *Server) QuitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quitCount
}

// CurrentContext reports the context lookups currently target.
func (s *Server) CurrentContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ActionCount reports how many W3C action sequences were performed.
func (s *Server) ActionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionCount
}

// Finds reports how many times the element was looked up.
func (el *Element) Finds() int { return el.finds }

// Clicks reports how many times the element was clicked.
func (el *Element) Clicks() int { return el.clicks }

// Typed returns the texts sent to the element, in order.
func (el *Element) Typed() []string { return append([]string(nil), el.typed...) }

// Cleared reports how many times the element was cleared.
func (el *Element) Cleared() int { return el.cleared }

// SessionCaps returns the alwaysMatch capabilities of the last session
// request.
func (s *Server) SessionCaps() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionCaps
}

// Wire helpers.

func reply(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"value": value})
}

func replyError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"value": map[string]string{"error": code, "message": message},
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "status":
		reply(w, map[string]interface{}{
			"ready":   true,
			"message": "mockdriver ready",
			"build":   map[string]string{"version": "1.0.0-mock"},
		})
		return
	case path == "session" && r.Method == "POST":
		s.startSession(w, r)
		return
	}

	if len(parts) < 2 || parts[0] != "session" {
		replyError(w, http.StatusNotFound, "unknown command", r.URL.Path)
		return
	}
	if !s.active || parts[1] != s.sessionID {
		replyError(w, http.StatusNotFound, "invalid session id", parts[1])
		return
	}

	if len(parts) == 2 {
		switch r.Method {
		case "DELETE":
			s.active = false
			s.quitCount++
			reply(w, nil)
		case "GET":
			reply(w, s.sessionCaps)
		}
		return
	}

	rest := parts[2:]
	switch {
	case rest[0] == "element" && len(rest) == 1 && r.Method == "POST":
		s.findIn(w, r, "", false)
	case rest[0] == "elements" && len(rest) == 1:
		s.findIn(w, r, "", true)
	case rest[0] == "element" && len(rest) == 2 && rest[1] == "active":
		s.activeElement(w)
	case rest[0] == "element" && len(rest) >= 3:
		s.elementCommand(w, r, rest[1], rest[2:])
	case rest[0] == "contexts":
		reply(w, s.contexts)
	case rest[0] == "context" && r.Method == "POST":
		s.switchContext(w, r)
	case rest[0] == "url" && r.Method == "GET":
		reply(w, s.url)
	case rest[0] == "url" && r.Method == "POST":
		var body struct {
			URL string `json:"url"`
		}
		decodeBody(r, &body)
		s.url = body.URL
		reply(w, nil)
	case rest[0] == "title":
		reply(w, s.title)
	case rest[0] == "source":
		reply(w, s.source)
	case rest[0] == "screenshot":
		reply(w, base64.StdEncoding.EncodeToString(s.screenshot))
	case rest[0] == "orientation" && r.Method == "GET":
		if s.NoOrientation {
			replyError(w, http.StatusBadRequest, "unsupported operation", "orientation is not supported")
			return
		}
		reply(w, s.orientation)
	case rest[0] == "orientation" && r.Method == "POST":
		if s.NoOrientation {
			replyError(w, http.StatusBadRequest, "unsupported operation", "orientation is not supported")
			return
		}
		var body struct {
			Orientation string `json:"orientation"`
		}
		decodeBody(r, &body)
		s.orientation = body.Orientation
		reply(w, nil)
	case rest[0] == "window" && len(rest) == 2 && rest[1] == "rect" && r.Method == "GET":
		reply(w, map[string]int{
			"x": s.windowRect[0], "y": s.windowRect[1],
			"width": s.windowRect[2], "height": s.windowRect[3],
		})
	case rest[0] == "window" && len(rest) == 2 && rest[1] == "rect" && r.Method == "POST":
		if s.NoResize {
			replyError(w, http.StatusBadRequest, "unsupported operation", "resize is not supported")
			return
		}
		var body struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		}
		decodeBody(r, &body)
		s.windowRect[2], s.windowRect[3] = body.Width, body.Height
		reply(w, nil)
	case rest[0] == "timeouts":
		reply(w, nil)
	case rest[0] == "execute" && len(rest) == 2 && rest[1] == "sync":
		reply(w, s.scriptResult)
	case rest[0] == "log":
		var body struct {
			Type string `json:"type"`
		}
		decodeBody(r, &body)
		reply(w, s.logs[body.Type])
	case rest[0] == "actions":
		s.actionCount++
		reply(w, nil)
	default:
		replyError(w, http.StatusNotFound, "unknown command", r.URL.Path)
	}
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Capabilities struct {
			AlwaysMatch map[string]interface{} `json:"alwaysMatch"`
		} `json:"capabilities"`
	}
	if err := decodeBody(r, &body); err != nil {
		replyError(w, http.StatusBadRequest, "session not created", err.Error())
		return
	}
	if s.active {
		replyError(w, http.StatusInternalServerError, "session not created", "session already active")
		return
	}
	s.nextID++
	s.sessionID = fmt.Sprintf("mock-session-%d", s.nextID)
	s.active = true
	s.sessionCaps = body.Capabilities.AlwaysMatch
	s.current = NativeContext
	reply(w, map[string]interface{}{
		"sessionId":    s.sessionID,
		"capabilities": s.sessionCaps,
	})
}

func (s *Server) switchContext(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	decodeBody(r, &body)
	for _, c := range s.contexts {
		if c == body.Name {
			s.current = c
			reply(w, nil)
			return
		}
	}
	replyError(w, http.StatusNotFound, "no such context", body.Name)
}

// lookup returns the visible elements matching (strategy, value) in the
// current context, counting the attempt against AppearAfterFinds.
func (s *Server) lookup(strategy, value string) []*Element {
	var matched []*Element
	for _, el := range s.elements {
		if el.context != s.current || el.strategy != strategy || el.value != value {
			continue
		}
		el.finds++
		if el.finds <= el.AppearAfterFinds {
			continue
		}
		matched = append(matched, el)
	}
	return matched
}

func elementRef(el *Element) map[string]string {
	return map[string]string{w3cElementKey: el.id}
}

func (s *Server) findIn(w http.ResponseWriter, r *http.Request, scope string, plural bool) {
	var body struct {
		Using string `json:"using"`
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		replyError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}
	// Scoped lookups resolve against the same table; the mock does not
	// model subtrees.
	matched := s.lookup(body.Using, body.Value)

	if plural {
		refs := make([]map[string]string, len(matched))
		for i, el := range matched {
			refs[i] = elementRef(el)
		}
		reply(w, refs)
		return
	}
	if len(matched) == 0 {
		replyError(w, http.StatusNotFound, "no such element",
			fmt.Sprintf("no element matching %s=%s", body.Using, body.Value))
		return
	}
	reply(w, elementRef(matched[0]))
}

func (s *Server) activeElement(w http.ResponseWriter) {
	for _, el := range s.elements {
		if el.context == s.current {
			reply(w, elementRef(el))
			return
		}
	}
	replyError(w, http.StatusNotFound, "no such element", "no active element")
}

func (s *Server) elementByID(id string) *Element {
	for _, el := range s.elements {
		if el.id == id && el.context == s.current {
			return el
		}
	}
	return nil
}

func (s *Server) elementCommand(w http.ResponseWriter, r *http.Request, id string, rest []string) {
	el := s.elementByID(id)
	if el == nil {
		replyError(w, http.StatusNotFound, "stale element reference", id)
		return
	}

	switch {
	case rest[0] == "element":
		s.findIn(w, r, id, false)
	case rest[0] == "elements":
		s.findIn(w, r, id, true)
	case rest[0] == "click":
		if !el.Enabled {
			replyError(w, http.StatusBadRequest, "element not interactable", id)
			return
		}
		el.clicks++
		reply(w, nil)
	case rest[0] == "value":
		var body struct {
			Text string `json:"text"`
		}
		decodeBody(r, &body)
		el.typed = append(el.typed, body.Text)
		reply(w, nil)
	case rest[0] == "clear":
		el.cleared++
		reply(w, nil)
	case rest[0] == "submit":
		reply(w, nil)
	case rest[0] == "text":
		reply(w, el.Text)
	case rest[0] == "name":
		reply(w, el.TagName)
	case rest[0] == "attribute" && len(rest) == 2:
		if v, ok := el.Attributes[rest[1]]; ok {
			reply(w, v)
		} else {
			reply(w, nil)
		}
	case rest[0] == "css" && len(rest) == 2:
		reply(w, el.CSS[rest[1]])
	case rest[0] == "displayed":
		reply(w, el.Displayed)
	case rest[0] == "enabled":
		reply(w, el.Enabled)
	case rest[0] == "selected":
		reply(w, el.Selected)
	case rest[0] == "rect":
		reply(w, map[string]int{
			"x": el.Rect[0], "y": el.Rect[1],
			"width": el.Rect[2], "height": el.Rect[3],
		})
	default:
		replyError(w, http.StatusNotFound, "unknown command", strings.Join(rest, "/"))
	}
}
