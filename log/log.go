// Package log provides types for configuring and reading remote logs.
package log

import "time"

// Type represents a remote component capable of logging.
type Type string

// The log types exposed by Appium servers and browser drivers. Not every
// endpoint supports every type; configure the ones needed in the session
// capabilities.
const (
	Server      Type = "server"
	Driver      Type = "driver"
	Client      Type = "client"
	Browser     Type = "browser"
	Logcat      Type = "logcat"
	Syslog      Type = "syslog"
	Crashlog    Type = "crashlog"
	Performance Type = "performance"
)

// Level represents a logging level of a remote component.
type Level string

// The valid log levels.
const (
	Off     Level = "OFF"
	Severe  Level = "SEVERE"
	Warning Level = "WARNING"
	Info    Level = "INFO"
	Debug   Level = "DEBUG"
	All     Level = "ALL"
)

// CapabilitiesKey is the key for the logging preferences entry in the
// capabilities map.
const CapabilitiesKey = "goog:loggingPrefs"

// Capabilities is the map to include in the session capabilities to
// configure log collection.
type Capabilities map[Type]Level

// Message is a log message returned from the Log method.
type Message struct {
	Timestamp time.Time
	Level     Level
	Message   string
}
