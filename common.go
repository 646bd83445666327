package uidriver

import "github.com/golang/glog"

var debugFlag = false

// SetDebug enables logging of wire traffic between the client and the
// remote endpoint.
func SetDebug(debug bool) {
	debugFlag = debug
}

func debugLog(format string, args ...interface{}) {
	if !debugFlag {
		return
	}
	glog.Infof(format, args...)
}
