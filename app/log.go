package app

import (
	"fmt"

	"kiosk/hal"
)

// logger prefixes lines in the "component: message" style. A nil hal
// logger drops everything.
type logger struct {
	out hal.Logger
}

func (l logger) logf(format string, args ...any) {
	if l.out == nil {
		return
	}
	l.out.WriteLineString(fmt.Sprintf(format, args...))
}

// debugf goes to the verbose stream when the logger has one, and is
// dropped otherwise.
func (l logger) debugf(format string, args ...any) {
	d, ok := l.out.(hal.DebugLogger)
	if !ok {
		return
	}
	d.WriteDebugString(fmt.Sprintf(format, args...))
}
