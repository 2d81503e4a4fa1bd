package app

import (
	"fmt"
	"strings"
)

// Fault is a panic recovered from Step.
type Fault struct {
	Value any
	Stack []byte
}

func (f *Fault) Error() string { return fmt.Sprintf("kiosk fault: %v", f.Value) }

// recoverFault logs a panic, paints it on the display and parks the loop.
func (k *Kiosk) recoverFault() {
	v := recover()
	if v == nil {
		return
	}
	f := &Fault{Value: v, Stack: captureStack()}
	k.fault = f

	k.log.logf("Kiosk Panic: panic=%v", v)
	for _, line := range strings.Split(string(f.Stack), "\n") {
		if line == "" {
			continue
		}
		k.log.logf("%s", line)
	}

	k.Close()
	if err := k.renderer.Fault(v, f.Stack); err != nil {
		k.log.logf("display: %v", err)
	}
}
