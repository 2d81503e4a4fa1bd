// Command kioskctl edits the kiosk's task store from a shell. A running
// host kiosk picks the changes up through its store watcher.
package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/fang"

	"kiosk/internal/buildinfo"
)

func main() {
	root := newRootCmd(time.Now)
	if err := fang.Execute(context.Background(), root,
		fang.WithVersion(buildinfo.Version),
		fang.WithCommit(buildinfo.Commit),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
