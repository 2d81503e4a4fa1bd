package app

import (
	"context"
	"time"

	"kiosk/kiosk/nav"
)

// apply carries out an action token returned by the navigator. Storage
// errors are logged; the navigator has already moved on.
func (k *Kiosk) apply(act nav.Action, now time.Time) {
	k.log.debugf("nav: %s", act)
	switch act {
	case nav.ActComplete:
		t, ok := k.nav.CurrentTask()
		if !ok {
			k.nav.CompletionDone()
			return
		}
		k.completing = &completion{taskID: t.ID, started: now}

	case nav.ActDelete:
		t, ok := k.nav.CurrentTask()
		if !ok {
			return
		}
		if err := k.store.Delete(context.Background(), t.ID); err != nil {
			k.log.logf("store: delete %d: %v", t.ID, err)
		} else {
			k.log.logf("task: deleted %d %q", t.ID, t.Name)
		}
		k.reload()

	case nav.ActFilterTasks, nav.ActShowAllTasks, nav.ActGoDashboard:
		k.reload()

	case nav.ActLoadHistory:
		k.loadHistory()

	case nav.ActToggleTimeout:
		k.log.logf("display: screen timeout %v", k.nav.Context().ScreenTimeoutEnabled)

	case nav.ActShowSettings, nav.ActShowQR:

	case nav.ActVoiceStart:
		k.startVoice(now)

	case nav.ActVoiceStop:
		k.stopVoice(now)

	case nav.ActVoiceApply:
		k.applyVoice(now)
		k.reload()

	case nav.ActVoiceCancel:
		k.cancelVoice()
		k.reload()

	default:
		k.log.logf("nav: unhandled action %q", act)
	}
}
