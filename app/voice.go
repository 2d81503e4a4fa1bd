package app

import (
	"context"
	"time"

	"kiosk/kiosk/model"
	"kiosk/kiosk/nav"
	"kiosk/kiosk/store"
	"kiosk/kiosk/voice"
)

// recording tracks one voice command from the hold to the applied result.
type recording struct {
	active  bool
	started time.Time
	tenths  int

	// seq identifies the request whose reply is still wanted.
	seq    uint64
	cancel context.CancelFunc

	pending *voice.Action
	shownAt time.Time
}

func (k *Kiosk) startVoice(now time.Time) {
	if k.mic == nil {
		k.nav.DismissVoice()
		return
	}
	k.cancelVoice()
	if err := k.mic.Start(k.cfg.Voice.SampleRate); err != nil {
		k.log.logf("voice: mic: %v", err)
		k.nav.DismissVoice()
		return
	}
	k.rec.active = true
	k.rec.started = now
	k.rec.tenths = 0
	k.beeper.play(toneListen)
	k.log.logf("voice: recording")
}

// stopVoice ends the recording and uploads it in the background. The reply
// comes back through the mailbox.
func (k *Kiosk) stopVoice(now time.Time) {
	if !k.rec.active {
		k.nav.DismissVoice()
		return
	}
	k.rec.active = false
	samples, err := k.mic.Stop()
	if err != nil {
		k.log.logf("voice: mic: %v", err)
		k.nav.DismissVoice()
		return
	}
	rate := k.cfg.Voice.SampleRate
	k.log.logf("voice: uploading %.1fs", float64(len(samples))/float64(rate))

	tasks, err := k.store.AllTasks(context.Background(), false)
	if err != nil {
		k.log.logf("store: tasks: %v", err)
	}
	wav := voice.EncodeWAV(samples, rate)
	taskContext := voice.BuildTaskContext(tasks)

	k.rec.seq++
	seq := k.rec.seq
	ctx, cancel := context.WithTimeout(context.Background(), k.cfg.Voice.Timeout.Std())
	k.rec.cancel = cancel
	client, notices := k.voice, k.notices
	go func() {
		defer cancel()
		a, err := client.Submit(ctx, wav, taskContext)
		notices.Send(Notice{Kind: NoticeVoice, Voice: a, Err: err, seq: seq})
	}()
}

// cancelVoice drops any recording, request or unanswered result.
func (k *Kiosk) cancelVoice() {
	if k.rec.active {
		k.rec.active = false
		if _, err := k.mic.Stop(); err != nil {
			k.log.logf("voice: mic: %v", err)
		}
	}
	if k.rec.cancel != nil {
		k.rec.cancel()
		k.rec.cancel = nil
	}
	k.rec.seq++
	k.rec.pending = nil
}

func (k *Kiosk) voiceReply(n Notice, now time.Time) {
	if n.seq != k.rec.seq || k.nav.Screen() != nav.VoiceProcessing {
		return
	}
	k.rec.cancel = nil
	k.rec.shownAt = now
	if n.Err != nil {
		k.log.logf("voice: %v", n.Err)
		k.rec.pending = nil
		k.nav.ShowVoiceResult("Error: " + n.Err.Error())
		return
	}
	a := n.Voice
	k.log.logf("voice: %s %q", a.Kind, a.TaskName)
	k.rec.pending = &a
	k.nav.ShowVoiceResult(a.Summary())
}

// advanceVoice updates the recording clock, stops recordings that run too
// long and dismisses results nobody answered.
func (k *Kiosk) advanceVoice(now time.Time) {
	switch k.nav.Screen() {
	case nav.VoiceListening:
		if !k.rec.active {
			return
		}
		elapsed := now.Sub(k.rec.started)
		k.nav.SetVoiceElapsed(elapsed.Seconds())
		if t := int(elapsed / (100 * time.Millisecond)); t != k.rec.tenths {
			k.rec.tenths = t
			k.dirty = true
		}
		if elapsed >= k.cfg.Voice.MaxRecording.Std() {
			if act, ok := k.nav.VoiceHoldStop(); ok {
				k.dirty = true
				k.apply(act, now)
			}
		}
	case nav.VoiceResult:
		if now.Sub(k.rec.shownAt) >= k.cfg.Timing.VoiceResult.Std() {
			k.log.logf("voice: result dismissed")
			k.nav.DismissVoice()
			k.cancelVoice()
			k.reload()
		}
	}
}

// applyVoice carries out the confirmed command.
func (k *Kiosk) applyVoice(now time.Time) {
	a := k.rec.pending
	k.rec.pending = nil
	if a == nil {
		return
	}
	ctx := context.Background()

	var err error
	switch a.Kind {
	case voice.KindCreate:
		if a.TaskName == "" {
			break
		}
		typ, n := a.Recurrence()
		var t model.Task
		t, err = k.store.Create(ctx, store.NewTask{
			Name:            a.TaskName,
			Recurrence:      typ,
			RecurrenceValue: n,
			NextDue:         model.Day(now).AddDate(0, 0, a.DueInDays()),
		}, now)
		if err == nil {
			k.log.logf("task: created %d %q", t.ID, t.Name)
		}
	case voice.KindUpdate:
		if a.TaskID == nil {
			break
		}
		var p store.TaskPatch
		if a.TaskName != "" {
			p.Name = &a.TaskName
		}
		if a.RecurrenceDays != nil {
			typ, n := a.Recurrence()
			p.Recurrence, p.RecurrenceValue = &typ, &n
		}
		_, err = k.store.Update(ctx, *a.TaskID, p, now)
	case voice.KindComplete:
		if a.TaskID != nil {
			err = k.store.Complete(ctx, *a.TaskID, now)
		}
	case voice.KindDelete:
		if a.TaskID != nil {
			err = k.store.Delete(ctx, *a.TaskID)
		}
	}
	if err != nil {
		k.log.logf("voice: apply %s: %v", a.Kind, err)
	}
}
