// Package app runs the kiosk: it owns the navigator and drives it from the
// encoder, the task store, the voice client and a tick source.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kiosk/hal"
	"kiosk/internal/config"
	"kiosk/kernel"
	"kiosk/kiosk/input"
	"kiosk/kiosk/model"
	"kiosk/kiosk/nav"
	"kiosk/kiosk/render"
	"kiosk/kiosk/store"
	"kiosk/kiosk/voice"
)

// NoticeKind tags a Notice.
type NoticeKind uint8

const (
	// NoticeReload asks the loop to re-read the store.
	NoticeReload NoticeKind = iota + 1
	// NoticeVoice carries a speech server reply.
	NoticeVoice
)

// Notice is a message from a background goroutine to the loop.
type Notice struct {
	Kind  NoticeKind
	Voice voice.Action
	Err   error

	seq uint64
}

// Mailbox carries notices into the loop. Any goroutine may send; only the
// loop receives.
type Mailbox = kernel.Mailbox[Notice]

// Deps are the collaborators a Kiosk does not build itself.
type Deps struct {
	Store store.Store
	// Voice is optional; voice commands stay off without it.
	Voice voice.Client
	// Now defaults to the HAL clock, or time.Now without one.
	Now func() time.Time
	// Notices defaults to a private mailbox.
	Notices *Mailbox
}

// Kiosk is the single-threaded host loop. Step must be called from one
// goroutine only.
type Kiosk struct {
	cfg     config.Config
	log     logger
	store   store.Store
	voice   voice.Client
	mic     hal.Microphone
	now     func() time.Time
	notices *Mailbox

	nav      *nav.Navigator
	input    *input.Classifier
	renderer *render.Renderer
	beeper   *beeper

	dirty     bool
	drawn     nav.RenderCommand
	day       time.Time
	idleCheck time.Time
	fault     *Fault

	completing *completion
	rec        recording
}

type completion struct {
	taskID  uint32
	started time.Time
}

// New wires a Kiosk onto h, loads the store and paints the first frame.
func New(h hal.HAL, cfg config.Config, deps Deps) (*Kiosk, error) {
	if h == nil {
		return nil, errors.New("app: nil hal")
	}
	if deps.Store == nil {
		return nil, errors.New("app: nil store")
	}
	if deps.Now == nil {
		deps.Now = time.Now
		if t := h.Time(); t != nil {
			deps.Now = t.Now
		}
	}
	if deps.Notices == nil {
		deps.Notices = new(Mailbox)
	}

	k := &Kiosk{
		cfg:     cfg,
		log:     logger{out: h.Logger()},
		store:   deps.Store,
		now:     deps.Now,
		notices: deps.Notices,
		nav:     nav.New(),
	}

	var fb hal.Framebuffer
	if d := h.Display(); d != nil {
		fb = d.Framebuffer()
	}
	k.renderer = render.New(fb)
	if err := k.renderer.Boot("Loading tasks"); err != nil {
		k.log.logf("display: %v", err)
	}

	pins := h.Encoder()
	if err := configureEncoder(pins); err != nil {
		return nil, err
	}

	if mic := h.Microphone(); mic != nil && deps.Voice != nil && cfg.VoiceEnabled() {
		k.mic = mic
		k.voice = deps.Voice
	}
	k.input = input.New(
		encoderPins{clk: pins.CLK, dt: pins.DT, sw: pins.SW},
		backlightPin{pin: pins.Backlight, log: k.log},
		input.Config{
			LongPress:    cfg.Input.LongPress.Std(),
			Debounce:     cfg.Input.Debounce.Std(),
			VoiceHold:    cfg.Input.VoiceHold.Std(),
			VoiceEnabled: k.voice != nil,
		},
		k.now,
	)

	if a := h.Audio(); a != nil {
		k.beeper = newBeeper(a.Buzzer(), k.log)
	}

	c := k.nav.Context()
	c.URL = cfg.Device.URL
	c.ScreenTimeoutEnabled = cfg.Device.ScreenTimeout
	c.VoiceAvailable = k.voice != nil

	now := k.now()
	k.day = model.Day(now)
	k.idleCheck = now
	k.reload()
	switch {
	case !cfg.Device.Provisioned:
		k.nav.SetScreen(nav.QrCode)
	case c.Counts.Total == 0:
		k.nav.SetScreen(nav.Empty)
	}
	k.log.logf("app: ready on %s (%d tasks, voice %v)", k.nav.Screen(), c.Counts.Total, k.voice != nil)

	k.dirty = true
	if err := k.draw(); err != nil {
		return nil, err
	}
	return k, nil
}

// Navigator exposes the navigation state for inspection.
func (k *Kiosk) Navigator() *nav.Navigator { return k.nav }

// Notify queues n for the next Step. It reports false when the mailbox is
// full.
func (k *Kiosk) Notify(n Notice) bool { return k.notices.TrySend(n) }

// Faulted returns the recovered panic that stopped the loop, if any.
func (k *Kiosk) Faulted() *Fault { return k.fault }

// Close stops background work. In-flight voice requests are cancelled.
func (k *Kiosk) Close() {
	k.cancelVoice()
	k.beeper.close()
}

// Step runs one scheduler tick. It never blocks on storage failures or the
// network; only display errors are returned. After a panic the fault
// screen stays up and Step does nothing.
func (k *Kiosk) Step() (err error) {
	if k.fault != nil {
		return nil
	}
	defer k.recoverFault()

	now := k.now()
	if ev := k.input.Poll(); ev != input.EventNone {
		k.handleEvent(ev, now)
	}
	k.notices.Drain(func(n Notice) { k.handleNotice(n, now) })
	k.advanceCompletion(now)
	k.advanceVoice(now)
	k.checkIdle(now)
	return k.draw()
}

func (k *Kiosk) handleEvent(ev input.Event, now time.Time) {
	from := k.nav.Screen()
	act, ok := k.nav.Dispatch(ev)
	k.dirty = true
	k.log.debugf("input: %s on %s -> %s", ev, from, k.nav.Screen())
	if ok {
		k.apply(act, now)
	}
}

func (k *Kiosk) handleNotice(n Notice, now time.Time) {
	switch n.Kind {
	case NoticeReload:
		if r, ok := k.store.(store.Reloader); ok {
			if err := r.Reload(); err != nil {
				k.log.logf("store: reload: %v", err)
				return
			}
		}
		k.reload()
		if k.nav.Screen() == nav.TaskHistory {
			k.loadHistory()
		}
	case NoticeVoice:
		k.voiceReply(n, now)
	}
	k.dirty = true
}

// reload pushes fresh counts and the task list for the active filter into
// the navigator.
func (k *Kiosk) reload() {
	ctx := context.Background()
	today := model.Day(k.now())

	counts, err := k.store.Counts(ctx, today)
	if err != nil {
		k.log.logf("store: counts: %v", err)
		return
	}
	var tasks []model.Task
	if f := k.nav.Context().Filter; f != "" {
		tasks, err = k.store.TasksByUrgency(ctx, f, today)
	} else {
		tasks, err = k.store.AllTasks(ctx, true)
	}
	if err != nil {
		k.log.logf("store: tasks: %v", err)
		return
	}
	k.nav.ReplaceCounts(counts)
	k.nav.ReplaceTasks(tasks)
	if k.nav.Screen() == nav.Empty && counts.Total > 0 {
		k.nav.SetScreen(nav.Dashboard)
	}
	k.dirty = true
}

func (k *Kiosk) loadHistory() {
	t, ok := k.nav.CurrentTask()
	if !ok {
		return
	}
	hist, err := k.store.History(context.Background(), t.ID)
	if err != nil {
		k.log.logf("store: history %d: %v", t.ID, err)
		hist = nil
	}
	k.nav.ReplaceHistory(hist)
	k.dirty = true
}

// advanceCompletion plays the Completing animation, then records the
// completion against the task captured when it started.
func (k *Kiosk) advanceCompletion(now time.Time) {
	c := k.completing
	if c == nil {
		return
	}
	if k.nav.Screen() != nav.Completing {
		k.completing = nil
		return
	}

	total := k.cfg.Timing.Completing.Std()
	p := 1.0
	if total > 0 {
		p = float64(now.Sub(c.started)) / float64(total)
	}
	if p < 1 {
		before := k.nav.Context().CompletionProgress
		k.nav.SetCompletionProgress(p)
		// Redraw in whole percent steps.
		if int(before*100) != int(k.nav.Context().CompletionProgress*100) {
			k.dirty = true
		}
		return
	}

	k.completing = nil
	if err := k.store.Complete(context.Background(), c.taskID, now); err != nil {
		k.log.logf("store: complete %d: %v", c.taskID, err)
	} else {
		k.log.logf("task: completed %d", c.taskID)
		k.beeper.play(toneDone)
	}
	k.reload()
	k.nav.CompletionDone()
	k.dirty = true
}

// checkIdle runs once per second. It turns the backlight off after the
// idle timeout and reloads when the calendar day rolls over.
func (k *Kiosk) checkIdle(now time.Time) {
	if now.Sub(k.idleCheck) < time.Second {
		return
	}
	k.idleCheck = now

	if day := model.Day(now); !day.Equal(k.day) {
		k.day = day
		k.reload()
	}

	c := k.nav.Context()
	if !c.ScreenTimeoutEnabled || !k.input.IsBacklightOn() {
		return
	}
	limit := k.cfg.Timing.IdleTimeout.Std()
	switch c.Screen {
	case nav.QrCode, nav.Empty:
		limit = k.cfg.Timing.QRIdleTimeout.Std()
	}
	if k.input.SecondsSinceActivity() > limit.Seconds() {
		k.input.SetBacklight(false)
		k.log.logf("display: backlight off after %s idle", limit)
	}
}

func (k *Kiosk) draw() error {
	if !k.dirty {
		return nil
	}
	k.dirty = false
	cmd := nav.Project(k.nav.Context(), model.Day(k.now()))
	if err := k.renderer.Draw(cmd); err != nil {
		return fmt.Errorf("render %T: %w", cmd, err)
	}
	k.drawn = cmd
	return nil
}
