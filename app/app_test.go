package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"kiosk/hal"
	"kiosk/internal/config"
	"kiosk/kiosk/model"
	"kiosk/kiosk/nav"
	"kiosk/kiosk/store"
	"kiosk/kiosk/voice"
)

var start = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type lineLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineLog) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}
func (l *lineLog) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *lineLog) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type fbDisplay struct{ fb hal.Framebuffer }

func (d fbDisplay) Framebuffer() hal.Framebuffer { return d.fb }

type fakeMic struct {
	mu      sync.Mutex
	rate    uint32
	running bool
	starts  int
}

func (m *fakeMic) Start(rate uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("already recording")
	}
	m.running, m.rate = true, rate
	m.starts++
	return nil
}

func (m *fakeMic) Stop() ([]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil, errors.New("not recording")
	}
	m.running = false
	return make([]int16, m.rate/10), nil
}

type testHAL struct {
	enc *hal.VirtualEncoder
	fb  *hal.MemFramebuffer
	mic *fakeMic
	log *lineLog
}

func (h *testHAL) Logger() hal.Logger         { return h.log }
func (h *testHAL) Display() hal.Display       { return fbDisplay{fb: h.fb} }
func (h *testHAL) Encoder() hal.EncoderPins   { return h.enc.Pins() }
func (h *testHAL) Time() hal.Time             { return nil }
func (h *testHAL) Audio() hal.Audio           { return nil }
func (h *testHAL) Microphone() hal.Microphone { return h.mic }

type fakeVoice struct {
	mu      sync.Mutex
	reply   voice.Action
	err     error
	wav     []byte
	context string
}

func (v *fakeVoice) Submit(_ context.Context, wav []byte, taskContext string) (voice.Action, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wav, v.context = wav, taskContext
	return v.reply, v.err
}

type rig struct {
	t     *testing.T
	h     *testHAL
	now   time.Time
	store store.Store
	k     *Kiosk
}

func testConfig() config.Config {
	cfg := config.Default("")
	cfg.Store.Backend = config.StoreMemory
	return cfg
}

func newRig(t *testing.T, cfg config.Config, s store.Store, v voice.Client) *rig {
	t.Helper()
	if s == nil {
		s = store.NewMemory()
	}
	r := &rig{
		t: t,
		h: &testHAL{
			enc: hal.NewVirtualEncoder(),
			fb:  hal.NewMemFramebuffer(hal.DisplayWidth, hal.DisplayHeight),
			mic: &fakeMic{},
			log: &lineLog{},
		},
		now:   start,
		store: s,
	}
	k, err := New(r.h, cfg, Deps{Store: s, Voice: v, Now: func() time.Time { return r.now }})
	require.NoError(t, err)
	t.Cleanup(k.Close)
	r.k = k
	return r
}

func seed(t *testing.T, s store.Store, name string, typ model.RecurrenceType, every uint32, dueOffset int) model.Task {
	t.Helper()
	task, err := s.Create(context.Background(), store.NewTask{
		Name:            name,
		Recurrence:      typ,
		RecurrenceValue: every,
		NextDue:         model.Day(start).AddDate(0, 0, dueOffset),
	}, start)
	require.NoError(t, err)
	return task
}

func (r *rig) step(n int) {
	r.t.Helper()
	for i := 0; i < n; i++ {
		r.h.enc.Advance()
		r.now = r.now.Add(time.Millisecond)
		require.NoError(r.t, r.k.Step())
	}
}

func (r *rig) wait(d time.Duration) {
	r.t.Helper()
	r.now = r.now.Add(d)
	r.step(1)
}

func (r *rig) rotate(detents int) {
	r.t.Helper()
	r.h.enc.Rotate(detents)
	for r.h.enc.Pending() > 0 {
		r.step(1)
	}
	r.step(1)
}

func (r *rig) hold(d time.Duration) {
	r.t.Helper()
	r.now = r.now.Add(250 * time.Millisecond)
	r.h.enc.SetButton(true)
	r.step(1)
	r.now = r.now.Add(d)
	r.step(1)
	r.h.enc.SetButton(false)
	r.step(1)
}

func (r *rig) click()     { r.hold(50 * time.Millisecond) }
func (r *rig) longClick() { r.hold(600 * time.Millisecond) }

func (r *rig) screen() nav.Screen { return r.k.Navigator().Screen() }

// redrawn checks that a frame was presented after mark and that it shows
// the current navigation state.
func (r *rig) redrawn(mark uint64) nav.RenderCommand {
	r.t.Helper()
	require.Greater(r.t, r.h.fb.Frames(), mark, "no frame presented")
	want := nav.Project(r.k.Navigator().Context(), model.Day(r.now))
	if diff := cmp.Diff(want, r.k.drawn); diff != "" {
		r.t.Fatalf("drawn frame mismatch (-want +got):\n%s", diff)
	}
	return r.k.drawn
}

func TestInitialScreen(t *testing.T) {
	t.Run("unprovisioned", func(t *testing.T) {
		cfg := testConfig()
		cfg.Device.Provisioned = false
		r := newRig(t, cfg, nil, nil)
		require.Equal(t, nav.QrCode, r.screen())
		require.Equal(t, cfg.Device.URL, r.k.Navigator().Context().URL)
	})
	t.Run("no tasks", func(t *testing.T) {
		r := newRig(t, testConfig(), nil, nil)
		require.Equal(t, nav.Empty, r.screen())
	})
	t.Run("tasks", func(t *testing.T) {
		s := store.NewMemory()
		seed(t, s, "Trash", model.Weekly, 1, 0)
		r := newRig(t, testConfig(), s, nil)
		require.Equal(t, nav.Dashboard, r.screen())
		require.Equal(t, uint32(1), r.k.Navigator().Context().Counts.Today)
		require.NotZero(t, r.h.fb.Frames())
	})
}

func TestNewRejectsMissingStore(t *testing.T) {
	_, err := New(&testHAL{enc: hal.NewVirtualEncoder(), log: &lineLog{}}, testConfig(), Deps{})
	require.Error(t, err)
}

func TestOverdueFilter(t *testing.T) {
	s := store.NewMemory()
	seed(t, s, "Late", model.Daily, 1, -2)
	seed(t, s, "Later", model.Weekly, 1, 4)
	r := newRig(t, testConfig(), s, nil)

	r.click()
	require.Equal(t, nav.TaskList, r.screen())
	ctx := r.k.Navigator().Context()
	require.Equal(t, model.FilterOverdue, ctx.Filter)
	require.Len(t, ctx.Tasks, 1)
	require.Equal(t, "Late", ctx.Tasks[0].Name)

	r.longClick()
	require.Equal(t, nav.Dashboard, r.screen())
	require.Empty(t, ctx.Filter)
}

func TestCompleteAdvancesDueDate(t *testing.T) {
	s := store.NewMemory()
	task := seed(t, s, "Trash", model.Weekly, 1, 0)
	r := newRig(t, testConfig(), s, nil)

	r.rotate(4) // All Tasks
	r.click()
	require.Equal(t, nav.TaskList, r.screen())
	r.click()
	require.Equal(t, nav.TaskActions, r.screen())
	r.click()
	require.Equal(t, nav.Completing, r.screen())

	r.wait(250 * time.Millisecond)
	require.Equal(t, nav.Completing, r.screen())
	progress := r.k.Navigator().Context().CompletionProgress
	require.Greater(t, progress, 0.0)
	require.Less(t, progress, 1.0)

	mark := r.h.fb.Frames()
	r.wait(300 * time.Millisecond)
	require.Equal(t, nav.TaskList, r.screen())
	card, ok := r.redrawn(mark).(nav.TaskCardCmd)
	require.True(t, ok, "want a task card after completing")
	require.Equal(t, task.ID, card.Task.ID)
	require.Equal(t, 7, card.Task.DaysUntilDue)

	got, err := s.Task(context.Background(), task.ID)
	require.NoError(t, err)
	require.Equal(t, model.Day(start).AddDate(0, 0, 7).Format(model.DateLayout), got.NextDue)
	hist, err := s.History(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.True(t, r.h.log.contains("task: completed"))
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	s := store.NewMemory()
	task := seed(t, s, "Trash", model.Weekly, 1, 0)
	r := newRig(t, testConfig(), s, nil)

	r.rotate(4)
	r.click()
	r.click()
	r.rotate(2) // Delete
	r.click()
	require.Equal(t, nav.DeleteConfirm, r.screen())

	r.click() // Cancel is highlighted
	require.Equal(t, nav.TaskActions, r.screen())
	_, err := s.Task(context.Background(), task.ID)
	require.NoError(t, err)

	r.click()
	r.rotate(1)
	mark := r.h.fb.Frames()
	r.click()
	require.Equal(t, nav.TaskList, r.screen())
	_, err = s.Task(context.Background(), task.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Empty(t, r.k.Navigator().Context().Tasks)
	require.IsType(t, nav.EmptyCmd{}, r.redrawn(mark))
}

func TestHistoryLoadsForCursorTask(t *testing.T) {
	s := store.NewMemory()
	task := seed(t, s, "Trash", model.Weekly, 1, 0)
	require.NoError(t, s.Complete(context.Background(), task.ID, start.AddDate(0, 0, -7)))
	require.NoError(t, s.Complete(context.Background(), task.ID, start))
	r := newRig(t, testConfig(), s, nil)

	r.rotate(4)
	r.click()
	r.click()
	r.rotate(1) // History
	r.click()
	require.Equal(t, nav.TaskHistory, r.screen())
	require.Len(t, r.k.Navigator().Context().History, 2)
}

func TestIdleTimeout(t *testing.T) {
	s := store.NewMemory()
	seed(t, s, "Trash", model.Weekly, 1, 0)
	r := newRig(t, testConfig(), s, nil)
	require.True(t, r.h.enc.BacklightOn())

	r.wait(10 * time.Second)
	require.True(t, r.h.enc.BacklightOn())
	r.wait(6 * time.Second)
	require.False(t, r.h.enc.BacklightOn())

	r.rotate(1)
	require.True(t, r.h.enc.BacklightOn())
	require.Equal(t, nav.ItemToday, r.k.Navigator().Context().DashboardSelection)
}

func TestIdleTimeoutDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Device.ScreenTimeout = false
	s := store.NewMemory()
	seed(t, s, "Trash", model.Weekly, 1, 0)
	r := newRig(t, cfg, s, nil)

	r.wait(time.Minute)
	require.True(t, r.h.enc.BacklightOn())
}

func TestQrCodeUsesLongerTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Device.Provisioned = false
	r := newRig(t, cfg, nil, nil)

	r.wait(30 * time.Second)
	require.True(t, r.h.enc.BacklightOn())
	r.wait(100 * time.Second)
	require.False(t, r.h.enc.BacklightOn())
}

func TestReloadNoticeLeavesEmpty(t *testing.T) {
	s := store.NewMemory()
	r := newRig(t, testConfig(), s, nil)
	require.Equal(t, nav.Empty, r.screen())

	seed(t, s, "Trash", model.Weekly, 1, 0)
	require.True(t, r.k.Notify(Notice{Kind: NoticeReload}))
	r.step(1)

	require.Equal(t, nav.Dashboard, r.screen())
	require.Equal(t, uint32(1), r.k.Navigator().Context().Counts.Total)
}

func TestDayRolloverReloads(t *testing.T) {
	s := store.NewMemory()
	seed(t, s, "Trash", model.Weekly, 1, 1)
	cfg := testConfig()
	cfg.Device.ScreenTimeout = false
	r := newRig(t, cfg, s, nil)
	require.Zero(t, r.k.Navigator().Context().Counts.Today)

	r.wait(24 * time.Hour)
	require.Equal(t, uint32(1), r.k.Navigator().Context().Counts.Today)
}

func voiceConfig() config.Config {
	cfg := testConfig()
	cfg.Voice.URL = "http://voice.test/transcribe"
	return cfg
}

func (r *rig) speak() {
	r.t.Helper()
	r.now = r.now.Add(250 * time.Millisecond)
	r.h.enc.SetButton(true)
	r.step(1)
	r.now = r.now.Add(1100 * time.Millisecond)
	r.step(1)
	require.Equal(r.t, nav.VoiceListening, r.screen())
	r.now = r.now.Add(time.Second)
	r.h.enc.SetButton(false)
	r.step(1)
	require.Equal(r.t, nav.VoiceProcessing, r.screen())
}

func (r *rig) awaitVoiceResult() {
	r.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.screen() == nav.VoiceProcessing && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
		r.step(1)
	}
	require.Equal(r.t, nav.VoiceResult, r.screen())
}

func TestVoiceCreatesTask(t *testing.T) {
	days := uint32(14)
	v := &fakeVoice{reply: voice.Action{Kind: voice.KindCreate, TaskName: "Water plants", RecurrenceDays: &days}}
	s := store.NewMemory()
	seed(t, s, "Trash", model.Weekly, 1, 0)
	r := newRig(t, voiceConfig(), s, v)
	require.True(t, r.k.Navigator().Context().VoiceAvailable)

	r.speak()
	require.Equal(t, 1, r.h.mic.starts)
	r.awaitVoiceResult()
	require.Equal(t, "Add Water plants?", r.k.Navigator().Context().VoiceMessage)

	v.mu.Lock()
	require.Equal(t, "RIFF", string(v.wav[:4]))
	require.Contains(t, v.context, "Trash(id=1")
	v.mu.Unlock()

	mark := r.h.fb.Frames()
	r.click()
	require.Equal(t, nav.Dashboard, r.screen())
	dash, ok := r.redrawn(mark).(nav.DashboardCmd)
	require.True(t, ok, "want the dashboard after applying")
	require.Equal(t, uint32(2), dash.Counts.Total)
	all, err := s.AllTasks(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	created := all[1]
	require.Equal(t, "Water plants", created.Name)
	require.Equal(t, model.Weekly, created.Recurrence)
	require.Equal(t, uint32(2), created.RecurrenceValue)
	require.Equal(t, model.Day(start).AddDate(0, 0, 14).Format(model.DateLayout), created.NextDue)
	require.Equal(t, uint32(2), r.k.Navigator().Context().Counts.Total)
}

func TestVoiceCompletesByID(t *testing.T) {
	s := store.NewMemory()
	task := seed(t, s, "Trash", model.Weekly, 1, 0)
	id := task.ID
	v := &fakeVoice{reply: voice.Action{Kind: voice.KindComplete, TaskName: "Trash", TaskID: &id}}
	r := newRig(t, voiceConfig(), s, v)

	r.speak()
	r.awaitVoiceResult()
	mark := r.h.fb.Frames()
	r.click()

	dash, ok := r.redrawn(mark).(nav.DashboardCmd)
	require.True(t, ok, "want the dashboard after applying")
	require.Zero(t, dash.Counts.Today)
	hist, err := s.History(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
}

func TestVoiceErrorAutoDismisses(t *testing.T) {
	v := &fakeVoice{err: errors.New("server unreachable")}
	r := newRig(t, voiceConfig(), nil, v)

	r.speak()
	r.awaitVoiceResult()
	require.Contains(t, r.k.Navigator().Context().VoiceMessage, "server unreachable")

	r.wait(4 * time.Second)
	require.Equal(t, nav.VoiceResult, r.screen())
	r.wait(2 * time.Second)
	require.Equal(t, nav.Dashboard, r.screen())
}

func TestVoiceCancelDropsReply(t *testing.T) {
	v := &fakeVoice{reply: voice.Action{Kind: voice.KindCreate, TaskName: "Dust"}}
	s := store.NewMemory()
	r := newRig(t, voiceConfig(), s, v)

	r.speak()
	r.awaitVoiceResult()
	r.longClick()
	require.Equal(t, nav.Dashboard, r.screen())

	all, err := s.AllTasks(context.Background(), true)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestVoiceStopsAtMaxRecording(t *testing.T) {
	r := newRig(t, voiceConfig(), nil, &fakeVoice{})

	r.now = r.now.Add(250 * time.Millisecond)
	r.h.enc.SetButton(true)
	r.step(1)
	r.wait(1100 * time.Millisecond)
	require.Equal(t, nav.VoiceListening, r.screen())

	r.wait(5 * time.Second)
	require.InDelta(t, 5.0, r.k.Navigator().Context().VoiceElapsed, 0.01)
	r.wait(6 * time.Second)
	require.Equal(t, nav.VoiceProcessing, r.screen())

	r.h.enc.SetButton(false)
	r.awaitVoiceResult()
}

func TestVoiceOffWithoutURL(t *testing.T) {
	s := store.NewMemory()
	seed(t, s, "Trash", model.Weekly, 1, 0)
	r := newRig(t, testConfig(), s, &fakeVoice{})
	require.False(t, r.k.Navigator().Context().VoiceAvailable)

	r.hold(2 * time.Second)
	require.Equal(t, nav.Dashboard, r.screen())
	require.Zero(t, r.h.mic.starts)
}

type panicStore struct {
	store.Store
	armed bool
}

func (p *panicStore) Counts(ctx context.Context, today time.Time) (model.Counts, error) {
	if p.armed {
		panic("counts exploded")
	}
	return p.Store.Counts(ctx, today)
}

func TestPanicShowsFault(t *testing.T) {
	s := &panicStore{Store: store.NewMemory()}
	r := newRig(t, testConfig(), s, nil)

	s.armed = true
	r.k.Notify(Notice{Kind: NoticeReload})
	frames := r.h.fb.Frames()
	require.NoError(t, r.k.Step())

	f := r.k.Faulted()
	require.NotNil(t, f)
	require.Equal(t, "counts exploded", f.Value)
	require.Greater(t, r.h.fb.Frames(), frames)
	require.True(t, r.h.log.contains("Kiosk Panic"))

	frames = r.h.fb.Frames()
	r.step(3)
	require.Equal(t, frames, r.h.fb.Frames())
}

type fakeBuzzer struct {
	mu    sync.Mutex
	vol   uint8
	tones []tone
}

func (b *fakeBuzzer) Tone(hz uint32, d time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tones = append(b.tones, tone{hz: hz, dur: d})
	return nil
}

func (b *fakeBuzzer) SetVolume(vol uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vol = vol
}

func TestBeeperPlaysQueuedTones(t *testing.T) {
	bz := &fakeBuzzer{}
	b := newBeeper(bz, logger{})
	b.play(toneListen)
	b.play(toneDone)
	b.close()
	b.close()

	bz.mu.Lock()
	defer bz.mu.Unlock()
	require.Equal(t, uint8(beepVolume), bz.vol)
	require.Equal(t, []tone{toneListen, toneDone}, bz.tones)

	var nilBeeper *beeper
	nilBeeper.play(toneDone)
	nilBeeper.close()
	require.Nil(t, newBeeper(nil, logger{}))
}
