// Package nav is the kiosk's navigation state machine.
//
// A Navigator owns one Context. Input events move it between screens and
// may return an Action the host maps onto storage calls. The host pushes
// storage results back through the Replace* methods; the navigator never
// reads storage itself and never blocks.
package nav

import (
	"kiosk/kiosk/input"
	"kiosk/kiosk/model"
)

// Direction is a single encoder detent.
type Direction int8

const (
	CW  Direction = 1
	CCW Direction = -1
)

// Context is the whole navigation state. Invariants after every Navigator
// call: DashboardSelection < 6, ActionSelection < 4, SettingsSelection <= 2,
// TaskCursor is -1 or a valid index when Tasks is non-empty, HistoryCursor
// indexes History when History is non-empty.
type Context struct {
	Screen             Screen
	DashboardSelection DashboardItem
	Counts             model.Counts
	Filter             string

	Tasks      []model.Task
	TaskCursor int

	ActionSelection ActionItem
	DeleteConfirmed bool

	CompletionProgress float64

	History       []model.CompletionRecord
	HistoryCursor int

	SettingsSelection    SettingItem
	ScreenTimeoutEnabled bool

	VoiceAvailable bool
	VoiceElapsed   float64
	VoiceMessage   string

	// URL is the management address shown on QrCode and Empty.
	URL string
}

// Navigator applies input to a Context.
type Navigator struct {
	ctx Context
}

// New returns a navigator on the Dashboard with the screen timeout on.
func New() *Navigator {
	return &Navigator{ctx: Context{
		Screen:               Dashboard,
		ScreenTimeoutEnabled: true,
	}}
}

// Context exposes the state. Callers outside the host loop must treat it as
// read-only.
func (n *Navigator) Context() *Context { return &n.ctx }

func (n *Navigator) Screen() Screen { return n.ctx.Screen }

// SetScreen forces a screen, used for the boot screen choice.
func (n *Navigator) SetScreen(s Screen) {
	if s >= screenCount {
		return
	}
	n.ctx.Screen = s
}

// CurrentTask returns the task under the cursor.
func (n *Navigator) CurrentTask() (model.Task, bool) {
	c := &n.ctx
	if c.TaskCursor < 0 || c.TaskCursor >= len(c.Tasks) {
		return model.Task{}, false
	}
	return c.Tasks[c.TaskCursor], true
}

// Dispatch routes a classified input event.
func (n *Navigator) Dispatch(ev input.Event) (Action, bool) {
	switch ev {
	case input.RotateCW:
		n.Rotate(CW)
	case input.RotateCCW:
		n.Rotate(CCW)
	case input.ShortPress:
		return n.ShortClick()
	case input.LongPress:
		return n.LongClick()
	case input.VoiceHoldStart:
		return n.VoiceHoldStart()
	case input.VoiceHoldStop:
		return n.VoiceHoldStop()
	}
	return "", false
}

func wrap(v, delta, n int) int {
	return ((v+delta)%n + n) % n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rotate moves the selection of the current screen by one detent.
func (n *Navigator) Rotate(dir Direction) {
	c := &n.ctx
	d := int(dir)
	switch c.Screen {
	case Dashboard:
		c.DashboardSelection = DashboardItem(wrap(int(c.DashboardSelection), d, int(dashboardItemCount)))
	case TaskList:
		c.TaskCursor = walkCursor(c.TaskCursor, d, len(c.Tasks))
	case TaskActions:
		c.ActionSelection = ActionItem(wrap(int(c.ActionSelection), d, int(actionItemCount)))
	case DeleteConfirm:
		c.DeleteConfirmed = !c.DeleteConfirmed
	case TaskHistory:
		if len(c.History) > 0 {
			c.HistoryCursor = clamp(c.HistoryCursor+d, 0, len(c.History)-1)
		}
	case Settings:
		c.SettingsSelection = SettingItem(clamp(int(c.SettingsSelection)+d, 0, int(settingItemCount)-1))
	}
}

// walkCursor steps through 0..n-1 plus the Back sentinel -1, a cycle of
// length n+1.
func walkCursor(cur, d, n int) int {
	if n == 0 {
		return cur
	}
	// Shift so the sentinel sits at 0 and wrap over n+1 slots.
	return wrap(cur+1, d, n+1) - 1
}

// ShortClick selects the highlighted item.
func (n *Navigator) ShortClick() (Action, bool) {
	c := &n.ctx
	switch c.Screen {
	case Dashboard:
		return n.selectDashboard()

	case TaskList:
		if c.TaskCursor == -1 {
			n.goDashboard()
			return ActGoDashboard, true
		}
		if len(c.Tasks) > 0 {
			c.ActionSelection = ActionComplete
			c.Screen = TaskActions
		}

	case TaskActions:
		switch c.ActionSelection {
		case ActionComplete:
			c.CompletionProgress = 0
			c.Screen = Completing
			return ActComplete, true
		case ActionHistory:
			c.HistoryCursor = 0
			c.Screen = TaskHistory
			return ActLoadHistory, true
		case ActionDelete:
			c.DeleteConfirmed = false
			c.Screen = DeleteConfirm
		case ActionBack:
			c.Screen = TaskList
		}

	case DeleteConfirm:
		if c.DeleteConfirmed {
			c.DeleteConfirmed = false
			c.Screen = TaskList
			return ActDelete, true
		}
		c.Screen = TaskActions

	case TaskHistory:
		c.Screen = TaskActions

	case Settings:
		switch c.SettingsSelection {
		case SettingManageTasks:
			c.Screen = QrCode
			return ActShowQR, true
		case SettingScreenTimeout:
			c.ScreenTimeoutEnabled = !c.ScreenTimeoutEnabled
			return ActToggleTimeout, true
		case SettingBack:
			c.Screen = Dashboard
		}

	case VoiceListening:
		c.Screen = VoiceProcessing
		return ActVoiceStop, true

	case VoiceResult:
		c.VoiceMessage = ""
		c.Screen = Dashboard
		return ActVoiceApply, true
	}
	return "", false
}

func (n *Navigator) selectDashboard() (Action, bool) {
	c := &n.ctx
	switch c.DashboardSelection {
	case ItemOverdue, ItemToday, ItemWeek, ItemTotal:
		c.Filter = dashboardFilter(c.DashboardSelection)
		c.TaskCursor = 0
		c.Screen = TaskList
		return ActFilterTasks, true
	case ItemAllTasks:
		c.Filter = ""
		c.TaskCursor = 0
		c.Screen = TaskList
		return ActShowAllTasks, true
	case ItemSettings:
		c.SettingsSelection = SettingManageTasks
		c.Screen = Settings
		return ActShowSettings, true
	}
	return "", false
}

func dashboardFilter(item DashboardItem) string {
	switch item {
	case ItemOverdue:
		return model.FilterOverdue
	case ItemToday:
		return model.FilterToday
	case ItemWeek:
		return model.FilterWeek
	default:
		return ""
	}
}

func (n *Navigator) goDashboard() {
	n.ctx.Filter = ""
	n.ctx.TaskCursor = 0
	n.ctx.Screen = Dashboard
}

// LongClick goes back one level.
func (n *Navigator) LongClick() (Action, bool) {
	c := &n.ctx
	switch c.Screen {
	case TaskList:
		n.goDashboard()
		return ActGoDashboard, true
	case QrCode:
		c.Screen = Settings
	case Settings:
		c.Screen = Dashboard
		return ActGoDashboard, true
	case TaskActions, DeleteConfirm, TaskHistory:
		c.DeleteConfirmed = false
		c.Screen = TaskList
	case VoiceListening, VoiceResult:
		c.VoiceMessage = ""
		c.Screen = Dashboard
		return ActVoiceCancel, true
	}
	return "", false
}

// VoiceHoldStart enters VoiceListening. It is ignored while voice is
// unavailable and on screens that own the encoder until the host releases
// them.
func (n *Navigator) VoiceHoldStart() (Action, bool) {
	c := &n.ctx
	if !c.VoiceAvailable {
		return "", false
	}
	switch c.Screen {
	case Completing, VoiceListening, VoiceProcessing:
		return "", false
	}
	c.VoiceElapsed = 0
	c.VoiceMessage = ""
	c.Screen = VoiceListening
	return ActVoiceStart, true
}

// VoiceHoldStop ends a recording started by VoiceHoldStart.
func (n *Navigator) VoiceHoldStop() (Action, bool) {
	if n.ctx.Screen != VoiceListening {
		return "", false
	}
	n.ctx.Screen = VoiceProcessing
	return ActVoiceStop, true
}

// ReplaceTasks installs a fresh task list. On the per-task screens and
// Completing the cursor follows the selected task by ID; if it is gone the
// per-task screens fall back to the list, while Completing stays put until
// the host calls CompletionDone. Otherwise the cursor is clamped to the new
// length, never to the Back sentinel.
func (n *Navigator) ReplaceTasks(tasks []model.Task) {
	c := &n.ctx
	prev, hadPrev := n.CurrentTask()
	c.Tasks = tasks

	switch c.Screen {
	case TaskActions, DeleteConfirm, TaskHistory, Completing:
		if hadPrev {
			for i, t := range tasks {
				if t.ID == prev.ID {
					c.TaskCursor = i
					return
				}
			}
		}
		if c.Screen != Completing {
			c.DeleteConfirmed = false
			c.Screen = TaskList
		}
	}

	switch {
	case c.TaskCursor == -1:
	case len(tasks) == 0:
		c.TaskCursor = 0
	case c.TaskCursor >= len(tasks):
		c.TaskCursor = len(tasks) - 1
	case c.TaskCursor < -1:
		c.TaskCursor = 0
	}
}

func (n *Navigator) ReplaceCounts(counts model.Counts) { n.ctx.Counts = counts }

// ReplaceHistory installs a task's history and rewinds the cursor.
func (n *Navigator) ReplaceHistory(history []model.CompletionRecord) {
	n.ctx.History = history
	n.ctx.HistoryCursor = 0
}

// SetCompletionProgress advances the Completing animation. Progress is
// clamped to [0,1] and never moves backwards.
func (n *Navigator) SetCompletionProgress(p float64) {
	c := &n.ctx
	if c.Screen != Completing {
		return
	}
	p = min(max(p, 0), 1)
	if p > c.CompletionProgress {
		c.CompletionProgress = p
	}
}

// CompletionDone leaves Completing for the task list.
func (n *Navigator) CompletionDone() {
	if n.ctx.Screen != Completing {
		return
	}
	n.ctx.CompletionProgress = 1
	n.ctx.Screen = TaskList
}

// ShowVoiceResult presents the interpreted command.
func (n *Navigator) ShowVoiceResult(msg string) {
	if n.ctx.Screen != VoiceProcessing {
		return
	}
	n.ctx.VoiceMessage = msg
	n.ctx.Screen = VoiceResult
}

// DismissVoice abandons any voice screen, as on a failed upload or an
// unanswered result.
func (n *Navigator) DismissVoice() {
	switch n.ctx.Screen {
	case VoiceListening, VoiceProcessing, VoiceResult:
		n.ctx.VoiceMessage = ""
		n.ctx.Screen = Dashboard
	}
}

func (n *Navigator) SetVoiceElapsed(sec float64) {
	if n.ctx.Screen == VoiceListening {
		n.ctx.VoiceElapsed = max(sec, 0)
	}
}
