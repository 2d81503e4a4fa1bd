package nav

import (
	"time"

	"kiosk/kiosk/model"
)

// RenderCommand describes one frame for the renderer. The set of variants is
// closed; every type implementing it lives in this file.
type RenderCommand interface {
	renderCommand()
}

// TaskView is a task resolved against a calendar day.
type TaskView struct {
	ID           uint32
	Name         string
	DaysUntilDue int
	Urgency      model.Urgency
	Due          string
	Recurrence   model.RecurrenceType
	Every        uint32
}

func NewTaskView(t model.Task, today time.Time) TaskView {
	return TaskView{
		ID:           t.ID,
		Name:         t.Name,
		DaysUntilDue: t.DaysUntilDue(today),
		Urgency:      t.Urgency(today),
		Due:          t.FormattedDue(),
		Recurrence:   t.Recurrence,
		Every:        t.RecurrenceValue,
	}
}

// HistoryView is one formatted completion row.
type HistoryView struct {
	Date          string
	DaysSinceLast *int
}

type (
	DashboardCmd struct {
		Counts   model.Counts
		Selected DashboardItem
	}
	TaskCardCmd struct {
		Index  int
		Total  int
		Filter string
		Task   TaskView
	}
	BackCardCmd struct {
		Total int
	}
	EmptyFilteredCmd struct {
		Filter string
	}
	EmptyCmd struct {
		URL string
	}
	ActionMenuCmd struct {
		TaskName string
		Selected int
		Options  []string
	}
	ConfirmDialogCmd struct {
		TaskName  string
		Confirmed bool
	}
	CompletingCmd struct {
		TaskName string
		Progress float64
	}
	HistoryCmd struct {
		TaskName string
		Selected int
		Entries  []HistoryView
	}
	SettingsCmd struct {
		Selected             int
		Options              []string
		ScreenTimeoutEnabled bool
	}
	QrCodeCmd struct {
		URL string
	}
	VoiceListeningCmd struct {
		Elapsed float64
	}
	VoiceResultCmd struct {
		Message string
	}
)

// VoiceProcessingCmd shows the upload spinner.
type VoiceProcessingCmd struct{}

func (DashboardCmd) renderCommand()       {}
func (TaskCardCmd) renderCommand()        {}
func (BackCardCmd) renderCommand()        {}
func (EmptyFilteredCmd) renderCommand()   {}
func (EmptyCmd) renderCommand()           {}
func (ActionMenuCmd) renderCommand()      {}
func (ConfirmDialogCmd) renderCommand()   {}
func (CompletingCmd) renderCommand()      {}
func (HistoryCmd) renderCommand()         {}
func (SettingsCmd) renderCommand()        {}
func (QrCodeCmd) renderCommand()          {}
func (VoiceListeningCmd) renderCommand()  {}
func (VoiceProcessingCmd) renderCommand() {}
func (VoiceResultCmd) renderCommand()     {}

// ActionOptions returns the action menu labels in selection order.
func ActionOptions() []string {
	return append([]string(nil), actionLabels[:]...)
}

// SettingOptions returns the settings menu labels in selection order.
func SettingOptions() []string {
	return append([]string(nil), settingLabels[:]...)
}

// Project maps the navigation state onto a render command. It does not
// modify ctx.
func Project(ctx *Context, today time.Time) RenderCommand {
	switch ctx.Screen {
	case Dashboard:
		return DashboardCmd{Counts: ctx.Counts, Selected: ctx.DashboardSelection}

	case TaskList:
		return projectTaskList(ctx, today)

	case TaskActions:
		return ActionMenuCmd{
			TaskName: taskName(ctx),
			Selected: int(ctx.ActionSelection),
			Options:  ActionOptions(),
		}

	case DeleteConfirm:
		return ConfirmDialogCmd{TaskName: taskName(ctx), Confirmed: ctx.DeleteConfirmed}

	case Completing:
		return CompletingCmd{TaskName: taskName(ctx), Progress: ctx.CompletionProgress}

	case TaskHistory:
		entries := make([]HistoryView, 0, len(ctx.History))
		for _, r := range ctx.History {
			entries = append(entries, HistoryView{Date: r.FormattedDate(), DaysSinceLast: r.DaysSinceLast})
		}
		return HistoryCmd{TaskName: taskName(ctx), Selected: ctx.HistoryCursor, Entries: entries}

	case Settings:
		return SettingsCmd{
			Selected:             int(ctx.SettingsSelection),
			Options:              SettingOptions(),
			ScreenTimeoutEnabled: ctx.ScreenTimeoutEnabled,
		}

	case QrCode:
		return QrCodeCmd{URL: ctx.URL}
	case VoiceListening:
		return VoiceListeningCmd{Elapsed: ctx.VoiceElapsed}
	case VoiceProcessing:
		return VoiceProcessingCmd{}
	case VoiceResult:
		return VoiceResultCmd{Message: ctx.VoiceMessage}
	case Empty:
		return EmptyCmd{URL: ctx.URL}
	}
	return DashboardCmd{Counts: ctx.Counts, Selected: ctx.DashboardSelection}
}

func projectTaskList(ctx *Context, today time.Time) RenderCommand {
	if ctx.TaskCursor == -1 {
		return BackCardCmd{Total: len(ctx.Tasks)}
	}
	if ctx.TaskCursor >= 0 && ctx.TaskCursor < len(ctx.Tasks) {
		return TaskCardCmd{
			Index:  ctx.TaskCursor,
			Total:  len(ctx.Tasks),
			Filter: ctx.Filter,
			Task:   NewTaskView(ctx.Tasks[ctx.TaskCursor], today),
		}
	}
	if ctx.Filter != "" {
		return EmptyFilteredCmd{Filter: ctx.Filter}
	}
	return EmptyCmd{URL: ctx.URL}
}

func taskName(ctx *Context) string {
	if ctx.TaskCursor < 0 || ctx.TaskCursor >= len(ctx.Tasks) {
		return ""
	}
	return ctx.Tasks[ctx.TaskCursor].Name
}
