package nav

// Screen is the navigator's top-level mode. Exactly one is active.
type Screen uint8

const (
	Dashboard Screen = iota
	TaskList
	TaskActions
	DeleteConfirm
	Completing
	TaskHistory
	Settings
	QrCode
	VoiceListening
	VoiceProcessing
	VoiceResult
	Empty

	screenCount
)

// Screens lists every screen in declaration order.
func Screens() []Screen {
	out := make([]Screen, 0, screenCount)
	for s := Screen(0); s < screenCount; s++ {
		out = append(out, s)
	}
	return out
}

func (s Screen) String() string {
	switch s {
	case Dashboard:
		return "dashboard"
	case TaskList:
		return "task_list"
	case TaskActions:
		return "task_actions"
	case DeleteConfirm:
		return "delete_confirm"
	case Completing:
		return "completing"
	case TaskHistory:
		return "task_history"
	case Settings:
		return "settings"
	case QrCode:
		return "qr_code"
	case VoiceListening:
		return "voice_listening"
	case VoiceProcessing:
		return "voice_processing"
	case VoiceResult:
		return "voice_result"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// DashboardItem is a selectable dashboard cell.
type DashboardItem uint8

const (
	ItemOverdue DashboardItem = iota
	ItemToday
	ItemWeek
	ItemTotal
	ItemAllTasks
	ItemSettings

	dashboardItemCount
)

// ActionItem is an entry of the per-task action menu.
type ActionItem uint8

const (
	ActionComplete ActionItem = iota
	ActionHistory
	ActionDelete
	ActionBack

	actionItemCount
)

var actionLabels = [actionItemCount]string{"Done", "History", "Delete", "Back"}

func (a ActionItem) Label() string {
	if a >= actionItemCount {
		return ""
	}
	return actionLabels[a]
}

// SettingItem is an entry of the settings menu.
type SettingItem uint8

const (
	SettingManageTasks SettingItem = iota
	SettingScreenTimeout
	SettingBack

	settingItemCount
)

var settingLabels = [settingItemCount]string{"Manage Tasks", "Screen Timeout", "Back"}

func (s SettingItem) Label() string {
	if s >= settingItemCount {
		return ""
	}
	return settingLabels[s]
}

// Action is a symbolic request for the host to touch storage or reload.
type Action string

const (
	ActComplete      Action = "complete"
	ActDelete        Action = "delete"
	ActFilterTasks   Action = "filter_tasks"
	ActShowAllTasks  Action = "show_all_tasks"
	ActGoDashboard   Action = "go_dashboard"
	ActLoadHistory   Action = "load_history"
	ActToggleTimeout Action = "toggle_timeout"
	ActShowSettings  Action = "show_settings"
	ActShowQR        Action = "show_qr"

	// Voice flow. The host owns recording and the upload.
	ActVoiceStart  Action = "voice_start_recording"
	ActVoiceStop   Action = "voice_stop_recording"
	ActVoiceApply  Action = "voice_apply"
	ActVoiceCancel Action = "voice_cancel"
)
