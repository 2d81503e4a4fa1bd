package nav

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"kiosk/kiosk/model"
)

var today = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func TestProjectTaskListFanOut(t *testing.T) {
	list := []model.Task{
		{ID: 7, Name: "Water plants", NextDue: "2026-01-09", Recurrence: model.Weekly, RecurrenceValue: 1},
		{ID: 8, Name: "Descale kettle", NextDue: "2026-01-20", Recurrence: model.Monthly, RecurrenceValue: 2},
	}
	tests := []struct {
		name string
		ctx  Context
		want RenderCommand
	}{
		{
			name: "back card",
			ctx:  Context{Screen: TaskList, Tasks: list, TaskCursor: -1},
			want: BackCardCmd{Total: 2},
		},
		{
			name: "task card",
			ctx:  Context{Screen: TaskList, Tasks: list, TaskCursor: 0, Filter: model.FilterOverdue},
			want: TaskCardCmd{
				Index:  0,
				Total:  2,
				Filter: model.FilterOverdue,
				Task: TaskView{
					ID:           7,
					Name:         "Water plants",
					DaysUntilDue: -1,
					Urgency:      model.Overdue,
					Due:          "Jan 09, 2026",
					Recurrence:   model.Weekly,
					Every:        1,
				},
			},
		},
		{
			name: "empty filtered",
			ctx:  Context{Screen: TaskList, Filter: model.FilterToday},
			want: EmptyFilteredCmd{Filter: "today"},
		},
		{
			name: "empty",
			ctx:  Context{Screen: TaskList, URL: "http://kiosk.local"},
			want: EmptyCmd{URL: "http://kiosk.local"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(&tt.ctx, today)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Project mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProjectMenus(t *testing.T) {
	days := 3
	ctx := Context{
		Screen:          TaskActions,
		Tasks:           []model.Task{{ID: 1, Name: "Trash"}},
		ActionSelection: ActionDelete,
		History: []model.CompletionRecord{
			{CompletedAt: "2026-01-08T10:00:00Z", DaysSinceLast: &days},
			{CompletedAt: "2026-01-05T10:00:00Z"},
		},
		HistoryCursor:        1,
		SettingsSelection:    SettingScreenTimeout,
		ScreenTimeoutEnabled: true,
		CompletionProgress:   0.25,
		DeleteConfirmed:      true,
	}

	want := map[Screen]RenderCommand{
		TaskActions: ActionMenuCmd{
			TaskName: "Trash",
			Selected: 2,
			Options:  []string{"Done", "History", "Delete", "Back"},
		},
		DeleteConfirm: ConfirmDialogCmd{TaskName: "Trash", Confirmed: true},
		Completing:    CompletingCmd{TaskName: "Trash", Progress: 0.25},
		TaskHistory: HistoryCmd{
			TaskName: "Trash",
			Selected: 1,
			Entries: []HistoryView{
				{Date: "Jan 08, 2026", DaysSinceLast: &days},
				{Date: "Jan 05, 2026"},
			},
		},
		Settings: SettingsCmd{
			Selected:             1,
			Options:              []string{"Manage Tasks", "Screen Timeout", "Back"},
			ScreenTimeoutEnabled: true,
		},
	}
	for screen, w := range want {
		ctx.Screen = screen
		if diff := cmp.Diff(w, Project(&ctx, today)); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", screen, diff)
		}
	}
}

func TestProjectCoversEveryScreen(t *testing.T) {
	for _, s := range Screens() {
		ctx := Context{Screen: s}
		cmd := Project(&ctx, today)
		if cmd == nil {
			t.Fatalf("Project(%s) = nil", s)
		}
		if s != Dashboard {
			if _, ok := cmd.(DashboardCmd); ok {
				t.Fatalf("Project(%s) fell through to the dashboard", s)
			}
		}
	}
}

func TestProjectDoesNotMutate(t *testing.T) {
	nv := onTaskList(3)
	nv.ctx.TaskCursor = 1
	before := nv.ctx
	Project(&nv.ctx, today)
	if diff := cmp.Diff(before, nv.ctx); diff != "" {
		t.Fatalf("Project mutated context:\n%s", diff)
	}
}

func TestOptionsAreCopies(t *testing.T) {
	opts := ActionOptions()
	opts[0] = "x"
	if ActionOptions()[0] != "Done" {
		t.Fatal("ActionOptions exposes the backing array")
	}
}
