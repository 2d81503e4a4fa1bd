package render

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"kiosk/hal"
	"kiosk/kiosk/model"
	"kiosk/kiosk/nav"
)

func newTestRenderer() (*Renderer, *hal.MemFramebuffer) {
	fb := hal.NewMemFramebuffer(hal.DisplayWidth, hal.DisplayHeight)
	return New(fb), fb
}

func countColor(fb *hal.MemFramebuffer, c color.RGBA) int {
	want := rgb565(c)
	buf := fb.Buffer()
	n := 0
	for i := 0; i+1 < len(buf); i += 2 {
		if uint16(buf[i])|uint16(buf[i+1])<<8 == want {
			n++
		}
	}
	return n
}

func everyCommand() []nav.RenderCommand {
	days := 3
	return []nav.RenderCommand{
		nav.DashboardCmd{Counts: model.Counts{Overdue: 1, Today: 2, Week: 4, Total: 9}, Selected: nav.ItemWeek},
		nav.TaskCardCmd{Index: 0, Total: 2, Filter: model.FilterOverdue, Task: nav.TaskView{
			ID: 1, Name: "Replace the water filter under the sink", DaysUntilDue: -2,
			Urgency: model.Overdue, Due: "Mar 08, 2026", Recurrence: model.Monthly, Every: 3,
		}},
		nav.BackCardCmd{Total: 2},
		nav.EmptyFilteredCmd{Filter: model.FilterToday},
		nav.EmptyCmd{URL: "http://192.168.4.1/"},
		nav.ActionMenuCmd{TaskName: "Trash", Selected: 2, Options: nav.ActionOptions()},
		nav.ConfirmDialogCmd{TaskName: "Trash", Confirmed: true},
		nav.CompletingCmd{TaskName: "Trash", Progress: 0.5},
		nav.HistoryCmd{TaskName: "Trash", Selected: 1, Entries: []nav.HistoryView{
			{Date: "Mar 10, 2026", DaysSinceLast: &days}, {Date: "Mar 07, 2026"},
		}},
		nav.HistoryCmd{TaskName: "Trash"},
		nav.SettingsCmd{Selected: 1, Options: nav.SettingOptions(), ScreenTimeoutEnabled: true},
		nav.QrCodeCmd{URL: "http://192.168.4.1/"},
		nav.VoiceListeningCmd{Elapsed: 1.25},
		nav.VoiceProcessingCmd{},
		nav.VoiceResultCmd{Message: "Add Vacuum every 2 weeks?"},
	}
}

func TestDrawEveryCommand(t *testing.T) {
	r, fb := newTestRenderer()
	for _, cmd := range everyCommand() {
		before := fb.Frames()
		if err := r.Draw(cmd); err != nil {
			t.Fatalf("Draw(%T): %v", cmd, err)
		}
		if fb.Frames() != before+1 {
			t.Fatalf("Draw(%T) did not present", cmd)
		}
		total := fb.Width() * fb.Height()
		if bg := countColor(fb, colorBG); bg == total {
			t.Fatalf("Draw(%T) left the screen blank", cmd)
		}
	}
}

type bogusCmd struct{ nav.RenderCommand }

func TestDrawUnknownCommand(t *testing.T) {
	r, _ := newTestRenderer()
	if err := r.Draw(bogusCmd{}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestDashboardHighlightsSelection(t *testing.T) {
	r, fb := newTestRenderer()
	if err := r.Draw(nav.DashboardCmd{Selected: nav.ItemAllTasks}); err != nil {
		t.Fatal(err)
	}
	// Row 2, column 0 carries the accent border.
	ch := hal.DisplayHeight / 3
	if rr, g, b := fb.PixelRGB(10, 2*ch+2); rr>>3 != colorAccent.R>>3 || g>>2 != colorAccent.G>>2 || b>>3 != colorAccent.B>>3 {
		t.Fatalf("border pixel = %d,%d,%d", rr, g, b)
	}
	if countColor(fb, colorSelBG) == 0 {
		t.Fatal("expected a selection fill")
	}
}

func TestTaskCardUsesUrgencyColor(t *testing.T) {
	r, fb := newTestRenderer()
	cmd := nav.TaskCardCmd{Index: 0, Total: 1, Task: nav.TaskView{Name: "x", Urgency: model.Upcoming, DaysUntilDue: 12}}
	if err := r.Draw(cmd); err != nil {
		t.Fatal(err)
	}
	if countColor(fb, colorUpcoming) == 0 {
		t.Fatal("expected upcoming color on the card")
	}
	if countColor(fb, colorOverdue) != 0 {
		t.Fatal("unexpected overdue color")
	}
}

func TestCompletingProgressWidth(t *testing.T) {
	r, fb := newTestRenderer()
	if err := r.Draw(nav.CompletingCmd{TaskName: "x", Progress: 0}); err != nil {
		t.Fatal(err)
	}
	empty := countColor(fb, colorSuccess)
	if err := r.Draw(nav.CompletingCmd{TaskName: "x", Progress: 1}); err != nil {
		t.Fatal(err)
	}
	full := countColor(fb, colorSuccess)
	if full <= empty {
		t.Fatalf("full bar (%d px) not larger than empty (%d px)", full, empty)
	}
}

type failingFB struct{ *hal.MemFramebuffer }

var errPresent = errors.New("present failed")

func (failingFB) Present() error { return errPresent }

func TestDrawReturnsPresentError(t *testing.T) {
	r := New(failingFB{hal.NewMemFramebuffer(hal.DisplayWidth, hal.DisplayHeight)})
	if err := r.Draw(nav.VoiceProcessingCmd{}); !errors.Is(err, errPresent) {
		t.Fatalf("err = %v", err)
	}
}

func TestNilFramebuffer(t *testing.T) {
	r := New(nil)
	if err := r.Draw(nav.VoiceProcessingCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Fault("x", nil); err != nil {
		t.Fatal(err)
	}
}

func TestFault(t *testing.T) {
	r, fb := newTestRenderer()
	stack := strings.Repeat("goroutine 1 [running]:\nmain.main()\n", 40)
	if err := r.Fault("boom", []byte(stack)); err != nil {
		t.Fatal(err)
	}
	if countColor(fb, colorFaultFG) == 0 || countColor(fb, colorFaultBG) == 0 {
		t.Fatal("expected black text on white")
	}
}

func TestBoot(t *testing.T) {
	r, fb := newTestRenderer()
	if err := r.Boot("loading tasks"); err != nil {
		t.Fatal(err)
	}
	if countColor(fb, colorAccent) == 0 {
		t.Fatal("expected title text")
	}
}

func TestHistoryWindow(t *testing.T) {
	cases := []struct{ sel, total, visible, want int }{
		{0, 3, 6, 0},
		{0, 20, 6, 0},
		{5, 20, 6, 2},
		{19, 20, 6, 14},
		{3, 20, 0, 0},
	}
	for _, c := range cases {
		if got := historyWindow(c.sel, c.total, c.visible); got != c.want {
			t.Errorf("historyWindow(%d,%d,%d) = %d, want %d", c.sel, c.total, c.visible, got, c.want)
		}
	}
}
