// Package render draws nav render commands onto an RGB565 framebuffer.
package render

import (
	"fmt"
	"image/color"
	"strconv"

	"kiosk/hal"
	"kiosk/kiosk/nav"

	"tinygo.org/x/tinyfont"
)

const (
	pad      = 4
	pillH    = 12
	rowH     = 20
	histRowH = 14
)

// Renderer owns a framebuffer and repaints it one command at a time.
// It is not safe for concurrent use.
type Renderer struct {
	fb   hal.Framebuffer
	d    *fbDisplay
	w, h int16
}

func New(fb hal.Framebuffer) *Renderer {
	r := &Renderer{fb: fb, d: &fbDisplay{fb: fb}}
	r.w, r.h = r.d.Size()
	return r
}

// Draw clears the screen, paints cmd and presents the frame.
func (r *Renderer) Draw(cmd nav.RenderCommand) error {
	if r.fb == nil {
		return nil
	}
	r.fb.ClearRGB(colorBG.R, colorBG.G, colorBG.B)

	switch c := cmd.(type) {
	case nav.DashboardCmd:
		r.dashboard(c)
	case nav.TaskCardCmd:
		r.taskCard(c)
	case nav.BackCardCmd:
		r.backCard(c)
	case nav.EmptyFilteredCmd:
		r.emptyFiltered(c)
	case nav.EmptyCmd:
		r.empty(c)
	case nav.ActionMenuCmd:
		r.actionMenu(c)
	case nav.ConfirmDialogCmd:
		r.confirm(c)
	case nav.CompletingCmd:
		r.completing(c)
	case nav.HistoryCmd:
		r.history(c)
	case nav.SettingsCmd:
		r.settings(c)
	case nav.QrCodeCmd:
		r.qrCode(c)
	case nav.VoiceListeningCmd:
		r.voiceListening(c)
	case nav.VoiceProcessingCmd:
		r.voiceProcessing()
	case nav.VoiceResultCmd:
		r.voiceResult(c)
	default:
		return fmt.Errorf("render: unknown command %T", cmd)
	}
	return r.d.Display()
}

func (r *Renderer) fill(x, y, w, h int16, c color.RGBA) {
	_ = r.d.FillRectangle(x, y, w, h, c)
}

func (r *Renderer) frame(x, y, w, h int16, c color.RGBA) {
	r.fill(x, y, w, 1, c)
	r.fill(x, y+h-1, w, 1, c)
	r.fill(x, y, 1, h, c)
	r.fill(x+w-1, y, 1, h, c)
}

func (r *Renderer) card(x, y, w, h int16, border color.RGBA) {
	r.fill(x, y, w, h, colorCardBG)
	r.frame(x, y, w, h, border)
}

func (r *Renderer) text(f face, x, baseline int16, c color.RGBA, s string) {
	tinyfont.WriteLine(r.d, f.font, x, baseline, s, c)
}

func (r *Renderer) textRight(f face, right, baseline int16, c color.RGBA, s string) {
	r.text(f, right-int16(f.width(s)), baseline, c, s)
}

func (r *Renderer) centered(f face, baseline int16, c color.RGBA, s string) {
	s = truncate(s, int(r.w)-2*pad, f.width)
	r.text(f, (r.w-int16(f.width(s)))/2, baseline, c, s)
}

// block draws s word-wrapped between the margins starting at top and
// returns the y just below the last line.
func (r *Renderer) block(f face, top int16, maxLines int, c color.RGBA, s string, center bool) int16 {
	maxW := int(r.w) - 2*pad - 2
	y := top
	for _, line := range wrap(s, maxW, maxLines, f.width) {
		if center {
			r.centered(f, y+f.ascent, c, line)
		} else {
			r.text(f, pad+1, y+f.ascent, c, line)
		}
		y += f.line
	}
	return y
}

// pill draws a filled badge and returns its width.
func (r *Renderer) pill(x, y int16, label string, fg, bg color.RGBA) int16 {
	w := int16(small.width(label)) + 8
	r.fill(x+1, y, w-2, pillH, bg)
	r.fill(x, y+1, w, pillH-2, bg)
	r.text(small, x+4, y+small.ascent+1, fg, label)
	return w
}

// button draws a pill that is filled when active and outlined otherwise.
func (r *Renderer) button(x, y int16, label string, c color.RGBA, active bool) int16 {
	if active {
		return r.pill(x, y, label, colorBG, c)
	}
	w := int16(small.width(label)) + 8
	r.frame(x, y, w, pillH, c)
	r.text(small, x+4, y+small.ascent+1, c, label)
	return w
}

func (r *Renderer) progress(x, y, w, h int16, frac float64, c color.RGBA) {
	frac = min(max(frac, 0), 1)
	r.fill(x, y, w, h, colorCardBorder)
	r.fill(x, y, int16(float64(w)*frac), h, c)
}

func (r *Renderer) title(s string) {
	r.text(large, pad, pad+large.ascent, colorText, truncate(s, int(r.w)-2*pad, large.width))
}

// menu draws selectable rows starting at top.
func (r *Renderer) menu(top int16, options []string, selected int, labelColor func(int) color.RGBA, trailing func(int) string) {
	for i, opt := range options {
		y := top + int16(i)*rowH
		if i == selected {
			r.fill(pad, y, r.w-2*pad, rowH-2, colorSelBG)
			r.fill(pad, y, 2, rowH-2, colorAccent)
		}
		base := y + (rowH-2+small.ascent)/2
		r.text(small, pad+8, base, labelColor(i), opt)
		if t := trailing(i); t != "" {
			r.textRight(small, r.w-pad-6, base, colorMuted, t)
		}
	}
}

var dashboardLabels = [...]string{"Overdue", "Today", "This week", "Total", "All tasks", "Settings"}

func (r *Renderer) dashboard(c nav.DashboardCmd) {
	const cols, rows = 2, 3
	cw, ch := r.w/cols, r.h/rows
	values := [...]uint32{c.Counts.Overdue, c.Counts.Today, c.Counts.Week, c.Counts.Total}
	accents := [...]color.RGBA{colorOverdue, colorToday, colorWeek, colorText}

	for i, label := range dashboardLabels {
		x := int16(i%cols) * cw
		y := int16(i/cols) * ch
		selected := nav.DashboardItem(i) == c.Selected
		border := colorCardBorder
		if selected {
			border = colorAccent
		}
		r.card(x+2, y+2, cw-4, ch-4, border)
		if selected {
			r.fill(x+3, y+3, cw-6, ch-6, colorSelBG)
		}

		if i < len(values) {
			r.text(small, x+pad+2, y+pad+small.ascent, colorMuted, label)
			valColor := colorMuted
			if values[i] > 0 {
				valColor = accents[i]
			}
			r.text(large, x+pad+2, y+ch-pad-3, valColor, strconv.FormatUint(uint64(values[i]), 10))
			continue
		}
		lc := colorText
		if !selected {
			lc = colorMuted
		}
		r.text(small, x+(cw-int16(small.width(label)))/2, y+(ch+small.ascent)/2, lc, label)
	}
}

func (r *Renderer) taskCard(c nav.TaskCardCmd) {
	header := filterTitle(c.Filter)
	r.text(small, pad, pad+small.ascent, filterColor(c.Filter), header)
	r.textRight(small, r.w-pad, pad+small.ascent, colorMuted, fmt.Sprintf("%d/%d", c.Index+1, c.Total))

	top := pad + small.line + 2
	t := c.Task
	uc := urgencyColor(t.Urgency)
	r.card(pad, top, r.w-2*pad, r.h-top-pad, uc)

	r.pill(pad+4, top+4, t.Urgency.Label(), colorBG, uc)
	y := r.block(large, top+4+pillH+3, 2, colorText, t.Name, false)

	y += 2
	r.text(small, pad+5, y+small.ascent, uc, dueText(t.DaysUntilDue))
	y += small.line
	r.text(small, pad+5, y+small.ascent, colorMuted, "Due "+t.Due)
	y += small.line
	r.text(small, pad+5, y+small.ascent, colorMuted, everyText(t.Recurrence, t.Every))
}

func (r *Renderer) backCard(c nav.BackCardCmd) {
	r.card(pad, pad, r.w-2*pad, r.h-2*pad, colorAccent)
	mid := r.h / 2
	r.centered(large, mid, colorAccent, "< Back")
	r.centered(small, mid+small.line+2, colorMuted, plural(c.Total, "task"))
}

func (r *Renderer) emptyFiltered(c nav.EmptyFilteredCmd) {
	mid := r.h / 2
	r.centered(large, mid-4, filterColor(c.Filter), "All clear")
	r.centered(small, mid+small.line, colorMuted, "No "+filterTitle(c.Filter)+" tasks")
	r.centered(small, mid+2*small.line, colorMuted, "Hold to go back")
}

func (r *Renderer) empty(c nav.EmptyCmd) {
	r.centered(large, r.h/3, colorText, "No tasks yet")
	if c.URL == "" {
		return
	}
	y := r.h/3 + small.line
	r.centered(small, y, colorMuted, "Add tasks at")
	r.block(small, y+4, 2, colorAccent, c.URL, true)
}

func (r *Renderer) actionMenu(c nav.ActionMenuCmd) {
	r.title(c.TaskName)
	del := nav.ActionDelete.Label()
	r.menu(pad+large.line+4, c.Options, c.Selected,
		func(i int) color.RGBA {
			if c.Options[i] == del {
				return colorDestructive
			}
			return colorText
		},
		func(int) string { return "" })
}

func (r *Renderer) confirm(c nav.ConfirmDialogCmd) {
	r.card(pad, pad, r.w-2*pad, r.h-2*pad, colorDestructive)
	r.centered(large, pad+6+large.ascent, colorDestructive, "Delete?")
	r.block(small, pad+8+large.line, 3, colorText, c.TaskName, true)

	const gap = 8
	cancelW := int16(small.width("Cancel")) + 8
	deleteW := int16(small.width("Delete")) + 8
	x := (r.w - cancelW - deleteW - gap) / 2
	y := r.h - pad - pillH - 8
	r.button(x, y, "Cancel", colorMuted, !c.Confirmed)
	r.button(x+cancelW+gap, y, "Delete", colorDestructive, c.Confirmed)
}

func (r *Renderer) completing(c nav.CompletingCmd) {
	mid := r.h / 2
	r.centered(large, mid-6, colorSuccess, "Done!")
	r.centered(small, mid+small.line, colorText, c.TaskName)
	r.progress(pad*4, r.h-pad*6, r.w-pad*8, 6, c.Progress, colorSuccess)
}

// historyWindow returns the first visible row so that selected stays on
// screen.
func historyWindow(selected, total, visible int) int {
	if visible <= 0 || total <= visible {
		return 0
	}
	first := selected - visible/2
	return min(max(first, 0), total-visible)
}

func (r *Renderer) history(c nav.HistoryCmd) {
	r.title(c.TaskName)
	top := pad + large.line + 4
	if len(c.Entries) == 0 {
		r.centered(small, top+2*small.line, colorMuted, "No history yet")
		return
	}
	visible := int((r.h - top - pad) / histRowH)
	first := historyWindow(c.Selected, len(c.Entries), visible)
	for i := first; i < len(c.Entries) && i < first+visible; i++ {
		e := c.Entries[i]
		y := top + int16(i-first)*histRowH
		if i == c.Selected {
			r.fill(pad, y, r.w-2*pad, histRowH-1, colorSelBG)
		}
		base := y + (histRowH-1+small.ascent)/2
		r.text(small, pad+4, base, colorText, e.Date)
		since := "first"
		if e.DaysSinceLast != nil {
			since = "+" + plural(*e.DaysSinceLast, "day")
		}
		r.textRight(small, r.w-pad-4, base, colorMuted, since)
	}
}

func (r *Renderer) settings(c nav.SettingsCmd) {
	r.title("Settings")
	timeout := nav.SettingScreenTimeout.Label()
	r.menu(pad+large.line+4, c.Options, c.Selected,
		func(int) color.RGBA { return colorText },
		func(i int) string {
			if c.Options[i] != timeout {
				return ""
			}
			if c.ScreenTimeoutEnabled {
				return "On"
			}
			return "Off"
		})
}

func (r *Renderer) qrCode(c nav.QrCodeCmd) {
	r.centered(large, pad+large.ascent+4, colorAccent, "Set up")
	y := r.block(small, pad+large.line+10, 2, colorText, "Open this address on your phone:", true)
	r.block(small, y+4, 3, colorAccent, c.URL, true)
}

func (r *Renderer) voiceListening(c nav.VoiceListeningCmd) {
	mid := r.h / 2
	r.centered(large, mid-8, colorAccent, "Listening")
	r.centered(small, mid+small.line-2, colorText, strconv.FormatFloat(c.Elapsed, 'f', 1, 64)+"s")
	// A sweep that restarts every second.
	_, frac := splitSeconds(c.Elapsed)
	r.progress(pad*4, mid+2*small.line, r.w-pad*8, 4, frac, colorAccent)
	r.centered(small, r.h-pad-2, colorMuted, "Release to send")
}

func splitSeconds(s float64) (whole int, frac float64) {
	if s < 0 {
		return 0, 0
	}
	whole = int(s)
	return whole, s - float64(whole)
}

func (r *Renderer) voiceProcessing() {
	mid := r.h / 2
	r.centered(large, mid, colorAccent, "Thinking...")
}

func (r *Renderer) voiceResult(c nav.VoiceResultCmd) {
	r.card(pad, pad, r.w-2*pad, r.h-2*pad, colorAccent)
	r.block(small, pad+6, 5, colorText, c.Message, true)
	r.centered(small, r.h-pad-small.line+small.ascent-4, colorMuted, "Press: apply  Hold: cancel")
}
