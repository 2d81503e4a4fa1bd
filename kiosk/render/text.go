package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"kiosk/kiosk/model"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"
)

// face is a font plus the vertical metrics the layout needs. y coordinates
// passed to tinyfont are baselines.
type face struct {
	font   tinyfont.Fonter
	ascent int16
	line   int16
}

var (
	small = face{font: &proggy.TinySZ8pt7b, ascent: 9, line: 12}
	large = face{font: &freesans.Bold9pt7b, ascent: 13, line: 18}
)

func (f face) width(s string) int {
	_, outbox := tinyfont.LineWidth(f.font, s)
	return int(outbox)
}

const ellipsis = ".."

// truncate shortens s with an ellipsis until measure(s) fits in maxW.
func truncate(s string, maxW int, measure func(string) int) string {
	if measure(s) <= maxW {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		cand := strings.TrimRight(string(runes[:n]), " ") + ellipsis
		if measure(cand) <= maxW {
			return cand
		}
	}
	return ellipsis
}

// wrap breaks s into at most maxLines lines no wider than maxW. Words that
// do not fit on a line of their own are split by rune. The last line is
// truncated when text remains.
func wrap(s string, maxW, maxLines int, measure func(string) int) []string {
	if maxLines <= 0 {
		return nil
	}
	words := strings.Fields(s)
	var (
		lines []string
		cur   string
	)
	flush := func() {
		lines = append(lines, cur)
		cur = ""
	}
	for i := 0; i < len(words); i++ {
		w := words[i]
		cand := w
		if cur != "" {
			cand = cur + " " + w
		}
		switch {
		case measure(cand) <= maxW:
			cur = cand
			continue
		case cur != "":
			flush()
			i--
		default:
			head, rest := splitToWidth(w, maxW, measure)
			cur = head
			flush()
			if rest != "" {
				words[i] = rest
				i--
			}
		}
		if len(lines) == maxLines {
			remaining := strings.Join(words[i+1:], " ")
			if remaining != "" {
				lines[maxLines-1] = truncate(lines[maxLines-1]+" "+remaining, maxW, measure)
			}
			return lines
		}
	}
	if cur != "" {
		flush()
	}
	return lines
}

// splitToWidth returns the longest rune prefix of s that fits in maxW (at
// least one rune) and the rest.
func splitToWidth(s string, maxW int, measure func(string) int) (head, rest string) {
	i := 0
	for i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		if i > 0 && measure(s[:i+size]) > maxW {
			break
		}
		i += size
	}
	return s[:i], s[i:]
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// dueText describes days-until-due relative to today.
func dueText(days int) string {
	switch {
	case days < 0:
		return plural(-days, "day") + " overdue"
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return "In " + plural(days, "day")
	}
}

// everyText describes a recurrence, e.g. "Every 2 weeks".
func everyText(typ model.RecurrenceType, n uint32) string {
	unit := "day"
	switch typ {
	case model.Weekly:
		unit = "week"
	case model.Monthly:
		unit = "month"
	case model.Yearly:
		unit = "year"
	}
	if n == 1 {
		return "Every " + unit
	}
	return "Every " + plural(int(n), unit)
}

func filterTitle(filter string) string {
	switch filter {
	case model.FilterOverdue:
		return "Overdue"
	case model.FilterToday:
		return "Today"
	case model.FilterWeek:
		return "This week"
	default:
		return "All tasks"
	}
}
