package render

import (
	"reflect"
	"testing"
	"unicode/utf8"

	"kiosk/kiosk/model"
)

func runeCount(s string) int { return utf8.RuneCountInString(s) }

func TestWrap(t *testing.T) {
	cases := []struct {
		in       string
		maxW     int
		maxLines int
		want     []string
	}{
		{"", 10, 2, nil},
		{"aa bb cc", 5, 2, []string{"aa bb", "cc"}},
		{"aa bb cc dd", 5, 1, []string{"aa.."}},
		{"abcdefgh", 3, 3, []string{"abc", "def", "gh"}},
		{"abcdefgh", 3, 2, []string{"abc", "d.."}},
		{"  spaced   out  ", 20, 1, []string{"spaced out"}},
		{"héllo wörld", 5, 2, []string{"héllo", "wörld"}},
		{"anything", 10, 0, nil},
	}
	for _, c := range cases {
		got := wrap(c.in, c.maxW, c.maxLines, runeCount)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("wrap(%q, %d, %d) = %q, want %q", c.in, c.maxW, c.maxLines, got, c.want)
		}
		for _, line := range got {
			if runeCount(line) > c.maxW {
				t.Errorf("wrap(%q): line %q exceeds %d", c.in, line, c.maxW)
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10, runeCount); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a longer name", 8, runeCount); got != "a long.." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abc", 1, runeCount); got != ellipsis {
		t.Fatalf("got %q", got)
	}
}

func TestDueText(t *testing.T) {
	for days, want := range map[int]string{
		-3: "3 days overdue",
		-1: "1 day overdue",
		0:  "Due today",
		1:  "Due tomorrow",
		5:  "In 5 days",
	} {
		if got := dueText(days); got != want {
			t.Errorf("dueText(%d) = %q, want %q", days, got, want)
		}
	}
}

func TestEveryText(t *testing.T) {
	cases := []struct {
		typ  model.RecurrenceType
		n    uint32
		want string
	}{
		{model.Daily, 1, "Every day"},
		{model.Daily, 3, "Every 3 days"},
		{model.Weekly, 2, "Every 2 weeks"},
		{model.Monthly, 1, "Every month"},
		{model.Yearly, 4, "Every 4 years"},
	}
	for _, c := range cases {
		if got := everyText(c.typ, c.n); got != c.want {
			t.Errorf("everyText(%v, %d) = %q, want %q", c.typ, c.n, got, c.want)
		}
	}
}

func TestFontsMeasure(t *testing.T) {
	if small.width("MMMM") <= small.width("M") {
		t.Fatal("small font does not measure")
	}
	if large.width("0") <= 0 {
		t.Fatal("large font does not measure")
	}
}
