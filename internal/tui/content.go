package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/deskgrid/internal/block"
)

// blockContent renders the body lines of a block. Layout never depends on it.
func blockContent(b block.Block, now time.Time) []string {
	switch b.Type {
	case block.TypeClock:
		if tz := b.Props["timezone"]; tz != "" {
			if loc, err := time.LoadLocation(tz); err == nil {
				now = now.In(loc)
			}
		}
		return []string{now.Format("15:04:05"), now.Format("Mon Jan 2")}
	case block.TypeNote:
		text := b.Props["text"]
		if text == "" {
			return nil
		}
		return strings.Split(text, "\n")
	case block.TypeCalendar:
		return monthLines(now)
	case block.TypeWeather:
		return compact(b.Props["location"], b.Props["summary"])
	case block.TypeStock:
		return compact(strings.TrimSpace(b.Props["symbol"]+" "+b.Props["price"]), b.Props["change"])
	case block.TypeFeed, block.TypeBookmarks:
		return listLines(b.Props["items"])
	}
	return propLines(b.Props)
}

func compact(lines ...string) []string {
	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// listLines splits a comma separated prop into bullet lines.
func listLines(items string) []string {
	var out []string
	for _, it := range strings.Split(items, ",") {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, "• "+it)
		}
	}
	return out
}

func propLines(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+props[k])
	}
	return out
}

// monthLines draws a Monday-first month grid with today marked by an asterisk.
func monthLines(now time.Time) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	days := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) + 6) % 7

	lines := []string{now.Format("January 2006"), "Mo Tu We Th Fr Sa Su"}
	var sb strings.Builder
	sb.WriteString(strings.Repeat("   ", lead))
	col := lead
	for d := 1; d <= days; d++ {
		if d == now.Day() {
			sb.WriteString(fmt.Sprintf("%2d*", d))
		} else {
			sb.WriteString(fmt.Sprintf("%2d ", d))
		}
		col++
		if col == 7 {
			lines = append(lines, strings.TrimRight(sb.String(), " "))
			sb.Reset()
			col = 0
		}
	}
	if sb.Len() > 0 {
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	return lines
}
