package grapheme

import "strings"

// Truncate cuts s to at most max display columns, appending tail when
// anything was removed. Cuts happen only at cluster boundaries: a wide
// cluster that would straddle the limit is dropped entirely, leaving
// the column short rather than split.
func Truncate(s string, max int, tail string) string {
	if max <= 0 {
		return ""
	}
	if Width(s) <= max {
		return s
	}
	budget := max - Width(tail)
	if budget < 0 {
		budget = 0
	}
	var b strings.Builder
	w := 0
	for _, cl := range Clusters(s) {
		if w+cl.Width > budget {
			break
		}
		b.WriteString(cl.Text)
		w += cl.Width
	}
	b.WriteString(tail)
	return b.String()
}

// Wrap breaks s into lines of at most width display columns. Breaks
// prefer spaces; a word longer than width is broken at cluster
// boundaries, and a cluster is never split. Explicit newlines in s
// force breaks.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, wrapLine(para, width)...)
	}
	return lines
}

func wrapLine(s string, width int) []string {
	if Width(s) <= width {
		return []string{s}
	}

	var (
		out   []string
		line  strings.Builder
		lineW int
	)
	flush := func() {
		out = append(out, line.String())
		line.Reset()
		lineW = 0
	}

	for _, word := range strings.Split(s, " ") {
		ww := Width(word)
		switch {
		case lineW == 0:
			// Start of line.
		case lineW+1+ww <= width:
			line.WriteByte(' ')
			lineW++
		default:
			flush()
		}
		if ww <= width {
			line.WriteString(word)
			lineW += ww
			continue
		}
		// Word longer than a full line: fill at cluster boundaries.
		for _, cl := range Clusters(word) {
			if lineW+cl.Width > width && lineW > 0 {
				flush()
			}
			line.WriteString(cl.Text)
			lineW += cl.Width
		}
	}
	flush()
	return out
}
