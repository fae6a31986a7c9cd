// Package grapheme segments strings into grapheme clusters and
// assigns each cluster a display width in terminal columns. Widths are
// 0 (control, combining-only), 1 (narrow), or 2 (East Asian wide and
// emoji presentation). The renderer stores one cluster per cell, so
// cluster boundaries here decide cell boundaries everywhere else.
package grapheme

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Cluster is a single grapheme cluster and its display width.
type Cluster struct {
	Text  string
	Width int
}

// Clusters segments s into grapheme clusters. Zero-width clusters
// (stray combining marks, control characters) are returned with
// Width 0; callers decide whether to drop or fold them.
func Clusters(s string) []Cluster {
	if s == "" {
		return nil
	}
	out := make([]Cluster, 0, len(s))
	state := -1
	for len(s) > 0 {
		var cl string
		cl, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, Cluster{Text: cl, Width: ClusterWidth(cl)})
	}
	return out
}

// ClusterWidth returns the display width of a single grapheme cluster.
func ClusterWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	r, size := utf8.DecodeRuneInString(cluster)
	if isControl(r) {
		return 0
	}
	// Single rune: the common case, no sequence analysis needed.
	if size == len(cluster) {
		return runewidth.RuneWidth(r)
	}
	if isEmojiSequence(cluster, r) {
		return 2
	}
	// Base glyph plus combining marks: the base decides the width, the
	// marks contribute zero.
	return runewidth.StringWidth(cluster)
}

// Width returns the total display width of s in columns.
func Width(s string) int {
	if s == "" {
		return 0
	}
	if w, ok := measureCache.width(s); ok {
		return w
	}
	w := 0
	rest := s
	state := -1
	for len(rest) > 0 {
		var cl string
		cl, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w += ClusterWidth(cl)
	}
	measureCache.store(s, w)
	return w
}

func isControl(r rune) bool {
	return r < 0x20 || (r >= 0x7F && r < 0xA0)
}

// isEmojiSequence classifies multi-rune clusters that render as a
// single double-width emoji: ZWJ joins, variation-selector
// presentation, flags (regional indicator pairs), keycaps, and skin
// tone modified bases. Summing per-rune widths would overcount these.
func isEmojiSequence(cluster string, first rune) bool {
	if first >= 0x1F1E6 && first <= 0x1F1FF {
		// Regional indicator pair (flag).
		return true
	}
	for _, r := range cluster {
		switch {
		case r == 0x200D: // zero width joiner
			return true
		case r == 0xFE0F: // variation selector-16, emoji presentation
			return true
		case r == 0x20E3: // combining enclosing keycap
			return true
		case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifier
			return true
		}
	}
	return false
}
