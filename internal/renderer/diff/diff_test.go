package diff

import (
	"bytes"
	"testing"

	"github.com/dshills/tessera/internal/renderer/buffer"
	"github.com/dshills/tessera/internal/renderer/core"
)

func TestDiffWideGlyphSingleMove(t *testing.T) {
	front := buffer.New(1, 4)
	back := buffer.New(1, 4)
	back.Set(0, 0, core.Cell{Cluster: "雪", Width: 2, Style: core.DefaultStyle()})

	r := NewRenderer(DefaultOptions())
	out, stats := r.Diff(front, back)

	want := "\x1b[1;1H雪\x1b[0m"
	if string(out) != want {
		t.Errorf("Diff() = %q, want %q", out, want)
	}
	if stats.CellsChanged != 1 {
		t.Errorf("CellsChanged = %d, want 1", stats.CellsChanged)
	}
	if stats.Escapes != 1 {
		t.Errorf("Escapes = %d, want 1", stats.Escapes)
	}
	if stats.FullRedraw {
		t.Error("FullRedraw = true, want false")
	}
	if stats.BytesWritten != len(want) {
		t.Errorf("BytesWritten = %d, want %d", stats.BytesWritten, len(want))
	}
}

func TestDiffNoChangesEmitsNothing(t *testing.T) {
	front := buffer.New(2, 4)
	back := buffer.New(2, 4)
	back.MarkAllDirty()

	r := NewRenderer(DefaultOptions())
	out, stats := r.Diff(front, back)

	if len(out) != 0 {
		t.Errorf("Diff() = %q, want empty", out)
	}
	if stats.CellsChanged != 0 || stats.Escapes != 0 || stats.BytesWritten != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
}

func TestDiffSkipsCleanRows(t *testing.T) {
	front := buffer.New(2, 4)
	back := buffer.New(2, 4)
	back.Set(1, 0, core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()})
	back.ClearDirty()

	r := NewRenderer(DefaultOptions())
	out, _ := r.Diff(front, back)
	if len(out) != 0 {
		t.Errorf("clean rows should be skipped, got %q", out)
	}

	back.MarkRowDirty(1)
	out, stats := r.Diff(front, back)
	want := "\x1b[2;1Hx\x1b[0m"
	if string(out) != want {
		t.Errorf("Diff() = %q, want %q", out, want)
	}
	if stats.CellsChanged != 1 {
		t.Errorf("CellsChanged = %d, want 1", stats.CellsChanged)
	}
}

func TestDiffErasesVacatedRow(t *testing.T) {
	// The front row was written last frame, the back row not at all.
	// The row must still be examined so the old glyph is blanked.
	front := buffer.New(2, 4)
	front.Set(0, 1, core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()})
	back := buffer.New(2, 4)

	r := NewRenderer(DefaultOptions())
	out, stats := r.Diff(front, back)

	want := "\x1b[1;2H \x1b[0m"
	if string(out) != want {
		t.Errorf("Diff() = %q, want %q", out, want)
	}
	if stats.CellsChanged != 1 {
		t.Errorf("CellsChanged = %d, want 1", stats.CellsChanged)
	}
}

func TestDiffDimensionMismatchFullRedraw(t *testing.T) {
	front := buffer.New(2, 2)
	back := buffer.New(1, 3)
	back.Set(0, 0, core.Cell{Cluster: "A", Width: 1, Style: core.DefaultStyle()})

	r := NewRenderer(DefaultOptions())
	out, stats := r.Diff(front, back)

	if !stats.FullRedraw {
		t.Fatal("FullRedraw = false, want true")
	}
	want := "\x1b[2J\x1b[HA \x1b[0m"
	if string(out) != want {
		t.Errorf("Diff() = %q, want %q", out, want)
	}
}

func TestDiffBottomRightSuppressed(t *testing.T) {
	t.Run("NarrowCorner", func(t *testing.T) {
		front := buffer.New(2, 2)
		back := buffer.New(2, 2)
		back.Set(1, 1, core.Cell{Cluster: "X", Width: 1, Style: core.DefaultStyle()})

		r := NewRenderer(DefaultOptions())
		out, stats := r.Diff(front, back)
		if len(out) != 0 {
			t.Errorf("corner write should be suppressed, got %q", out)
		}
		if stats.CellsChanged != 0 {
			t.Errorf("CellsChanged = %d, want 0", stats.CellsChanged)
		}
	})

	t.Run("WideIntoCorner", func(t *testing.T) {
		front := buffer.New(2, 4)
		back := buffer.New(2, 4)
		back.Set(1, 2, core.Cell{Cluster: "雪", Width: 2, Style: core.DefaultStyle()})

		r := NewRenderer(DefaultOptions())
		out, _ := r.Diff(front, back)
		if len(out) != 0 {
			t.Errorf("wide glyph reaching the corner should be suppressed, got %q", out)
		}
	})

	t.Run("LastRowNotCorner", func(t *testing.T) {
		front := buffer.New(2, 4)
		back := buffer.New(2, 4)
		back.Set(1, 2, core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()})

		r := NewRenderer(DefaultOptions())
		out, _ := r.Diff(front, back)
		want := "\x1b[2;3Hx\x1b[0m"
		if string(out) != want {
			t.Errorf("Diff() = %q, want %q", out, want)
		}
	})
}

func TestDiffAdjacentCellsShareCursorRun(t *testing.T) {
	front := buffer.New(1, 5)
	back := buffer.New(1, 5)
	back.Set(0, 0, core.Cell{Cluster: "a", Width: 1, Style: core.DefaultStyle()})
	back.Set(0, 1, core.Cell{Cluster: "b", Width: 1, Style: core.DefaultStyle()})

	r := NewRenderer(DefaultOptions())
	out, stats := r.Diff(front, back)

	want := "\x1b[1;1Hab\x1b[0m"
	if string(out) != want {
		t.Errorf("Diff() = %q, want %q", out, want)
	}
	if stats.Escapes != 1 {
		t.Errorf("Escapes = %d, want 1", stats.Escapes)
	}
}

func TestDiffPenAdvancesByClusterWidth(t *testing.T) {
	front := buffer.New(1, 5)
	back := buffer.New(1, 5)
	back.Set(0, 0, core.Cell{Cluster: "雪", Width: 2, Style: core.DefaultStyle()})
	back.Set(0, 2, core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()})

	r := NewRenderer(DefaultOptions())
	out, stats := r.Diff(front, back)

	// The cell after the wide glyph is adjacent to the pen, so no
	// second cursor move is needed.
	want := "\x1b[1;1H雪x\x1b[0m"
	if string(out) != want {
		t.Errorf("Diff() = %q, want %q", out, want)
	}
	if stats.Escapes != 1 {
		t.Errorf("Escapes = %d, want 1", stats.Escapes)
	}
	if stats.CellsChanged != 2 {
		t.Errorf("CellsChanged = %d, want 2", stats.CellsChanged)
	}
}

func TestDiffStyleEmittedOnlyOnChange(t *testing.T) {
	red := core.NewStyle(core.ColorFromRGB(255, 0, 0))
	front := buffer.New(1, 6)
	back := buffer.New(1, 6)
	back.Set(0, 0, core.Cell{Cluster: "X", Width: 1, Style: red})
	back.Set(0, 2, core.Cell{Cluster: "Y", Width: 1, Style: red})

	r := NewRenderer(DefaultOptions())
	out, stats := r.Diff(front, back)

	want := "\x1b[1;1H\x1b[0;38;2;255;0;0;49mX\x1b[1;3HY\x1b[0m"
	if string(out) != want {
		t.Errorf("Diff() = %q, want %q", out, want)
	}
	if stats.Escapes != 3 {
		t.Errorf("Escapes = %d, want 3", stats.Escapes)
	}
	if got := bytes.Count(out, []byte("\x1b[0m")); got != 1 {
		t.Errorf("trailing resets = %d, want 1", got)
	}
}

func TestDiffAttributeSequence(t *testing.T) {
	st := core.DefaultStyle().Bold().Underline()
	front := buffer.New(1, 3)
	back := buffer.New(1, 3)
	back.Set(0, 0, core.Cell{Cluster: "A", Width: 1, Style: st})

	r := NewRenderer(DefaultOptions())
	out, _ := r.Diff(front, back)

	want := "\x1b[1;1H\x1b[0;1;4;39;49mA\x1b[0m"
	if string(out) != want {
		t.Errorf("Diff() = %q, want %q", out, want)
	}
}

func TestDiffIndexedColors(t *testing.T) {
	tests := []struct {
		name string
		st   core.Style
		want string
	}{
		{
			name: "Basic",
			st: core.Style{
				Foreground: core.ColorFromIndex(1),
				Background: core.ColorFromIndex(4),
			},
			want: "\x1b[1;1H\x1b[0;31;44mA\x1b[0m",
		},
		{
			name: "Bright",
			st: core.Style{
				Foreground: core.ColorFromIndex(9),
				Background: core.ColorFromIndex(12),
			},
			want: "\x1b[1;1H\x1b[0;91;104mA\x1b[0m",
		},
		{
			name: "Palette256",
			st: core.Style{
				Foreground: core.ColorFromIndex(196),
				Background: core.ColorDefault,
			},
			want: "\x1b[1;1H\x1b[0;38;5;196;49mA\x1b[0m",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front := buffer.New(1, 3)
			back := buffer.New(1, 3)
			back.Set(0, 0, core.Cell{Cluster: "A", Width: 1, Style: tt.st})

			r := NewRenderer(DefaultOptions())
			out, _ := r.Diff(front, back)
			if string(out) != tt.want {
				t.Errorf("Diff() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestDiffQuantization(t *testing.T) {
	red := core.NewStyle(core.ColorFromRGB(255, 0, 0))

	tests := []struct {
		name  string
		depth ColorDepth
		st    core.Style
		want  string
	}{
		{
			name:  "TrueColorPassthrough",
			depth: DepthTrueColor,
			st:    red,
			want:  "\x1b[1;1H\x1b[0;38;2;255;0;0;49mA\x1b[0m",
		},
		{
			name:  "RGBTo256",
			depth: Depth256,
			st:    red,
			want:  "\x1b[1;1H\x1b[0;38;5;196;49mA\x1b[0m",
		},
		{
			name:  "RGBTo16",
			depth: Depth16,
			st:    red,
			want:  "\x1b[1;1H\x1b[0;91;49mA\x1b[0m",
		},
		{
			name:  "PaletteTo16",
			depth: Depth16,
			st:    core.NewStyle(core.ColorFromIndex(196)),
			want:  "\x1b[1;1H\x1b[0;91;49mA\x1b[0m",
		},
		{
			name:  "MonoDropsColor",
			depth: DepthMono,
			st:    red,
			want:  "\x1b[1;1H\x1b[0;39;49mA\x1b[0m",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front := buffer.New(1, 3)
			back := buffer.New(1, 3)
			back.Set(0, 0, core.Cell{Cluster: "A", Width: 1, Style: tt.st})

			r := NewRenderer(Options{Depth: tt.depth})
			out, _ := r.Diff(front, back)
			if string(out) != tt.want {
				t.Errorf("Diff() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestIndex256(t *testing.T) {
	tests := []struct {
		c    core.Color
		want uint8
	}{
		{core.ColorFromRGB(255, 0, 0), 196},
		{core.ColorFromRGB(0, 0, 0), 16},
		{core.ColorFromRGB(255, 255, 255), 231},
		{core.ColorFromRGB(128, 128, 128), 244},
	}
	for _, tt := range tests {
		if got := index256(tt.c); got != tt.want {
			t.Errorf("index256(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func TestFullRedrawPaintsEverything(t *testing.T) {
	back := buffer.New(2, 3)
	back.Set(0, 0, core.Cell{Cluster: "A", Width: 1, Style: core.DefaultStyle()})

	r := NewRenderer(DefaultOptions())
	out, stats := r.FullRedraw(back)

	want := "\x1b[2J\x1b[HA  \x1b[2;1H  \x1b[0m"
	if string(out) != want {
		t.Errorf("FullRedraw() = %q, want %q", out, want)
	}
	if !stats.FullRedraw {
		t.Error("FullRedraw flag not set")
	}
	if stats.CellsChanged != 5 {
		t.Errorf("CellsChanged = %d, want 5", stats.CellsChanged)
	}
	if stats.Escapes != 3 {
		t.Errorf("Escapes = %d, want 3", stats.Escapes)
	}
}

func TestDiffPenStyleResetBetweenFrames(t *testing.T) {
	red := core.NewStyle(core.ColorFromRGB(255, 0, 0))
	r := NewRenderer(DefaultOptions())

	front := buffer.New(1, 4)
	back := buffer.New(1, 4)
	back.Set(0, 0, core.Cell{Cluster: "X", Width: 1, Style: red})
	r.Diff(front, back)

	// The trailing reset put the terminal back to the default style,
	// so the next frame must re-emit the color.
	front2 := buffer.New(1, 4)
	back2 := buffer.New(1, 4)
	back2.Set(0, 1, core.Cell{Cluster: "Y", Width: 1, Style: red})
	out, _ := r.Diff(front2, back2)

	want := "\x1b[1;2H\x1b[0;38;2;255;0;0;49mY\x1b[0m"
	if string(out) != want {
		t.Errorf("second Diff() = %q, want %q", out, want)
	}
}

func TestRendererTotals(t *testing.T) {
	r := NewRenderer(DefaultOptions())

	front := buffer.New(1, 4)
	back := buffer.New(1, 4)
	back.Set(0, 0, core.Cell{Cluster: "a", Width: 1, Style: core.DefaultStyle()})
	r.Diff(front, back)
	r.Diff(buffer.New(2, 2), buffer.New(1, 4))

	tot := r.Totals()
	if tot.Frames != 2 {
		t.Errorf("Frames = %d, want 2", tot.Frames)
	}
	if tot.FullRedraws != 1 {
		t.Errorf("FullRedraws = %d, want 1", tot.FullRedraws)
	}
	if tot.Cells == 0 || tot.Bytes == 0 {
		t.Errorf("Totals = %+v, want nonzero cells and bytes", tot)
	}
}
