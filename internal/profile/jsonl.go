package profile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONLSink appends one JSON object per frame to a writer. Records
// carry the session id so interleaved runs can be told apart when
// the same file is appended to.
type JSONLSink struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closer  io.Closer
	session string
}

// NewJSONLSink opens path for append and returns a sink writing to
// it. An empty session gets a fresh id.
func NewJSONLSink(path, session string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("profile: open %s: %w", path, err)
	}
	return &JSONLSink{w: bufio.NewWriter(f), closer: f, session: orNewSession(session)}, nil
}

// NewJSONLSinkWriter returns a sink writing to w, for tests and
// in-process consumers.
func NewJSONLSinkWriter(w io.Writer, session string) *JSONLSink {
	return &JSONLSink{w: bufio.NewWriter(w), session: orNewSession(session)}
}

func orNewSession(session string) string {
	if session == "" {
		return uuid.New().String()
	}
	return session
}

// Session identifies this sink's run in emitted records.
func (s *JSONLSink) Session() string { return s.session }

func (s *JSONLSink) Record(m FrameMetrics) error {
	line := s.encode(m)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *JSONLSink) encode(m FrameMetrics) string {
	line, _ := sjson.Set("", "session", s.session)
	line, _ = sjson.Set(line, "seq", m.Seq)
	line, _ = sjson.Set(line, "ts", m.Time.Format(time.RFC3339Nano))
	line, _ = sjson.Set(line, "size_ms", ms(m.Size))
	line, _ = sjson.Set(line, "layout_ms", ms(m.Layout))
	line, _ = sjson.Set(line, "raster_ms", ms(m.Raster))
	line, _ = sjson.Set(line, "diff_ms", ms(m.Diff))
	line, _ = sjson.Set(line, "write_ms", ms(m.Write))
	line, _ = sjson.Set(line, "total_ms", ms(m.Total))
	line, _ = sjson.Set(line, "cells", m.CellsChanged)
	line, _ = sjson.Set(line, "bytes", m.BytesWritten)
	line, _ = sjson.Set(line, "full_redraw", m.FullRedraw)
	return line
}

// Close flushes buffered records and closes the underlying file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ms rounds a duration to milliseconds with microsecond precision,
// the resolution frame phases are measured at.
func ms(d time.Duration) float64 {
	return math.Round(d.Seconds()*1e6) / 1e3
}

// SlowFrames scans a JSON Lines document and returns the sequence
// numbers of frames whose total time exceeded threshold.
func SlowFrames(data []byte, threshold time.Duration) []uint64 {
	limit := ms(threshold)
	var out []uint64
	gjson.ForEachLine(string(data), func(line gjson.Result) bool {
		if line.Get("total_ms").Float() > limit {
			out = append(out, line.Get("seq").Uint())
		}
		return true
	})
	return out
}

// PhaseQuantile returns the q-th quantile of a phase's duration
// across a JSON Lines document, in milliseconds. Phase names match
// the record keys without the _ms suffix: "size", "layout",
// "raster", "diff", "write", "total".
func PhaseQuantile(data []byte, phase string, q float64) (float64, bool) {
	key := phase + "_ms"
	var vals []float64
	gjson.ForEachLine(string(data), func(line gjson.Result) bool {
		if v := line.Get(key); v.Exists() {
			vals = append(vals, v.Float())
		}
		return true
	})
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	if q <= 0 {
		return vals[0], true
	}
	if q >= 1 {
		return vals[len(vals)-1], true
	}
	// Nearest-rank.
	rank := int(math.Ceil(q*float64(len(vals)))) - 1
	return vals[rank], true
}
