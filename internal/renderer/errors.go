package renderer

import (
	"errors"
	"fmt"
)

// ErrNoView is returned when a frame is attempted before the view
// function produced a tree.
var ErrNoView = errors.New("renderer: no view tree")

// Phase names a stage of the frame pipeline.
type Phase uint8

const (
	PhaseSize Phase = iota
	PhaseLayout
	PhaseRaster
	PhaseDiff
	PhaseWrite
	PhaseSwap
)

func (p Phase) String() string {
	switch p {
	case PhaseSize:
		return "size"
	case PhaseLayout:
		return "layout"
	case PhaseRaster:
		return "raster"
	case PhaseDiff:
		return "diff"
	case PhaseWrite:
		return "write"
	case PhaseSwap:
		return "swap"
	default:
		return "unknown"
	}
}

// PhaseError wraps a failure with the pipeline stage it happened
// in. A failed frame is abandoned at its phase boundary; the front
// buffer still describes what is on screen.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("renderer: %s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

func phaseErr(p Phase, err error) *PhaseError {
	return &PhaseError{Phase: p, Err: err}
}
