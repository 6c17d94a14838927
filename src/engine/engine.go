// Package engine describes the real-time rendering collaborator the looper
// drives. Every call is a non-blocking scheduling instruction: starting a
// source registers a future event, it never waits for playback.
package engine

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"tjweldon/looper/src/clock"
	"tjweldon/looper/src/samples"
)

var (
	ErrInvalidBuffer = errors.New("invalid buffer")
	ErrInvalidTime   = errors.New("invalid start time or offset")
	ErrUnknownGain   = errors.New("gain does not belong to this renderer")
	ErrClosed        = errors.New("renderer closed")
)

// ScheduleError is returned when the renderer rejects an instruction
type ScheduleError struct {
	Op  string
	Err error
}

func (e *ScheduleError) Error() string { return fmt.Sprintf("schedule %s: %v", e.Op, e.Err) }
func (e *ScheduleError) Unwrap() error { return e.Err }

// Renderer schedules playback with sample-accurate precision
type Renderer interface {
	// Now is the render position of the shared timeline
	clock.Clock

	// NewGain creates a gain control that sources can be routed through
	NewGain(initial float64) Gain

	// ScheduleStart begins playing sample through dst at the instant at,
	// rendering as though it had already played for seek. Instants in
	// the past start at the next rendered frame.
	ScheduleStart(sample *samples.Sample, at, seek time.Duration, loop bool, dst Gain) (Source, error)

	// JoinLoop loops sample through dst as though it had been playing
	// since origin. The start frame and the seek into the sample are both
	// taken from the timeline at the moment the renderer accepts the
	// call, so rendering in between cannot shift the loop. An origin not
	// yet reached starts the loop at origin from the beginning.
	JoinLoop(sample *samples.Sample, origin time.Duration, dst Gain) (Source, error)

	// Stop silences src from the next rendered frame on. Stopping a source
	// twice is harmless.
	Stop(src Source)
}

// Gain scales everything routed through it
type Gain interface {
	// RampTo approaches value exponentially with the given time constant,
	// starting now. A zero time constant jumps straight to value.
	RampTo(value float64, timeConstant time.Duration)
	Value() float64
	Target() float64
}

// Source is a handle on one scheduled playback of a sample
type Source interface {
	ID() uint64
	Sample() *samples.Sample
	// Start is the instant the source becomes audible
	Start() time.Duration
	// Offset is the seek position the source started from
	Offset() time.Duration
	// Phase is the live position within the sample
	Phase() time.Duration
	Playing() bool
}
