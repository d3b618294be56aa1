package processor

import (
	"fmt"

	"github.com/ZacxDev/speech-clips/internal/segment"
)

// Stage names the per-segment step that failed.
type Stage string

const (
	StageExtract    Stage = "extract"
	StageAudio      Stage = "audio"
	StageTranscribe Stage = "transcribe"
	StageOverlay    Stage = "overlay"
	StageGIF        Stage = "gif"
)

// SegmentError reports which keep interval failed and at which step.
type SegmentError struct {
	Index int
	Span  segment.TimeInterval
	Stage Stage
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d (%s) failed at %s: %v", e.Index, e.Span, e.Stage, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// Cause lets github.com/pkg/errors.Cause walk through a SegmentError.
func (e *SegmentError) Cause() error {
	return e.Err
}
