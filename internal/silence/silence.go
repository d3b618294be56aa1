package silence

import (
	"context"
	"time"

	"github.com/ZacxDev/speech-clips/internal/config"
	"github.com/ZacxDev/speech-clips/internal/segment"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MillisecondRange is a silent span as reported by a RangeDetector.
type MillisecondRange struct {
	Start int64
	End   int64
}

// RangeDetector finds spans quieter than thresholdDB (dBFS) lasting at least
// minSilence. Ranges are returned in milliseconds, sorted by start.
type RangeDetector interface {
	DetectSilence(ctx context.Context, audioPath string, thresholdDB float64, minSilence time.Duration) ([]MillisecondRange, error)
}

// Detector turns a RangeDetector's output into silence intervals in seconds.
type Detector struct {
	backend     RangeDetector
	thresholdDB float64
	minSilence  time.Duration
	log         *logrus.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold sets the loudness threshold in dBFS.
func WithThreshold(db float64) Option {
	return func(d *Detector) {
		d.thresholdDB = db
	}
}

// WithMinSilence sets the shortest span reported as silence.
func WithMinSilence(min time.Duration) Option {
	return func(d *Detector) {
		d.minSilence = min
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *logrus.Logger) Option {
	return func(d *Detector) {
		d.log = log
	}
}

// NewDetector creates a Detector with -40 dBFS / 400ms defaults.
func NewDetector(backend RangeDetector, opts ...Option) *Detector {
	d := &Detector{
		backend:     backend,
		thresholdDB: config.DefaultSilenceThresholdDB,
		minSilence:  config.DefaultMinSilence,
		log:         logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Threshold returns the configured loudness threshold in dBFS.
func (d *Detector) Threshold() float64 {
	return d.thresholdDB
}

// MinSilence returns the configured minimum silence duration.
func (d *Detector) MinSilence() time.Duration {
	return d.minSilence
}

// Detect returns the silent spans of audioPath in seconds. A track without
// silence yields an empty list and no error.
func (d *Detector) Detect(ctx context.Context, audioPath string) ([]segment.TimeInterval, error) {
	ranges, err := d.backend.DetectSilence(ctx, audioPath, d.thresholdDB, d.minSilence)
	if err != nil {
		return nil, errors.Wrapf(err, "silence detection failed for %s", audioPath)
	}

	intervals := make([]segment.TimeInterval, 0, len(ranges))
	for _, r := range ranges {
		intervals = append(intervals, segment.TimeInterval{
			Start: float64(r.Start) / 1000,
			End:   float64(r.End) / 1000,
		})
	}

	d.log.WithFields(logrus.Fields{
		"audio":        audioPath,
		"threshold_db": d.thresholdDB,
		"min_silence":  d.minSilence,
		"spans":        len(intervals),
	}).Debug("Detected silence")

	return intervals, nil
}
