package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZacxDev/speech-clips/internal/config"
	"github.com/ZacxDev/speech-clips/internal/profile"
	"github.com/ZacxDev/speech-clips/internal/segment"
	"github.com/ZacxDev/speech-clips/internal/transcribe"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MediaGateway is the media work the pipeline delegates to ffmpeg.
type MediaGateway interface {
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)
	ExportAudio(ctx context.Context, videoPath, audioPath string) error
	ExtractClip(ctx context.Context, videoPath, clipPath string, span segment.TimeInterval, prof profile.Profile) error
	OverlayText(ctx context.Context, clipPath, outputPath, text string, prof profile.Profile) error
	ExportGIF(ctx context.Context, clipPath, gifPath string, prof profile.Profile) error
}

// SilenceDetector returns the silent spans of an audio file in seconds.
type SilenceDetector interface {
	Detect(ctx context.Context, audioPath string) ([]segment.TimeInterval, error)
}

// Analysis is the silence/keep split of one video.
type Analysis struct {
	Duration float64
	Silence  []segment.TimeInterval
	Keep     []segment.TimeInterval
}

// Pipeline turns a video into one captioned GIF per non-silent span
type Pipeline struct {
	opts        *config.PipelineOptions
	media       MediaGateway
	detector    SilenceDetector
	transcriber transcribe.Transcriber
	profile     profile.Profile
	log         *logrus.Logger
	newID       func() string
}

// NewPipeline creates a new pipeline. The transcriber is shared, not owned.
func NewPipeline(opts *config.PipelineOptions, media MediaGateway, detector SilenceDetector, transcriber transcribe.Transcriber, log *logrus.Logger) (*Pipeline, error) {
	if err := config.Validate(opts); err != nil {
		return nil, err
	}

	prof, err := profile.Get(opts.Profile)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Pipeline{
		opts:        opts,
		media:       media,
		detector:    detector,
		transcriber: transcriber,
		profile:     prof,
		log:         log,
		newID:       uuid.NewString,
	}, nil
}

// ArtifactPath returns the GIF path for the index-th keep interval.
func ArtifactPath(outputDir string, index int) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s%d%s", config.ArtifactPrefix, index, config.ArtifactExt))
}

// Analyze exports the audio of videoPath and splits it into silence and keep
// intervals without encoding anything.
func (p *Pipeline) Analyze(ctx context.Context, videoPath string) (*Analysis, error) {
	invocationID := p.newID()
	log := p.log.WithFields(logrus.Fields{"invocation_id": invocationID, "video": videoPath})

	scratch, err := p.createScratch(invocationID)
	if err != nil {
		return nil, err
	}
	defer p.removeScratch(log, scratch)

	return p.analyze(ctx, log, videoPath, scratch)
}

// Process writes segment_<i>.gif into outputDir for every keep interval of
// videoPath and returns the paths in keep-interval order.
//
// All temporary files live in a scratch directory unique to this call, which
// is removed on every return path. The first failing step aborts the call;
// GIFs already written for earlier segments are left in place.
func (p *Pipeline) Process(ctx context.Context, videoPath, outputDir string) ([]string, error) {
	invocationID := p.newID()
	log := p.log.WithFields(logrus.Fields{"invocation_id": invocationID, "video": videoPath})

	scratch, err := p.createScratch(invocationID)
	if err != nil {
		return nil, err
	}
	defer p.removeScratch(log, scratch)

	analysis, err := p.analyze(ctx, log, videoPath, scratch)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrap(err, "error creating output directory")
	}

	total := len(analysis.Keep)
	paths := make([]string, 0, total)
	for i, span := range analysis.Keep {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		log.Debugf("Processing segment %d/%d: %s", i+1, total, span)

		gifPath, err := p.processSegment(ctx, log, videoPath, outputDir, scratch, i, span)
		if err != nil {
			return nil, err
		}

		log.Debugf("Completed segment %d/%d: %s", i+1, total, gifPath)
		paths = append(paths, gifPath)
	}

	log.WithField("segments", total).Info("Processed video")
	return paths, nil
}

func (p *Pipeline) analyze(ctx context.Context, log *logrus.Entry, videoPath, scratch string) (*Analysis, error) {
	audioPath := filepath.Join(scratch, "audio.wav")
	if err := p.media.ExportAudio(ctx, videoPath, audioPath); err != nil {
		return nil, errors.Wrap(err, "failed to export video audio")
	}
	defer removeFile(log, audioPath)

	duration, err := p.media.ProbeDuration(ctx, videoPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get video metadata")
	}
	if duration <= 0 {
		return nil, errors.Errorf("video %s has no duration", videoPath)
	}

	silence, err := p.detector.Detect(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	keep := segment.Derive(silence, duration)

	log.WithFields(logrus.Fields{
		"duration": duration,
		"silence":  len(silence),
		"keep":     len(keep),
	}).Info("Derived segments")

	return &Analysis{
		Duration: duration,
		Silence:  silence,
		Keep:     keep,
	}, nil
}

func (p *Pipeline) processSegment(ctx context.Context, log *logrus.Entry, videoPath, outputDir, scratch string, index int, span segment.TimeInterval) (string, error) {
	ext := p.profile.GetClipFormat()
	clipPath := filepath.Join(scratch, fmt.Sprintf("segment_%d.%s", index, ext))
	audioPath := filepath.Join(scratch, fmt.Sprintf("segment_%d_audio.wav", index))
	overlaidPath := filepath.Join(scratch, fmt.Sprintf("segment_%d_with_text.%s", index, ext))

	// each file is removed independently of the others and of how far we got
	defer removeFile(log, clipPath)
	defer removeFile(log, audioPath)
	defer removeFile(log, overlaidPath)

	fail := func(stage Stage, err error) (string, error) {
		return "", &SegmentError{Index: index, Span: span, Stage: stage, Err: err}
	}

	if err := p.media.ExtractClip(ctx, videoPath, clipPath, span, p.profile); err != nil {
		return fail(StageExtract, err)
	}

	if err := p.media.ExportAudio(ctx, clipPath, audioPath); err != nil {
		return fail(StageAudio, err)
	}

	text, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fail(StageTranscribe, err)
	}

	log.WithFields(logrus.Fields{
		"segment":    index,
		"start":      span.Start,
		"end":        span.End,
		"transcript": text,
	}).Debug("Transcribed segment")

	if err := p.media.OverlayText(ctx, clipPath, overlaidPath, text, p.profile); err != nil {
		return fail(StageOverlay, err)
	}

	gifPath := ArtifactPath(outputDir, index)
	if err := p.media.ExportGIF(ctx, overlaidPath, gifPath, p.profile); err != nil {
		return fail(StageGIF, err)
	}

	return gifPath, nil
}

func (p *Pipeline) createScratch(invocationID string) (string, error) {
	dir, err := os.MkdirTemp(p.opts.ScratchDir, config.TempDirPrefix+invocationID+"_")
	if err != nil {
		return "", errors.Wrap(err, "failed to create scratch directory")
	}
	return dir, nil
}

func (p *Pipeline) removeScratch(log *logrus.Entry, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.WithError(err).Warnf("Failed to remove scratch directory %s", dir)
	}
}

func removeFile(log *logrus.Entry, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warnf("Failed to remove temporary file %s", path)
	}
}
