package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZacxDev/speech-clips/internal/profile"
	"github.com/ZacxDev/speech-clips/internal/segment"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// stderrTailLines is how much ffmpeg output is kept in returned errors.
const stderrTailLines = 15

// VideoMetadata contains metadata about a video file
type VideoMetadata struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
}

// Processor wraps FFmpeg functionality
type Processor struct {
	log *logrus.Logger
}

// NewProcessor creates a new FFmpeg processor
func NewProcessor(log *logrus.Logger) *Processor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Processor{
		log: log,
	}
}

// GetVideoMetadata retrieves metadata about a video file
func (p *Processor) GetVideoMetadata(inputPath string) (*VideoMetadata, error) {
	probe, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error probing %s", inputPath)
	}

	return parseVideoMetadata(probe)
}

// ProbeDuration returns the duration of a video in seconds.
func (p *Processor) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}

	metadata, err := p.GetVideoMetadata(inputPath)
	if err != nil {
		return 0, err
	}

	p.log.Debugf("Video metadata: Duration=%.2fs, Resolution=%dx%d, Codec=%s",
		metadata.Duration, metadata.Width, metadata.Height, metadata.Codec)

	return metadata.Duration, nil
}

// ExportAudio writes the audio track of inputPath to audioPath as 16kHz mono PCM.
func (p *Processor) ExportAudio(ctx context.Context, inputPath, audioPath string) error {
	stream := ffmpeg.Input(inputPath).
		Audio().
		Output(audioPath, ffmpeg.KwArgs{
			"acodec": "pcm_s16le",
			"ar":     16000,
			"ac":     1,
		}).
		OverWriteOutput()

	if err := p.run(ctx, stream); err != nil {
		return errors.Wrapf(err, "failed to export audio from %s", inputPath)
	}
	return nil
}

// ExtractClip re-encodes the [Start, End] span of inputPath into outputPath.
func (p *Processor) ExtractClip(ctx context.Context, inputPath, outputPath string, span segment.TimeInterval, prof profile.Profile) error {
	inputKwargs := ffmpeg.KwArgs{
		"ss": formatSeconds(span.Start),
	}

	outputKwargs := ffmpeg.KwArgs{
		"t":       formatSeconds(span.Duration()),
		"c:v":     prof.GetVideoCodec(),
		"c:a":     prof.GetAudioCodec(),
		"pix_fmt": "yuv420p",
	}
	for k, v := range GetCodecSettings(prof.GetClipFormat()).EncoderOptions {
		outputKwargs[k] = v
	}

	stream := ffmpeg.Input(inputPath, inputKwargs).
		Output(outputPath, outputKwargs).
		OverWriteOutput()

	if err := p.run(ctx, stream); err != nil {
		return errors.Wrapf(err, "failed to extract %s from %s", span, inputPath)
	}
	return nil
}

// run executes a compiled ffmpeg stream, keeping the tail of stderr for errors.
// Once started, the process runs to completion.
func (p *Processor) run(ctx context.Context, stream *ffmpeg.Stream) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	_, err := p.runCapture(stream)
	return err
}

// runCapture is run without the context check; it returns ffmpeg's stderr,
// which is where filters such as silencedetect report their results.
func (p *Processor) runCapture(stream *ffmpeg.Stream) (string, error) {
	p.log.Debugf("FFmpeg command: ffmpeg %s", strings.Join(stream.GetArgs(), " "))

	var stderr bytes.Buffer
	if err := stream.WithErrorOutput(&stderr).Run(); err != nil {
		return stderr.String(), errors.Wrapf(err, "ffmpeg failed: %s", tail(stderr.String(), stderrTailLines))
	}
	return stderr.String(), nil
}

func parseVideoMetadata(probe string) (*VideoMetadata, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return nil, errors.WithStack(err)
	}

	streams, ok := data["streams"].([]interface{})
	if !ok || len(streams) == 0 {
		return nil, errors.New("no streams found in video")
	}

	var videoStream map[string]interface{}
	for _, stream := range streams {
		s, ok := stream.(map[string]interface{})
		if !ok {
			continue
		}
		if codecType, _ := s["codec_type"].(string); codecType == "video" {
			videoStream = s
			break
		}
	}

	if videoStream == nil {
		return nil, errors.New("no video stream found")
	}

	var duration float64

	// First try video stream duration
	if durationStr, ok := videoStream["duration"].(string); ok {
		if d, err := strconv.ParseFloat(strings.TrimSpace(durationStr), 64); err == nil {
			duration = d
		}
	}

	// If stream duration is not available, try format duration
	if duration == 0 {
		if format, ok := data["format"].(map[string]interface{}); ok {
			if durationStr, ok := format["duration"].(string); ok {
				if d, err := strconv.ParseFloat(strings.TrimSpace(durationStr), 64); err == nil {
					duration = d
				}
			}
		}
	}

	// If still no duration found, try calculating from frames and frame rate
	if duration == 0 {
		if nbFrames, ok := videoStream["nb_frames"].(string); ok {
			if frames, err := strconv.ParseFloat(nbFrames, 64); err == nil {
				if frameRate := parseFrameRate(videoStream["r_frame_rate"]); frameRate > 0 {
					duration = frames / frameRate
				}
			}
		}
	}

	if duration <= 0 {
		return nil, errors.New("could not determine video duration")
	}

	width, _ := videoStream["width"].(float64)
	height, _ := videoStream["height"].(float64)
	codec, _ := videoStream["codec_name"].(string)

	return &VideoMetadata{
		Duration: duration,
		Width:    int(width),
		Height:   int(height),
		Codec:    codec,
	}, nil
}

func parseFrameRate(v interface{}) float64 {
	rate, ok := v.(string)
	if !ok {
		return 0
	}
	nums := strings.Split(rate, "/")
	if len(nums) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(nums[0], 64)
	den, err2 := strconv.ParseFloat(nums[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.3f", s)
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
