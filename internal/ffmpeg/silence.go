package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ZacxDev/speech-clips/internal/silence"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var (
	// older ffmpeg prints timestamps with %g, e.g. "silence_start: 6.25e-05"
	silenceStartRegex = regexp.MustCompile(`silence_start: (-?[0-9.]+(?:[eE][-+]?[0-9]+)?)`)
	silenceEndRegex   = regexp.MustCompile(`silence_end: (-?[0-9.]+(?:[eE][-+]?[0-9]+)?)`)
)

// DetectSilence runs ffmpeg's silencedetect filter over audioPath.
func (p *Processor) DetectSilence(ctx context.Context, audioPath string, thresholdDB float64, minSilence time.Duration) ([]silence.MillisecondRange, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	probe, err := ffmpeg.Probe(audioPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error probing %s", audioPath)
	}
	totalMs := toMilliseconds(parseFormatDuration(probe))

	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", thresholdDB, minSilence.Seconds())
	stream := ffmpeg.Input(audioPath).
		Output("-", ffmpeg.KwArgs{
			"af": filter,
			"f":  "null",
		})

	output, err := p.runCapture(stream)
	if err != nil {
		return nil, err
	}

	return parseSilenceOutput(output, totalMs), nil
}

// parseSilenceOutput extracts silence spans from silencedetect output.
// A silence still open at end of stream is closed at totalMs.
func parseSilenceOutput(output string, totalMs int64) []silence.MillisecondRange {
	ranges := make([]silence.MillisecondRange, 0)

	var currentStart *int64
	for _, line := range strings.Split(output, "\n") {
		if matches := silenceStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			if seconds, err := strconv.ParseFloat(matches[1], 64); err == nil {
				start := toMilliseconds(math.Max(0, seconds))
				currentStart = &start
			}
		} else if matches := silenceEndRegex.FindStringSubmatch(line); len(matches) > 1 && currentStart != nil {
			if seconds, err := strconv.ParseFloat(matches[1], 64); err == nil {
				ranges = append(ranges, silence.MillisecondRange{
					Start: *currentStart,
					End:   toMilliseconds(seconds),
				})
				currentStart = nil
			}
		}
	}

	if currentStart != nil && totalMs > *currentStart {
		ranges = append(ranges, silence.MillisecondRange{Start: *currentStart, End: totalMs})
	}

	return ranges
}

func parseFormatDuration(probe string) float64 {
	var data struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(data.Format.Duration), 64)
	if err != nil {
		return 0
	}
	return d
}

func toMilliseconds(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
