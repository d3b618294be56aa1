package ffmpeg

import (
	"context"
	"strings"

	"github.com/ZacxDev/speech-clips/internal/config"
	"github.com/ZacxDev/speech-clips/internal/profile"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// OverlayText burns text into every frame of inputPath, horizontally centred
// and fixed above the bottom edge. Empty text re-encodes without an overlay.
func (p *Processor) OverlayText(ctx context.Context, inputPath, outputPath, text string, prof profile.Profile) error {
	if err := p.run(ctx, overlayOutput(inputPath, outputPath, text, prof)); err != nil {
		return errors.Wrapf(err, "failed to overlay text on %s", inputPath)
	}
	return nil
}

func overlayOutput(inputPath, outputPath, text string, prof profile.Profile) *ffmpeg.Stream {
	outputKwargs := ffmpeg.KwArgs{
		"c:v":     prof.GetVideoCodec(),
		"c:a":     "copy",
		"pix_fmt": "yuv420p",
	}
	for k, v := range GetCodecSettings(prof.GetClipFormat()).EncoderOptions {
		outputKwargs[k] = v
	}

	input := ffmpeg.Input(inputPath)

	text = strings.TrimSpace(text)
	if text == "" {
		return input.Output(outputPath, outputKwargs).OverWriteOutput()
	}

	captioned := AddCaption(input.Video(), text, prof.GetFontSize())
	return ffmpeg.Output([]*ffmpeg.Stream{captioned, input.Audio()}, outputPath, outputKwargs).
		OverWriteOutput()
}

// AddCaption draws text centred near the bottom of the frame. ffmpeg-go
// escapes the values for both the option and the filtergraph parser, and
// expansion is off so '%' is printed literally.
func AddCaption(stream *ffmpeg.Stream, text string, fontSize int) *ffmpeg.Stream {
	return stream.Filter("drawtext", nil, ffmpeg.KwArgs{
		"text":        text,
		"expansion":   "none",
		"font":        "Sans",
		"fontsize":    fontSize,
		"fontcolor":   config.TextColor,
		"bordercolor": config.TextBorderColor,
		"borderw":     config.TextBorderWidth,
		"x":           "(w-text_w)/2",
		"y":           "h-text_h-" + config.TextBottomInset,
	})
}
