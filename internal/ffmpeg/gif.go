package ffmpeg

import (
	"context"
	"strconv"

	"github.com/ZacxDev/speech-clips/internal/profile"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ExportGIF converts inputPath into a looping animated GIF at outputPath.
func (p *Processor) ExportGIF(ctx context.Context, inputPath, outputPath string, prof profile.Profile) error {
	if err := p.run(ctx, gifOutput(inputPath, outputPath, prof)); err != nil {
		return errors.Wrapf(err, "failed to export gif %s", outputPath)
	}
	return nil
}

func gifOutput(inputPath, outputPath string, prof profile.Profile) *ffmpeg.Stream {
	return PaletteGIF(ffmpeg.Input(inputPath).Video(), prof.GetGIFFrameRate(), prof.GetGIFWidth()).
		Output(outputPath, ffmpeg.KwArgs{
			"loop": 0,
			"f":    "gif",
		}).
		OverWriteOutput()
}

// PaletteGIF resamples to fps and scales to width, generating a palette from
// the clip itself so colours survive the 256-colour limit.
func PaletteGIF(stream *ffmpeg.Stream, fps, width int) *ffmpeg.Stream {
	split := stream.
		Filter("fps", ffmpeg.Args{strconv.Itoa(fps)}).
		Filter("scale", ffmpeg.Args{strconv.Itoa(width), "-1"}, ffmpeg.KwArgs{"flags": "lanczos"}).
		Split()

	palette := split.Get("0").Filter("palettegen", nil)
	return ffmpeg.Filter([]*ffmpeg.Stream{split.Get("1"), palette}, "paletteuse", nil)
}
