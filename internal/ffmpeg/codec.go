package ffmpeg

import (
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// CodecSettings holds container-specific encoder options for intermediate clips.
type CodecSettings struct {
	ContainerFormat string
	FileExtension   string
	EncoderOptions  ffmpeg.KwArgs
}

// Intermediates are short-lived, so presets favour speed over size.
var codecPresets = map[string]CodecSettings{
	"webm": {
		ContainerFormat: "webm",
		FileExtension:   ".webm",
		EncoderOptions: ffmpeg.KwArgs{
			"deadline": "realtime",
			"cpu-used": 8,
			"row-mt":   1,
			"crf":      32,
			"b:v":      0,
		},
	},
	"mp4": {
		ContainerFormat: "mp4",
		FileExtension:   ".mp4",
		EncoderOptions: ffmpeg.KwArgs{
			"preset":   "veryfast",
			"crf":      20,
			"movflags": "+faststart",
		},
	},
}

// GetCodecSettings returns the settings for a container, defaulting to mp4.
func GetCodecSettings(format string) CodecSettings {
	if settings, ok := codecPresets[format]; ok {
		return settings
	}
	return codecPresets["mp4"]
}
