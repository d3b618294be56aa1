package profile

import "github.com/ZacxDev/speech-clips/pkg/types"

type HD struct{}

func init() {
	Register(&HD{})
}

func (p *HD) GetName() types.ProfileName {
	return types.ProfileHD
}

func (p *HD) GetVideoCodec() string {
	return "libx264"
}

func (p *HD) GetAudioCodec() string {
	return "aac"
}

func (p *HD) GetClipFormat() string {
	return "mp4"
}

func (p *HD) GetGIFFrameRate() int {
	return 15
}

func (p *HD) GetGIFWidth() int {
	return 1280
}

func (p *HD) GetFontSize() int {
	return 96
}
