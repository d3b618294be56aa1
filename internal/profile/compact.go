package profile

import "github.com/ZacxDev/speech-clips/pkg/types"

type Compact struct{}

func init() {
	Register(&Compact{})
}

func (p *Compact) GetName() types.ProfileName {
	return types.ProfileCompact
}

func (p *Compact) GetVideoCodec() string {
	return "libx264"
}

func (p *Compact) GetAudioCodec() string {
	return "aac"
}

func (p *Compact) GetClipFormat() string {
	return "mp4"
}

func (p *Compact) GetGIFFrameRate() int {
	return 8
}

func (p *Compact) GetGIFWidth() int {
	return 320
}

func (p *Compact) GetFontSize() int {
	return 36
}
