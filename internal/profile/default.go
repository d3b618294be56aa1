package profile

import "github.com/ZacxDev/speech-clips/pkg/types"

// Default mirrors the classic moviepy/OpenCV pipeline: H.264/AAC clips and a
// full-width GIF with large captions.
type Default struct{}

func init() {
	Register(&Default{})
}

func (p *Default) GetName() types.ProfileName {
	return types.ProfileDefault
}

func (p *Default) GetVideoCodec() string {
	return "libx264"
}

func (p *Default) GetAudioCodec() string {
	return "aac"
}

func (p *Default) GetClipFormat() string {
	return "mp4"
}

func (p *Default) GetGIFFrameRate() int {
	return 10
}

func (p *Default) GetGIFWidth() int {
	return 640
}

func (p *Default) GetFontSize() int {
	return 72
}
