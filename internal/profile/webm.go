package profile

import "github.com/ZacxDev/speech-clips/pkg/types"

// WebM keeps intermediates in VP9/Opus for sources that do not re-encode
// cleanly to H.264.
type WebM struct{}

func init() {
	Register(&WebM{})
}

func (p *WebM) GetName() types.ProfileName {
	return types.ProfileWebM
}

func (p *WebM) GetVideoCodec() string {
	return "libvpx-vp9"
}

func (p *WebM) GetAudioCodec() string {
	return "libopus"
}

func (p *WebM) GetClipFormat() string {
	return "webm"
}

func (p *WebM) GetGIFFrameRate() int {
	return 10
}

func (p *WebM) GetGIFWidth() int {
	return 640
}

func (p *WebM) GetFontSize() int {
	return 72
}
