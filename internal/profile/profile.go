package profile

import (
	"github.com/ZacxDev/speech-clips/pkg/types"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Profile defines how a segment is encoded on its way to a GIF
type Profile interface {
	// GetName returns the profile name
	GetName() types.ProfileName

	// GetVideoCodec returns the codec used for intermediate sub-clips
	GetVideoCodec() string

	// GetAudioCodec returns the codec used for intermediate sub-clips
	GetAudioCodec() string

	// GetClipFormat returns the container of intermediate sub-clips (e.g., "mp4", "webm")
	GetClipFormat() string

	// GetGIFFrameRate returns the frame rate of the exported GIF
	GetGIFFrameRate() int

	// GetGIFWidth returns the GIF width in pixels; height keeps the aspect ratio
	GetGIFWidth() int

	// GetFontSize returns the overlay font size in pixels
	GetFontSize() int
}

var profiles = make(map[types.ProfileName]Profile)

// Register adds a profile to the registry
func Register(p Profile) {
	profiles[p.GetName()] = p
}

// Get returns a profile by name
func Get(name string) (Profile, error) {
	p, ok := profiles[types.ProfileName(name)]
	if !ok {
		return nil, errors.Errorf("unsupported profile: %s", name)
	}
	return p, nil
}

// GetSupportedProfiles returns the registered profile names in sorted order
func GetSupportedProfiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, string(name))
	}
	slices.Sort(names)
	return names
}
