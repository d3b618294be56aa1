package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// PipelineOptions defines options for turning one video into captioned segments
type PipelineOptions struct {
	InputPath          string
	OutputDir          string        `validate:"required"`
	Profile            string        `validate:"required"`
	SilenceThresholdDB float64       `validate:"lte=0"`
	MinSilence         time.Duration `validate:"gt=0"`
	ScratchDir         string        // defaults to os.TempDir()
	Verbose            bool
}

// TranscriberOptions configures the Whisper-compatible transcription endpoint
type TranscriberOptions struct {
	URL      string        `validate:"required,url"`
	Model    string        `validate:"required"`
	APIKey   string
	Language string
	Timeout  time.Duration `validate:"gt=0"`
}

// ServerOptions defines options for the upload service
type ServerOptions struct {
	Addr          string `validate:"required"`
	UploadDir     string `validate:"required"`
	ProcessedDir  string `validate:"required"`
	MaxUploadSize int    `validate:"gt=0"`
	JSONLogs      bool
}

const (
	// Silence detection defaults
	DefaultSilenceThresholdDB = -40.0
	DefaultMinSilence         = 400 * time.Millisecond

	// Flat artifact directories used by the upload service
	DefaultUploadDir    = "uploaded_videos"
	DefaultProcessedDir = "processed_gifs"
	DefaultAddr         = ":5000"
	DefaultMaxUpload    = 512 * 1024 * 1024 // 512MB

	DefaultProfile = "default"

	// Whisper-compatible ASR endpoint
	DefaultWhisperURL     = "http://localhost:9000/v1/audio/transcriptions"
	DefaultWhisperModel   = "base"
	DefaultWhisperTimeout = 5 * time.Minute

	// Per-invocation scratch directory prefix
	TempDirPrefix = "speech_clips_"

	// Artifact naming
	ArtifactPrefix = "segment_"
	ArtifactExt    = ".gif"

	// Text overlay settings
	TextColor       = "white"
	TextBorderColor = "black"
	TextBorderWidth = "4"
	TextBottomInset = "50" // pixels between text and the bottom edge

	// Environment prefix for flag defaults
	EnvPrefix = "SPEECH_CLIPS_"
)

var validate = validator.New()

// Validate checks struct tags on any of the option structs above.
func Validate(opts interface{}) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.WithStack(err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (param: %s)", msg, fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return errors.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Env returns the value of EnvPrefix+key, or def when unset.
func Env(key, def string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
		return v
	}
	return def
}

// EnvFloat is Env for float values. Unparseable values fall back to def.
func EnvFloat(key string, def float64) float64 {
	v := Env(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// EnvDuration is Env for time.Duration values. Unparseable values fall back to def.
func EnvDuration(key string, def time.Duration) time.Duration {
	v := Env(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
