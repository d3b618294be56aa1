package transcribe

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/ZacxDev/speech-clips/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Transcriber turns an audio file into text. An empty string means no speech.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

var _ Transcriber = (*WhisperClient)(nil)

// WhisperClient talks to an OpenAI-compatible /v1/audio/transcriptions endpoint
// (whisper.cpp server, faster-whisper-server, LocalAI, ...).
type WhisperClient struct {
	opts config.TranscriberOptions
	log  *logrus.Logger
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewWhisperClient validates opts and returns a client.
func NewWhisperClient(opts config.TranscriberOptions, log *logrus.Logger) (*WhisperClient, error) {
	if err := config.Validate(&opts); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &WhisperClient{
		opts: opts,
		log:  log,
	}, nil
}

var (
	sharedOnce   sync.Once
	sharedClient *WhisperClient
	sharedErr    error
)

// Shared returns the process-wide client, building it on first use. Options
// passed after the first call are ignored.
func Shared(opts config.TranscriberOptions, log *logrus.Logger) (*WhisperClient, error) {
	sharedOnce.Do(func() {
		sharedClient, sharedErr = NewWhisperClient(opts, log)
		if sharedErr == nil {
			sharedClient.log.WithFields(logrus.Fields{
				"url":   opts.URL,
				"model": opts.Model,
			}).Info("Transcription model ready")
		}
	})
	return sharedClient, sharedErr
}

// Transcribe uploads audioPath and returns the trimmed transcript text.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)

	args.Set("model", c.opts.Model)
	args.Set("response_format", "json")
	if c.opts.Language != "" {
		args.Set("language", c.opts.Language)
	}

	agent := fiber.Post(c.opts.URL).Timeout(c.opts.Timeout)
	if c.opts.APIKey != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.opts.APIKey)
	}
	agent.SendFile(audioPath, "file").MultipartForm(args)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", errors.Wrapf(errs[0], "transcription request for %s failed", audioPath)
	}

	if code != fiber.StatusOK {
		return "", errors.Errorf("transcription of %s failed with status %d: %s", audioPath, code, errorMessage(body))
	}

	var resp transcriptionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "invalid transcription response")
	}

	text := strings.TrimSpace(resp.Text)
	c.log.WithFields(logrus.Fields{
		"audio": audioPath,
		"chars": len(text),
	}).Debug("Transcribed audio")

	return text, nil
}

func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return strings.TrimSpace(string(body))
}
