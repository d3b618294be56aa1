package server

import (
	"context"
	"os"
	"sync"

	"github.com/ZacxDev/speech-clips/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Processor runs the segment pipeline on one stored upload.
type Processor interface {
	Process(ctx context.Context, videoPath, outputDir string) ([]string, error)
}

// Server is the upload service: it stores uploaded videos, runs the pipeline
// on them and serves the resulting GIFs.
type Server struct {
	opts      config.ServerOptions
	processor Processor
	log       *logrus.Logger
	app       *fiber.App

	// artifact names are flat per processed dir, so only one pipeline runs at a time
	processing sync.Mutex

	newID func() string
}

// New validates opts, creates the upload and processed directories and
// registers the routes.
func New(opts config.ServerOptions, processor Processor, log *logrus.Logger) (*Server, error) {
	if err := config.Validate(&opts); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	for _, dir := range []string{opts.UploadDir, opts.ProcessedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "error creating directory %s", dir)
		}
	}

	s := &Server{
		opts:      opts,
		processor: processor,
		log:       log,
		newID:     uuid.NewString,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "speech-clips",
		BodyLimit:             opts.MaxUploadSize,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	s.app.Use(RequestLogger(s.log))

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	s.app.Get("/", s.UploadForm)
	s.app.Post("/upload", s.Upload)
	s.app.Get("/processed_files", s.ListProcessed)
	s.app.Get("/processed_files/:filename", s.ServeProcessed)
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving on opts.Addr until Shutdown is called.
func (s *Server) Listen() error {
	s.log.WithFields(logrus.Fields{
		"addr":          s.opts.Addr,
		"upload_dir":    s.opts.UploadDir,
		"processed_dir": s.opts.ProcessedDir,
	}).Info("Starting upload service")

	return errors.WithStack(s.app.Listen(s.opts.Addr))
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return errors.WithStack(s.app.Shutdown())
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return respondWithError(c, code, err.Error())
}

func respondWithError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

func respondWithJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}
