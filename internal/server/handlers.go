package server

import (
	"bytes"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

var uploadExtPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

// UploadForm renders the upload page.
func (s *Server) UploadForm(c *fiber.Ctx) error {
	return renderHTML(c, uploadFormTemplate, nil)
}

// Upload stores the posted video under a generated name, runs the pipeline on
// it and redirects to the processed file listing.
func (s *Server) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh.Filename == "" {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	log := requestLog(c, s.log)

	storedPath := filepath.Join(s.opts.UploadDir, uploadName(s.newID(), fh.Filename))
	if err := c.SaveFile(fh, storedPath); err != nil {
		log.WithError(err).Error("Failed to store upload")
		return respondWithError(c, fiber.StatusInternalServerError, "failed to store upload")
	}

	log = log.WithFields(logrus.Fields{
		"upload":   storedPath,
		"original": fh.Filename,
		"size":     fh.Size,
	})
	log.Info("Stored upload")

	paths, err := s.process(c, storedPath)
	if err != nil {
		log.WithError(err).Error("Failed to process upload")
		return respondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	log.WithField("artifacts", len(paths)).Info("Processed upload")
	return c.Redirect("/processed_files", fiber.StatusSeeOther)
}

func (s *Server) process(c *fiber.Ctx, videoPath string) ([]string, error) {
	s.processing.Lock()
	defer s.processing.Unlock()

	return s.processor.Process(c.UserContext(), videoPath, s.opts.ProcessedDir)
}

// ListProcessed lists the processed directory as HTML, or as JSON when the
// client prefers it.
func (s *Server) ListProcessed(c *fiber.Ctx) error {
	names, err := listFiles(s.opts.ProcessedDir)
	if err != nil {
		return err
	}

	if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return respondWithJSON(c, fiber.StatusOK, names)
	}
	return renderHTML(c, processedListTemplate, names)
}

// ServeProcessed sends one file from the processed directory.
func (s *Server) ServeProcessed(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("filename"))
	if err != nil || !validArtifactName(name) {
		return respondWithError(c, fiber.StatusBadRequest, "invalid file name")
	}

	path := filepath.Join(s.opts.ProcessedDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return respondWithError(c, fiber.StatusNotFound, "file not found")
	}

	// c.SendFile keeps file handles cached, which would serve a GIF that a
	// rerun has just replaced
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "error opening %s", name)
	}

	c.Type(filepath.Ext(name))
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.SendStream(f, int(info.Size()))
}

// uploadName builds the stored file name from a generated id. The client's
// name contributes only a short alphanumeric extension.
func uploadName(id, clientName string) string {
	ext := filepath.Ext(clientName)
	if !uploadExtPattern.MatchString(ext) {
		return id
	}
	return id + ext
}

func validArtifactName(name string) bool {
	if name == "" || name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, "error reading directory %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func renderHTML(c *fiber.Ctx, tmpl *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "error rendering page")
	}
	c.Type("html")
	return c.Send(buf.Bytes())
}
