package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger builds the process logger. The server logs JSON, the CLI logs text.
func InitLogger(verbose, json bool) *logrus.Logger {
	log := logrus.New()

	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	log.SetOutput(os.Stderr)

	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}
