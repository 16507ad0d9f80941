package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the agent logger, writing to the given file path or stdout when
// the path is empty.
func New(path string, verbose bool) (zerolog.Logger, error) {
	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, err
		}
		w = file
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger(), nil
}
