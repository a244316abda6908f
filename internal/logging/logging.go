// Package logging builds the status logger: human-readable, timestamped
// lines on stdout, mirrored into an append-only file.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05.000"

// New opens path for appending and returns a logger writing to both stdout
// and the file. The returned closer closes the file.
func New(path string, level zerolog.Level) (zerolog.Logger, io.Closer, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return NewWithWriters(os.Stdout, file, level), file, nil
}

func NewWithWriters(console, file io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: console, TimeFormat: timeFormat},
		zerolog.ConsoleWriter{Out: file, TimeFormat: timeFormat, NoColor: true},
	)
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Module tags a child logger the way every component identifies itself.
func Module(lg zerolog.Logger, name string) zerolog.Logger {
	return lg.With().Str("module", name).Logger()
}
