package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// New builds the process logger for the given environment. Local runs get
// a human readable console writer, everything else logs JSON to stdout.
func New(env string) (zerolog.Logger, error) {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, out io.Writer) (zerolog.Logger, error) {
	zerolog.TimestampFieldName = "timestamp"

	var level zerolog.Level
	w := out
	switch env {
	case EnvProd:
		level = zerolog.InfoLevel
	case EnvDev:
		level = zerolog.DebugLevel
	case EnvLocal:
		level = zerolog.TraceLevel
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	default:
		return zerolog.Nop(), fmt.Errorf("unknown env: %s", env)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger(), nil
}
