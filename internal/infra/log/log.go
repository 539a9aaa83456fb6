package log

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"triarb/internal/config"
)

type Logger = zerolog.Logger

// New builds the process logger from config: pretty console output for
// local runs, JSON to stderr otherwise.
func New(cfg config.Config) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	var l zerolog.Logger
	if cfg.Logging.Pretty {
		l = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		l = zlog.Logger
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return l
}
