package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
	NoColor      bool `split_words:"true" default:"false"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// New builds a logger writing to w. Pretty format switches to the console
// writer; otherwise lines are JSON.
func New(w io.Writer, opts ...Config) zerolog.Logger {
	conf := safe(opts...)

	var logger zerolog.Logger
	if conf.PrettyFormat {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: conf.NoColor})
	} else {
		logger = zerolog.New(w)
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	return logger.Level(level).With().Timestamp().Caller().Logger()
}

// Init replaces the global logger and makes it the context fallback.
func Init(opts ...Config) {
	log.Logger = New(os.Stdout, opts...)
	zerolog.DefaultContextLogger = &log.Logger
}
