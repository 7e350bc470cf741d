package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type options struct {
	out     io.Writer
	console bool
	fields  map[string]string
}

type Option func(*options)

// WithWriter redirects output, mostly for tests.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithConsole switches to the human readable console writer.
func WithConsole() Option {
	return func(o *options) { o.console = true }
}

// WithField adds a static string field to every entry.
func WithField(key, value string) Option {
	return func(o *options) {
		if o.fields == nil {
			o.fields = map[string]string{}
		}
		o.fields[key] = value
	}
}

// New builds a logger at the given level. Level names follow zerolog, with
// "warning" accepted as an alias of "warn"; anything else means info.
func New(level string, opts ...Option) zerolog.Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	lvl := ParseLevel(level)

	out := o.out
	if o.console {
		out = zerolog.ConsoleWriter{Out: o.out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp()
	for k, v := range o.fields {
		ctx = ctx.Str(k, v)
	}
	if !o.console {
		ctx = ctx.Caller()
	}

	return ctx.Logger()
}

func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return lvl
}
