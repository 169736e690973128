package logger

import (
	"fmt"
	"os"

	"github.com/fluent/fluent-logger-golang/fluent"
)

type Options struct {
	Level      string
	Format     string // "json", "text" or "color"
	FluentHost string
	FluentPort int
	FluentTag  string
}

// New builds the console logger and, when a fluent host is configured, a
// fluent sink behind a multi-logger. The returned close func flushes the sink.
func New(opts Options) (Logger, func() error, error) {
	level := ParseLevel(opts.Level)
	console := NewSlogAdapter(SlogConfig{
		Writer:   os.Stdout,
		Level:    level,
		IsJSON:   opts.Format == "json",
		UseColor: opts.Format == "" || opts.Format == "color",
	})

	if opts.FluentHost == "" {
		return console, func() error { return nil }, nil
	}

	client, err := fluent.New(fluent.Config{
		FluentHost: opts.FluentHost,
		FluentPort: opts.FluentPort,
		Async:      true,
	})
	if err != nil {
		return console, func() error { return nil }, fmt.Errorf("failed to connect to fluent at %s:%d: %w", opts.FluentHost, opts.FluentPort, err)
	}

	sink, err := NewFluentAdapter(client, opts.FluentTag, level)
	if err != nil {
		return console, func() error { return nil }, err
	}

	multi, err := NewMulti(console, sink)
	if err != nil {
		return console, sink.Close, err
	}
	return multi, sink.Close, nil
}
