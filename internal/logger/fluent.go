package logger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// FluentAdapter ships log lines to a fluentd/fluent-bit collector.
type FluentAdapter struct {
	client   *fluent.Fluent
	tag      string
	fields   Fields
	minLevel slog.Level
}

func NewFluentAdapter(client *fluent.Fluent, tag string, minLevel slog.Leveler) (*FluentAdapter, error) {
	if client == nil {
		return nil, fmt.Errorf("fluent client cannot be nil")
	}
	level := slog.LevelInfo
	if minLevel != nil {
		level = minLevel.Level()
	}
	if tag == "" {
		tag = "locator"
	}
	return &FluentAdapter{
		client:   client,
		tag:      tag,
		fields:   make(Fields),
		minLevel: level,
	}, nil
}

func (a *FluentAdapter) merge(fields Fields) Fields {
	merged := make(Fields, len(a.fields)+len(fields)+3)
	for k, v := range a.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

func (a *FluentAdapter) post(level slog.Level, msg string, data Fields) {
	if level < a.minLevel {
		return
	}
	data["level"] = level.String()
	data["message"] = msg
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	// a dropped log line must never fail the caller
	_ = a.client.Post(a.tag, data)
}

func (a *FluentAdapter) Info(msg string, fields Fields) {
	a.post(slog.LevelInfo, msg, a.merge(fields))
}

func (a *FluentAdapter) Warn(msg string, fields Fields) {
	a.post(slog.LevelWarn, msg, a.merge(fields))
}

func (a *FluentAdapter) Error(msg string, err error, fields Fields) {
	data := a.merge(fields)
	if err != nil {
		data["error"] = err.Error()
	}
	a.post(slog.LevelError, msg, data)
}

func (a *FluentAdapter) Debug(msg string, fields Fields) {
	a.post(slog.LevelDebug, msg, a.merge(fields))
}

func (a *FluentAdapter) WithFields(fields Fields) Logger {
	return &FluentAdapter{
		client:   a.client,
		tag:      a.tag,
		fields:   a.merge(fields),
		minLevel: a.minLevel,
	}
}

func (a *FluentAdapter) Close() error {
	return a.client.Close()
}
