package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	LevelCritical = slog.Level(12)

	serviceName = "parish-app"
)

// Attribute keys holding parishioner contact data are masked before output.
var maskedKeys = map[string]struct{}{
	"email":    {},
	"phone":    {},
	"password": {},
}

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
	Enabled(level slog.Level) bool
}

type Options struct {
	Level     slog.Level
	Format    string
	AddSource bool
}

type slogLogger struct {
	base *slog.Logger
}

func NewFromEnv() Logger {
	env := normalizeValue(os.Getenv("ENV"))
	addSource, _ := strconv.ParseBool(os.Getenv("LOG_SOURCE"))
	return NewWithOptions(os.Stdout, Options{
		Level:     parseLevel(os.Getenv("LOG_LEVEL"), env),
		Format:    parseFormat(os.Getenv("LOG_FORMAT")),
		AddSource: addSource,
	}).With("service", serviceName, "env", env)
}

// Nop discards everything.
func Nop() Logger {
	return New(io.Discard, LevelCritical+1, "text")
}

func New(output io.Writer, level slog.Level, format string) Logger {
	return NewWithOptions(output, Options{Level: level, Format: format})
}

func NewWithOptions(output io.Writer, opts Options) Logger {
	options := &slog.HandlerOptions{
		Level:       opts.Level,
		AddSource:   opts.AddSource,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler
	switch normalizeValue(opts.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, options)
	default:
		handler = slog.NewTextHandler(output, options)
	}

	return &slogLogger{base: slog.New(handler)}
}

func (l *slogLogger) Debug(message string, args ...any) {
	l.log(slog.LevelDebug, message, args)
}

func (l *slogLogger) Info(message string, args ...any) {
	l.log(slog.LevelInfo, message, args)
}

func (l *slogLogger) Warn(message string, args ...any) {
	l.log(slog.LevelWarn, message, args)
}

func (l *slogLogger) Error(message string, args ...any) {
	l.log(slog.LevelError, message, args)
}

func (l *slogLogger) Critical(message string, args ...any) {
	l.log(LevelCritical, message, args)
}

// BusinessError is an expected domain failure such as a duplicate baptism id.
func (l *slogLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.log(slog.LevelWarn, message, append([]any{"err", err}, args...))
}

func (l *slogLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.log(slog.LevelError, message, append([]any{"err", err}, args...))
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...)}
}

func (l *slogLogger) Enabled(level slog.Level) bool {
	return l.base.Enabled(context.Background(), level)
}

// log tags "<resource>.<operation>: ..." messages with both parts so
// failures can be filtered per registry.
func (l *slogLogger) log(level slog.Level, message string, args []any) {
	ctx := context.Background()
	if !l.base.Enabled(ctx, level) {
		return
	}
	if resource, operation, ok := splitOperation(message); ok {
		args = append(args, "resource", resource, "operation", operation)
	}
	l.base.Log(ctx, level, message, args...)
}

func splitOperation(message string) (string, string, bool) {
	head, _, found := strings.Cut(message, ":")
	if !found {
		return "", "", false
	}
	resource, operation, found := strings.Cut(head, ".")
	if !found || resource == "" || operation == "" || strings.ContainsAny(head, " \t") {
		return "", "", false
	}
	return resource, operation, true
}

func parseLevel(value string, env string) slog.Level {
	fallback := slog.LevelInfo
	if env == "development" {
		fallback = slog.LevelDebug
	}

	switch normalizeValue(value) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical", "fatal":
		return LevelCritical
	default:
		return fallback
	}
}

func parseFormat(value string) string {
	switch normalizeValue(value) {
	case "json", "text":
		return normalizeValue(value)
	default:
		return "json"
	}
}

func normalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func replaceAttr(_ []string, attr slog.Attr) slog.Attr {
	if _, ok := maskedKeys[attr.Key]; ok && attr.Value.Kind() == slog.KindString {
		attr.Value = slog.StringValue(mask(attr.Value.String()))
		return attr
	}
	if attr.Key != slog.LevelKey {
		return attr
	}

	level, ok := attr.Value.Any().(slog.Level)
	if ok && level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}

// mask keeps the first character and the length class of a value.
func mask(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= 2 {
		return "**"
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}
