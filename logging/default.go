package logging

import (
	"context"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

// DefaultLogger writes leveled, optionally colored lines via the standard
// log package. Debug and Info go to stdout; Warn, Error and Fatal go to
// stderr. Fatal exits the process with status 1.
type DefaultLogger struct {
	stdoutLogger *log.Logger
	stderrLogger *log.Logger
	level        Level
	fields       Fields
	useColors    bool
}

// NewDefaultLogger creates a default logger with colored output when stdout
// looks like a terminal
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		stdoutLogger: log.New(os.Stdout, "", log.LstdFlags),
		stderrLogger: log.New(os.Stderr, "", log.LstdFlags),
		level:        InfoLevel,
		fields:       make(Fields),
		useColors:    isTerminal(),
	}
}

// NewDefaultLoggerNoColor creates a default logger without colored output
func NewDefaultLoggerNoColor() *DefaultLogger {
	logger := NewDefaultLogger()
	logger.useColors = false
	return logger
}

// isTerminal checks if the logger is running in a terminal that supports colors
// TODO: use a real TTY probe (isatty) instead of the char-device heuristic
func isTerminal() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// render builds the final log line: "[LEVEL] msg: err k1:v1 k2:v2".
// Fields are sorted by key so repeated runs produce identical lines.
func (d *DefaultLogger) render(level Level, err error, msg string, extra []Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level.String(), msg)

	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}

	merged := mergeFields(d.fields, extra...)
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&b, " %s:%v", key, merged[key])
	}

	line := b.String()
	if d.useColors {
		line = colorize(level, line)
	}
	return line
}

func colorize(level Level, line string) string {
	switch level {
	case WarnLevel:
		return ColorYellow + line + ColorReset
	case ErrorLevel:
		return ColorRed + line + ColorReset
	case FatalLevel:
		return ColorBold + ColorRed + line + ColorReset
	default:
		return line
	}
}

func mergeFields(base Fields, extra ...Fields) Fields {
	merged := make(Fields, len(base))
	maps.Copy(merged, base)
	for _, f := range extra {
		maps.Copy(merged, f)
	}
	return merged
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < d.level {
		return
	}

	out := d.stdoutLogger
	if level >= WarnLevel {
		out = d.stderrLogger
	}
	out.Println(d.render(level, err, msg, fields))

	if level == FatalLevel {
		os.Exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields...)
}

// WithFields returns a copy of the logger whose preset fields additionally
// include the given ones. The receiver is left untouched.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	return &DefaultLogger{
		stdoutLogger: d.stdoutLogger,
		stderrLogger: d.stderrLogger,
		level:        d.level,
		fields:       mergeFields(d.fields, fields),
		useColors:    d.useColors,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything. It stands in for the default logger when
// logging is disabled and in tests that should stay quiet.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
