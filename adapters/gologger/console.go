package gologger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	levelTrace = slog.LevelDebug - 4
	levelFatal = slog.LevelError + 4
)

var levelNames = map[slog.Level]string{
	levelTrace: "TRACE",
	levelFatal: "FATAL",
}

// ConsoleLogger writes text records to a stream. Debug and trace records are
// only emitted when the logger was built in debug mode.
type ConsoleLogger struct {
	handler slog.Handler
	ctx     context.Context
	exit    func(code int)
}

func NewConsoleLogger(w io.Writer, debug bool) *ConsoleLogger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = levelTrace
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key != slog.LevelKey {
				return attr
			}
			if lvl, ok := attr.Value.Any().(slog.Level); ok {
				if name, found := levelNames[lvl]; found {
					attr.Value = slog.StringValue(name)
				}
			}
			return attr
		},
	})
	return &ConsoleLogger{handler: handler, exit: os.Exit}
}

func (l *ConsoleLogger) Trace(msg string, args ...any) { l.log(levelTrace, msg, args) }
func (l *ConsoleLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *ConsoleLogger) Fatal(msg string, args ...any) {
	l.log(levelFatal, msg, args)
	if l != nil && l.exit != nil {
		l.exit(1)
	}
}

func (l *ConsoleLogger) WithContext(ctx context.Context) glog.Logger {
	if l == nil {
		return glog.Nop()
	}
	clone := *l
	clone.ctx = ctx
	return &clone
}

// WithFields returns a child logger that prefixes every record with fields,
// in key order.
func (l *ConsoleLogger) WithFields(fields map[string]any) glog.Logger {
	if l == nil {
		return glog.Nop()
	}
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.Any(key, fields[key]))
	}
	clone := *l
	clone.handler = l.handler.WithAttrs(attrs)
	return &clone
}

func (l *ConsoleLogger) Named(name string) *ConsoleLogger {
	if l == nil || name == "" {
		return l
	}
	clone := *l
	clone.handler = l.handler.WithAttrs([]slog.Attr{slog.String("logger", name)})
	return &clone
}

func (l *ConsoleLogger) log(level slog.Level, msg string, args []any) {
	if l == nil || l.handler == nil {
		return
	}
	ctx := l.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	slog.New(l.handler).Log(ctx, level, msg, args...)
}

// ConsoleProvider hands out named children of a root ConsoleLogger.
type ConsoleProvider struct {
	root *ConsoleLogger
}

func NewConsoleProvider(root *ConsoleLogger) *ConsoleProvider {
	return &ConsoleProvider{root: root}
}

func (p *ConsoleProvider) GetLogger(name string) glog.Logger {
	if p == nil || p.root == nil {
		return glog.Nop()
	}
	return p.root.Named(name)
}

var (
	_ glog.Logger         = (*ConsoleLogger)(nil)
	_ glog.FieldsLogger   = (*ConsoleLogger)(nil)
	_ glog.LoggerProvider = (*ConsoleProvider)(nil)
)
