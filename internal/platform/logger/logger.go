// Package logger builds the application's slog logger: human-readable console
// output plus a rotating JSON log file.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config はロガーの設定です。
type Config struct {
	Level      string // console level: debug, info, warn, error
	Dir        string // directory of the rotating log file; empty disables the file
	File       string // log file name (default "symbols.log")
	MaxSizeMB  int    // rotate after this many megabytes (default 10)
	MaxBackups int    // rotated files to keep (default 5)
}

// New returns a logger writing to console and, when cfg.Dir is set, to a rotating file.
// The returned closer flushes and closes the file; it is never nil.
func New(cfg Config, console io.Writer) (*slog.Logger, io.Closer) {
	if console == nil {
		console = os.Stderr
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}),
	}

	var closer io.Closer = nopCloser{}
	if cfg.Dir != "" {
		file := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, defaultString(cfg.File, "symbols.log")),
			MaxSize:    defaultInt(cfg.MaxSizeMB, 10),
			MaxBackups: defaultInt(cfg.MaxBackups, 5),
		}
		// ファイルには DEBUG 以上をすべて残す
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = file
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer
}

// ParseLevel converts a level name to a slog.Level. Unknown names mean INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
