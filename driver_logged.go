package caniot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// LogOption is a bitmask selecting which Driver operations LoggedDriver
// reports.
type LogOption uint8

const (
	LogNone LogOption = 0
	LogRecv LogOption = 1 << 0
	LogSend LogOption = 1 << 1
	LogAll  LogOption = LogRecv | LogSend
)

// NewLoggedDriver wraps inner, logging selected operations at level via
// logger. A nil filter logs every frame; a non-nil filter restricts
// logging to frames it matches.
func NewLoggedDriver(inner Driver, logger *slog.Logger, level slog.Level, opts LogOption, filter FrameFilter) Driver {
	return &loggedDriver{inner: inner, logger: logger, level: level, opts: opts, filter: filter}
}

type loggedDriver struct {
	inner  Driver
	logger *slog.Logger
	level  slog.Level
	opts   LogOption
	filter FrameFilter
}

func (l *loggedDriver) Recv() (Frame, error) {
	f, err := l.inner.Recv()
	if l.opts&LogRecv == 0 {
		return f, err
	}
	if err != nil {
		if !errors.Is(err, ErrAgain) {
			l.logger.Log(context.Background(), slog.LevelError, "caniot recv error", "error", err)
		}
		return f, err
	}
	if l.filter == nil || l.filter(f) {
		l.logger.Log(context.Background(), l.level, "caniot recv",
			"id", PackID(f.ID),
			"type", f.ID.Type,
			"direction", f.ID.Direction,
			"did", f.ID.Did(),
			"endpoint", f.ID.Endpoint,
			"len", int(f.Len),
			"data", f.Data[:f.Len],
			"frame", f.String(),
		)
	}
	return f, err
}

func (l *loggedDriver) Send(f Frame, delay time.Duration) error {
	if l.opts&LogSend != 0 && (l.filter == nil || l.filter(f)) {
		l.logger.Log(context.Background(), l.level, "caniot send",
			"id", PackID(f.ID),
			"type", f.ID.Type,
			"direction", f.ID.Direction,
			"did", f.ID.Did(),
			"endpoint", f.ID.Endpoint,
			"len", int(f.Len),
			"data", f.Data[:f.Len],
			"delay", delay,
			"frame", f.String(),
		)
	}
	err := l.inner.Send(f, delay)
	if l.opts&LogSend != 0 && err != nil {
		l.logger.Log(context.Background(), slog.LevelError, "caniot send error", "error", err)
	}
	return err
}

func (l *loggedDriver) GetTime() (uint32, uint16) { return l.inner.GetTime() }
func (l *loggedDriver) SetTime(sec uint32)        { l.inner.SetTime(sec) }
func (l *loggedDriver) Entropy(buf []byte)        { l.inner.Entropy(buf) }

// Close forwards to inner when it implements io.Closer, so wrapping a
// closable transport in a LoggedDriver does not suppress its cleanup.
func (l *loggedDriver) Close() error {
	if closer, ok := l.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
