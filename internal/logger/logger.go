package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/larkwiot/bookexplorer/internal/util"
	"github.com/sirupsen/logrus"
)

type ctxKey string

const SearchIDKey ctxKey = "searchId"

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
}

// Setup applies the configured level and destination. An empty file keeps
// stderr unless quiet is set, in which case logs are discarded; the TUI sets
// quiet so that log lines do not tear the screen.
func Setup(level, file string, quiet bool) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)

	if file == "" {
		if quiet {
			logrus.SetOutput(io.Discard)
		} else {
			logrus.SetOutput(os.Stderr)
		}
		return io.NopCloser(nil), nil
	}

	fh, err := os.OpenFile(util.ExpandUser(file), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logrus.SetOutput(fh)
	return fh, nil
}

func For(ctx context.Context) *logrus.Entry {
	id, ok := ctx.Value(SearchIDKey).(uint64)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logrus.WithField("search_id", id)
}

func ContextWithSearchID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, SearchIDKey, id)
}

func Track(ctx context.Context, msg string) func() {
	start := time.Now()
	return func() {
		dur := time.Since(start)
		entry := For(ctx).WithField("duration", dur.String())

		if dur > 2*time.Second {
			entry.Warnf("%s completed (SLOW)", msg)
		} else {
			entry.Debugf("%s completed", msg)
		}
	}
}
