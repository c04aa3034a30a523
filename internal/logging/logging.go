package logging

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Levels lists the accepted values of a log level flag, most verbose first.
var Levels = []string{"debug", "info", "warn", "error"}

// New returns a logfmt logger writing to w that drops messages below lvl.
// Unknown levels fall back to info.
func New(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, allow(lvl))
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

func allow(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
