package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes timestamped records such as
//
//	14:32:01.45 INFO layout computed levels=4 elapsed=1.234s
//
// to w, dropping anything below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch times the stages of one command. Laps go to the debug level so
// -v shows where the time went; finish reports the total at info level.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func startStopwatch(l *log.Logger) *stopwatch {
	now := time.Now()
	return &stopwatch{logger: l, start: now, last: now}
}

// lap logs the time spent since the previous lap.
func (s *stopwatch) lap(stage string, keyvals ...any) {
	now := time.Now()
	s.logger.Debug(stage, append(keyvals, "took", now.Sub(s.last).Round(time.Millisecond))...)
	s.last = now
}

// finish logs msg with the time since the stopwatch started and returns it.
func (s *stopwatch) finish(msg string, keyvals ...any) time.Duration {
	total := time.Since(s.start)
	s.logger.Info(msg, append(keyvals, "elapsed", total.Round(time.Millisecond))...)
	return total
}
