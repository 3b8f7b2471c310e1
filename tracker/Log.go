package tracker

import (
	"sort"

	"github.com/rs/zerolog"
)

// Log reports metrics as structured log records
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a Reporter that writes each recorded metric set as
// one structured log record.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// Record implements the Reporter interface. Metric keys are logged in
// sorted order so that records are comparable across epochs.
func (l *Log) Record(epoch int, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	event := l.logger.Info().Int("epoch", epoch)
	for _, name := range names {
		event = event.Float64(name, metrics[name])
	}
	event.Msg("metrics")
}

// Flush implements the Reporter interface
func (l *Log) Flush() error {
	return nil
}
