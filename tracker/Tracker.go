// Package tracker implements metric reporting collaborators for
// training runs. Trackers receive the aggregated metrics of each
// epoch and persist or display them; the training loop stays free of
// any reporting dependency beyond the Reporter interface.
package tracker

// Reporter records the aggregated metrics of training epochs. Record
// may be called multiple times per epoch with different metric sets
// (e.g. once after training episodes, once after an evaluation pass);
// metrics recorded for the same epoch and name overwrite earlier
// values. Flush persists everything recorded so far.
type Reporter interface {
	Record(epoch int, metrics map[string]float64)
	Flush() error
}

// Multi fans recorded metrics out to a list of Reporters
type Multi []Reporter

// Record implements the Reporter interface
func (m Multi) Record(epoch int, metrics map[string]float64) {
	for _, r := range m {
		r.Record(epoch, metrics)
	}
}

// Flush implements the Reporter interface. All Reporters are flushed
// even when one fails; the first error is returned.
func (m Multi) Flush() error {
	var firstErr error
	for _, r := range m {
		if err := r.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
