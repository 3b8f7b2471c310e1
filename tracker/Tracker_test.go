package tracker

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	epoch   int
	metrics map[string]float64
}

type spyReporter struct {
	records []recorded
	flushed int
}

func (s *spyReporter) Record(epoch int, metrics map[string]float64) {
	s.records = append(s.records, recorded{epoch, metrics})
}

func (s *spyReporter) Flush() error {
	s.flushed++
	return nil
}

func TestMultiFansOutToAllReporters(t *testing.T) {
	first, second := &spyReporter{}, &spyReporter{}
	multi := Multi{first, second}

	multi.Record(3, map[string]float64{"train_reward": 1.5})
	require.NoError(t, multi.Flush())

	for _, spy := range []*spyReporter{first, second} {
		require.Len(t, spy.records, 1)
		require.Equal(t, 3, spy.records[0].epoch)
		require.Equal(t, 1.5, spy.records[0].metrics["train_reward"])
		require.Equal(t, 1, spy.flushed)
	}
}

func TestSeriesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	series := NewSeries(dir)

	series.Record(1, map[string]float64{"train_loss": 0.9})
	series.Record(2, map[string]float64{"train_loss": 0.5})
	series.Record(3, map[string]float64{"train_loss": 0.25})
	require.NoError(t, series.Flush())

	epochs, values, err := LoadSeries(filepath.Join(dir, "train_loss.bin"))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, epochs)
	require.Equal(t, []float64{0.9, 0.5, 0.25}, values)
}

func TestSeriesOverwritesReRecordedEpoch(t *testing.T) {
	dir := t.TempDir()
	series := NewSeries(dir)

	series.Record(1, map[string]float64{"eval_reward": 0.0})
	series.Record(1, map[string]float64{"eval_reward": 0.75})
	require.NoError(t, series.Flush())

	epochs, values, err := LoadSeries(filepath.Join(dir, "eval_reward.bin"))
	require.NoError(t, err)
	require.Equal(t, []int{1}, epochs)
	require.Equal(t, []float64{0.75}, values)
}

func TestLogRecordsMetricsWithEpoch(t *testing.T) {
	var buf bytes.Buffer
	log := NewLog(zerolog.New(&buf))

	log.Record(7, map[string]float64{"train_reward": -1})
	require.NoError(t, log.Flush())

	require.Contains(t, buf.String(), `"epoch":7`)
	require.Contains(t, buf.String(), `"train_reward":-1`)
}
