package tracker

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Series records each metric as an (epoch, value) series and saves
// one gob-encoded file per metric on Flush. Files are named after the
// metric with a ".bin" extension and written to a fixed directory.
type Series struct {
	dir    string
	epochs map[string][]int
	values map[string][]float64
}

// NewSeries creates a Reporter saving per-metric series files under
// dir
func NewSeries(dir string) *Series {
	return &Series{
		dir:    dir,
		epochs: make(map[string][]int),
		values: make(map[string][]float64),
	}
}

// Record implements the Reporter interface
func (s *Series) Record(epoch int, metrics map[string]float64) {
	for name, value := range metrics {
		// Overwrite when the same metric is re-recorded for an epoch
		epochs := s.epochs[name]
		if n := len(epochs); n > 0 && epochs[n-1] == epoch {
			s.values[name][n-1] = value
			continue
		}
		s.epochs[name] = append(s.epochs[name], epoch)
		s.values[name] = append(s.values[name], value)
	}
}

// Flush implements the Reporter interface, writing one file per
// recorded metric.
func (s *Series) Flush() error {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.save(name); err != nil {
			return fmt.Errorf("flush: %v", err)
		}
	}
	return nil
}

// save writes the series of a single metric to disk
func (s *Series) save(name string) error {
	file, err := os.Create(filepath.Join(s.dir, name+".bin"))
	if err != nil {
		return fmt.Errorf("save: could not create series file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(s.epochs[name]); err != nil {
		return fmt.Errorf("save: could not encode epochs of %v: %v", name,
			err)
	}
	if err := enc.Encode(s.values[name]); err != nil {
		return fmt.Errorf("save: could not encode values of %v: %v", name,
			err)
	}
	return nil
}

// LoadSeries loads the series of a single metric saved by a Series
// Reporter.
func LoadSeries(filename string) (epochs []int, values []float64,
	err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("loadseries: could not open series "+
			"file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	if err := dec.Decode(&epochs); err != nil {
		return nil, nil, fmt.Errorf("loadseries: could not decode epochs: "+
			"%v", err)
	}
	if err := dec.Decode(&values); err != nil {
		return nil, nil, fmt.Errorf("loadseries: could not decode values: "+
			"%v", err)
	}
	return epochs, values, nil
}
