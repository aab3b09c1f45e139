package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qcform/internal/form"
)

var errReadings = errors.New("invalid readings file")

// ReadingsFile is the operator's input for one submission:
//
//	readings:
//	  - station: A
//	    result: 15
//	  - station: B
//	    fixture: F1
//	    point: P1
//	    result: OK
//	    cycles: 5
//	    seconds: 3
//	  - index: 2
//	    result: NG
type ReadingsFile struct {
	Readings []Reading `yaml:"readings"`
}

// Reading is the input for one row. A row is addressed by station with
// optional fixture and point, or by its position as listed by the specs
// command. Values are kept as text and parsed per control type when applied.
type Reading struct {
	Index   *int   `yaml:"index"`
	Station string `yaml:"station"`
	Fixture string `yaml:"fixture"`
	Point   string `yaml:"point"`
	Result  string `yaml:"result"`
	Cycles  string `yaml:"cycles"`
	Seconds string `yaml:"seconds"`
}

// readReadings decodes a readings file; "-" reads from stdin.
func readReadings(path string, stdin io.Reader) (ReadingsFile, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return ReadingsFile{}, fmt.Errorf("%w: %v", errReadings, err)
	}

	var rf ReadingsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return ReadingsFile{}, fmt.Errorf("%w: %s: %v", errReadings, path, err)
	}
	return rf, nil
}

// apply enters every reading into s.
func (rf ReadingsFile) apply(s form.Session) (form.Session, error) {
	for _, r := range rf.Readings {
		key, err := r.key(s)
		if err != nil {
			return s, err
		}
		if r.Result != "" {
			if s, err = s.SetResult(key, r.Result); err != nil {
				return s, err
			}
		}
		if r.Cycles != "" {
			if s, err = s.SetCycleCount(key, r.Cycles); err != nil {
				return s, err
			}
		}
		if r.Seconds != "" {
			if s, err = s.SetSeconds(key, r.Seconds); err != nil {
				return s, err
			}
		}
	}
	return s, nil
}

func (r Reading) key(s form.Session) (form.Key, error) {
	if r.Index != nil {
		if r.Station != "" || r.Fixture != "" || r.Point != "" {
			return form.Key{}, fmt.Errorf("%w: reading %d sets both index and station/fixture/point", errReadings, *r.Index)
		}
		return s.Key(*r.Index)
	}
	return s.KeyFor(r.Station, r.Fixture, r.Point)
}
