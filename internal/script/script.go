// Package script loads YAML key-event scripts.
//
// A script is a list of steps, each naming one action:
//
//	name: shifted letter then commit
//	steps:
//	  - down: LeftShift
//	  - tap: A
//	  - up: LeftShift
//	  - type: "hi"
//	  - tap: Enter
//	  - raw: [9, 2, 1]
//	expect: "Ahi\nAhi\n\n> "
//
// down/up/tap take key names accepted by keyboard.ParseKey; type synthesizes
// the events of a US keyboard for every rune; raw injects an undecoded
// stream record.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"

	"kbshell/sys/keyboard"
	"kbshell/sys/proto"

	yaml "gopkg.in/yaml.v3"
)

var ErrEmptyStep = errors.New("step has no action")

type Script struct {
	Name   string  `yaml:"name"`
	Steps  []Step  `yaml:"steps"`
	Expect *string `yaml:"expect,omitempty"`
}

type Step struct {
	Down string `yaml:"down,omitempty"`
	Up   string `yaml:"up,omitempty"`
	Tap  string `yaml:"tap,omitempty"`
	Type string `yaml:"type,omitempty"`
	Raw  []int  `yaml:"raw,omitempty"`
}

// Load decodes a script. Unknown fields are rejected.
func Load(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &s, nil
}

// LoadFile reads a script from path.
func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Records expands the script into key event stream records in order.
func (s *Script) Records() ([][]byte, error) {
	var out [][]byte
	for i, st := range s.Steps {
		recs, err := st.records()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (st Step) records() ([][]byte, error) {
	n := 0
	for _, set := range []bool{st.Down != "", st.Up != "", st.Tap != "", st.Type != "", st.Raw != nil} {
		if set {
			n++
		}
	}
	switch {
	case n == 0:
		return nil, ErrEmptyStep
	case n > 1:
		return nil, errors.New("step has more than one action")
	}

	switch {
	case st.Raw != nil:
		rec := make([]byte, len(st.Raw))
		for i, v := range st.Raw {
			if v < 0 || v > 0xff {
				return nil, fmt.Errorf("raw byte %d out of range: %d", i, v)
			}
			rec[i] = byte(v)
		}
		return [][]byte{rec}, nil

	case st.Type != "":
		var evs []keyboard.Event
		for _, r := range st.Type {
			e, ok := keyboard.Type(r)
			if !ok {
				return nil, fmt.Errorf("cannot type %q", r)
			}
			evs = append(evs, e...)
		}
		return encode(evs), nil
	}

	name, kinds := st.Down, []keyboard.Kind{keyboard.KindDown}
	switch {
	case st.Up != "":
		name, kinds = st.Up, []keyboard.Kind{keyboard.KindUp}
	case st.Tap != "":
		name, kinds = st.Tap, []keyboard.Kind{keyboard.KindDown, keyboard.KindUp}
	}
	key, err := keyboard.ParseKey(name)
	if err != nil {
		return nil, err
	}
	evs := make([]keyboard.Event, 0, len(kinds))
	for _, k := range kinds {
		evs = append(evs, keyboard.Event{Kind: k, Key: key})
	}
	return encode(evs), nil
}

func encode(evs []keyboard.Event) [][]byte {
	out := make([][]byte, len(evs))
	for i, ev := range evs {
		out[i] = proto.KeyEventPayload(ev)
	}
	return out
}
