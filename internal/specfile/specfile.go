// Package specfile loads patch sets from YAML.
//
// A patch set looks like:
//
//	version: 1
//	defaults:
//	  occurrence: unique
//	patches:
//	  - name: add-baz
//	    anchor: {kind: literal, text: "foo();"}
//	    mode: insert_after
//	    payload: |
//	      baz();
//
// Defaults are merged into every patch before validation. All problems in a
// file are reported together as one error.
package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"scopepatch/internal/anchor"
	"scopepatch/internal/fileio"
	"scopepatch/internal/patch"
	"scopepatch/internal/scope"
)

// CurrentVersion is the only schema version this build reads.
const CurrentVersion = 1

// Defaults apply to every patch that leaves the field unset.
type Defaults struct {
	Occurrence anchor.Occurrence `yaml:"occurrence,omitempty"`
	Delimiters scope.Delimiters  `yaml:"delimiters,omitempty"`
	Indent     patch.Indent      `yaml:"indent,omitempty"`
}

// File is a parsed patch set.
type File struct {
	Version  int          `yaml:"version"`
	Defaults Defaults     `yaml:"defaults,omitempty"`
	Patches  []patch.Spec `yaml:"patches"`
}

// Load reads and parses the patch set at path.
func Load(path string) (*File, error) {
	text, err := fileio.Read(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data strictly (unknown keys are errors), merges defaults and
// validates the result.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse patch set: %w", err)
	}
	if f.Version == 0 {
		f.Version = CurrentVersion
	}
	for i := range f.Patches {
		f.Patches[i] = f.Defaults.merge(f.Patches[i])
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (d Defaults) merge(s patch.Spec) patch.Spec {
	if s.Anchor.Occurrence == "" {
		s.Anchor.Occurrence = d.Occurrence
	}
	if s.Delimiters.Open == "" && s.Delimiters.Close == "" {
		s.Delimiters = d.Delimiters
	}
	if s.Indent.Mode == "" && s.Indent.Text == "" {
		s.Indent = d.Indent
	}
	return s
}

func (f *File) validate() error {
	var errs errlist
	if f.Version != CurrentVersion {
		errs.add("version %d is not supported (want %d)", f.Version, CurrentVersion)
	}
	if len(f.Patches) == 0 {
		errs.add("patches must list at least one patch")
	}
	seen := make(map[string]int, len(f.Patches))
	for i, p := range f.Patches {
		prefix := fmt.Sprintf("patches[%d] (%s)", i, p.Name)
		if err := p.Validate(); err != nil {
			errs.add("%s: %v", prefix, err)
		}
		if p.Name == "" {
			continue
		}
		if j, dup := seen[p.Name]; dup {
			errs.add("%s: duplicate name, first used by patches[%d]", prefix, j)
		} else {
			seen[p.Name] = i
		}
	}
	return errs.err()
}

// Select returns the named patches in the order given, or every patch in file
// order when names is empty.
func (f *File) Select(names []string) ([]patch.Spec, error) {
	if len(names) == 0 {
		return append([]patch.Spec(nil), f.Patches...), nil
	}
	var (
		out  []patch.Spec
		errs errlist
	)
	for _, n := range names {
		p, ok := f.Find(n)
		if !ok {
			errs.add("no patch named %q (have: %s)", n, strings.Join(f.Names(), ", "))
			continue
		}
		out = append(out, p)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Find looks a patch up by name.
func (f *File) Find(name string) (patch.Spec, bool) {
	for _, p := range f.Patches {
		if p.Name == name {
			return p, true
		}
	}
	return patch.Spec{}, false
}

// Names lists patch names in file order.
func (f *File) Names() []string {
	out := make([]string, len(f.Patches))
	for i, p := range f.Patches {
		out[i] = p.Name
	}
	return out
}

// errlist collects validation messages into one error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
