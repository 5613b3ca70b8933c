// Package fixture materializes input files for a suite run and removes
// them, along with build artifacts and scratch files, afterwards.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
)

// Set tracks files created in Dir so they can be torn down.
type Set struct {
	Dir     string
	created []string
}

// New returns a Set rooted at dir.
func New(dir string) *Set {
	return &Set{Dir: dir}
}

// Prepare writes each file with its literal content. Files are written in
// name order so failures are reproducible.
func (s *Set) Prepare(files map[string]string) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := s.path(name)
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			return &dagerrors.RunError{
				Type:    dagerrors.FixtureError,
				Message: fmt.Sprintf("writing fixture %s: %v", name, err),
				Hint:    "Make sure the work directory is writable",
			}
		}
		s.created = append(s.created, name)
	}
	return nil
}

// Created lists fixture names written so far.
func (s *Set) Created() []string {
	return append([]string(nil), s.created...)
}

// Remove deletes names relative to Dir. Absent files are not an error; the
// first other failure is returned after every name has been attempted.
func (s *Set) Remove(names ...string) error {
	var first error
	for _, name := range names {
		if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) && first == nil {
			first = err
		}
	}
	return first
}

// Teardown removes every fixture written by Prepare plus extra names.
func (s *Set) Teardown(extra ...string) error {
	err := s.Remove(append(s.Created(), extra...)...)
	s.created = nil
	return err
}

func (s *Set) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}
