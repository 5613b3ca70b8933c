package suite

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Check kinds.
const (
	KindBuild  = "build"
	KindRead   = "read"
	KindWrite  = "write"
	KindMenu   = "menu"
	KindBinary = "binary"
)

// Suite is the top-level description of an exercise batch.
type Suite struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Vars        map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"`
	Fixtures    map[string]string `yaml:"fixtures,omitempty" json:"fixtures,omitempty"`
	Scratch     []string          `yaml:"scratch,omitempty" json:"scratch,omitempty"`
	Checks      []Check           `yaml:"checks" json:"checks"`
}

// Check is one graded exercise. Kind selects which of the kind blocks
// applies; unset blocks are filled by ApplyDefaults.
type Check struct {
	ID      string        `yaml:"id" json:"id"`
	Name    string        `yaml:"name,omitempty" json:"name,omitempty"`
	Kind    string        `yaml:"kind" json:"kind"`
	Source  string        `yaml:"source" json:"source"`
	Output  string        `yaml:"output,omitempty" json:"output,omitempty"`
	Bonus   bool          `yaml:"bonus,omitempty" json:"bonus,omitempty"`
	Covers  []string      `yaml:"covers,omitempty" json:"covers,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	Read   *ReadSpec   `yaml:"read,omitempty" json:"read,omitempty"`
	Write  *WriteSpec  `yaml:"write,omitempty" json:"write,omitempty"`
	Menu   *MenuSpec   `yaml:"menu,omitempty" json:"menu,omitempty"`
	Binary *BinarySpec `yaml:"binary,omitempty" json:"binary,omitempty"`
}

// ReadSpec drives a program that prints a file and its word count.
type ReadSpec struct {
	Fixture     string   `yaml:"fixture,omitempty" json:"fixture,omitempty"`
	Missing     string   `yaml:"missing,omitempty" json:"missing,omitempty"`
	Stdin       string   `yaml:"stdin,omitempty" json:"stdin,omitempty"` // vars: file
	ErrorTokens []string `yaml:"error_tokens,omitempty" json:"error_tokens,omitempty"`
}

// WriteSpec drives a program that overwrites or appends to a file.
type WriteSpec struct {
	Target    string    `yaml:"target,omitempty" json:"target,omitempty"`
	Stdin     string    `yaml:"stdin,omitempty" json:"stdin,omitempty"` // vars: target, mode, text
	Overwrite WriteStep `yaml:"overwrite,omitempty" json:"overwrite"`
	Append    WriteStep `yaml:"append,omitempty" json:"append"`
}

// WriteStep is one mode selection and the text written with it.
type WriteStep struct {
	Mode string `yaml:"mode,omitempty" json:"mode,omitempty"`
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
}

// MenuSpec probes for and exercises a menu-driven program.
type MenuSpec struct {
	Fixture      string        `yaml:"fixture,omitempty" json:"fixture,omitempty"`
	Probe        string        `yaml:"probe,omitempty" json:"probe,omitempty"` // vars: fixture
	Stdin        string        `yaml:"stdin,omitempty" json:"stdin,omitempty"` // vars: fixture, choice
	Tokens       []string      `yaml:"tokens,omitempty" json:"tokens,omitempty"`
	Inputs       []string      `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	InputTimeout time.Duration `yaml:"input_timeout,omitempty" json:"input_timeout,omitempty"` // zero uses the configured menu timeout
}

// BinarySpec expects a fixed integer sequence from a binary round-trip.
type BinarySpec struct {
	Stdin  string `yaml:"stdin,omitempty" json:"stdin,omitempty"`
	Expect []int  `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Default menu vocabulary: full option words plus single letters, and the
// inputs a menu is expected to accept.
var (
	DefaultMenuTokens = []string{"read", "write", "append", "count", "R", "W", "O", "A", "C"}
	DefaultMenuInputs = menuInputs()
)

func menuInputs() []string {
	inputs := []string{"1", "2", "3", "4", "R", "W", "O", "A", "C"}
	for _, word := range []string{"read", "write", "append", "count"} {
		inputs = append(inputs, word[:1])
	}
	return inputs
}

// Executable is the build output name for the check.
func (c *Check) Executable() string {
	if c.Output != "" {
		return c.Output
	}
	return strings.TrimSuffix(c.Source, filepath.Ext(c.Source))
}

// ApplyDefaults fills the kind block with the values the standard file
// handling exercises use.
func (c *Check) ApplyDefaults() {
	switch c.Kind {
	case KindRead:
		if c.Read == nil {
			c.Read = &ReadSpec{}
		}
		r := c.Read
		r.Fixture = orDefault(r.Fixture, "test.txt")
		r.Missing = orDefault(r.Missing, "nonexistent.txt")
		r.Stdin = orDefault(r.Stdin, "{{file}}\n")
		if len(r.ErrorTokens) == 0 {
			r.ErrorTokens = []string{"error", "not found"}
		}
	case KindWrite:
		if c.Write == nil {
			c.Write = &WriteSpec{}
		}
		w := c.Write
		w.Target = orDefault(w.Target, "overwrite_test.txt")
		w.Stdin = orDefault(w.Stdin, "{{target}}\n{{mode}}\n{{text}}\n")
		w.Overwrite.Mode = orDefault(w.Overwrite.Mode, "w")
		w.Overwrite.Text = orDefault(w.Overwrite.Text, "Overwrite content")
		w.Append.Mode = orDefault(w.Append.Mode, "a")
		w.Append.Text = orDefault(w.Append.Text, "Appended content")
	case KindMenu:
		if c.Menu == nil {
			c.Menu = &MenuSpec{}
		}
		m := c.Menu
		m.Fixture = orDefault(m.Fixture, "test.txt")
		m.Probe = orDefault(m.Probe, "{{fixture}}\n")
		m.Stdin = orDefault(m.Stdin, "{{fixture}}\n{{choice}}\n")
		if len(m.Tokens) == 0 {
			m.Tokens = append([]string(nil), DefaultMenuTokens...)
		}
		if len(m.Inputs) == 0 {
			m.Inputs = append([]string(nil), DefaultMenuInputs...)
		}
	case KindBinary:
		if c.Binary == nil {
			c.Binary = &BinarySpec{}
		}
		if len(c.Binary.Expect) == 0 {
			c.Binary.Expect = []int{1, 2, 3, 4, 5}
		}
	}
}

// ExpectTokens renders the binary reference sequence as tokens.
func (b *BinarySpec) ExpectTokens() []string {
	tokens := make([]string, len(b.Expect))
	for i, n := range b.Expect {
		tokens[i] = strconv.Itoa(n)
	}
	return tokens
}

// Executables lists every build output the suite can produce. Names that
// are also a check's source are never listed.
func (s *Suite) Executables() []string {
	seen := map[string]bool{}
	for i := range s.Checks {
		seen[s.Checks[i].Source] = true
	}
	var out []string
	for i := range s.Checks {
		exe := s.Checks[i].Executable()
		if exe != "" && !seen[exe] {
			seen[exe] = true
			out = append(out, exe)
		}
	}
	return out
}

// Check returns the check with the given id.
func (s *Suite) Check(id string) (*Check, bool) {
	for i := range s.Checks {
		if s.Checks[i].ID == id {
			return &s.Checks[i], true
		}
	}
	return nil, false
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
