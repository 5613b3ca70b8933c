// Package expect holds the output predicates used to grade exercise
// programs. Rules match tokens and substrings rather than exact output, so
// programs with different wording and formatting still pass.
package expect

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Observation is what a check can see after invoking a program.
type Observation struct {
	Stdout   string
	ExitCode int
	Dir      string // where file-state rules resolve paths
}

// Rule is a predicate over an Observation. Check returns nil when the
// expectation holds and an error naming it otherwise.
type Rule interface {
	Describe() string
	Check(obs Observation) error
}

// Evaluate runs every rule and returns the descriptions of failed ones.
func Evaluate(obs Observation, rules ...Rule) []string {
	var failures []string
	for _, r := range rules {
		if err := r.Check(obs); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

func tokenPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`)
}

// ContainsToken requires token to appear in stdout on word boundaries.
func ContainsToken(token, what string) Rule {
	return tokenRule{tokens: []string{token}, what: what}
}

// ContainsAllTokens requires every token to appear on word boundaries.
func ContainsAllTokens(tokens []string, what string) Rule {
	return tokenRule{tokens: tokens, what: what}
}

type tokenRule struct {
	tokens []string
	what   string
}

func (r tokenRule) Describe() string { return r.what }

func (r tokenRule) Check(obs Observation) error {
	var missing []string
	for _, tok := range r.tokens {
		if !tokenPattern(tok).MatchString(obs.Stdout) {
			missing = append(missing, tok)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing token(s) %s", r.what, quoteJoin(missing))
	}
	return nil
}

// ContainsAllSubstrings requires every string to occur somewhere in stdout.
func ContainsAllSubstrings(subs []string, what string) Rule {
	return substrRule{subs: subs, what: what}
}

type substrRule struct {
	subs []string
	what string
}

func (r substrRule) Describe() string { return r.what }

func (r substrRule) Check(obs Observation) error {
	var missing []string
	for _, s := range r.subs {
		if !strings.Contains(obs.Stdout, s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing %s", r.what, quoteJoin(missing))
	}
	return nil
}

// ContainsAnyFold requires at least one of subs in stdout, ignoring case.
func ContainsAnyFold(subs []string, what string) Rule {
	return anyFoldRule{subs: subs, what: what}
}

type anyFoldRule struct {
	subs []string
	what string
}

func (r anyFoldRule) Describe() string { return r.what }

func (r anyFoldRule) Check(obs Observation) error {
	if MatchAnyFold(obs.Stdout, r.subs) == "" {
		return fmt.Errorf("%s: none of %s found", r.what, quoteJoin(r.subs))
	}
	return nil
}

// MatchAnyFold returns the first of subs found in s ignoring case, or "".
func MatchAnyFold(s string, subs []string) string {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return sub
		}
	}
	return ""
}

// ExitZero requires the program to exit with status 0.
func ExitZero(what string) Rule {
	return exitRule{what: what}
}

type exitRule struct{ what string }

func (r exitRule) Describe() string { return r.what }

func (r exitRule) Check(obs Observation) error {
	if obs.ExitCode != 0 {
		return fmt.Errorf("%s: exit code %d", r.what, obs.ExitCode)
	}
	return nil
}

// FileContainsTokens requires the file at path (relative to Observation.Dir)
// to exist and contain every token on word boundaries.
func FileContainsTokens(path string, tokens []string, what string) Rule {
	return fileRule{path: path, tokens: tokens, what: what}
}

type fileRule struct {
	path   string
	tokens []string
	what   string
}

func (r fileRule) Describe() string { return r.what }

func (r fileRule) Check(obs Observation) error {
	p := r.path
	if !filepath.IsAbs(p) && obs.Dir != "" {
		p = filepath.Join(obs.Dir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %s was not created", r.what, r.path)
		}
		return fmt.Errorf("%s: %w", r.what, err)
	}
	var missing []string
	for _, tok := range r.tokens {
		if !tokenPattern(tok).Match(data) {
			missing = append(missing, tok)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %s lacks %s", r.what, r.path, quoteJoin(missing))
	}
	return nil
}

func quoteJoin(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ", ")
}
