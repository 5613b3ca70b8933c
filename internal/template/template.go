package template

import (
	"fmt"
	"regexp"
	"sort"
)

var varRefRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Vars maps template variable names to values.
type Vars map[string]string

// Merge returns a new Vars with later layers overriding earlier ones.
func Merge(layers ...Vars) Vars {
	out := Vars{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Resolve replaces every {{name}} in s with its value from vars.
func Resolve(s string, vars Vars) (string, error) {
	var resolveErr error
	result := varRefRe.ReplaceAllStringFunc(s, func(match string) string {
		name := varRefRe.FindStringSubmatch(match)[1]
		val, ok := vars[name]
		if !ok {
			if resolveErr == nil {
				resolveErr = fmt.Errorf("unresolved variable %q", name)
			}
			return match
		}
		return val
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return result, nil
}

// Refs lists the distinct variable names referenced by s, sorted.
func Refs(s string) []string {
	seen := map[string]bool{}
	for _, m := range varRefRe.FindAllStringSubmatch(s, -1) {
		seen[m[1]] = true
	}
	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}
