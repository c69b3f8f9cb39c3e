// Package template implements placeholder extraction, variable resolution,
// and interpolation for prompt templates.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Delimiters is the start/end pair that marks a placeholder in a template.
// Both are literal strings, never patterns.
type Delimiters struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// DefaultDelimiters returns the default {variable} syntax.
func DefaultDelimiters() Delimiters {
	return Delimiters{Start: "{", End: "}"}
}

// presets maps preset names to delimiter pairs for common template systems.
var presets = map[string]Delimiters{
	"curly":          {Start: "{", End: "}"},
	"dollar":         {Start: "$", End: "$"},
	"angle":          {Start: "<", End: ">"},
	"double_bracket": {Start: "[[", End: "]]"},
	"shell":          {Start: "${", End: "}"},
}

// PresetDelimiters returns the delimiter pair for a named preset.
func PresetDelimiters(name string) (Delimiters, error) {
	d, ok := presets[name]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Delimiters{}, fmt.Errorf("unknown delimiter preset %q (available: %v)", name, names)
	}
	return d, nil
}

// PresetNames returns the available preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d Delimiters) String() string {
	return d.Start + "variable" + d.End
}

// Identifiers are word-character runs, optionally dot-separated so that
// chain output references like steps.eval.output tokenize as one name.
const identExpr = `\w+(?:\.\w+)*`

// pattern compiles the placeholder matcher with both delimiters quoted, so
// characters like $ or [ are treated literally. Matching is left-to-right
// and non-overlapping, which keeps degenerate delimiter pairs from looping.
func (d Delimiters) pattern() *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(d.Start) + `(` + identExpr + `)` + regexp.QuoteMeta(d.End))
}

// Occurrence is one placeholder found in a template, with byte positions
// spanning the delimiters.
type Occurrence struct {
	Name  string
	Start int
	End   int
}

// Occurrences returns every placeholder in the template in order of
// appearance, duplicates included.
func (d Delimiters) Occurrences(tmpl string) []Occurrence {
	matches := d.pattern().FindAllStringSubmatchIndex(tmpl, -1)
	occs := make([]Occurrence, 0, len(matches))
	for _, m := range matches {
		occs = append(occs, Occurrence{
			Name:  tmpl[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		})
	}
	return occs
}

// Extract returns the distinct placeholder names in order of first
// appearance.
func (d Delimiters) Extract(tmpl string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, occ := range d.Occurrences(tmpl) {
		if _, ok := seen[occ.Name]; ok {
			continue
		}
		seen[occ.Name] = struct{}{}
		names = append(names, occ.Name)
	}
	return names
}

// Count returns the total number of placeholder occurrences, duplicates
// included.
func (d Delimiters) Count(tmpl string) int {
	return len(d.Occurrences(tmpl))
}

// Validate checks template syntax and returns a list of problems. An empty
// list means the template is well formed.
func (d Delimiters) Validate(tmpl string) []string {
	var problems []string

	if d.Start != d.End && d.Start != "" && d.End != "" {
		starts := strings.Count(tmpl, d.Start)
		ends := strings.Count(tmpl, d.End)
		if starts != ends {
			problems = append(problems, fmt.Sprintf("mismatched delimiters: %d opening, %d closing", starts, ends))
		}
	}

	empty := regexp.MustCompile(regexp.QuoteMeta(d.Start) + regexp.QuoteMeta(d.End))
	if empty.MatchString(tmpl) {
		problems = append(problems, "empty placeholder (no name between delimiters)")
	}

	invalid := regexp.MustCompile(regexp.QuoteMeta(d.Start) + `([^\w.{}\n]+)` + regexp.QuoteMeta(d.End))
	for _, m := range invalid.FindAllStringSubmatch(tmpl, -1) {
		problems = append(problems, fmt.Sprintf("invalid placeholder name %q (letters, digits, and underscores only)", m[1]))
	}

	return problems
}
