package template

import "strings"

// Result is the outcome of one interpolation pass. Every distinct
// placeholder in the source template lands in exactly one bucket: it was
// substituted into Text, it is listed in Unmapped, or it has an entry in
// Errors (and its raw token is left visible in Text).
type Result struct {
	Text     string
	Unmapped []string
	Errors   map[string]ErrorKind
}

// OK reports whether the pass substituted everything it was asked to.
func (r Result) OK() bool {
	return len(r.Unmapped) == 0 && len(r.Errors) == 0
}

// HasUnmapped reports whether name was recorded as unmapped.
func (r Result) HasUnmapped(name string) bool {
	for _, n := range r.Unmapped {
		if n == name {
			return true
		}
	}
	return false
}

// Interpolate substitutes every placeholder in tmpl using the namespace.
// Identifiers missing from the namespace are recorded in Unmapped and their
// tokens left in place; identifiers whose specs fail to resolve are recorded
// in Errors, token also left in place. Substitution is literal: resolved
// values are never re-tokenized, so placeholder-shaped text inside a value
// stays verbatim.
func Interpolate(tmpl string, ns Namespace, workspaceRoot string, delims Delimiters) Result {
	occs := delims.Occurrences(tmpl)
	if len(occs) == 0 {
		return Result{Text: tmpl, Errors: map[string]ErrorKind{}}
	}

	res := Result{Errors: map[string]ErrorKind{}}

	// Resolve each distinct identifier once.
	values := make(map[string]string)
	seen := make(map[string]struct{})
	for _, occ := range occs {
		if _, ok := seen[occ.Name]; ok {
			continue
		}
		seen[occ.Name] = struct{}{}

		spec, ok := ns[occ.Name]
		if !ok {
			res.Unmapped = append(res.Unmapped, occ.Name)
			continue
		}
		value, err := Resolve(spec, workspaceRoot)
		if err != nil {
			kind := ErrBadSpec
			if re, isResolve := err.(*ResolveError); isResolve {
				kind = re.Kind
			}
			res.Errors[occ.Name] = kind
			continue
		}
		values[occ.Name] = value
	}

	// Single pass over the original template: substituted values are copied
	// in as-is and never rescanned for nested placeholders.
	var out strings.Builder
	last := 0
	for _, occ := range occs {
		out.WriteString(tmpl[last:occ.Start])
		if value, ok := values[occ.Name]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(tmpl[occ.Start:occ.End])
		}
		last = occ.End
	}
	out.WriteString(tmpl[last:])
	res.Text = out.String()

	return res
}
