package expressions

import (
	"strings"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

// Reference is one ${{...}} placeholder found in a config value, split on
// dots: `${{steps.login.output.text}}` yields Path = [steps login output text].
type Reference struct {
	Raw  string
	Path []string
}

// Root returns the first path segment ("steps", "inputs", "vars"), or ""
// for an empty reference.
func (r Reference) Root() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[0]
}

// StepID returns the referenced step ID for steps.* references, or "".
func (r Reference) StepID() string {
	if r.Root() != "steps" || len(r.Path) < 2 {
		return ""
	}
	return r.Path[1]
}

// ScanReferences finds every ${{...}} placeholder in the input. It only
// scans: resolution happens in the executor at run time. Unclosed and
// nested markers are reported as interpolation errors.
func ScanReferences(input string) ([]Reference, error) {
	var refs []Reference

	i := 0
	for i < len(input) {
		idx := strings.Index(input[i:], "${{")
		if idx == -1 {
			break
		}
		start := i + idx + 3

		end := strings.Index(input[start:], "}}")
		if end == -1 {
			return nil, schema.NewError(schema.ErrCodeInterpolation, "unclosed ${{ expression")
		}
		end += start

		raw := strings.TrimSpace(input[start:end])
		if strings.Contains(raw, "${{") {
			return nil, schema.NewError(schema.ErrCodeInterpolation,
				"nested interpolation not allowed: ${{...}} cannot contain ${{")
		}
		if raw == "" {
			return nil, schema.NewError(schema.ErrCodeInterpolation, "empty ${{}} expression")
		}

		refs = append(refs, Reference{Raw: raw, Path: strings.Split(raw, ".")})
		i = end + 2
	}

	return refs, nil
}
