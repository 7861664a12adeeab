package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// WildcardToken is the literal token that marks the wildcard segment of a
// pattern artifact's output path.
const WildcardToken = "{}"

// wildcardClass is the character class a wildcard expansion may be built
// from. Fixed per the current contract: alphanumerics, underscore, dot,
// plus, and hyphen.
const wildcardClass = `[A-Za-z0-9_.+\-]+?`

// Kind distinguishes concrete from pattern artifacts.
type Kind int

const (
	// KindConcrete is an artifact whose output paths contain no wildcard.
	KindConcrete Kind = iota
	// KindPattern is an artifact with at least one wildcarded output path.
	KindPattern
)

// Artifact is a named bundle of input and output paths declared in a
// manifest. The manifest's own path is appended as an implicit additional
// input by the config loader before an Artifact is handed to the resolver.
type Artifact struct {
	Name    string
	Inputs  []Path
	Outputs []Path
	Kind    Kind
}

// NewArtifact builds and validates an Artifact from a name and raw path
// lists, classifying it as concrete or pattern based on whether any output
// contains the wildcard token.
func NewArtifact(name string, inputs, outputs []Path) (*Artifact, error) {
	if len(inputs) == 0 {
		return nil, zerr.With(ErrEmptyInputs, "artifact", name)
	}
	if len(outputs) == 0 {
		return nil, zerr.With(ErrEmptyOutputs, "artifact", name)
	}

	for _, in := range inputs {
		if strings.Contains(string(in), WildcardToken) {
			return nil, zerr.With(zerr.With(ErrWildcardInInput, "artifact", name), "input", in)
		}
	}

	kind := KindConcrete
	for _, out := range outputs {
		count := strings.Count(string(out), WildcardToken)
		if count > 1 {
			return nil, zerr.With(zerr.With(ErrMultipleWildcardsInPath, "artifact", name), "output", out)
		}
		if count == 1 {
			kind = KindPattern
		}
	}

	return &Artifact{Name: name, Inputs: inputs, Outputs: outputs, Kind: kind}, nil
}

// IsPattern reports whether the Artifact is a pattern artifact.
func (a *Artifact) IsPattern() bool {
	return a.Kind == KindPattern
}

// WildcardOutputs returns the subset of Outputs that contain the wildcard
// token. For a concrete artifact this is always empty.
func (a *Artifact) WildcardOutputs() []Path {
	var out []Path
	for _, o := range a.Outputs {
		if strings.Contains(string(o), WildcardToken) {
			out = append(out, o)
		}
	}
	return out
}

// SharedOutputs returns the subset of Outputs that do not contain the
// wildcard token; these are common across every instance of a pattern
// artifact.
func (a *Artifact) SharedOutputs() []Path {
	var out []Path
	for _, o := range a.Outputs {
		if !strings.Contains(string(o), WildcardToken) {
			out = append(out, o)
		}
	}
	return out
}

// patternRegexp compiles an output path template into a regular expression
// that captures the wildcard expansion as its first (and only) group. The
// wildcard is matched non-greedily over wildcardClass so that a literal
// suffix sharing characters with the class still yields the shortest valid
// expansion, per spec S5.
func patternRegexp(template Path) (*regexp.Regexp, error) {
	idx := strings.Index(string(template), WildcardToken)
	if idx < 0 {
		return nil, zerr.With(ErrInvalidPatternArtifact, "template", template)
	}
	before := regexp.QuoteMeta(string(template)[:idx])
	after := regexp.QuoteMeta(string(template)[idx+len(WildcardToken):])
	expr := "^" + before + "(" + wildcardClass + ")" + after + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, zerr.Wrap(err, ErrInvalidPatternArtifact.Error())
	}
	return re, nil
}

// MatchInstance attempts to match a concrete filesystem-relative path
// against a wildcarded output template, returning the wildcard expansion on
// success.
func MatchInstance(template Path, candidate Path) (string, bool) {
	re, err := patternRegexp(template)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(string(candidate))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// InstantiateOutput substitutes the wildcard token in template with
// instance, returning the concrete path.
func InstantiateOutput(template Path, instance string) Path {
	return Path(strings.Replace(string(template), WildcardToken, instance, 1))
}
