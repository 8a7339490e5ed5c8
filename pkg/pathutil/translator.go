package pathutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/hdwhdw/pathmap/pkg/security/pathvalidator"
	"golang.org/x/sync/errgroup"
)

// DefaultFSSeparator is used when a rule leaves FSSeparator empty
const DefaultFSSeparator = "/"

// Rule pairs a logical base with the file-system base it maps to
type Rule struct {
	LogicalBase      string
	LogicalSeparator string
	FSBase           string
	FSSeparator      string
	// FileExtension is appended to paths derived from a logical suffix
	FileExtension string
}

// WithDefaults returns a copy of the rule with empty optional fields filled in
func (r Rule) WithDefaults() Rule {
	if r.FSSeparator == "" {
		r.FSSeparator = DefaultFSSeparator
	}
	return r
}

// Validate checks the rule after defaults are applied
func (r Rule) Validate() error {
	r = r.WithDefaults()
	return pathvalidator.ValidateRule(r.LogicalBase, r.LogicalSeparator, r.FSBase, r.FSSeparator)
}

// Result is the outcome of translating one source path
type Result struct {
	Source string
	Path   string
	OK     bool
}

// Translator handles translation of logical paths under a single rule
type Translator struct {
	rule Rule
}

// NewTranslator creates a new path translator for a validated rule
func NewTranslator(rule Rule) (*Translator, error) {
	rule = rule.WithDefaults()
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mapping rule: %w", err)
	}
	return &Translator{
		rule: rule,
	}, nil
}

// Translate maps a logical path to its file-system path.
// The file extension is only appended when the result is built from a suffix
// whose last segment is non-empty; the logical base itself always maps to the
// file-system base verbatim, and a source ending in the logical separator maps
// to a directory.
func (t *Translator) Translate(source string) (string, bool) {
	r := t.rule
	path, ok := t.TranslateDir(source)
	if !ok {
		return "", false
	}
	if source != r.LogicalBase && !strings.HasSuffix(path, r.FSSeparator) {
		path += r.FileExtension
	}
	return path, true
}

// TranslateDir maps a logical path without appending the file extension,
// naming the directory the path denotes.
func (t *Translator) TranslateDir(source string) (string, bool) {
	r := t.rule
	return Transform(source, r.LogicalBase, r.LogicalSeparator, r.FSBase, r.FSSeparator)
}

// TranslateAll translates sources concurrently with at most workers goroutines.
// Results keep the order of sources.
func (t *Translator) TranslateAll(ctx context.Context, sources []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, ok := t.Translate(source)
			results[i] = Result{Source: source, Path: path, OK: ok}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Rule returns the rule the translator was built with, defaults applied
func (t *Translator) Rule() Rule {
	return t.rule
}
