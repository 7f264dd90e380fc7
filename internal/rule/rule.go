package rule

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Spec is the pass/fail logic bound to a test case.
// The set of implementations is closed: Lexical and Predicate.
type Spec interface {
	// Kind returns the rule kind name used in the registry table.
	Kind() string

	sealed()
}

// Rule kind names.
const (
	KindLexical   = "lexical"
	KindPredicate = "predicate"
)

// Lexical passes iff every Required term appears and no Forbidden term appears.
// Either set may be empty.
type Lexical struct {
	Required  []string
	Forbidden []string
}

// Kind implements Spec.
func (Lexical) Kind() string { return KindLexical }
func (Lexical) sealed()      {}

// Predicate delegates the decision to a named function from the predicate table.
// Forbidden terms are checked first and fail the rule regardless of the predicate.
type Predicate struct {
	Name      string
	Terms     []string
	Min       int
	Forbidden []string
}

// Kind implements Spec.
func (Predicate) Kind() string { return KindPredicate }
func (Predicate) sealed()      {}

// Clone returns a copy of s that shares no term slices with it.
func Clone(s Spec) Spec {
	switch r := s.(type) {
	case Lexical:
		r.Required = slices.Clone(r.Required)
		r.Forbidden = slices.Clone(r.Forbidden)
		return r
	case Predicate:
		r.Terms = slices.Clone(r.Terms)
		r.Forbidden = slices.Clone(r.Forbidden)
		return r
	default:
		return s
	}
}

// Validation errors returned by Validate.
var (
	ErrUnknownPredicate = errors.New("unknown predicate")
	ErrPredicateArity   = errors.New("invalid predicate arguments")
	ErrEmptyTerm        = errors.New("empty term")
	ErrUnknownKind      = errors.New("unknown rule kind")
)

// Evaluate reports whether response satisfies s.
func Evaluate(s Spec, response string) bool {
	ok, _ := Explain(s, response)
	return ok
}

// Explain evaluates s against response and returns a short human-readable reason.
// The boolean is identical to Evaluate.
func Explain(s Spec, response string) (bool, string) {
	text := normalize(response)

	switch r := s.(type) {
	case Lexical:
		if term, found := firstPresent(text, r.Forbidden); found {
			return false, fmt.Sprintf("contains forbidden term %q", term)
		}
		if missing := absent(text, r.Required); len(missing) > 0 {
			return false, fmt.Sprintf("only %d/%d required terms found (missing: %s)",
				len(r.Required)-len(missing), len(r.Required), strings.Join(missing, ", "))
		}
		return true, "all criteria met"

	case Predicate:
		if term, found := firstPresent(text, r.Forbidden); found {
			return false, fmt.Sprintf("contains forbidden term %q", term)
		}
		fn, ok := predicates[r.Name]
		if !ok {
			return false, fmt.Sprintf("unknown predicate %q", r.Name)
		}
		return fn(text, Aux{Terms: r.Terms, Min: r.Min})

	default:
		return false, fmt.Sprintf("unsupported rule %T", s)
	}
}

// Validate checks that s is well formed: known kind, known predicate, sane
// arguments and no empty terms.
func Validate(s Spec) error {
	switch r := s.(type) {
	case Lexical:
		if err := checkTerms(r.Required); err != nil {
			return fmt.Errorf("required: %w", err)
		}
		if err := checkTerms(r.Forbidden); err != nil {
			return fmt.Errorf("forbidden: %w", err)
		}
		return nil

	case Predicate:
		def, ok := predicateArity[r.Name]
		if !ok {
			return fmt.Errorf("%w %q (known: %s)", ErrUnknownPredicate, r.Name, strings.Join(PredicateNames(), ", "))
		}
		if err := def(r); err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
		if err := checkTerms(r.Terms); err != nil {
			return fmt.Errorf("terms: %w", err)
		}
		if err := checkTerms(r.Forbidden); err != nil {
			return fmt.Errorf("forbidden: %w", err)
		}
		return nil

	case nil:
		return fmt.Errorf("%w: <nil>", ErrUnknownKind)

	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, s)
	}
}

func checkTerms(terms []string) error {
	for i, t := range terms {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w at index %d", ErrEmptyTerm, i)
		}
	}
	return nil
}

// normalize folds text into the form all matching happens in.
func normalize(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// contains reports whether the normalized text contains term.
func contains(text, term string) bool {
	return strings.Contains(text, normalize(term))
}

func firstPresent(text string, terms []string) (string, bool) {
	for _, t := range terms {
		if contains(text, t) {
			return t, true
		}
	}
	return "", false
}

func absent(text string, terms []string) []string {
	var missing []string
	for _, t := range terms {
		if !contains(text, t) {
			missing = append(missing, t)
		}
	}
	return missing
}
