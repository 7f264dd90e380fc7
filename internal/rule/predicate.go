package rule

import (
	"fmt"
	"sort"
)

// Aux is the auxiliary data handed to a predicate function.
type Aux struct {
	Terms []string
	Min   int
}

// PredicateFunc decides a predicate rule. text is already normalized.
// Implementations must be pure and total: no I/O, never panic, return false
// for input they cannot make sense of.
type PredicateFunc func(text string, aux Aux) (bool, string)

// Predicate names.
const (
	PredicateMinMatches = "min-matches"
	PredicateAnyOf      = "any-of"
)

var predicates = map[string]PredicateFunc{
	PredicateMinMatches: minMatches,
	PredicateAnyOf:      anyOf,
}

// predicateArity validates the arguments of each predicate.
var predicateArity = map[string]func(Predicate) error{
	PredicateMinMatches: func(p Predicate) error {
		if p.Min < 1 || p.Min > len(p.Terms) {
			return fmt.Errorf("%w: min must be between 1 and %d, got %d", ErrPredicateArity, len(p.Terms), p.Min)
		}
		return nil
	},
	PredicateAnyOf: func(p Predicate) error {
		if len(p.Terms) == 0 {
			return fmt.Errorf("%w: at least one term is required", ErrPredicateArity)
		}
		if p.Min != 0 {
			return fmt.Errorf("%w: min is not used by %s", ErrPredicateArity, PredicateAnyOf)
		}
		return nil
	},
}

// PredicateNames returns the registered predicate names, sorted.
func PredicateNames() []string {
	names := make([]string, 0, len(predicates))
	for name := range predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// minMatches passes iff at least aux.Min of aux.Terms appear.
func minMatches(text string, aux Aux) (bool, string) {
	if aux.Min < 1 {
		return false, "min-matches requires min >= 1"
	}
	matched := len(aux.Terms) - len(absent(text, aux.Terms))
	if matched < aux.Min {
		return false, fmt.Sprintf("only %d/%d required terms found", matched, aux.Min)
	}
	return true, "all criteria met"
}

// anyOf passes iff at least one of aux.Terms appears.
func anyOf(text string, aux Aux) (bool, string) {
	if _, found := firstPresent(text, aux.Terms); found {
		return true, "all criteria met"
	}
	return false, "none of the expected terms found"
}
