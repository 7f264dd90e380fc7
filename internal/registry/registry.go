package registry

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/policycheck/internal/rule"
)

//go:embed tables/*.cue
var tables embed.FS

// DefaultTable is the file name of the suite compiled by Default.
const DefaultTable = "nrepl.cue"

// Registry is a compiled, read-only suite of phases.
type Registry struct {
	Name        string
	Version     string
	Fingerprint string // sha256 of the table source, hex encoded

	phases []Phase
}

// Option adjusts compilation.
type Option func(*options)

type options struct {
	thresholds map[string]float64
}

// WithThresholds overrides the fraction of require-fraction phases by id.
// Overriding an unknown phase or a require-all-critical phase is a
// configuration error.
func WithThresholds(overrides map[string]float64) Option {
	return func(o *options) {
		if o.thresholds == nil {
			o.thresholds = make(map[string]float64, len(overrides))
		}
		for id, p := range overrides {
			o.thresholds[id] = p
		}
	}
}

// Default compiles the embedded default suite.
func Default(opts ...Option) (*Registry, error) {
	src, err := tables.ReadFile("tables/" + DefaultTable)
	if err != nil {
		return nil, fmt.Errorf("registry: read embedded table: %w", err)
	}
	return Compile(DefaultTable, src, opts...)
}

// Compile compiles a CUE suite table. filename is used in CUE diagnostics.
// Returns ConfigErrors when the table is invalid; nothing is partially compiled.
func Compile(filename string, src []byte, opts ...Option) (*Registry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	doc, err := decodeTable(filename, src)
	if err != nil {
		return nil, err
	}

	phases, errs := compilePhases(doc.Phases)
	errs = append(errs, applyThresholds(phases, o.thresholds)...)
	if len(errs) > 0 {
		return nil, errs
	}

	sum := sha256.Sum256(src)
	return &Registry{
		Name:        doc.Name,
		Version:     doc.Version,
		Fingerprint: hex.EncodeToString(sum[:]),
		phases:      phases,
	}, nil
}

// Phases returns the phases in table order.
// The returned slice is a deep copy; mutating it does not affect the registry.
func (r *Registry) Phases() []Phase {
	return clonePhases(r.phases)
}

// Override returns a copy of phases with threshold overrides applied, using
// the same checks as WithThresholds. phases itself is not modified.
func Override(phases []Phase, overrides map[string]float64) ([]Phase, error) {
	out := clonePhases(phases)
	if errs := applyThresholds(out, overrides); len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func clonePhases(phases []Phase) []Phase {
	out := make([]Phase, len(phases))
	for i, p := range phases {
		p.Cases = slices.Clone(p.Cases)
		for j := range p.Cases {
			p.Cases[j].Rule = rule.Clone(p.Cases[j].Rule)
		}
		out[i] = p
	}
	return out
}

// Phase looks up a phase by id.
func (r *Registry) Phase(id string) (Phase, bool) {
	for _, p := range r.Phases() {
		if p.ID == id {
			return p, true
		}
	}
	return Phase{}, false
}

// CriticalPhase returns the require-all-critical phase, if the suite has one.
func (r *Registry) CriticalPhase() (Phase, bool) {
	for _, p := range r.Phases() {
		if p.Policy.Kind == RequireAllCritical {
			return p, true
		}
	}
	return Phase{}, false
}

// CaseCount returns the total number of cases across all phases.
func (r *Registry) CaseCount() int {
	n := 0
	for _, p := range r.phases {
		n += len(p.Cases)
	}
	return n
}

// ShortFingerprint returns the first 12 hex digits of the fingerprint.
func (r *Registry) ShortFingerprint() string {
	if len(r.Fingerprint) < 12 {
		return r.Fingerprint
	}
	return r.Fingerprint[:12]
}

// Table documents decoded from CUE.
type tableDoc struct {
	Name    string     `json:"name"`
	Version string     `json:"version"`
	Phases  []phaseDoc `json:"phases"`
}

type phaseDoc struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Policy policyDoc `json:"policy"`
	Cases  []caseDoc `json:"cases"`
}

type policyDoc struct {
	Kind     string   `json:"kind"`
	Fraction *float64 `json:"fraction,omitempty"`
}

type caseDoc struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Prompt   string  `json:"prompt"`
	Critical bool    `json:"critical"`
	Rule     ruleDoc `json:"rule"`
}

type ruleDoc struct {
	Kind      string   `json:"kind"`
	Required  []string `json:"required,omitempty"`
	Forbidden []string `json:"forbidden,omitempty"`
	Predicate string   `json:"predicate,omitempty"`
	Terms     []string `json:"terms,omitempty"`
	Min       int      `json:"min,omitempty"`
}

// decodeTable builds src, unifies it with #Table and decodes the result.
func decodeTable(filename string, src []byte) (*tableDoc, error) {
	schemaSrc, err := tables.ReadFile("tables/schema.cue")
	if err != nil {
		return nil, fmt.Errorf("registry: read schema: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("registry: compile schema: %w", err)
	}

	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, cueError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Table")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(err)
	}

	var doc tableDoc
	if err := unified.Decode(&doc); err != nil {
		return nil, cueError(err)
	}
	return &doc, nil
}

func cueError(err error) error {
	return ConfigErrors{{Code: ErrCodeCUE, Message: err.Error()}}
}

func compilePhases(docs []phaseDoc) ([]Phase, ConfigErrors) {
	var errs ConfigErrors
	add := func(code, path, format string, args ...any) {
		errs = append(errs, &ConfigError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	phases := make([]Phase, 0, len(docs))
	seenPhase := make(map[string]bool, len(docs))
	var critical []string

	for i, pd := range docs {
		path := fmt.Sprintf("phases[%d](%s)", i, pd.ID)
		if seenPhase[pd.ID] {
			add(ErrCodeDuplicatePhase, path, "duplicate phase id %q", pd.ID)
		}
		seenPhase[pd.ID] = true

		phase := Phase{ID: pd.ID, Name: pd.Name}

		switch pd.Policy.Kind {
		case PolicyRequireAllCritical:
			phase.Policy = AllCritical()
			critical = append(critical, pd.ID)
			if pd.Policy.Fraction != nil {
				add(ErrCodeThreshold, path+".policy", "%s takes no fraction", PolicyRequireAllCritical)
			}
		case PolicyRequireFraction:
			if pd.Policy.Fraction == nil {
				add(ErrCodeThreshold, path+".policy", "%s requires a fraction", PolicyRequireFraction)
				break
			}
			phase.Policy = Fraction(*pd.Policy.Fraction)
			if err := checkFraction(*pd.Policy.Fraction); err != nil {
				add(ErrCodeThreshold, path+".policy", "%v", err)
			}
		default:
			add(ErrCodeUnknownPolicy, path+".policy", "unknown policy kind %q (want %s or %s)",
				pd.Policy.Kind, PolicyRequireAllCritical, PolicyRequireFraction)
		}

		seenCase := make(map[string]bool, len(pd.Cases))
		for j, cd := range pd.Cases {
			cpath := fmt.Sprintf("%s.cases[%d](%s)", path, j, cd.ID)
			if seenCase[cd.ID] {
				add(ErrCodeDuplicateCase, cpath, "duplicate case id %q in phase %q", cd.ID, pd.ID)
			}
			seenCase[cd.ID] = true

			switch {
			case phase.Policy.Kind == RequireAllCritical && !cd.Critical:
				add(ErrCodePolicyMismatch, cpath, "phase is %s but case is not critical", PolicyRequireAllCritical)
			case phase.Policy.Kind == RequireFraction && cd.Critical:
				add(ErrCodePolicyMismatch, cpath, "phase is %s but case is critical", PolicyRequireFraction)
			}

			spec, code, err := compileRule(cd.Rule)
			if err != nil {
				add(code, cpath+".rule", "%v", err)
			}

			phase.Cases = append(phase.Cases, TestCase{
				ID:       cd.ID,
				Name:     cd.Name,
				Prompt:   cd.Prompt,
				Rule:     spec,
				Critical: cd.Critical,
			})
		}

		phases = append(phases, phase)
	}

	if len(critical) > 1 {
		add(ErrCodeCriticalPhases, "phases", "only one %s phase is allowed, found %d: %v",
			PolicyRequireAllCritical, len(critical), critical)
	}

	return phases, errs
}

// compileRule turns a decoded rule into a rule.Spec and validates it.
// On failure it returns the error code to report.
func compileRule(rd ruleDoc) (rule.Spec, string, error) {
	var spec rule.Spec
	switch rd.Kind {
	case rule.KindLexical:
		if rd.Predicate != "" || len(rd.Terms) > 0 || rd.Min != 0 {
			return nil, ErrCodeBadRule, fmt.Errorf("lexical rule takes only required and forbidden")
		}
		spec = rule.Lexical{Required: rd.Required, Forbidden: rd.Forbidden}
	case rule.KindPredicate:
		if len(rd.Required) > 0 {
			return nil, ErrCodeBadRule, fmt.Errorf("predicate rule takes terms, not required")
		}
		spec = rule.Predicate{Name: rd.Predicate, Terms: rd.Terms, Min: rd.Min, Forbidden: rd.Forbidden}
	default:
		return nil, ErrCodeUnknownRuleKind, fmt.Errorf("unknown rule kind %q (want %s or %s)",
			rd.Kind, rule.KindLexical, rule.KindPredicate)
	}

	if err := rule.Validate(spec); err != nil {
		code := ErrCodeBadRule
		if errors.Is(err, rule.ErrUnknownPredicate) {
			code = ErrCodeUnknownPredicate
		}
		return nil, code, err
	}
	return spec, "", nil
}

func applyThresholds(phases []Phase, overrides map[string]float64) ConfigErrors {
	var errs ConfigErrors

	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := overrides[id]
		idx := slices.IndexFunc(phases, func(ph Phase) bool { return ph.ID == id })
		switch {
		case idx < 0:
			errs = append(errs, &ConfigError{Code: ErrCodeOverride, Path: id, Message: "threshold override for unknown phase"})
		case phases[idx].Policy.Kind != RequireFraction:
			errs = append(errs, &ConfigError{Code: ErrCodeOverride, Path: id,
				Message: fmt.Sprintf("cannot override threshold of a %s phase", phases[idx].Policy)})
		default:
			if err := checkFraction(p); err != nil {
				errs = append(errs, &ConfigError{Code: ErrCodeThreshold, Path: id, Message: err.Error()})
				continue
			}
			phases[idx].Policy = Fraction(p)
		}
	}
	return errs
}

func checkFraction(p float64) error {
	if !(p > 0 && p <= 1) {
		return fmt.Errorf("fraction must be in (0, 1], got %v", p)
	}
	return nil
}
