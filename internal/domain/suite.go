package domain

import "fmt"

// Case pairs one prompt with the ordered rules its response must satisfy.
// Cases are loaded once from static definitions and are read-only for the
// duration of a run.
type Case struct {
	// ID uniquely identifies the case within its suite.
	ID string `json:"id" validate:"required"`

	// Prompt is the text sent to the provider.
	Prompt string `json:"prompt" validate:"required"`

	// Category groups cases for per-category pass rates (e.g. "math",
	// "reading", "safety").
	Category string `json:"category" validate:"required"`

	// Difficulty is free-form case metadata (e.g. "easy", "hard").
	Difficulty string `json:"difficulty,omitempty"`

	// Metadata carries additional case annotations for reporting.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Rules is the ordered, non-empty set of predicates applied to the
	// response. Order matters only for reporting; the case verdict is the
	// AND of all outcomes.
	Rules []Rule `json:"rules" validate:"min=1"`
}

// Validate checks structural integrity of the case and every rule in it.
func (c *Case) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("case %s: %w", c.ID, ErrNoRules)
	}
	for i, rule := range c.Rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("case %s rule %d: %w", c.ID, i, err)
		}
	}
	return nil
}

// Suite is a named, ordered collection of cases sharing a domain and target
// age band. Construction enforces case ID uniqueness and non-emptiness;
// evaluation can then assume both.
type Suite struct {
	// Name identifies the suite in results and reports.
	Name string `json:"name" validate:"required"`

	// TargetAgeBand describes the audience the suite evaluates for
	// (e.g. "5-7").
	TargetAgeBand string `json:"target_age_band,omitempty"`

	// Cases is the ordered, non-empty case list. Result ordering always
	// follows this order.
	Cases []Case `json:"cases" validate:"min=1"`
}

// NewSuite constructs a validated suite. It fails with a construction error
// when the suite is empty, any case is malformed, or two cases share an ID.
func NewSuite(name, targetAgeBand string, cases []Case) (Suite, error) {
	s := Suite{Name: name, TargetAgeBand: targetAgeBand, Cases: cases}
	if err := s.Validate(); err != nil {
		return Suite{}, err
	}
	// Copy case slices to keep the suite immutable against caller mutation.
	copied := make([]Case, len(cases))
	for i, c := range cases {
		copied[i] = c
		copied[i].Metadata = cloneStringMap(c.Metadata)
	}
	s.Cases = copied
	return s, nil
}

// Validate checks suite structure, every case, and case ID uniqueness.
func (s *Suite) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("suite %s: %w", s.Name, ErrEmptySuite)
	}

	seen := make(map[string]struct{}, len(s.Cases))
	for i := range s.Cases {
		if err := s.Cases[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.Cases[i].ID]; dup {
			return fmt.Errorf("suite %s case %q: %w", s.Name, s.Cases[i].ID, ErrDuplicateCaseID)
		}
		seen[s.Cases[i].ID] = struct{}{}
	}
	return nil
}
