package challenge

// GenerationProbability is the chance that a fresh challenge is generated even though curated
// candidates remain.
const GenerationProbability = 0.4

// Selector picks the challenge of the day from the catalog or the generator.
type Selector struct {
	catalog     *Catalog
	generator   *Generator
	rnd         Rand
	probability float64
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithRand overrides the random source used for the coin-flip and the uniform pick.
func WithRand(rnd Rand) SelectorOption {
	return func(s *Selector) {
		if rnd != nil {
			s.rnd = rnd
		}
	}
}

// WithGenerationProbability overrides GenerationProbability. Values are clamped to [0,1].
func WithGenerationProbability(p float64) SelectorOption {
	return func(s *Selector) {
		switch {
		case p < 0:
			p = 0
		case p > 1:
			p = 1
		}
		s.probability = p
	}
}

// NewSelector wires a Selector. generator may be nil, in which case only curated challenges
// (or the default challenge) are returned.
func NewSelector(catalog *Catalog, generator *Generator, opts ...SelectorOption) *Selector {
	s := &Selector{
		catalog:     catalog,
		generator:   generator,
		rnd:         DefaultRand(),
		probability: GenerationProbability,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog exposes the catalog the selector draws from.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// Select returns one challenge for userLevel. Curated challenges above the level or listed in
// excludeIDs are never candidates; targetFocus narrows the pool unless that would empty it.
// With an empty pool a challenge is generated. Exclusion is best-effort: if nothing can be
// generated the excluded entries come back into play before the default challenge is used.
func (s *Selector) Select(userLevel int, excludeIDs []string, targetFocus string) Challenge {
	level := ClampLevel(userLevel)

	eligible := make([]Challenge, 0)
	for _, c := range s.catalog.challenges {
		if c.Level <= level {
			eligible = append(eligible, c)
		}
	}

	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[NormalizeID(id)] = struct{}{}
	}
	candidates := make([]Challenge, 0, len(eligible))
	for _, c := range eligible {
		if _, skip := excluded[c.ID]; !skip {
			candidates = append(candidates, c)
		}
	}

	if targetFocus != "" {
		candidates = narrowToFocus(candidates, targetFocus)
	}

	if len(candidates) == 0 || s.rnd.Float64() < s.probability {
		if generated, ok := s.generate(level, targetFocus); ok {
			return generated
		}
	}

	if len(candidates) > 0 {
		return pick(s.rnd, candidates)
	}
	if len(eligible) > 0 {
		return pick(s.rnd, narrowToFocus(eligible, targetFocus))
	}
	return s.catalog.DefaultChallenge()
}

func (s *Selector) generate(level int, targetFocus string) (Challenge, bool) {
	if !s.generator.Available() {
		return Challenge{}, false
	}
	focus := targetFocus
	if focus == "" {
		focus = pick(s.rnd, s.generator.Focuses())
	}
	return s.generator.Generate(level, focus)
}

func narrowToFocus(candidates []Challenge, focus string) []Challenge {
	if focus == "" {
		return candidates
	}
	focused := make([]Challenge, 0, len(candidates))
	for _, c := range candidates {
		if c.FocusKey == focus {
			focused = append(focused, c)
		}
	}
	if len(focused) == 0 {
		return candidates
	}
	return focused
}
