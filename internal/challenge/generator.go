package challenge

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	generatedIDPrefix = "gen-"
	// DefaultGeneratorFocus is used when a requested focus has no templates.
	DefaultGeneratorFocus = "social"
)

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// FillTemplate replaces every {name} token with a uniformly sampled entry of vars[name].
// Each occurrence is sampled independently. Tokens without a matching (non-empty) variable
// set are left verbatim so they stay visible.
func FillTemplate(tpl string, vars map[string][]string, rnd Rand) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(token string) string {
		name := token[1 : len(token)-1]
		candidates := vars[name]
		if len(candidates) == 0 {
			return token
		}
		return pick(rnd, candidates)
	})
}

// Generator synthesizes challenges from focus-keyed templates.
type Generator struct {
	templates map[string][]Template
	rnd       Rand
	now       func() time.Time
	suffix    func() string
}

// NewGenerator builds a Generator over templates. A nil rnd uses DefaultRand.
func NewGenerator(templates map[string][]Template, rnd Rand) *Generator {
	if rnd == nil {
		rnd = DefaultRand()
	}
	return &Generator{
		templates: templates,
		rnd:       rnd,
		now:       time.Now,
		suffix:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
	}
}

// Available reports whether at least one template exists.
func (g *Generator) Available() bool {
	return g != nil && len(g.templates) > 0
}

// Focuses returns the focus keys the generator has templates for, sorted.
func (g *Generator) Focuses() []string {
	if g == nil {
		return nil
	}
	return sortedKeys(g.templates)
}

// Generate fills a random template for focusKey, falling back to DefaultGeneratorFocus (or any
// focus) when the key is unknown. Templates at or below level are preferred. The second return
// value is false only when the generator has no templates at all.
func (g *Generator) Generate(level int, focusKey string) (Challenge, bool) {
	if !g.Available() {
		return Challenge{}, false
	}

	focus := focusKey
	candidates := g.templates[focus]
	if len(candidates) == 0 {
		focus = DefaultGeneratorFocus
		candidates = g.templates[focus]
	}
	if len(candidates) == 0 {
		focus = g.Focuses()[0]
		candidates = g.templates[focus]
	}

	level = ClampLevel(level)
	atLevel := make([]Template, 0, len(candidates))
	for _, tpl := range candidates {
		if tpl.Level <= level {
			atLevel = append(atLevel, tpl)
		}
	}
	if len(atLevel) > 0 {
		candidates = atLevel
	}

	tpl := pick(g.rnd, candidates)
	return Challenge{
		ID:          g.newID(),
		Level:       tpl.Level,
		Title:       cases.Title(language.English).String(tpl.Title),
		Description: FillTemplate(pick(g.rnd, tpl.Templates), tpl.Vars, g.rnd),
		Category:    tpl.Category,
		Difficulty:  tpl.Difficulty,
		Duration:    tpl.Duration,
		XP:          tpl.BaseXP,
		FocusKey:    focus,
	}, true
}

// newID never parses as an integer, so it cannot collide with curated ids.
func (g *Generator) newID() string {
	return fmt.Sprintf("%s%d-%s", generatedIDPrefix, g.now().UnixMilli(), g.suffix())
}
