package challenge

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

var validate = validator.New()

// ErrDuplicateID indicates two curated challenges share an id.
var ErrDuplicateID = errors.New("duplicate challenge id")

// Data is the raw content of a catalog, as stored in catalog.yaml.
type Data struct {
	Default    Challenge             `yaml:"default"`
	FocusAreas []FocusArea           `yaml:"focus_areas" validate:"dive"`
	Challenges []Challenge           `yaml:"challenges" validate:"dive"`
	Templates  map[string][]Template `yaml:"templates" validate:"dive,dive"`
}

// Catalog is the immutable, curated set of challenges plus the generator blueprints.
type Catalog struct {
	def        Challenge
	challenges []Challenge
	byID       map[string]Challenge
	focusAreas []FocusArea
	templates  map[string][]Template
}

// New validates data and builds a Catalog from it.
func New(data Data) (*Catalog, error) {
	if err := validate.Struct(data); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	byID := make(map[string]Challenge, len(data.Challenges))
	for _, c := range data.Challenges {
		id := NormalizeID(c.ID)
		if _, err := strconv.Atoi(id); err != nil {
			return nil, fmt.Errorf("catalog id %q must be an integer", c.ID)
		}
		if _, exists := byID[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		c.ID = id
		byID[id] = c
	}

	challenges := make([]Challenge, 0, len(byID))
	for _, c := range data.Challenges {
		challenges = append(challenges, byID[NormalizeID(c.ID)])
	}

	templates := make(map[string][]Template, len(data.Templates))
	for focus, list := range data.Templates {
		if len(list) == 0 {
			continue
		}
		templates[focus] = append([]Template(nil), list...)
	}

	return &Catalog{
		def:        data.Default,
		challenges: challenges,
		byID:       byID,
		focusAreas: append([]FocusArea(nil), data.FocusAreas...),
		templates:  templates,
	}, nil
}

// Parse decodes a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(data)
}

var loadEmbedded = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embeddedCatalog)
})

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	return loadEmbedded()
}

// MustDefault is Default for program initialization; it panics on a malformed embedded catalog.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the curated challenge with the given id. Generated and retired ids are absent.
func (c *Catalog) Lookup(id string) (Challenge, bool) {
	ch, ok := c.byID[NormalizeID(id)]
	return ch, ok
}

// All returns a copy of every curated challenge in catalog order.
func (c *Catalog) All() []Challenge {
	out := make([]Challenge, len(c.challenges))
	copy(out, c.challenges)
	return out
}

// DefaultChallenge is served when neither the catalog nor the generator can provide one.
func (c *Catalog) DefaultChallenge() Challenge {
	return c.def
}

// FocusAreas lists the focus areas users can choose from.
func (c *Catalog) FocusAreas() []FocusArea {
	out := make([]FocusArea, len(c.focusAreas))
	copy(out, c.focusAreas)
	return out
}

// FocusArea looks up a focus area by key.
func (c *Catalog) FocusArea(key string) (FocusArea, bool) {
	for _, area := range c.focusAreas {
		if area.Key == key {
			return area, true
		}
	}
	return FocusArea{}, false
}

// Templates returns the generator blueprints keyed by focus.
func (c *Catalog) Templates() map[string][]Template {
	out := make(map[string][]Template, len(c.templates))
	for focus, list := range c.templates {
		out[focus] = append([]Template(nil), list...)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
