package challenge

import "strings"

// Level bounds for users and challenges.
const (
	MinLevel = 1
	MaxLevel = 3
)

// DefaultFocusKey is the focus proposed to users who never picked one.
const DefaultFocusKey = "conversation"

// Challenge is a single daily exposure task, curated or generated.
type Challenge struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Level       int    `json:"level" yaml:"level" validate:"min=1,max=3"`
	Title       string `json:"title" yaml:"title" validate:"required"`
	Description string `json:"description" yaml:"description" validate:"required"`
	Category    string `json:"category" yaml:"category" validate:"required"`
	Difficulty  int    `json:"difficulty" yaml:"difficulty" validate:"min=1,max=3"`
	Duration    string `json:"duration" yaml:"duration" validate:"required"`
	XP          int    `json:"xp" yaml:"xp" validate:"gt=0"`
	FocusKey    string `json:"focus_key" yaml:"focus_key" validate:"required"`
}

// Generated reports whether the challenge was synthesized from a template.
func (c Challenge) Generated() bool {
	return strings.HasPrefix(c.ID, generatedIDPrefix)
}

// Template is a fill-in-the-blanks blueprint used by the Generator. It is never persisted.
type Template struct {
	Title      string              `yaml:"title" validate:"required"`
	Templates  []string            `yaml:"templates" validate:"required,min=1,dive,required"`
	Vars       map[string][]string `yaml:"vars"`
	Category   string              `yaml:"category" validate:"required"`
	Level      int                 `yaml:"level" validate:"min=1,max=3"`
	BaseXP     int                 `yaml:"base_xp" validate:"gt=0"`
	Difficulty int                 `yaml:"difficulty" validate:"min=1,max=3"`
	Duration   string              `yaml:"duration" validate:"required"`
}

// FocusArea describes a thematic area users can steer their challenges toward.
type FocusArea struct {
	Key         string `json:"key" yaml:"key" validate:"required"`
	Title       string `json:"title" yaml:"title" validate:"required"`
	Description string `json:"description" yaml:"description"`
}

// NormalizeID returns the canonical string form used when comparing challenge ids.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// ClampLevel forces a user level into the supported range.
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
