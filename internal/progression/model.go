package progression

import (
	"strings"
	"time"

	"github.com/focusnest/exposure-service/internal/achievement"
	"github.com/focusnest/exposure-service/internal/challenge"
	"github.com/focusnest/exposure-service/internal/sentiment"
)

// Phase of the current day's challenge.
type Phase string

const (
	PhaseNoChallengeToday Phase = "no_challenge_today"
	PhasePending          Phase = "pending"
	PhaseCompleted        Phase = "completed"
)

// DailyState is the single persisted record of the current day's challenge. A transition
// replaces it.
type DailyState struct {
	Date      Day                 `json:"date"`
	Challenge challenge.Challenge `json:"challenge"`
	Completed bool                `json:"completed"`
	Streak    int                 `json:"streak"`
	Feedback  *sentiment.Result   `json:"feedback,omitempty"`
}

// PhaseOn returns the phase of s as seen on today.
func (s DailyState) PhaseOn(today Day) Phase {
	switch {
	case s.Date != today:
		return PhaseNoChallengeToday
	case s.Completed:
		return PhaseCompleted
	default:
		return PhasePending
	}
}

// Feeling is the self-reported emotion after a challenge.
type Feeling string

const (
	FeelingConfident Feeling = "Confident"
	FeelingExcited   Feeling = "Excited"
	FeelingAnxious   Feeling = "Anxious"
	FeelingRelief    Feeling = "Relief"
)

// Feelings lists the accepted feelings in display order.
func Feelings() []Feeling {
	return []Feeling{FeelingConfident, FeelingExcited, FeelingAnxious, FeelingRelief}
}

// ReflectionInput is what the user submits when completing a challenge.
type ReflectionInput struct {
	Feeling Feeling `json:"feeling" validate:"required,oneof=Confident Excited Anxious Relief"`
	Notes   string  `json:"notes" validate:"required,min=10,max=2000"`
}

func (in ReflectionInput) normalized() ReflectionInput {
	in.Feeling = Feeling(strings.TrimSpace(string(in.Feeling)))
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

// ReflectionEntry is one element of the append-only reflection log.
type ReflectionEntry struct {
	ID             string    `json:"id"`
	Date           Day       `json:"date"`
	ChallengeID    string    `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title"`
	Feeling        Feeling   `json:"feeling"`
	Notes          string    `json:"notes"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
	CreatedAt      time.Time `json:"created_at"`
}

// CompletionResult is returned by Engine.Complete.
type CompletionResult struct {
	State      DailyState          `json:"state"`
	Reflection ReflectionEntry     `json:"reflection"`
	NewBadges  []achievement.Badge `json:"new_badges"`
}

// HistoryEntry pairs a reflection with its catalog challenge. Challenge is nil for generated or
// retired challenges.
type HistoryEntry struct {
	ReflectionEntry
	Challenge *challenge.Challenge `json:"challenge,omitempty"`
}

// BadgeStatus is a catalog badge with the user's unlock state.
type BadgeStatus struct {
	achievement.Badge
	Unlocked bool `json:"unlocked"`
}

// Profile summarizes a user's progression.
type Profile struct {
	UserID      string        `json:"user_id"`
	Assessed    bool          `json:"assessed"`
	Level       int           `json:"level"`
	Archetype   string        `json:"archetype,omitempty"`
	Focus       string        `json:"focus"`
	Streak      int           `json:"streak"`
	Completions int           `json:"completions"`
	Reflections int           `json:"reflections"`
	Badges      []BadgeStatus `json:"badges"`
}
