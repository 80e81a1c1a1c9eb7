package progression

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/focusnest/exposure-service/internal/achievement"
)

// Option is one answer of an assessment question, worth Score points.
type Option struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// AssessmentResult is the outcome of the onboarding quiz.
type AssessmentResult struct {
	Score     int                 `json:"score"`
	Level     int                 `json:"level"`
	Archetype string              `json:"archetype"`
	NewBadges []achievement.Badge `json:"new_badges"`
}

// Questions returns the onboarding quiz. Each answer scores 1 to 3.
func Questions() []Question {
	return []Question{
		{
			ID:       1,
			Question: "At a party where you don't know anyone, what do you do?",
			Options: []Option{
				{Label: "I stay in a corner on my phone", Score: 1},
				{Label: "I wait for someone to come and talk to me", Score: 2},
				{Label: "I go and introduce myself to someone", Score: 3},
			},
		},
		{
			ID:       2,
			Question: "What is your biggest obstacle right now?",
			Options: []Option{
				{Label: "Fear of being judged by others", Score: 1},
				{Label: "Not knowing what to say (the silences)", Score: 2},
				{Label: "Not enough opportunities to go out", Score: 3},
			},
		},
		{
			ID:       3,
			Question: "How often do you want challenges?",
			Options: []Option{
				{Label: "Gently, once or twice a week", Score: 1},
				{Label: "A small challenge every day", Score: 2},
				{Label: "I want to progress really fast!", Score: 3},
			},
		},
	}
}

// Score maps a quiz total to a level and archetype.
func Score(total int) (level int, archetype string) {
	switch {
	case total >= 8:
		return 3, "The Bold Challenger"
	case total >= 5:
		return 2, "The Social Explorer"
	default:
		return 1, "The Calm Apprentice"
	}
}

func scoreAnswers(answers []int) (int, error) {
	questions := Questions()
	if len(answers) != len(questions) {
		return 0, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidAssessment, len(questions), len(answers))
	}
	total := 0
	for i, a := range answers {
		if a < 1 || a > len(questions[i].Options) {
			return 0, fmt.Errorf("%w: answer %d out of range", ErrInvalidAssessment, i+1)
		}
		total += questions[i].Options[a-1].Score
	}
	return total, nil
}

// SubmitAssessment assigns the user's level and archetype from quiz answers (1-based option
// indexes). The level is assigned once; a second submission fails with ErrAlreadyAssessed until
// the user is reset.
func (e *Engine) SubmitAssessment(ctx context.Context, userID string, answers []int) (AssessmentResult, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return AssessmentResult{}, err
	}
	total, err := scoreAnswers(answers)
	if err != nil {
		return AssessmentResult{}, err
	}

	unlock := e.lock(userID)
	defer unlock()

	var existing int
	found, err := e.readJSON(ctx, userID, keyLevel, &existing)
	if err != nil {
		return AssessmentResult{}, err
	}
	if found {
		return AssessmentResult{}, ErrAlreadyAssessed
	}

	level, archetype := Score(total)
	if err := e.writeJSON(ctx, userID, keyLevel, level); err != nil {
		return AssessmentResult{}, err
	}
	if err := e.writeJSON(ctx, userID, keyArchetype, archetype); err != nil {
		return AssessmentResult{}, err
	}
	e.register(ctx, userID)

	facts := achievement.Facts{Level: level}
	var state DailyState
	if e.readOrDefault(ctx, userID, keyDaily, &state) && state.PhaseOn(e.calendar.Today()) != PhaseNoChallengeToday {
		facts.Streak = state.Streak
	}
	var completed []string
	e.readOrDefault(ctx, userID, keyCompleted, &completed)
	facts.Completions = len(completed)
	var reflections []ReflectionEntry
	e.readOrDefault(ctx, userID, keyReflections, &reflections)
	facts.Reflections = len(reflections)

	newly := e.unlockBadges(ctx, userID, facts)

	e.logger.Info("assessment submitted",
		slog.String("userId", userID),
		slog.Int("score", total),
		slog.Int("level", level),
	)
	return AssessmentResult{Score: total, Level: level, Archetype: archetype, NewBadges: newly}, nil
}
