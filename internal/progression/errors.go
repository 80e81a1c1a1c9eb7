package progression

import "errors"

var (
	ErrInvalidUser       = errors.New("user id is required")
	ErrNoChallengeToday  = errors.New("no challenge assigned for today")
	ErrAlreadyCompleted  = errors.New("today's challenge is already completed")
	ErrAlreadyAssessed   = errors.New("assessment already submitted")
	ErrInvalidFocus      = errors.New("unknown focus area")
	ErrInvalidReflection = errors.New("invalid reflection")
	ErrInvalidAssessment = errors.New("invalid assessment answers")
	ErrStorage           = errors.New("storage unavailable")
)
