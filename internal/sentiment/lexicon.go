package sentiment

import (
	"context"
	"strings"
	"unicode"
)

var (
	positiveWords = []string{
		"confident", "proud", "happy", "calm", "excited", "relieved", "relief", "good", "great",
		"easy", "brave", "fun", "enjoyed", "smiled", "better", "comfortable", "glad",
	}
	negativeWords = []string{
		"anxious", "afraid", "scared", "nervous", "awkward", "panic", "stressed", "bad", "hard",
		"terrible", "embarrassed", "worried", "shaking", "froze", "ashamed", "uncomfortable",
	}
)

// LexiconAnalyzer counts positive and negative keywords. It never fails.
type LexiconAnalyzer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

func NewLexiconAnalyzer() *LexiconAnalyzer {
	l := &LexiconAnalyzer{
		positive: make(map[string]struct{}, len(positiveWords)),
		negative: make(map[string]struct{}, len(negativeWords)),
	}
	for _, w := range positiveWords {
		l.positive[w] = struct{}{}
	}
	for _, w := range negativeWords {
		l.negative[w] = struct{}{}
	}
	return l
}

func (l *LexiconAnalyzer) Analyze(_ context.Context, text string) (Result, error) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var pos, neg int
	for i, w := range words {
		negated := i > 0 && (words[i-1] == "not" || words[i-1] == "never" || words[i-1] == "don't")
		if _, ok := l.positive[w]; ok {
			if negated {
				neg++
			} else {
				pos++
			}
		} else if _, ok := l.negative[w]; ok {
			if negated {
				pos++
			} else {
				neg++
			}
		}
	}

	if pos+neg == 0 {
		return Neutral(), nil
	}
	score := float64(pos-neg) / float64(pos+neg)
	return Result{Score: score, Label: labelFor(score)}, nil
}

func labelFor(score float64) string {
	switch {
	case score >= 0.5:
		return "Confident"
	case score > 0:
		return "Encouraged"
	case score == 0:
		return NeutralLabel
	case score > -0.5:
		return "Uneasy"
	default:
		return "Anxious"
	}
}
