package achievement

// Facts are the accumulated progression counters a badge can depend on.
type Facts struct {
	Streak      int
	Level       int
	Reflections int
	Completions int
}

// Evaluator decides which badges newly unlock for a set of facts.
type Evaluator struct {
	badges []Badge
}

// NewEvaluator builds an Evaluator over badges; a nil slice uses Badges().
func NewEvaluator(badges []Badge) *Evaluator {
	if badges == nil {
		badges = Badges()
	}
	return &Evaluator{badges: badges}
}

// Badges returns the evaluator's badge catalog.
func (e *Evaluator) Badges() []Badge {
	out := make([]Badge, len(e.badges))
	copy(out, e.badges)
	return out
}

// Evaluate returns the badges not in unlocked whose condition now holds, in catalog order.
func (e *Evaluator) Evaluate(facts Facts, unlocked []string) []Badge {
	have := make(map[string]struct{}, len(unlocked))
	for _, id := range unlocked {
		have[id] = struct{}{}
	}

	var newly []Badge
	for _, b := range e.badges {
		if _, ok := have[b.ID]; ok {
			continue
		}
		if satisfied(b, facts) {
			newly = append(newly, b)
		}
	}
	return newly
}

func satisfied(b Badge, f Facts) bool {
	switch b.ConditionType {
	case ConditionStreak:
		return f.Streak >= b.ConditionValue
	case ConditionLevel:
		return f.Level >= b.ConditionValue
	case ConditionReflection:
		return f.Reflections >= b.ConditionValue
	case ConditionOther:
		return f.Completions >= 1
	default:
		return false
	}
}

// Merge appends the ids of newly to unlocked, skipping ones already present. The result never
// drops an id from unlocked.
func Merge(unlocked []string, newly []Badge) []string {
	out := append([]string(nil), unlocked...)
	have := make(map[string]struct{}, len(out))
	for _, id := range out {
		have[id] = struct{}{}
	}
	for _, b := range newly {
		if _, ok := have[b.ID]; ok {
			continue
		}
		have[b.ID] = struct{}{}
		out = append(out, b.ID)
	}
	return out
}
