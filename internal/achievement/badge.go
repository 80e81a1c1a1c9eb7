package achievement

// ConditionType says which accumulated fact a badge is checked against.
type ConditionType string

const (
	ConditionStreak     ConditionType = "STREAK"
	ConditionLevel      ConditionType = "LEVEL"
	ConditionReflection ConditionType = "REFLECTION"
	ConditionOther      ConditionType = "OTHER"
)

// Badge is a static achievement definition. IDs are persisted and must remain stable.
type Badge struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	ConditionType  ConditionType `json:"condition_type"`
	ConditionValue int           `json:"condition_value"`
}

// Stable badge ids.
const (
	FirstSuccess    = "FIRST_SUCCESS"
	FirstReflection = "FIRST_REFLECTION"
	Streak3         = "STREAK_3"
	Streak7         = "STREAK_7"
	Level2Reached   = "LEVEL_2_REACHED"
	Level3Reached   = "LEVEL_3_REACHED"
	LevelMaxReached = "LEVEL_MAX_REACHED"
)

// Badges returns the badge catalog in display order.
func Badges() []Badge {
	return []Badge{
		{ID: FirstSuccess, Name: "First Step", Description: "Complete your very first micro-challenge.", ConditionType: ConditionOther, ConditionValue: 1},
		{ID: FirstReflection, Name: "Soul Journalist", Description: "Record your first reflection.", ConditionType: ConditionReflection, ConditionValue: 1},
		{ID: Streak3, Name: "Will-o'-the-Wisp", Description: "Keep a 3-day streak.", ConditionType: ConditionStreak, ConditionValue: 3},
		{ID: Streak7, Name: "Mastered Rhythm", Description: "Keep a 7-day streak.", ConditionType: ConditionStreak, ConditionValue: 7},
		{ID: Level2Reached, Name: "Unlock I", Description: "Reach social confidence level 2.", ConditionType: ConditionLevel, ConditionValue: 2},
		{ID: Level3Reached, Name: "Accelerator", Description: "Reach social confidence level 3.", ConditionType: ConditionLevel, ConditionValue: 3},
		// Levels stop at 3, so this one stays locked until levels can grow.
		{ID: LevelMaxReached, Name: "Game Master", Description: "Reach the highest available level.", ConditionType: ConditionLevel, ConditionValue: 4},
	}
}
