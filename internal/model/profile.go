package model

import "time"

// UserProfile is a semi-structured bag of learned facts about one user,
// merged additively across conversations by the Memory Writer. One per
// userId, partitioned by userId.
type UserProfile struct {
	UserID                string    `bson:"_id" json:"userId"`
	OutputPreferences     []string  `bson:"output_preferences" json:"outputPreferences"`
	PersonalPreferences   []string  `bson:"personal_preferences" json:"personalPreferences"`
	AssistantPreferences  []string  `bson:"assistant_preferences" json:"assistantPreferences"`
	Knowledge             []string  `bson:"knowledge" json:"knowledge"`
	Interests             []string  `bson:"interests" json:"interests"`
	Dislikes              []string  `bson:"dislikes" json:"dislikes"`
	FamilyAndFriends      []string  `bson:"family_and_friends" json:"familyAndFriends"`
	WorkProfile           []string  `bson:"work_profile" json:"workProfile"`
	Goals                 []string  `bson:"goals" json:"goals"`
	LastUpdated           time.Time `bson:"last_updated" json:"lastUpdated"`
}

// ProfileUpdates is the Memory Writer's LLM-extracted delta to fold into
// a UserProfile. Every field is optional; absent/nil fields contribute
// nothing to the merge.
type ProfileUpdates struct {
	OutputPreferences    []string `json:"output_preferences,omitempty"`
	PersonalPreferences  []string `json:"personal_preferences,omitempty"`
	AssistantPreferences []string `json:"assistant_preferences,omitempty"`
	Knowledge            []string `json:"knowledge,omitempty"`
	Interests            []string `json:"interests,omitempty"`
	Dislikes             []string `json:"dislikes,omitempty"`
	FamilyAndFriends     []string `json:"family_and_friends,omitempty"`
	WorkProfile          []string `json:"work_profile,omitempty"`
	Goals                []string `json:"goals,omitempty"`
}

// Extraction is the full JSON object the Memory Writer asks the LLM to
// produce for one completed turn.
type Extraction struct {
	Summary        string         `json:"summary"`
	Themes         []string       `json:"themes"`
	Persons        []string       `json:"persons"`
	Places         []string       `json:"places"`
	UserSentiment  Sentiment      `json:"user_sentiment"`
	ProfileUpdates ProfileUpdates `json:"profile_updates"`
}
