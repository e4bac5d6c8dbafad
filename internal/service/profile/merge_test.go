package profile

import (
	"testing"
	"time"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

func TestMergeFirstEverProfile(t *testing.T) {
	now := time.Now()
	updates := model.ProfileUpdates{Interests: []string{"skiing"}}

	got := Merge(nil, updates, "u1", now)

	if got.UserID != "u1" {
		t.Fatalf("UserID = %q, want u1", got.UserID)
	}
	if len(got.Interests) != 1 || got.Interests[0] != "skiing" {
		t.Fatalf("Interests = %v", got.Interests)
	}
}

func TestMergeDedupesCaseInsensitively(t *testing.T) {
	current := &model.UserProfile{UserID: "u1", Interests: []string{"Skiing"}}
	updates := model.ProfileUpdates{Interests: []string{"skiing", "snowboarding"}}

	got := Merge(current, updates, "u1", time.Now())

	if len(got.Interests) != 2 {
		t.Fatalf("Interests = %v, want 2 entries", got.Interests)
	}
}

func TestMergeNeverLosesInformationWithEmptyUpdates(t *testing.T) {
	current := &model.UserProfile{
		UserID:    "u1",
		Interests: []string{"skiing"},
		Goals:     []string{"learn Go"},
	}

	got := Merge(current, model.ProfileUpdates{}, "u1", time.Now())

	if len(got.Interests) != 1 || len(got.Goals) != 1 {
		t.Fatalf("expected existing fields preserved, got %+v", got)
	}
}

func TestMergeDislikeRemovesMatchingInterest(t *testing.T) {
	current := &model.UserProfile{UserID: "u1", Interests: []string{"cilantro"}}
	updates := model.ProfileUpdates{Dislikes: []string{"cilantro"}}

	got := Merge(current, updates, "u1", time.Now())

	if len(got.Interests) != 0 {
		t.Fatalf("Interests = %v, want empty after contradiction", got.Interests)
	}
	if len(got.Dislikes) != 1 {
		t.Fatalf("Dislikes = %v, want 1 entry", got.Dislikes)
	}
}

func TestMergeInterestRemovesMatchingDislike(t *testing.T) {
	current := &model.UserProfile{UserID: "u1", Dislikes: []string{"jazz"}}
	updates := model.ProfileUpdates{Interests: []string{"jazz"}}

	got := Merge(current, updates, "u1", time.Now())

	if len(got.Dislikes) != 0 {
		t.Fatalf("Dislikes = %v, want empty after contradiction", got.Dislikes)
	}
}

func TestMergePersonalPreferencesReplacesRatherThanAccumulates(t *testing.T) {
	current := &model.UserProfile{UserID: "u1", PersonalPreferences: []string{"terse answers"}}
	updates := model.ProfileUpdates{PersonalPreferences: []string{"detailed answers"}}

	got := Merge(current, updates, "u1", time.Now())

	if len(got.PersonalPreferences) != 1 || got.PersonalPreferences[0] != "detailed answers" {
		t.Fatalf("PersonalPreferences = %v, want replaced with newer value only", got.PersonalPreferences)
	}
}

func TestMergeOrderIndependenceOfIndependentUpdates(t *testing.T) {
	now := time.Now()
	a := Merge(Merge(nil, model.ProfileUpdates{Interests: []string{"chess"}}, "u1", now),
		model.ProfileUpdates{Goals: []string{"learn Go"}}, "u1", now)
	b := Merge(Merge(nil, model.ProfileUpdates{Goals: []string{"learn Go"}}, "u1", now),
		model.ProfileUpdates{Interests: []string{"chess"}}, "u1", now)

	if len(a.Interests) != len(b.Interests) || len(a.Goals) != len(b.Goals) {
		t.Fatalf("merge order changed result: a=%+v b=%+v", a, b)
	}
}
