// Package profile implements the pure profile-merge function used by the
// Memory Writer, grounded on spec.md's "UserProfile never loses
// information through a merge" invariant and its contradiction rules.
package profile

import (
	"strings"
	"time"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

// Merge folds updates into current and returns the resulting profile.
// current may be nil (first-ever memory for this user). now stamps
// LastUpdated.
//
// Rules:
//   - Most list fields are a case-insensitive deduplicated union of the
//     existing values and the update.
//   - PersonalPreferences is replaced outright when the update supplies
//     any values: a stated preference supersedes earlier ones rather than
//     accumulating alongside them.
//   - A new dislike that names something already recorded as an interest
//     removes that interest, and vice versa for a new interest against a
//     recorded dislike — the newer statement wins.
func Merge(current *model.UserProfile, updates model.ProfileUpdates, userID string, now time.Time) *model.UserProfile {
	base := current
	if base == nil {
		base = &model.UserProfile{UserID: userID}
	}

	merged := &model.UserProfile{
		UserID:               base.UserID,
		OutputPreferences:    dedupUnion(base.OutputPreferences, updates.OutputPreferences),
		PersonalPreferences:  replaceIfPresent(base.PersonalPreferences, updates.PersonalPreferences),
		AssistantPreferences: dedupUnion(base.AssistantPreferences, updates.AssistantPreferences),
		Knowledge:             dedupUnion(base.Knowledge, updates.Knowledge),
		Interests:             dedupUnion(base.Interests, updates.Interests),
		Dislikes:              dedupUnion(base.Dislikes, updates.Dislikes),
		FamilyAndFriends:      dedupUnion(base.FamilyAndFriends, updates.FamilyAndFriends),
		WorkProfile:           dedupUnion(base.WorkProfile, updates.WorkProfile),
		Goals:                 dedupUnion(base.Goals, updates.Goals),
		LastUpdated:           now,
	}

	merged.Interests = removeMatching(merged.Interests, updates.Dislikes)
	merged.Dislikes = removeMatching(merged.Dislikes, updates.Interests)

	return merged
}

// dedupUnion returns the union of existing and additions, case-insensitive
// deduplicated, preserving existing order with additions appended.
func dedupUnion(existing, additions []string) []string {
	seen := make(map[string]bool, len(existing)+len(additions))
	out := make([]string, 0, len(existing)+len(additions))
	for _, v := range existing {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	for _, v := range additions {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// replaceIfPresent returns additions when non-empty, otherwise existing.
func replaceIfPresent(existing, additions []string) []string {
	if len(additions) == 0 {
		return existing
	}
	return dedupUnion(nil, additions)
}

// removeMatching drops entries from list whose case-insensitive value
// appears in contradictions.
func removeMatching(list, contradictions []string) []string {
	if len(contradictions) == 0 || len(list) == 0 {
		return list
	}
	drop := make(map[string]bool, len(contradictions))
	for _, v := range contradictions {
		drop[strings.ToLower(strings.TrimSpace(v))] = true
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if drop[strings.ToLower(strings.TrimSpace(v))] {
			continue
		}
		out = append(out, v)
	}
	return out
}
