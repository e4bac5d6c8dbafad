package memorywriter

import (
	"testing"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

func TestCapThemesTruncatesToMax(t *testing.T) {
	themes := []string{"a", "b", "c", "d", "e", "f", "g"}
	got := capThemes(themes)
	if len(got) != model.MaxThemes {
		t.Fatalf("expected %d themes, got %d", model.MaxThemes, len(got))
	}
}

func TestCapThemesLeavesShortListUntouched(t *testing.T) {
	themes := []string{"a", "b"}
	got := capThemes(themes)
	if len(got) != 2 {
		t.Fatalf("expected 2 themes, got %d", len(got))
	}
}

func TestFallbackSummaryUsesFirstUserMessage(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "help me plan a trip"},
		{Role: model.RoleAssistant, Content: "sure"},
	}
	if got := fallbackSummary(messages); got != "help me plan a trip" {
		t.Fatalf("fallbackSummary() = %q", got)
	}
}
