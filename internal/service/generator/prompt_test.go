package generator

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

func TestRenderSystemPromptNilProfileUsesBase(t *testing.T) {
	got := RenderSystemPrompt(nil)
	if got != basePromptText {
		t.Fatalf("expected base prompt for nil profile, got %q", got)
	}
}

func TestRenderSystemPromptPopulatedProfile(t *testing.T) {
	profile := &model.UserProfile{
		Interests:   []string{"hiking", "go"},
		Dislikes:    []string{"spam"},
		WorkProfile: []string{"backend engineer"},
		Goals:       []string{"ship v2"},
	}
	got := RenderSystemPrompt(profile)
	if !strings.Contains(got, "hiking, go") {
		t.Fatalf("expected interests rendered, got %q", got)
	}
	if !strings.Contains(got, "spam") {
		t.Fatalf("expected dislikes rendered, got %q", got)
	}
	if !strings.Contains(got, "none recorded") {
		t.Fatalf("expected unset fields to render as 'none recorded', got %q", got)
	}
}

func TestToSchemaMessagesMapsRoles(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
	}
	out := toSchemaMessages(messages)
	if len(out) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(out))
	}
	if out[0].Content != "sys" || out[1].Content != "hi" || out[2].Content != "hello" {
		t.Fatalf("unexpected content ordering: %+v", out)
	}
	if out[0].Role != schema.System || out[1].Role != schema.User || out[2].Role != schema.Assistant {
		t.Fatalf("unexpected role mapping: %+v", out)
	}
}
