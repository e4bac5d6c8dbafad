package generator

import (
	"strings"
	"text/template"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

const basePromptText = `You are a helpful assistant.`

const personalizedPromptText = `You are a helpful assistant for a returning user.
Known preferences: {{join .PersonalPreferences}}
Known interests: {{join .Interests}}
Known dislikes: {{join .Dislikes}}
Work context: {{join .WorkProfile}}
Goals: {{join .Goals}}
Tailor tone and suggestions to this profile where relevant, and never invent facts not listed here.`

var personalizedPromptTemplate = template.Must(template.New("personalized").Funcs(template.FuncMap{
	"join": func(items []string) string {
		if len(items) == 0 {
			return "none recorded"
		}
		return strings.Join(items, ", ")
	},
}).Parse(personalizedPromptText))

// RenderSystemPrompt builds the system prompt for a new conversation. When
// profile is nil (memory fetch timed out, errored, or the user has no
// prior profile), the base template is used unchanged, per spec.md §4.3.
func RenderSystemPrompt(profile *model.UserProfile) string {
	if profile == nil {
		return basePromptText
	}

	var sb strings.Builder
	if err := personalizedPromptTemplate.Execute(&sb, profile); err != nil {
		return basePromptText
	}
	return sb.String()
}
