package generator

import (
	"github.com/cloudwego/eino/schema"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

// toSchemaMessages projects the persisted Conversation shape onto the
// chat-model's message schema.
func toSchemaMessages(messages []model.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		case model.RoleUser:
			out = append(out, schema.UserMessage(m.Content))
		case model.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		}
	}
	return out
}
