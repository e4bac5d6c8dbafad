package llm

import (
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// SearchHistoryToolName is the function name the Generator registers with
// the chat model for mid-generation semantic search, spec.md §4.3.
const SearchHistoryToolName = "search_conversation_history"

// SearchHistoryArgs is the argument shape the model must supply for a
// search_conversation_history tool call.
type SearchHistoryArgs struct {
	SearchQuery string `json:"search_query"`
	Limit       int    `json:"limit"`
}

// SearchHistoryTool describes search_conversation_history to the chat
// model.
func SearchHistoryTool() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: SearchHistoryToolName,
		Desc: "Search the current user's prior conversation summaries for relevant context.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"search_query": {
				Type:     schema.String,
				Desc:     "Natural-language query describing what to search for.",
				Required: true,
			},
			"limit": {
				Type:     schema.Integer,
				Desc:     "Maximum number of results to return.",
				Required: false,
			},
		}),
	}
}

// ParseSearchHistoryArgs decodes a tool call's raw JSON arguments,
// defaulting limit to 5 when absent per spec.md §4.3.
func ParseSearchHistoryArgs(raw string) (SearchHistoryArgs, error) {
	args := SearchHistoryArgs{Limit: 5}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return args, fmt.Errorf("decode search_conversation_history arguments: %w", err)
	}
	if args.Limit <= 0 {
		args.Limit = 5
	}
	return args, nil
}
