package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

// MemoryClient calls the Memory Reader HTTP surface, used both for the
// once-per-session personalization fetch and for the LLM's mid-generation
// search_conversation_history tool.
type MemoryClient struct {
	baseURL string
	http    *http.Client
}

// NewMemoryClient builds a MemoryClient bound to Memory Reader's base URL.
func NewMemoryClient(baseURL string, httpClient *http.Client) *MemoryClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &MemoryClient{baseURL: baseURL, http: httpClient}
}

// FetchProfile fetches userID's UserProfile, honouring ctx's deadline
// (the caller sets the 2s hard timeout spec.md §4.3 requires).
func (m *MemoryClient) FetchProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	url := fmt.Sprintf("%s/users/%s/memories", m.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("memory reader returned status %d", resp.StatusCode)
	}

	var profile model.UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Search calls Memory Reader's semantic search over a user's prior
// conversations, used by the search_conversation_history tool.
func (m *MemoryClient) Search(ctx context.Context, userID, query string, limit int) ([]model.SearchResult, error) {
	body, err := json.Marshal(model.SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/users/%s/conversations/search", m.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("memory reader search returned status %d", resp.StatusCode)
	}

	var out model.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
