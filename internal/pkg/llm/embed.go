package llm

import (
	"context"

	embedopenai "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
)

// NewEmbedder builds the embeddings collaborator used by Memory Writer to
// vectorize conversation summaries and by Memory Reader to vectorize
// search queries.
func NewEmbedder(ctx context.Context, cfg *config.LLMConfig) (embedding.Embedder, error) {
	embedCfg := &embedopenai.EmbeddingConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.EmbeddingModel,
	}
	if cfg.EmbeddingBaseURL != "" {
		embedCfg.BaseURL = cfg.EmbeddingBaseURL
	}
	return embedopenai.NewEmbedder(ctx, embedCfg)
}

// Embed returns the embedding vector for a single piece of text.
func Embed(ctx context.Context, embedder embedding.Embedder, text string) ([]float64, error) {
	vectors, err := embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return vectors[0], nil
}
