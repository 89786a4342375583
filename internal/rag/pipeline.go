package rag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HammadAli08/Portfolio-backend/internal/ai"
	"github.com/HammadAli08/Portfolio-backend/internal/config"
	"github.com/HammadAli08/Portfolio-backend/internal/logger"
	"github.com/HammadAli08/Portfolio-backend/models"
)

// DefaultTopK is how many documents Retrieve fetches when the caller does
// not say.
const DefaultTopK = 4

// Embedder turns texts into vectors. Satisfied by ai.PineconeClient.
type Embedder interface {
	Embed(ctx context.Context, texts []string, inputType string) ([][]float32, error)
}

// VectorIndex answers nearest-neighbor queries. Satisfied by ai.PineconeClient.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]ai.Match, error)
}

// ChatModel generates answers. Satisfied by ai.GroqClient.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string) (<-chan ai.Token, error)
}

// Pipeline wires the three external services behind the query-to-answer
// flow: embed query, search index, compose persona prompt, call the model.
// Instances are read-only after construction and shared across requests.
type Pipeline struct {
	embedder Embedder
	index    VectorIndex
	llm      ChatModel
	topK     int
}

// NewPipeline builds a pipeline against the live Pinecone and Groq services,
// resolving the index data-plane host up front.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	if cfg.PineconeAPIKey == "" {
		return nil, fmt.Errorf("PINECONE_API_KEY is not set")
	}

	pc := ai.NewPineconeClient(ai.PineconeConfig{
		APIKey:     cfg.PineconeAPIKey,
		ControlURL: cfg.PineconeControlURL,
		Model:      cfg.EmbeddingModel,
		Dimension:  cfg.EmbeddingDimension,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Connecting to Pinecone index", "index", cfg.PineconeIndexName)
	desc, err := pc.DescribeIndex(ctx, cfg.PineconeIndexName)
	if err != nil {
		return nil, fmt.Errorf("connecting to index %s: %w", cfg.PineconeIndexName, err)
	}
	pc.SetIndexHost(desc.Host)

	llm := ai.NewGroqClient(ai.GroqConfig{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqAPIURL,
		Model:   cfg.ChatModel,
	})

	return NewPipelineWithComponents(pc, pc, llm, cfg.TopK), nil
}

// NewPipelineWithComponents assembles a pipeline from explicit components.
// Tests inject fakes here.
func NewPipelineWithComponents(embedder Embedder, index VectorIndex, llm ChatModel, topK int) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Pipeline{embedder: embedder, index: index, llm: llm, topK: topK}
}

// Retrieve embeds the query (query mode, not passage mode) and returns the
// k nearest documents in the order the index ranked them. k <= 0 falls back
// to the pipeline default.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) ([]models.Document, error) {
	if k <= 0 {
		k = p.topK
	}

	vectors, err := p.embedder.Embed(ctx, []string{query}, ai.InputTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := p.index.Query(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	docs := make([]models.Document, len(matches))
	for i, m := range matches {
		docs[i] = models.Document{
			Content: m.Metadata.Text,
			Metadata: models.DocumentMetadata{
				Source: m.Metadata.Source,
				Type:   m.Metadata.Type,
				Name:   m.Metadata.Name,
			},
		}
	}
	return docs, nil
}

// Answer runs the full pipeline synchronously and returns the complete reply.
func (p *Pipeline) Answer(ctx context.Context, query string) (string, error) {
	prompt, err := p.composeFor(ctx, query)
	if err != nil {
		return "", err
	}
	return p.llm.Complete(ctx, prompt)
}

// StreamAnswer runs the full pipeline and returns the reply as a finite,
// consume-once sequence of text fragments. Canceling ctx releases the
// underlying model connection even if the consumer stops early.
func (p *Pipeline) StreamAnswer(ctx context.Context, query string) (<-chan ai.Token, error) {
	prompt, err := p.composeFor(ctx, query)
	if err != nil {
		return nil, err
	}
	return p.llm.Stream(ctx, prompt)
}

func (p *Pipeline) composeFor(ctx context.Context, query string) (string, error) {
	docs, err := p.Retrieve(ctx, query, 0)
	if err != nil {
		return "", err
	}
	return ComposePrompt(PromptInput{Context: FormatDocs(docs), Question: query}), nil
}

// Holder owns the lazily constructed pipeline singleton. Reset discards the
// current instance so the next Get builds a fresh one against the rebuilt
// index; requests already holding the old instance keep using it.
type Holder struct {
	mu       sync.Mutex
	pipeline *Pipeline
	build    func() (*Pipeline, error)
}

// NewHolder creates a Holder that constructs pipelines with build.
func NewHolder(build func() (*Pipeline, error)) *Holder {
	return &Holder{build: build}
}

// Get returns the current pipeline, constructing it on first use.
func (h *Holder) Get() (*Pipeline, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pipeline != nil {
		return h.pipeline, nil
	}
	p, err := h.build()
	if err != nil {
		return nil, err
	}
	h.pipeline = p
	return p, nil
}

// Reset drops the cached pipeline.
func (h *Holder) Reset() {
	h.mu.Lock()
	h.pipeline = nil
	h.mu.Unlock()
}
