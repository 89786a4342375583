package rag

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/HammadAli08/Portfolio-backend/internal/ai"
	"github.com/HammadAli08/Portfolio-backend/internal/config"
	"github.com/HammadAli08/Portfolio-backend/internal/logger"
	"github.com/HammadAli08/Portfolio-backend/models"
)

// smokeTestQueries are run against the freshly built index as a diagnostic.
// A miss is logged, never rolled back.
var smokeTestQueries = []string{
	"Who is Hammad Ali Tahir?",
	"What AI projects has Hammad worked on?",
	"What skills does Hammad have?",
}

// IndexClient is the slice of the Pinecone client the builder needs.
// Satisfied by ai.PineconeClient.
type IndexClient interface {
	DescribeIndex(ctx context.Context, name string) (*ai.IndexDescription, error)
	SetIndexHost(host string)
	Embed(ctx context.Context, texts []string, inputType string) ([][]float32, error)
	Upsert(ctx context.Context, vectors []ai.Vector) error
	Query(ctx context.Context, vector []float32, topK int) ([]ai.Match, error)
	DescribeIndexStats(ctx context.Context) (*ai.IndexStats, error)
}

// IndexBuilder repopulates the hosted vector index from the profile data
// directory. It never panics or returns an error past its boundary: every
// failure is logged and reported as false.
type IndexBuilder struct {
	cfg    *config.Config
	client IndexClient
}

// NewIndexBuilder builds against the live Pinecone service.
func NewIndexBuilder(cfg *config.Config) *IndexBuilder {
	return &IndexBuilder{
		cfg: cfg,
		client: ai.NewPineconeClient(ai.PineconeConfig{
			APIKey:     cfg.PineconeAPIKey,
			ControlURL: cfg.PineconeControlURL,
			Model:      cfg.EmbeddingModel,
			Dimension:  cfg.EmbeddingDimension,
		}),
	}
}

// NewIndexBuilderWithClient injects a client, used by tests.
func NewIndexBuilderWithClient(cfg *config.Config, client IndexClient) *IndexBuilder {
	return &IndexBuilder{cfg: cfg, client: client}
}

// BuildIndex validates configuration and the target index, then uploads all
// documents in small batches. A failed batch is skipped and the run
// continues; the result is true as long as validation and loading succeeded.
func (b *IndexBuilder) BuildIndex(ctx context.Context) bool {
	if b.cfg.PineconeAPIKey == "" {
		logger.Error("PINECONE_API_KEY not found in environment, set it in your .env file")
		return false
	}

	desc, err := b.client.DescribeIndex(ctx, b.cfg.PineconeIndexName)
	if err != nil {
		logger.Error("Index check failed, create the index before indexing",
			"index", b.cfg.PineconeIndexName,
			"expected_dimension", b.cfg.EmbeddingDimension,
			"metric", "cosine",
			"error", err)
		return false
	}
	if desc.Dimension != b.cfg.EmbeddingDimension {
		logger.Error("Index dimension mismatch, refusing to write",
			"index", b.cfg.PineconeIndexName,
			"got", desc.Dimension,
			"want", b.cfg.EmbeddingDimension)
		return false
	}
	b.client.SetIndexHost(desc.Host)
	logger.Info("Index verified", "index", desc.Name, "dimension", desc.Dimension, "host", desc.Host)

	docs, err := LoadDocuments(b.cfg.DataDir)
	if err != nil {
		logger.Error("Failed to load documents", "dir", b.cfg.DataDir, "error", err)
		return false
	}
	if len(docs) == 0 {
		logger.Warn("No documents found to index", "dir", b.cfg.DataDir)
		return false
	}
	logger.Info("Loaded documents for indexing", "count", len(docs))

	b.upload(ctx, docs)
	b.runSmokeTests(ctx)
	return true
}

// upload pushes documents in fixed-size batches, throttled between batches
// to stay under the embedding service's rate limits. Batches are sequential
// and a failure drops only that batch.
func (b *IndexBuilder) upload(ctx context.Context, docs []models.Document) {
	batchSize := b.cfg.IndexBatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	limiter := rate.NewLimiter(rate.Every(b.cfg.BatchDelay), 1)
	total := (len(docs) + batchSize - 1) / batchSize

	uploaded := 0
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[i:end]
		batchNum := i/batchSize + 1

		if err := limiter.Wait(ctx); err != nil {
			logger.Error("Upload interrupted", "batch", batchNum, "error", err)
			return
		}

		if err := b.uploadBatch(ctx, batch); err != nil {
			logger.Error("Batch upload failed, continuing with next batch",
				"batch", batchNum, "total", total, "error", err)
			continue
		}
		uploaded += len(batch)
		logger.Info("Batch uploaded", "batch", batchNum, "total", total, "documents", len(batch))
	}
	logger.Info("Upload finished", "uploaded", uploaded, "loaded", len(docs))
}

func (b *IndexBuilder) uploadBatch(ctx context.Context, batch []models.Document) error {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Content
	}

	embeddings, err := b.client.Embed(ctx, texts, ai.InputTypePassage)
	if err != nil {
		return err
	}

	vectors := make([]ai.Vector, len(batch))
	for i, doc := range batch {
		vectors[i] = ai.Vector{
			ID:     uuid.NewString(),
			Values: embeddings[i],
			Metadata: ai.VectorMetadata{
				Text:   doc.Content,
				Source: doc.Metadata.Source,
				Type:   doc.Metadata.Type,
				Name:   doc.Metadata.Name,
			},
		}
	}
	return b.client.Upsert(ctx, vectors)
}

// runSmokeTests probes the rebuilt index with a few fixed queries. Purely
// diagnostic: misses and errors are logged and ignored.
func (b *IndexBuilder) runSmokeTests(ctx context.Context) {
	for _, query := range smokeTestQueries {
		vectors, err := b.client.Embed(ctx, []string{query}, ai.InputTypeQuery)
		if err != nil {
			logger.Warn("Smoke test embed failed", "query", query, "error", err)
			continue
		}
		matches, err := b.client.Query(ctx, vectors[0], 1)
		if err != nil {
			logger.Warn("Smoke test query failed", "query", query, "error", err)
			continue
		}
		if len(matches) == 0 {
			logger.Warn("Smoke test returned no results", "query", query)
			continue
		}
		logger.Info("Smoke test hit", "query", query, "source", matches[0].Metadata.Source)
	}

	if stats, err := b.client.DescribeIndexStats(ctx); err == nil {
		logger.Info("Index statistics", "total_vectors", stats.TotalVectorCount, "dimension", stats.Dimension)
	}
}
