package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Pinecone embedding input types. llama-text-embed-v2 requires the caller to
// say whether a text is a stored passage or a search query.
const (
	InputTypePassage = "passage"
	InputTypeQuery   = "query"
)

const pineconeAPIVersion = "2025-01"

// ErrIndexNotFound is returned by DescribeIndex when the named index does not
// exist on the Pinecone project.
var ErrIndexNotFound = errors.New("pinecone index not found")

// PineconeClient talks to three Pinecone surfaces: the control plane (index
// lookup), the hosted inference API (embeddings) and the per-index data plane
// (upsert/query). The data-plane host is discovered via DescribeIndex and must
// be set before Upsert/Query are used.
type PineconeClient struct {
	apiKey     string
	controlURL string
	indexHost  string
	model      string
	dimension  int
	client     *http.Client
}

// PineconeConfig configures a PineconeClient.
type PineconeConfig struct {
	APIKey     string
	ControlURL string
	Model      string
	Dimension  int
	Timeout    time.Duration
}

func NewPineconeClient(cfg PineconeConfig) *PineconeClient {
	if cfg.ControlURL == "" {
		cfg.ControlURL = "https://api.pinecone.io"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-text-embed-v2"
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = 1024
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &PineconeClient{
		apiKey:     cfg.APIKey,
		controlURL: strings.TrimRight(cfg.ControlURL, "/"),
		model:      cfg.Model,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}
}

// IndexDescription is the subset of the control-plane index description the
// pipeline cares about.
type IndexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Host      string `json:"host"`
	Metric    string `json:"metric"`
}

// Vector is one indexed entry: id, embedding and the metadata returned with
// search matches. The document text rides along in metadata so retrieval
// needs no second lookup.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata VectorMetadata `json:"metadata"`
}

// VectorMetadata is stored next to each vector in the index.
type VectorMetadata struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

// Match is a single similarity-search hit.
type Match struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata VectorMetadata `json:"metadata"`
}

// IndexStats summarizes the live index.
type IndexStats struct {
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
}

// DescribeIndex fetches the index description from the control plane.
// Returns ErrIndexNotFound for a missing index.
func (pc *PineconeClient) DescribeIndex(ctx context.Context, name string) (*IndexDescription, error) {
	endpoint := fmt.Sprintf("%s/indexes/%s", pc.controlURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	pc.setHeaders(req)

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("describing index %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("describe index", resp)
	}

	var desc IndexDescription
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("decoding index description: %w", err)
	}
	return &desc, nil
}

// SetIndexHost points the data-plane calls at the host returned by
// DescribeIndex. A bare host gets an https scheme.
func (pc *PineconeClient) SetIndexHost(host string) {
	if host != "" && !strings.Contains(host, "://") {
		host = "https://" + host
	}
	pc.indexHost = strings.TrimRight(host, "/")
}

// Embed generates embeddings for the given texts via Pinecone's hosted
// inference API. inputType must be InputTypePassage for documents and
// InputTypeQuery for search queries.
func (pc *PineconeClient) Embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	type embedInput struct {
		Text string `json:"text"`
	}
	inputs := make([]embedInput, len(texts))
	for i, t := range texts {
		inputs[i] = embedInput{Text: t}
	}

	body := map[string]any{
		"model": pc.model,
		"parameters": map[string]any{
			"input_type": inputType,
			"dimension":  pc.dimension,
			"truncate":   "END",
		},
		"inputs": inputs,
	}

	var out struct {
		Data []struct {
			Values []float32 `json:"values"`
		} `json:"data"`
	}
	if err := pc.postJSON(ctx, pc.controlURL+"/embed", body, &out); err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("embed returned %d vectors for %d inputs", len(out.Data), len(texts))
	}

	vectors := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		vectors[i] = d.Values
	}
	return vectors, nil
}

// Upsert writes vectors to the index.
func (pc *PineconeClient) Upsert(ctx context.Context, vectors []Vector) error {
	if pc.indexHost == "" {
		return errors.New("index host not set, call DescribeIndex first")
	}
	body := map[string]any{"vectors": vectors}
	var out struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := pc.postJSON(ctx, pc.indexHost+"/vectors/upsert", body, &out); err != nil {
		return fmt.Errorf("upserting %d vectors: %w", len(vectors), err)
	}
	return nil
}

// Query runs a nearest-neighbor search and returns matches with metadata.
// Ranking and metric are whatever the index was created with.
func (pc *PineconeClient) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if pc.indexHost == "" {
		return nil, errors.New("index host not set, call DescribeIndex first")
	}
	body := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
		"includeValues":   false,
	}
	var out struct {
		Matches []Match `json:"matches"`
	}
	if err := pc.postJSON(ctx, pc.indexHost+"/query", body, &out); err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	return out.Matches, nil
}

// DescribeIndexStats reports the live dimension and vector count.
func (pc *PineconeClient) DescribeIndexStats(ctx context.Context) (*IndexStats, error) {
	if pc.indexHost == "" {
		return nil, errors.New("index host not set, call DescribeIndex first")
	}
	var out IndexStats
	if err := pc.postJSON(ctx, pc.indexHost+"/describe_index_stats", map[string]any{}, &out); err != nil {
		return nil, fmt.Errorf("describing index stats: %w", err)
	}
	return &out, nil
}

func (pc *PineconeClient) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	pc.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := pc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apiError(endpoint, resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (pc *PineconeClient) setHeaders(req *http.Request) {
	req.Header.Set("Api-Key", pc.apiKey)
	req.Header.Set("X-Pinecone-API-Version", pineconeAPIVersion)
}

func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("pinecone %s failed: %s: %s", op, resp.Status, strings.TrimSpace(string(body)))
}
