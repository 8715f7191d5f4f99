package img2uni

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// RemoteEmbedder runs inference against an HTTP model server hosting the
// character encoder. The server accepts a JSON tensor and returns the
// embedding vector.
//
// The server is a stateful external resource whose thread-safety is not
// guaranteed, so calls are serialized through a mutex.
type RemoteEmbedder struct {
	baseURL string
	dim     int
	client  *http.Client

	mu sync.Mutex
}

// embedRequest is the wire format for one inference call.
type embedRequest struct {
	Shape [4]int    `json:"shape"`
	Data  []float32 `json:"data"`
}

// embedResponse is the server's reply.
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// NewRemoteEmbedder creates an embedder backed by the model server at
// baseURL, producing vectors of the given dimension.
func NewRemoteEmbedder(baseURL string, dim int) (*RemoteEmbedder, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsed.Scheme)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", dim)
	}

	return &RemoteEmbedder{
		baseURL: (&url.URL{Scheme: parsed.Scheme, Host: parsed.Host}).String(),
		dim:     dim,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Dim returns the embedding dimension the server was configured with.
func (r *RemoteEmbedder) Dim() int { return r.dim }

// Embed posts one cell tensor to the model server and returns the
// embedding vector.
func (r *RemoteEmbedder) Embed(ctx context.Context, t *Tensor) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	body, err := json.Marshal(embedRequest{
		Shape: [4]int{1, t.Channels, t.Height, t.Width},
		Data:  t.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("model server returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("model server error: %s", out.Error)
	}
	if len(out.Embedding) != r.dim {
		return nil, fmt.Errorf("model server returned %d floats, want %d", len(out.Embedding), r.dim)
	}

	return out.Embedding, nil
}
