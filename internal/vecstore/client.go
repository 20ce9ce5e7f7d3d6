package vecstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgallion1/banksplit/internal/document"
)

// Client communicates with the vector store HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StoredChunk is the wire representation of a chunk. Structured fields are
// flattened here because the store only accepts scalar metadata values:
// cross references and numeric data travel as embedded JSON strings.
type StoredChunk struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	ChunkType  string            `json:"chunk_type"`
	TableID    string            `json:"table_id,omitempty"`
	TableTitle string            `json:"table_title,omitempty"`
	PartIndex  int               `json:"part_index,omitempty"`
	Context    string            `json:"context,omitempty"`
	CrossRefs  string            `json:"cross_references,omitempty"`
	Numeric    string            `json:"numerical_data,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// EncodeChunk flattens a chunk for storage. This is the only place the
// typed chunk model is serialized; handlers and workers pass chunks around
// intact and encode at this boundary.
func EncodeChunk(id string, c document.Chunk) (StoredChunk, error) {
	sc := StoredChunk{
		ID:         id,
		Content:    c.Content,
		ChunkType:  string(c.Kind),
		TableID:    c.TableID,
		TableTitle: c.TableTitle,
		PartIndex:  c.PartIndex,
		Context:    c.Context,
		Metadata:   c.Metadata,
	}
	if len(c.CrossReferences) > 0 {
		b, err := json.Marshal(c.CrossReferences)
		if err != nil {
			return StoredChunk{}, fmt.Errorf("marshal cross references: %w", err)
		}
		sc.CrossRefs = string(b)
	}
	if !c.Numeric.Empty() {
		b, err := json.Marshal(c.Numeric)
		if err != nil {
			return StoredChunk{}, fmt.Errorf("marshal numeric data: %w", err)
		}
		sc.Numeric = string(b)
	}
	return sc, nil
}

// UpsertChunks stores a batch of chunks under a document id.
func (c *Client) UpsertChunks(ctx context.Context, docID string, chunks []StoredChunk) error {
	body, err := json.Marshal(struct {
		Chunks []StoredChunk `json:"chunks"`
	}{Chunks: chunks})
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/documents/"+docID+"/chunks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.StatusOK, http.StatusCreated); err != nil {
		return fmt.Errorf("upsert chunks for %s: %w", docID, err)
	}
	return nil
}

// DeleteDocument removes a document and all its chunks.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/documents/"+docID, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.StatusOK, http.StatusNoContent); err != nil {
		return fmt.Errorf("delete document %s: %w", docID, err)
	}
	return nil
}

// DocumentInfo is a stored document as reported by a listing.
type DocumentInfo struct {
	ID         string `json:"id"`
	SourceFile string `json:"source_file"`
	ChunkCount int    `json:"chunk_count"`
	StoredAt   string `json:"stored_at"`
}

// ListDocuments returns all stored documents.
func (c *Client) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var result struct {
		Documents []DocumentInfo `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return result.Documents, nil
}

// checkStatus validates a response code. Rate limiting and server errors
// come back as RetryableError so callers can back off and retry.
func checkStatus(resp *http.Response, ok ...int) error {
	for _, code := range ok {
		if resp.StatusCode == code {
			return nil
		}
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
}

// RetryableError indicates a transient store failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
