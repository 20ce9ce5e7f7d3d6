package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/banksplit/internal/document"
	"github.com/dgallion1/banksplit/internal/loader"
	"github.com/dgallion1/banksplit/internal/parser"
	"github.com/dgallion1/banksplit/internal/splitter"
	"github.com/dgallion1/banksplit/internal/vecstore"
)

const workerDoc = `# Loan Handbook

Introductory text about our products.

### Table 1.1: Personal Loan Rates
|Loan Type|APR|Term|
|---|---|---|
|Personal|7.5%|36 months|

See Table 1.1 for details.
`

func newTestWorker(t *testing.T, storeURL string) *Worker {
	t.Helper()
	sp, err := splitter.New(splitter.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(vecstore.NewClient(storeURL, "test-key"), logger, sp, parser.DefaultOptions(), loader.DefaultMapping(), NewSplitStats(time.Hour), NewSplitStats(time.Hour), newHashIndex(), 2)
}

func newTestJob(filename, content string) *Job {
	job := &Job{
		ID:        NewID(),
		DocID:     NewID(),
		Status:    StatusQueued,
		Filename:  filename,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte(content))
	return job
}

func TestWorkerProcessStoresChunks(t *testing.T) {
	var mu sync.Mutex
	var received []vecstore.StoredChunk
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Chunks []vecstore.StoredChunk `json:"chunks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		mu.Lock()
		received = append(received, body.Chunks...)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	w := newTestWorker(t, srv.URL)
	job := newTestJob("loan_handbook.txt", workerDoc)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed (errors: %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.TotalChunks == 0 {
		t.Fatal("expected chunks")
	}
	if snap.Progress.ChunksStored != snap.Progress.TotalChunks {
		t.Errorf("stored %d of %d chunks", snap.Progress.ChunksStored, snap.Progress.TotalChunks)
	}
	if snap.Progress.TablesFound != 1 {
		t.Errorf("TablesFound = %d, want 1", snap.Progress.TablesFound)
	}
	if snap.Progress.CrossRefsFound < 1 {
		t.Errorf("CrossRefsFound = %d, want at least 1", snap.Progress.CrossRefsFound)
	}
	if snap.ContentHash == "" {
		t.Error("expected content hash to be set")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != snap.Progress.TotalChunks {
		t.Fatalf("server received %d chunks, want %d", len(received), snap.Progress.TotalChunks)
	}
	var sawTable bool
	for _, sc := range received {
		if sc.ChunkType == "table" && sc.TableID == "1.1" {
			sawTable = true
		}
		if sc.Metadata["document_type"] != "loan_products" {
			t.Errorf("chunk %s document_type = %q", sc.ID, sc.Metadata["document_type"])
		}
	}
	if !sawTable {
		t.Error("expected a stored table chunk with id 1.1")
	}
}

func TestWorkerProcessDuplicateSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	w := newTestWorker(t, srv.URL)
	first := newTestJob("loan_handbook.txt", workerDoc)
	w.Process(context.Background(), first)
	if first.Snapshot().Status != StatusCompleted {
		t.Fatalf("first job status = %q", first.Snapshot().Status)
	}

	second := newTestJob("loan_handbook_copy.txt", workerDoc)
	w.Process(context.Background(), second)
	if got := second.Snapshot().Status; got != StatusDupSkipped {
		t.Errorf("second job status = %q, want duplicate_skipped", got)
	}
}

func TestWorkerProcessChunkSizeOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "Paragraph %d covers lending standards and the annual review procedure in detail.\n\n", i)
	}
	content := sb.String()

	base := newTestJob("policy.txt", content)
	newTestWorker(t, srv.URL).Process(context.Background(), base)
	if got := base.Snapshot().Status; got != StatusCompleted {
		t.Fatalf("baseline status = %q", got)
	}

	small := newTestJob("policy.txt", content)
	small.ChunkSize = 200
	small.ChunkOverlap = 20
	newTestWorker(t, srv.URL).Process(context.Background(), small)
	if got := small.Snapshot().Status; got != StatusCompleted {
		t.Fatalf("override status = %q", got)
	}

	if small.Snapshot().Progress.TotalChunks <= base.Snapshot().Progress.TotalChunks {
		t.Errorf("smaller budget produced %d chunks, baseline %d",
			small.Snapshot().Progress.TotalChunks, base.Snapshot().Progress.TotalChunks)
	}
}

func TestWorkerProcessInvalidOverride(t *testing.T) {
	w := newTestWorker(t, "http://unused")
	job := newTestJob("policy.txt", workerDoc)
	job.ChunkSize = 100
	job.ChunkOverlap = 200
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("status = %q, want failed", snap.Status)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected a recorded error")
	}
}

func TestWorkerProcessStoreFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	w := newTestWorker(t, srv.URL)
	job := newTestJob("loan_handbook.txt", workerDoc)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("status = %q, want failed", snap.Status)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected recorded errors")
	}
}

func TestWorkerProcessUnsupportedFormat(t *testing.T) {
	w := newTestWorker(t, "http://unused")
	job := newTestJob("image.png", "not a document")
	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("status = %q, want failed", got)
	}
}

func TestWorkerProcessEmptyDocument(t *testing.T) {
	w := newTestWorker(t, "http://unused")
	job := newTestJob("empty.txt", "")
	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("status = %q, want failed", got)
	}
}

func TestEncodeBatches(t *testing.T) {
	job := &Job{DocID: "DOC"}
	chunks := make([]document.Chunk, 120)
	for i := range chunks {
		chunks[i] = document.Chunk{Content: fmt.Sprintf("chunk %d", i), Kind: document.KindText}
	}

	batches := encodeBatches(job, chunks)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 50 || len(batches[1]) != 50 || len(batches[2]) != 20 {
		t.Errorf("batch sizes = %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
	if batches[0][0].ID != "DOC-00000" {
		t.Errorf("first id = %q", batches[0][0].ID)
	}
	if batches[2][19].ID != "DOC-00119" {
		t.Errorf("last id = %q", batches[2][19].ID)
	}
}

func TestNewIDUniqueAndSorted(t *testing.T) {
	seen := map[string]bool{}
	prev := ""
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("id length = %d, want 26", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if prev != "" && id < prev {
			t.Fatalf("ids not monotonic: %q after %q", id, prev)
		}
		prev = id
	}
}
