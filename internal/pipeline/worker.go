package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/banksplit/internal/document"
	"github.com/dgallion1/banksplit/internal/loader"
	"github.com/dgallion1/banksplit/internal/parser"
	"github.com/dgallion1/banksplit/internal/splitter"
	"github.com/dgallion1/banksplit/internal/vecstore"
)

// storeBatchSize is how many chunks travel per upsert request.
const storeBatchSize = 50

// hashIndex remembers content hashes of completed documents so re-uploads
// of identical content are skipped instead of stored twice.
type hashIndex struct {
	mu     sync.Mutex
	byHash map[string]string
}

func newHashIndex() *hashIndex {
	return &hashIndex{byHash: make(map[string]string)}
}

func (h *hashIndex) lookup(hash string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	docID, ok := h.byHash[hash]
	return docID, ok
}

func (h *hashIndex) record(hash, docID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byHash[hash] = docID
}

func (h *hashIndex) forget(docID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for hash, id := range h.byHash {
		if id == docID {
			delete(h.byHash, hash)
		}
	}
}

// Worker processes a single document job.
type Worker struct {
	store      *vecstore.Client
	log        *slog.Logger
	splitter   *splitter.Splitter
	parsers    parser.Options
	mapping    loader.Mapping
	stats      *SplitStats
	storeStats *SplitStats
	hashes     *hashIndex

	maxConcurrentStore int
}

func NewWorker(store *vecstore.Client, log *slog.Logger, sp *splitter.Splitter, parsers parser.Options, mapping loader.Mapping, stats, storeStats *SplitStats, hashes *hashIndex, maxStore int) *Worker {
	return &Worker{
		store:              store,
		log:                log,
		splitter:           sp,
		parsers:            parsers,
		mapping:            mapping,
		stats:              stats,
		storeStats:         storeStats,
		hashes:             hashes,
		maxConcurrentStore: maxStore,
	}
}

// jobSplitter returns the configured splitter, or one rebuilt with the
// job's per-request size overrides.
func (w *Worker) jobSplitter(job *Job) (*splitter.Splitter, error) {
	if job.ChunkSize == 0 && job.ChunkOverlap == 0 {
		return w.splitter, nil
	}
	cfg := w.splitter.Config()
	if job.ChunkSize > 0 {
		cfg.MaxChunkSize = job.ChunkSize
	}
	if job.ChunkOverlap > 0 {
		cfg.ChunkOverlap = job.ChunkOverlap
	}
	return splitter.New(cfg)
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := w.parsers.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	raw, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title == "" {
		job.Title = raw.Title
	}

	// Phase 1.5: Dedup on the parsed text.
	job.ContentHash = ContentHashHex([]byte(raw.Text))
	if existingDocID, ok := w.hashes.lookup(job.ContentHash); ok {
		log.Info("duplicate document, skipping", "existing_doc_id", existingDocID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Split
	job.SetStatus(StatusSplitting, "splitting")
	sp, err := w.jobSplitter(job)
	if err != nil {
		log.Error("invalid split overrides", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "splitting")
		return
	}
	info := w.mapping.Identify(job.Filename)
	meta := map[string]string{
		"source_file":     job.Filename,
		"doc_id":          job.DocID,
		"document_type":   info.Type,
		"contains_topics": strings.Join(info.Contains, ", "),
		"priority_level":  info.Priority,
		"load_timestamp":  job.CreatedAt.Format(time.RFC3339),
	}

	start := time.Now()
	chunks := sp.Split(raw.Text, meta)
	w.stats.Record(time.Since(start).Milliseconds())

	for i := range chunks {
		types := loader.ClassifyContent(&chunks[i])
		if len(types) > 0 {
			chunks[i].Metadata["content_types"] = strings.Join(types, ", ")
		}
	}

	job.SetChunks(chunks)
	job.SetTotalChunks(len(chunks))
	summary := splitter.TableSummary(chunks)
	job.SetTablesFound(summary.TotalTables, summary.CrossReferencesFound)
	log.Info("split document", "chunks", len(chunks), "tables", summary.TotalTables, "cross_references", summary.CrossReferencesFound)

	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "splitting")
		return
	}

	// Phase 3: Store in batches with bounded concurrency.
	job.SetStatus(StatusStoring, "storing")
	storeStart := time.Now()
	batches := encodeBatches(job, chunks)

	type storeResult struct {
		stored int
		err    error
		idx    int
	}
	results := make(chan storeResult, len(batches))
	sem := make(chan struct{}, w.maxConcurrentStore)

	for i, batch := range batches {
		sem <- struct{}{}
		go func(i int, batch []vecstore.StoredChunk) {
			defer func() { <-sem }()
			var lastErr error
			for attempt := 0; attempt < MaxRetries; attempt++ {
				lastErr = w.store.UpsertChunks(ctx, job.DocID, batch)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable store error", "batch", i, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- storeResult{err: ctx.Err(), idx: i}
					return
				}
			}
			if lastErr != nil {
				results <- storeResult{err: lastErr, idx: i}
				return
			}
			results <- storeResult{stored: len(batch), idx: i}
		}(i, batch)
	}

	storedCount := 0
	hadErrors := false
	for range batches {
		r := <-results
		if r.err != nil {
			log.Error("store failed", "batch", r.idx, "error", r.err)
			job.AddError(fmt.Sprintf("batch %d: %s", r.idx, r.err))
			hadErrors = true
			continue
		}
		storedCount += r.stored
		job.AddChunksStored(r.stored)
	}
	w.storeStats.Record(time.Since(storeStart).Milliseconds())
	log.Info("storage complete", "stored", storedCount, "total", len(chunks))

	switch {
	case hadErrors && storedCount > 0:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "storing")
	default:
		w.hashes.record(job.ContentHash, job.DocID)
		job.SetStatus(StatusCompleted, "done")
	}
}

// encodeBatches flattens chunks for the wire and groups them into upsert
// batches. Chunk ids embed the position so stored order is recoverable.
func encodeBatches(job *Job, chunks []document.Chunk) [][]vecstore.StoredChunk {
	var batches [][]vecstore.StoredChunk
	var cur []vecstore.StoredChunk
	for i, c := range chunks {
		id := fmt.Sprintf("%s-%05d", job.DocID, i)
		sc, err := vecstore.EncodeChunk(id, c)
		if err != nil {
			job.AddError(fmt.Sprintf("encode chunk %d: %s", i, err))
			continue
		}
		cur = append(cur, sc)
		if len(cur) == storeBatchSize {
			batches = append(batches, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		batches = append(batches, cur)
	}
	return batches
}
