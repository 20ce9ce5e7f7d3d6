package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/banksplit/internal/config"
	"github.com/dgallion1/banksplit/internal/loader"
	"github.com/dgallion1/banksplit/internal/parser"
	"github.com/dgallion1/banksplit/internal/splitter"
	"github.com/dgallion1/banksplit/internal/vecstore"
)

// Orchestrator manages the document ingestion pipeline.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	store      *vecstore.Client
	log        *slog.Logger
	cfg        config.Config
	splitter   *splitter.Splitter
	mapping    loader.Mapping
	stats      *SplitStats
	storeStats *SplitStats
	hashes     *hashIndex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, sp *splitter.Splitter, mapping loader.Mapping, store *vecstore.Client, log *slog.Logger) *Orchestrator {
	if mapping == nil {
		mapping = loader.DefaultMapping()
	}
	return &Orchestrator{
		jobs:       NewJobStore(cfg.JobTTL),
		queue:      make(chan *Job, cfg.MaxQueueSize),
		store:      store,
		log:        log,
		cfg:        cfg,
		splitter:   sp,
		mapping:    mapping,
		stats:      NewSplitStats(time.Hour),
		storeStats: NewSplitStats(time.Hour),
		hashes:     newHashIndex(),
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.store, o.log, o.splitter, parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}, o.mapping, o.stats, o.storeStats, o.hashes, o.cfg.MaxConcurrentStore)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// SplitStats returns the rolling split latency stats.
func (o *Orchestrator) SplitStats() *SplitStats {
	return o.stats
}

// StoreStats returns the rolling store latency stats.
func (o *Orchestrator) StoreStats() *SplitStats {
	return o.storeStats
}

// StoreClient returns the vector store client for direct use by API
// handlers.
func (o *Orchestrator) StoreClient() *vecstore.Client {
	return o.store
}

// ForgetDocument drops a document's dedup entry after deletion so the same
// content can be ingested again.
func (o *Orchestrator) ForgetDocument(docID string) {
	o.hashes.forget(docID)
}
