package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgallion1/banksplit/internal/config"
	"github.com/dgallion1/banksplit/internal/document"
	"github.com/dgallion1/banksplit/internal/loader"
	"github.com/dgallion1/banksplit/internal/pipeline"
	"github.com/dgallion1/banksplit/internal/splitter"
	"github.com/dgallion1/banksplit/internal/vecstore"
)

// load is the offline companion to the ingest server: it splits a documents
// directory in one pass, prints a summary, and can optionally push the
// chunks to the vector store or keep watching the directory for changes.
func main() {
	dir := flag.String("dir", "documents", "Directory of banking documents to load")
	mappingPath := flag.String("mapping", "", "YAML doc type mapping file (built-in defaults if empty)")
	chunkSize := flag.Int("chunk-size", 1000, "Max chunk size in characters")
	overlap := flag.Int("overlap", 200, "Chunk overlap in characters")
	flatTables := flag.Bool("flat-tables", false, "Split tables like plain text instead of row-aware")
	push := flag.Bool("push", false, "Push chunks to the vector store (VECSTORE_URL/VECSTORE_API_KEY)")
	watch := flag.Bool("watch", false, "Keep watching the directory and reload changed files")
	debounce := flag.Duration("debounce", 500*time.Millisecond, "Write debounce for watch mode")
	dumpChunks := flag.Bool("dump", false, "Print every chunk as JSON instead of just the summary")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sp, err := splitter.New(splitter.Config{
		MaxChunkSize:         *chunkSize,
		ChunkOverlap:         *overlap,
		PreserveTableContext: !*flatTables,
	})
	if err != nil {
		log.Error("invalid splitter configuration", "error", err)
		os.Exit(1)
	}

	mapping := loader.DefaultMapping()
	if *mappingPath != "" {
		mapping, err = loader.LoadMapping(*mappingPath)
		if err != nil {
			log.Error("failed to load doc type mapping", "path", *mappingPath, "error", err)
			os.Exit(1)
		}
	}

	l := loader.New(*dir, sp, mapping, log)

	chunks, err := l.LoadAll()
	if err != nil {
		log.Error("load failed", "error", err)
		os.Exit(1)
	}

	var store *vecstore.Client
	if *push {
		cfg := config.Load()
		if cfg.VecstoreAPIKey == "" {
			log.Error("VECSTORE_API_KEY is required with -push")
			os.Exit(1)
		}
		store = vecstore.NewClient(cfg.VecstoreURL, cfg.VecstoreAPIKey)
		defer store.Close()

		if err := pushChunks(context.Background(), store, chunks); err != nil {
			log.Error("push failed", "error", err)
			os.Exit(1)
		}
		log.Info("pushed chunks", "count", len(chunks))
	}

	if *dumpChunks {
		lineEnc := json.NewEncoder(os.Stdout)
		for _, c := range chunks {
			lineEnc.Encode(c)
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(l.Summarize(chunks))

	if !*watch {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("watching directory", "dir", *dir)
	err = l.Watch(ctx, *debounce, func(path string, reloaded []document.Chunk, removed bool) {
		if removed {
			if store != nil {
				if err := store.DeleteDocument(ctx, docIDForFile(path)); err != nil {
					log.Error("delete failed", "file", filepath.Base(path), "error", err)
				}
			}
			return
		}
		if store != nil {
			if err := pushChunks(ctx, store, reloaded); err != nil {
				log.Error("push failed", "file", filepath.Base(path), "error", err)
			}
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Error("watch failed", "error", err)
		os.Exit(1)
	}
}

// pushChunks groups chunks by source file and upserts each group under a
// stable document id derived from the filename.
func pushChunks(ctx context.Context, store *vecstore.Client, chunks []document.Chunk) error {
	byDoc := map[string][]vecstore.StoredChunk{}
	counts := map[string]int{}
	for _, c := range chunks {
		docID := docIDForFile(c.Metadata["source_file"])
		id := fmt.Sprintf("%s-%05d", docID, counts[docID])
		counts[docID]++
		sc, err := vecstore.EncodeChunk(id, c)
		if err != nil {
			return err
		}
		byDoc[docID] = append(byDoc[docID], sc)
	}
	for docID, batch := range byDoc {
		if err := store.UpsertChunks(ctx, docID, batch); err != nil {
			return err
		}
	}
	return nil
}

// docIDForFile derives a stable document id from a filename so repeated
// loads overwrite instead of accumulating.
func docIDForFile(name string) string {
	base := filepath.Base(name)
	return pipeline.ContentHashHex([]byte(base))[:16]
}
