package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgallion1/banksplit/internal/document"
	"github.com/dgallion1/banksplit/internal/parser"
	"github.com/fsnotify/fsnotify"
)

// ChangeHandler receives the reloaded chunks of a file after its write
// events settle. A nil chunk slice with removed=true means the file was
// deleted or renamed away.
type ChangeHandler func(path string, chunks []document.Chunk, removed bool)

// Watch reloads files as they change on disk until ctx is cancelled.
// Editors fire bursts of write events per save, so reloads are debounced:
// a file is only reprocessed once its events stop for the debounce window.
func (l *Loader) Watch(ctx context.Context, debounce time.Duration, handler ChangeHandler) error {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}

	pending := map[string]*time.Timer{}
	fired := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !parser.IsSupportedExtension(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if t, ok := pending[event.Name]; ok {
					t.Stop()
					delete(pending, event.Name)
				}
				l.logger.Info("document removed", "file", filepath.Base(event.Name))
				handler(event.Name, nil, true)
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			if t, ok := pending[event.Name]; ok {
				t.Reset(debounce)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(debounce, func() {
				select {
				case fired <- name:
				case <-ctx.Done():
				}
			})

		case name := <-fired:
			delete(pending, name)
			chunks, err := l.LoadFile(name)
			if err != nil {
				l.logger.Error("failed to reload document", "file", filepath.Base(name), "error", err)
				continue
			}
			l.logger.Info("document reloaded", "file", filepath.Base(name), "chunks", len(chunks))
			handler(name, chunks, false)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("watch error", "error", err)
		}
	}
}
