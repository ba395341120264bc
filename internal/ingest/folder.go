// Package ingest imports case files dropped into a directory.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/credit-eval/cet-console/internal/bus"
	"github.com/credit-eval/cet-console/internal/fixtures"
	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/store"
)

// CaseWriter is the store surface the ingestor needs.
type CaseWriter interface {
	UpsertCases(ctx context.Context, cases []model.Case) error
	LogCaseAction(ctx context.Context, caseID, action, actor string, details map[string]interface{}) error
}

// FolderOptions controls ingest-folder behavior.
type FolderOptions struct {
	Dir      string
	Watch    bool
	Patterns []string // default *.json, *.jsonl, *.yaml, *.yml
	Logger   *log.Logger
	// In watch mode, start JSONL files at EOF so a restart does not re-import
	// existing lines.
	TailFromEnd bool
}

// FolderIngestor imports case files from a directory, once or continuously.
type FolderIngestor struct {
	store CaseWriter
	bus   bus.Bus
	opts  FolderOptions

	mu       sync.Mutex
	offsets  map[string]int64 // per-file tail offset for jsonl
	ingested int
	errors   int
}

// NewFolderIngestor constructs a folder ingestor.
func NewFolderIngestor(st CaseWriter, b bus.Bus, opts FolderOptions) *FolderIngestor {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[ingest-folder] ", log.LstdFlags)
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{"*.json", "*.jsonl", "*.yaml", "*.yml"}
	}
	if b == nil {
		b = bus.NewNullBus(opts.Logger)
	}
	return &FolderIngestor{
		store:   st,
		bus:     b,
		opts:    opts,
		offsets: make(map[string]int64),
	}
}

// Stats returns the number of imported cases and failed records so far.
func (fi *FolderIngestor) Stats() (ingested, errors int) {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return fi.ingested, fi.errors
}

// Run performs one scan and, in watch mode, keeps importing until ctx ends.
func (fi *FolderIngestor) Run(ctx context.Context) error {
	if err := os.MkdirAll(fi.opts.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create ingest dir %s: %w", fi.opts.Dir, err)
	}
	if err := fi.scanOnce(ctx); err != nil {
		return err
	}

	if !fi.opts.Watch {
		ingested, errs := fi.Stats()
		fi.opts.Logger.Printf("Completed one-shot ingest: ingested=%d errors=%d", ingested, errs)
		return nil
	}
	return fi.watchLoop(ctx)
}

func (fi *FolderIngestor) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range fi.opts.Patterns {
		if ok, _ := filepath.Match(strings.TrimSpace(strings.ToLower(pat)), lower); ok {
			return true
		}
	}
	return false
}

func (fi *FolderIngestor) scanOnce(ctx context.Context) error {
	entries, err := os.ReadDir(fi.opts.Dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !fi.matches(e.Name()) {
			continue
		}
		path := filepath.Join(fi.opts.Dir, e.Name())
		if isJSONL(path) && fi.opts.Watch && fi.opts.TailFromEnd {
			if st, err := os.Stat(path); err == nil {
				fi.setOffset(path, st.Size())
			}
			continue
		}
		fi.processPath(ctx, path)
	}
	return nil
}

func (fi *FolderIngestor) watchLoop(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer w.Close()

	if err := w.Add(fi.opts.Dir); err != nil {
		return fmt.Errorf("watch add: %w", err)
	}
	fi.opts.Logger.Printf("Watching directory: %s (patterns: %s)", fi.opts.Dir, strings.Join(fi.opts.Patterns, ","))

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ingested, errs := fi.Stats()
			fi.opts.Logger.Printf("Watch stopping: ingested=%d errors=%d", ingested, errs)
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !fi.matches(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				fi.processPath(ctx, ev.Name)
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				fi.mu.Lock()
				delete(fi.offsets, ev.Name)
				fi.mu.Unlock()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fi.opts.Logger.Printf("watch error: %v", err)
		case <-ticker.C:
			ingested, errs := fi.Stats()
			fi.opts.Logger.Printf("Watch heartbeat: ingested=%d errors=%d", ingested, errs)
		}
	}
}

// processPath imports one file. Whole-document formats are re-read on every
// write; JSONL files are tailed from the last offset.
func (fi *FolderIngestor) processPath(ctx context.Context, path string) {
	if isJSONL(path) {
		fi.mu.Lock()
		offset := fi.offsets[path]
		fi.mu.Unlock()

		next, err := fi.processJSONL(ctx, path, offset)
		if err != nil {
			fi.opts.Logger.Printf("error tailing %s: %v", path, err)
			fi.addErrors(1)
		}
		fi.setOffset(path, next)
		return
	}

	cases, err := fixtures.LoadFile(path)
	if err != nil {
		fi.opts.Logger.Printf("error processing %s: %v", path, err)
		fi.addErrors(1)
		return
	}
	if err := fi.importCases(ctx, cases, filepath.Base(path)); err != nil {
		fi.opts.Logger.Printf("error importing %s: %v", path, err)
		fi.addErrors(len(cases))
	}
}

func (fi *FolderIngestor) processJSONL(ctx context.Context, path string, startOffset int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		// rename or rotate in progress
		return startOffset, err
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() < startOffset {
		startOffset = 0
	}
	if startOffset > 0 {
		if _, err := f.Seek(startOffset, io.SeekStart); err != nil {
			return startOffset, err
		}
	}

	reader := bufio.NewReader(f)
	offset := startOffset
	source := filepath.Base(path)
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			// A partial trailing line is left for the next write.
			return offset, nil
		}
		if err != nil {
			return offset, err
		}
		offset += int64(len(line))

		cases, derr := fixtures.Decode(line, fixtures.FormatJSON)
		if derr != nil {
			fi.opts.Logger.Printf("parse error in %s: %v", path, derr)
			fi.addErrors(1)
			continue
		}
		if err := fi.importCases(ctx, cases, source); err != nil {
			fi.opts.Logger.Printf("error importing line from %s: %v", path, err)
			fi.addErrors(len(cases))
		}
	}
}

func (fi *FolderIngestor) importCases(ctx context.Context, cases []model.Case, source string) error {
	if len(cases) == 0 {
		return nil
	}
	if err := fi.store.UpsertCases(ctx, cases); err != nil {
		return err
	}

	for _, c := range cases {
		if err := fi.store.LogCaseAction(ctx, c.ID, store.ActionImported, "ingest-folder", map[string]interface{}{
			"file": source,
		}); err != nil {
			fi.opts.Logger.Printf("audit import of %s: %v", c.ID, err)
		}
		// Best-effort publish; no-op on NullBus.
		_ = fi.bus.PublishCaseEvent(ctx, bus.CaseMessage{
			CaseID:    c.ID,
			Action:    bus.ActionImported,
			Status:    string(c.Status),
			Timestamp: time.Now().Unix(),
		})
	}

	fi.mu.Lock()
	fi.ingested += len(cases)
	fi.mu.Unlock()
	return nil
}

func (fi *FolderIngestor) setOffset(path string, off int64) {
	fi.mu.Lock()
	fi.offsets[path] = off
	fi.mu.Unlock()
}

func (fi *FolderIngestor) addErrors(n int) {
	fi.mu.Lock()
	fi.errors += n
	fi.mu.Unlock()
}

func isJSONL(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".jsonl")
}
