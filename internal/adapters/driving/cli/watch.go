package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Add and reindex documents as files change",
	Long: `Watches a directory tree and ingests supported files (text, markdown,
PDF) whenever they are created or written. Bursts of events for the same file
are collapsed into one ingest. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchDebounce time.Duration
	watchScan     bool
)

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a changed file is ingested")
	watchCmd.Flags().BoolVar(&watchScan, "scan", true, "Ingest existing files on start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	ctx := cmd.Context()
	ingest := func(ctx context.Context, path string) {
		result, err := documentService.AddFile(ctx, path, "")
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			return
		}
		verb := "added"
		if result.Updated {
			verb = "updated"
		}
		cmd.Printf("  %s %s (%s, %d chunks)\n", verb, path, result.Document.ID, result.Chunks)
	}

	w, err := newFileWatcher(watchDebounce, documentService.Supports, ingest)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.AddTree(root); err != nil {
		return err
	}

	if watchScan {
		for _, path := range supportedFiles(root, documentService.Supports) {
			ingest(ctx, path)
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", root)
	return w.Run(ctx)
}

// fileWatcher ingests supported files after a quiet period following their
// last create or write event.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	supports func(string) bool
	ingest   func(context.Context, string)

	ready chan string
	done  chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newFileWatcher(
	debounce time.Duration,
	supports func(string) bool,
	ingest func(context.Context, string),
) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &fileWatcher{
		watcher:  watcher,
		debounce: debounce,
		supports: supports,
		ingest:   ingest,
		ready:    make(chan string),
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// AddTree watches dir and every subdirectory. Hidden directories are skipped.
func (w *fileWatcher) AddTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		logger.Debug("Watching %s", path)
		return nil
	})
}

// Run processes events until ctx is cancelled. Ingests run one at a time.
func (w *fileWatcher) Run(ctx context.Context) error {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case path := <-w.ready:
			w.ingest(ctx, path)
		}
	}
}

// Close stops watching.
func (w *fileWatcher) Close() error {
	w.stopTimers()
	return w.watcher.Close()
}

func (w *fileWatcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.AddTree(ev.Name); err != nil {
				logger.Warn("watch: %v", err)
			}
			return
		}
	}

	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") || !w.supports(ev.Name) {
		return
	}

	w.schedule(ev.Name)
}

// schedule (re)starts the quiet period for path.
func (w *fileWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *fileWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// supportedFiles lists the files under root that supports accepts.
func supportedFiles(root string, supports func(string) bool) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && supports(path) {
			files = append(files, path)
		}
		return nil
	})
	return files
}
