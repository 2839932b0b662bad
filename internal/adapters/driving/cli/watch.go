package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/logger"
	"github.com/custodia-labs/studymate/internal/normalisers"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Ingest new documents as they appear",
	Long: `Ingests every supported file under the given directories, then watches them
and ingests files as they are created or written. Removing a file does not
remove its chunks; stored entries are append-only.

Stop with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond,
		"wait this long after the last change to a file before ingesting it")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireIndex(); err != nil {
		return err
	}
	sources := requireSources()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range args {
		if err := addWatchDirs(watcher, normalisers.ResolvePath(dir)); err != nil {
			return err
		}
	}

	existing, err := sources.Expand(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	for _, path := range existing {
		ingestWatched(ctx, cmd, path)
	}
	cmd.Printf("Watching %s\n", strings.Join(args, ", "))

	return watchLoop(ctx, watcher, sources, watchDebounce, func(path string) {
		ingestWatched(ctx, cmd, path)
	})
}

// addWatchDirs watches root and every non-hidden directory below it.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		logger.Debug("Watching directory %s", path)
		return nil
	})
}

// watchLoop batches file events and calls ingest once per settled path.
// It returns when ctx is done or the watcher closes.
func watchLoop(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	sources *normalisers.Registry,
	debounce time.Duration,
	ingest func(path string),
) error {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(max(debounce/2, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := addWatchDirs(watcher, event.Name); err != nil {
					logger.Warn("%v", err)
				}
				continue
			}
			if path, ok := watchTarget(event, sources); ok {
				pending[path] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for _, path := range settled(pending, now, debounce) {
				delete(pending, path)
				ingest(path)
			}
		}
	}
}

// watchTarget returns the file to ingest for event, if any.
// Only creates and writes of supported, visible files count.
func watchTarget(event fsnotify.Event, sources *normalisers.Registry) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	if isDir(event.Name) || !sources.Supports(event.Name) {
		return "", false
	}
	return event.Name, true
}

// settled returns the pending paths untouched for at least debounce, sorted.
func settled(pending map[string]time.Time, now time.Time, debounce time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= debounce {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func ingestWatched(ctx context.Context, cmd *cobra.Command, path string) {
	st := stylesFor(cmd.OutOrStdout())
	report, err := ingestFile(ctx, path, "")
	switch {
	case errors.Is(err, domain.ErrDuplicateSource):
		logger.Debug("Already indexed: %s", path)
	case err != nil:
		logger.Error("%s: %v", path, err)
	default:
		printIngestReport(cmd, st, report)
	}
}
