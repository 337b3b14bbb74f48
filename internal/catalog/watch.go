package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/josephgoksu/cascade/internal/prompts"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/spf13/afero"
)

const defaultReloadDelay = 300 * time.Millisecond

// Live is a catalog that follows a user catalog file on disk. It can be
// used anywhere a *Catalog lookup or prompts.HintSource is expected.
type Live struct {
	cur    atomic.Pointer[Catalog]
	fs     afero.Fs
	path   string
	logger *slog.Logger
	delay  time.Duration
}

// NewLive loads the catalog at path (merged over the embedded one).
func NewLive(fs afero.Fs, path string, logger *slog.Logger) (*Live, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Live{fs: fs, path: path, logger: logger, delay: defaultReloadDelay}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Current returns the catalog in effect right now.
func (l *Live) Current() *Catalog {
	return l.cur.Load()
}

// Reload re-reads the file. On error the previous catalog stays active.
func (l *Live) Reload() error {
	c, err := LoadFile(l.fs, l.path)
	if err != nil {
		return err
	}
	l.cur.Store(c)
	return nil
}

func (l *Live) Get(id string) (Entry, bool) { return l.Current().Get(id) }

func (l *Live) Entries() []Entry { return l.Current().Entries() }

func (l *Live) Hints(ids []string, stage prompts.HintStage) string {
	return l.Current().Hints(ids, stage)
}

func (l *Live) Summary(seeds session.Seeds) string { return l.Current().Summary(seeds) }

// Watch reloads the catalog whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are picked up. Bursts of events collapse into one reload.
func (l *Live) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(l.path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(l.delay)
			fire = timer.C

		case <-fire:
			fire = nil
			if err := l.Reload(); err != nil {
				l.logger.Warn("catalog reload failed, keeping previous", "path", l.path, "error", err)
				continue
			}
			l.logger.Info("catalog reloaded", "path", l.path, "entries", len(l.Entries()))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("catalog watch error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
