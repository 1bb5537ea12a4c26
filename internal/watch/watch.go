// Package watch screens certificate scans dropped into an inbox directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/certvet/certvet/internal/imaging"
	"github.com/certvet/certvet/internal/store"
	"github.com/certvet/certvet/internal/verify"
)

// settleDelay gives scanners and network copies time to finish writing a
// file before it is decoded.
const settleDelay = 250 * time.Millisecond

// watchedExts are the scan formats picked up from the inbox.
var watchedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Watcher screens every scan that appears in a directory. Reports are
// persisted and a plain-text rendering is written beside each scan as
// <name>.report.txt.
type Watcher struct {
	dir      string
	verifier *verify.Verifier
	reports  *store.Store
	cache    *imaging.ImageCache
	log      *zap.Logger

	mu   sync.Mutex
	done map[string]bool

	// OnReport, when set, is called after each successfully screened scan.
	OnReport func(path string, report *verify.Report)
}

// New creates a Watcher over dir. A nil logger disables logging.
func New(dir string, verifier *verify.Verifier, reports *store.Store, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		verifier: verifier,
		reports:  reports,
		cache:    imaging.NewImageCache(),
		log:      log,
		done:     make(map[string]bool),
	}
}

// Run processes the files already in the inbox, then watches for new ones
// until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.ProcessExisting(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching inbox", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !watchedExts[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}

			// Let the writer finish before decoding.
			timer := time.NewTimer(settleDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}

			if err := w.ProcessFile(ctx, event.Name); err != nil {
				w.log.Warn("failed to process scan",
					zap.String("path", event.Name), zap.Error(err))
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// ProcessExisting screens every unprocessed scan currently in the inbox.
func (w *Watcher) ProcessExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !watchedExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if err := w.ProcessFile(ctx, path); err != nil {
			w.log.Warn("failed to process scan",
				zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

// ProcessFile screens one scan, persists the report, and writes the text
// rendering beside the file. Already-processed paths are skipped; a failed
// path is unmarked so a later Write event can retry it, since the failure
// may be a partial write that outlived the settle delay.
func (w *Watcher) ProcessFile(ctx context.Context, path string) error {
	w.mu.Lock()
	if w.done[path] {
		w.mu.Unlock()
		return nil
	}
	w.done[path] = true
	w.mu.Unlock()

	if err := w.screen(ctx, path); err != nil {
		w.mu.Lock()
		delete(w.done, path)
		w.mu.Unlock()
		return err
	}
	return nil
}

func (w *Watcher) screen(ctx context.Context, path string) error {
	img, err := w.cache.Load(path)
	if err != nil {
		return err
	}
	defer w.cache.Evict(path)

	report, err := w.verifier.Verify(ctx, img, filepath.Base(path))
	if err != nil {
		return err
	}
	if err := w.reports.Save(ctx, report); err != nil {
		return err
	}

	reportPath := reportPathFor(path)
	if err := os.WriteFile(reportPath, []byte(report.RenderText()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	w.log.Info("scan processed",
		zap.String("path", path),
		zap.String("report", reportPath),
		zap.Int("score", report.Score),
		zap.String("recommendation", string(report.Recommendation)))

	if w.OnReport != nil {
		w.OnReport(path, report)
	}
	return nil
}

// reportPathFor maps inbox/scan.png to inbox/scan.report.txt.
func reportPathFor(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + ".report.txt"
}
