package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
)

type WatchConfig struct {
	Roots       []string // directories to watch (recursive)
	AllowedExts map[string]struct{}
	InitialScan bool               // walk roots and emit existing files on start
	Debounce    time.Duration      // coalesce rapid update/rename bursts
	Priority    constants.Priority // queue priority for discovered files
	Enqueue     bool               // hand discovered documents to the queue
}

// StartWatcher watches the configured roots recursively and emits paths of
// newly written files with an allowed extension. The channels close when ctx
// is cancelled.
func StartWatcher(ctx context.Context, logger *slog.Logger, cfg WatchConfig) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, common.NewAppError(common.CodeConfig, "no watch roots provided", nil)
	}
	if cfg.AllowedExts == nil {
		cfg.AllowedExts = constants.AllowedExtensions
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, common.NewAppError(common.CodeStorage, "creating filesystem watcher", err)
	}

	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if isHidden(path) && path != root {
					return filepath.SkipDir
				}
				return w.Add(path)
			}
			if cfg.InitialScan && allowedPath(path, cfg.AllowedExts) {
				select {
				case evCh <- path:
				default:
				}
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r); err != nil {
			_ = w.Close()
			return nil, nil, common.NewAppError(common.CodeStorage, "adding watch root "+r, err)
		}
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("watcher.close_failed", "error", err)
			}
		}()

		// pending and the timer are owned by this goroutine only; the
		// debounce timer surfaces through timerC so sends happen here.
		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		pending := map[string]struct{}{}

		sendPending := func() {
			for p := range pending {
				select {
				case evCh <- p:
				default:
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-timerC:
				timerC = nil
				sendPending()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create {
					// New directories join the watch set so nested drops are seen.
					if err := tryAddDir(w, e.Name); err != nil {
						logger.Warn("watcher.add_dir_failed", "path", e.Name, "error", err)
					}
				}

				if allowedPath(e.Name, cfg.AllowedExts) && (e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename)) != 0 {
					pending[e.Name] = struct{}{}
					if cfg.Debounce > 0 {
						if timer == nil {
							timer = time.NewTimer(cfg.Debounce)
						} else {
							if !timer.Stop() {
								select {
								case <-timer.C:
								default:
								}
							}
							timer.Reset(cfg.Debounce)
						}
						timerC = timer.C
					} else {
						sendPending()
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// Watch runs the filesystem watcher and registers every emitted file until
// ctx is cancelled. Registration failures are logged, not fatal; the watch
// keeps going.
func (s *Service) Watch(ctx context.Context, cfg WatchConfig) error {
	if cfg.Priority == "" {
		cfg.Priority = constants.PriorityNormal
	}
	evCh, errCh, err := StartWatcher(ctx, s.logger, cfg)
	if err != nil {
		return err
	}
	s.logger.Info("ingest.watch.started", "roots", cfg.Roots, "initial_scan", cfg.InitialScan)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-evCh:
			if !ok {
				return nil
			}
			doc, dedup, err := s.RegisterFile(ctx, path, cfg.Priority, cfg.Enqueue)
			switch {
			case err != nil:
				s.logger.Warn("ingest.watch.register_failed", "path", path, "error", err)
			case dedup:
				s.logger.Debug("ingest.watch.deduplicated", "path", path, "document_id", doc.ID)
			default:
				s.logger.Info("ingest.watch.registered", "path", path, "document_id", doc.ID)
			}
		case err, ok := <-errCh:
			if !ok {
				return nil
			}
			s.logger.Warn("ingest.watch.fs_error", "error", err)
		}
	}
}

func allowedPath(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

func tryAddDir(w *fsnotify.Watcher, path string) error {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return nil
	}
	return w.Add(path)
}
