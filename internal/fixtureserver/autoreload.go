package fixtureserver

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

func (s *Server) installAutoReload(debounce time.Duration) (io.Closer, error) {
	dir := strings.TrimSpace(s.dir)
	if dir == "" {
		return closerFunc(func() error { return nil }), nil
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addWatchRecursive(watcher, dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	triggerCh := make(chan struct{}, 1)

	go func() {
		defer close(doneCh)
		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		resetTimer := func() {
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
			timerC = timer.C
		}
		runReload := func() {
			if err := s.Reload(); err != nil {
				s.logger.Warn("fixture reload failed, keeping previous routes", "err", err)
				return
			}
			s.logger.Info("fixture reload ok", "manifest", s.manifestPath, "routes", s.Routes().Len())
		}

		for {
			select {
			case <-stopCh:
				if timer != nil {
					timer.Stop()
				}
				return
			case <-timerC:
				timerC = nil
				runReload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("fixture watcher error", "err", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create != 0 {
					if fi, statErr := os.Stat(evt.Name); statErr == nil && fi.IsDir() {
						if addErr := addWatchRecursive(watcher, evt.Name); addErr != nil {
							s.logger.Warn("fixture watcher add failed", "path", evt.Name, "err", addErr)
						}
					}
				}
				if shouldTriggerReload(evt) {
					select {
					case triggerCh <- struct{}{}:
					default:
					}
				}
			case <-triggerCh:
				resetTimer()
			}
		}
	}()

	s.logger.Info("fixture auto-reload enabled", "dir", dir, "debounce", debounce)
	return closerFunc(func() error {
		close(stopCh)
		_ = watcher.Close()
		<-doneCh
		return nil
	}), nil
}

func shouldTriggerReload(evt fsnotify.Event) bool {
	if strings.TrimSpace(evt.Name) == "" {
		return false
	}
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(evt.Name)
	// editor swap files
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
