package storage

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"storeassist/internal/common/logger"
)

// Watcher triggers a reload callback when any document in a tenant
// directory changes. Events are debounced so an editor writing several
// files produces one reload.
type Watcher struct {
	storage  *Storage
	log      logger.Logger
	onChange func()
	debounce time.Duration
}

func NewWatcher(s *Storage, log logger.Logger, onChange func()) *Watcher {
	return &Watcher{
		storage:  s,
		log:      log.With(map[string]interface{}{"tenant": s.Tenant}),
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled. Watch errors are logged, not fatal:
// serving continues on the last good snapshot.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.storage.TenantDir()); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.log.Info("tenant documents changed, reloading", nil)
			w.onChange()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("document watch error", map[string]interface{}{"error": err.Error()})
		}
	}
}
