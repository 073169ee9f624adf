package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
)

// DefaultWatchDebounce coalesces the burst of events editors emit on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watch reloads the configuration for dir whenever the project config, the
// project .env or the user config changes, and passes the result of Load to
// onChange. Watcher errors are reported through onChange with a nil config.
// Watch blocks until ctx is cancelled, then returns nil.
func Watch(ctx context.Context, dir string, onChange func(*Config, error)) error {
	return watch(ctx, dir, DefaultWatchDebounce, onChange)
}

func watch(ctx context.Context, dir string, window time.Duration, onChange func(*Config, error)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return rcerrors.New(rcerrors.ErrCodeConfigWatch, "failed to create config watcher", err)
	}
	defer func() { _ = fsw.Close() }()

	targets := watchTargets(dir)
	if len(targets) == 0 {
		return rcerrors.New(rcerrors.ErrCodeConfigWatch, "no config directories to watch", nil).
			WithSuggestion("Create the project directory or run 'rigcheck config init'")
	}

	// Directories rather than files so that editors replacing the file on
	// save, and configs created after startup, are both seen.
	for d := range targets {
		if err := fsw.Add(d); err != nil {
			return rcerrors.New(rcerrors.ErrCodeConfigWatch, fmt.Sprintf("failed to watch %s", d), err)
		}
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event, targets) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(window)
			} else {
				timer.Reset(window)
			}
			fire = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			onChange(nil, fmt.Errorf("config watcher: %w", err))
		case <-fire:
			fire = nil
			onChange(Load(dir))
		}
	}
}

// watchTargets maps each existing directory to the file names watched in it.
func watchTargets(dir string) map[string]map[string]bool {
	targets := make(map[string]map[string]bool)
	add := func(d string, names ...string) {
		if d == "" || !dirExists(d) {
			return
		}
		d = filepath.Clean(d)
		if targets[d] == nil {
			targets[d] = make(map[string]bool)
		}
		for _, n := range names {
			targets[d][n] = true
		}
	}

	if dir != "" {
		add(dir, append([]string{".env"}, ProjectConfigNames...)...)
	}
	if userPath := GetUserConfigPath(); userPath != "" {
		add(filepath.Dir(userPath), filepath.Base(userPath))
	}
	return targets
}

func isConfigEvent(event fsnotify.Event, targets map[string]map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	names := targets[filepath.Dir(filepath.Clean(event.Name))]
	return names[filepath.Base(event.Name)]
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
