package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PromptWatcher watches configured prompt files and reloads them into the
// process-wide prompt store when they change, so prompt wording can be tuned
// without a restart. Only file-backed prompts participate; inline config
// prompts are fixed for the process lifetime.
type PromptWatcher struct {
	mu sync.RWMutex

	config *Config
	files  []string

	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	// onReload is called after a successful reload, for logging/metrics
	onReload func()

	running bool
}

// NewPromptWatcher creates a watcher over the config's prompt files. Returns
// nil when no prompt files are configured; callers treat a nil watcher as a
// no-op.
func NewPromptWatcher(cfg *Config, debounceDelay time.Duration, onReload func()) *PromptWatcher {
	files := cfg.PromptFilePaths()
	if len(files) == 0 {
		return nil
	}

	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	return &PromptWatcher{
		config:        cfg,
		files:         files,
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1), // Buffered to prevent blocking
		onReload:      onReload,
	}
}

// Start begins watching prompt files for changes
func (pw *PromptWatcher) Start() error {
	if pw == nil {
		return nil
	}

	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher

	if err := pw.updateModTimes(); err != nil {
		_ = pw.fsWatcher.Close()
		return fmt.Errorf("failed to get initial file modification times: %w", err)
	}

	for _, file := range pw.files {
		if err := pw.addFileToWatcher(file); err != nil {
			_ = pw.fsWatcher.Close()
			return err
		}
	}

	pw.running = true
	go pw.watchLoop()

	return nil
}

// Stop stops the prompt file watcher
func (pw *PromptWatcher) Stop() error {
	if pw == nil {
		return nil
	}

	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	close(pw.stopChan)

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	if pw.fsWatcher != nil {
		if err := pw.fsWatcher.Close(); err != nil {
			return err
		}
	}

	pw.running = false
	return nil
}

// addFileToWatcher adds a file and its directory to the file system watcher
func (pw *PromptWatcher) addFileToWatcher(file string) error {
	if err := pw.fsWatcher.Add(file); err != nil {
		return fmt.Errorf("failed to watch prompt file %s: %w", file, err)
	}

	// Also watch the directory to catch atomic writes (rename operations)
	dir := filepath.Dir(file)
	if err := pw.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch prompt directory %s: %w", dir, err)
	}

	return nil
}

// updateModTimes updates the stored modification times for all watched files
func (pw *PromptWatcher) updateModTimes() error {
	for _, file := range pw.files {
		stat, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("failed to stat prompt file %s: %w", file, err)
		}
		pw.lastModTime[file] = stat.ModTime()
	}
	return nil
}

// hasFileChanged checks if a file has been modified since last check
func (pw *PromptWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		return false
	}

	lastMod, exists := pw.lastModTime[file]
	if !exists || stat.ModTime().After(lastMod) {
		pw.lastModTime[file] = stat.ModTime()
		return true
	}

	return false
}

// watchLoop is the main event loop for file watching
func (pw *PromptWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if pw.shouldProcessEvent(event) {
				pw.scheduleReload()
			}

		case _, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}

		case <-pw.reloadChan:
			// Debounced reload trigger
			if pw.hasAnyFileChanged() {
				pw.reload()
			}

		case <-pw.stopChan:
			return
		}
	}
}

// reload re-reads every prompt file and swaps the store. A failed read keeps
// the previous prompts in place; a half-edited file must not take down the
// running configuration.
func (pw *PromptWatcher) reload() {
	all, err := pw.config.readAllPromptFiles()
	if err != nil {
		return
	}
	setLoadedPrompts(all)
	if pw.onReload != nil {
		pw.onReload()
	}
}

// shouldProcessEvent determines if a file system event should trigger a reload check
func (pw *PromptWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	isWatchedFile := slices.ContainsFunc(pw.files, func(file string) bool {
		return event.Name == file || filepath.Base(event.Name) == filepath.Base(file)
	})
	if !isWatchedFile {
		return false
	}

	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// hasAnyFileChanged checks if any of the watched files have changed
func (pw *PromptWatcher) hasAnyFileChanged() bool {
	return slices.ContainsFunc(pw.files, pw.hasFileChanged)
}

// scheduleReload schedules a debounced reload
func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
			// Reload already scheduled
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (pw *PromptWatcher) IsRunning() bool {
	if pw == nil {
		return false
	}
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	return pw.running
}

// WatchedFiles returns the list of files being watched
func (pw *PromptWatcher) WatchedFiles() []string {
	if pw == nil {
		return nil
	}
	return slices.Clone(pw.files)
}
