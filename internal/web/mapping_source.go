package web

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	deepcopy "github.com/tiendc/go-deepcopy"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/models"
)

// reloadDelay coalesces the bursts of events editors emit on save.
const reloadDelay = 100 * time.Millisecond

// MappingSource holds the default mapping of the server, optionally reloaded
// when its file changes.
type MappingSource struct {
	path string
	log  zerolog.Logger

	mu       sync.Mutex
	cfg      *models.MappingConfig
	debounce *time.Timer
}

// LoadMappingSource reads and parses the mapping file at path.
func LoadMappingSource(path string, log zerolog.Logger) (*MappingSource, error) {
	s := &MappingSource{path: path, log: log}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the mapping file path.
func (s *MappingSource) Path() string { return s.path }

// Current returns a copy of the latest successfully parsed mapping.
// Callers may modify the copy freely.
func (s *MappingSource) Current() (*models.MappingConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out models.MappingConfig
	if err := deepcopy.Copy(&out, *s.cfg); err != nil {
		return nil, fmt.Errorf("copy mapping: %w", err)
	}
	return &out, nil
}

func (s *MappingSource) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return rowsheet.NewError(rowsheet.KindIO, s.path, err)
	}
	cfg, err := rowsheet.ParseMapping(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Watch reloads the mapping whenever its file is written or replaced, until
// ctx is done. A mapping that fails to parse is logged and the previous one
// is kept.
func (s *MappingSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are seen
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	name := filepath.Base(s.path)

	for {
		select {
		case <-ctx.Done():
			s.stopDebounce()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.scheduleReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("mapping watcher error")
		}
	}
}

func (s *MappingSource) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(reloadDelay, func() {
		if err := s.reload(); err != nil {
			s.log.Error().Err(err).Str("path", s.path).Msg("mapping reload failed, keeping previous mapping")
			return
		}
		s.log.Info().Str("path", s.path).Msg("mapping reloaded")
	})
}

func (s *MappingSource) stopDebounce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounce != nil {
		s.debounce.Stop()
	}
}
