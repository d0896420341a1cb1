package portfolio

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var defaultData []byte

// LoadDefault parses the embedded sample dataset.
func LoadDefault() (*Dataset, error) {
	return Parse(defaultData)
}

// LoadFile reads and parses a dataset YAML file.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes dataset YAML and rejects structurally invalid content.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	seen := make(map[string]bool)
	for _, skill := range ds.Skills {
		if skill.ID == "" {
			return nil, fmt.Errorf("skill %q has no id", skill.Name)
		}
		if seen["skill:"+skill.ID] {
			return nil, fmt.Errorf("duplicate skill id: %s", skill.ID)
		}
		seen["skill:"+skill.ID] = true
	}
	for _, project := range ds.Projects {
		if project.ID == "" {
			return nil, fmt.Errorf("project %q has no id", project.Title)
		}
		if seen["project:"+project.ID] {
			return nil, fmt.Errorf("duplicate project id: %s", project.ID)
		}
		seen["project:"+project.ID] = true
	}
	return &ds, nil
}

// debounceDelay is how long the watcher waits after the last event before
// reloading. Writers truncate then write, which fires a burst of events;
// reading on the first one can see a torn, half-written file.
const debounceDelay = 100 * time.Millisecond

// Watch reloads the store whenever the dataset file changes. It blocks until
// stop is closed. A failed reload keeps the previous snapshot.
func Watch(store *Store, path string, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace files via rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	target := filepath.Clean(path)
	relevant := func(event fsnotify.Event) bool {
		if filepath.Clean(event.Name) != target {
			return false
		}
		return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			// Absorb the rest of the burst; each further event pushes
			// the reload back until the writer has gone quiet.
			timer := time.NewTimer(debounceDelay)
		settle:
			for {
				select {
				case event, ok = <-watcher.Events:
					if !ok {
						timer.Stop()
						return nil
					}
					if relevant(event) {
						timer.Reset(debounceDelay)
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						timer.Stop()
						return nil
					}
					log.Warn().Err(err).Msg("Dataset watcher error")
				case <-timer.C:
					break settle
				case <-stop:
					timer.Stop()
					return nil
				}
			}
			reload(store, path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Dataset watcher error")
		case <-stop:
			return nil
		}
	}
}

// reload swaps in a freshly parsed snapshot. Parse failures keep the previous
// snapshot, as does a fully empty parse replacing a populated one: a torn
// read of a truncated file parses as valid zero-entry YAML.
func reload(store *Store, path string) {
	ds, err := LoadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Dataset reload failed, keeping previous snapshot")
		return
	}
	if ds.isEmpty() && !store.snapshot().isEmpty() {
		log.Warn().Str("path", path).Msg("Dataset reload produced an empty dataset, keeping previous snapshot")
		return
	}
	store.Replace(ds)
	log.Info().
		Str("path", path).
		Int("skills", len(ds.Skills)).
		Int("projects", len(ds.Projects)).
		Msg("Dataset reloaded")
}
