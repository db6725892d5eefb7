package service

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// KeyMeta carries per-key behavior for registered config keys.
type KeyMeta struct {
	// RequireRestart marks keys whose change only takes effect after the
	// collaborators are re-booted.
	RequireRestart bool
}

// Config manages the registered configuration surface on top of viper:
// snapshots for the setConfig push, client-driven updates, and change
// notifications, including edits to the config file on disk.
type Config struct {
	mu       sync.Mutex
	keys     map[string]KeyMeta
	values   map[string]any
	watchers []func(key string, meta KeyMeta)
}

func NewConfig() *Config {
	return &Config{keys: make(map[string]KeyMeta), values: make(map[string]any)}
}

// RegisterKey declares a config key the overlay may read and write. The
// current value is recorded so later file changes can be diffed per key.
func (c *Config) RegisterKey(key string, meta KeyMeta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = meta
	c.values[key] = viper.Get(key)
}

// Watch registers a callback fired after any registered key changes.
func (c *Config) Watch(fn func(key string, meta KeyMeta)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, fn)
}

// Snapshot returns the current value of every registered key.
func (c *Config) Snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make(map[string]any, len(c.keys))
	for key := range c.keys {
		values[key] = viper.Get(key)
	}
	return values
}

// UpdateAll writes the given values for registered keys back to viper
// and the config file, then notifies watchers. Unregistered keys are
// ignored.
func (c *Config) UpdateAll(values map[string]any) error {
	c.mu.Lock()
	var changed []string
	for key, value := range values {
		if _, ok := c.keys[key]; !ok {
			log.Warn().Str("key", key).Msg("ignoring update to unregistered config key")
			continue
		}
		viper.Set(key, value)
		c.values[key] = viper.Get(key)
		changed = append(changed, key)
	}
	c.mu.Unlock()

	if len(changed) == 0 {
		return nil
	}

	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	for _, key := range changed {
		c.notify(key)
	}

	return nil
}

// WatchFile starts propagating on-disk config file edits to watchers.
// Keys are notified only when their value actually changed, so the
// write-back from UpdateAll never re-notifies or triggers a restart on
// its own account.
func (c *Config) WatchFile() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Msg("config file changed")
		c.fileChanged()
	})
	viper.WatchConfig()
}

// fileChanged diffs every registered key against its last known value
// and notifies the keys that differ.
func (c *Config) fileChanged() {
	c.mu.Lock()
	var changed []string
	for key := range c.keys {
		next := viper.Get(key)
		if reflect.DeepEqual(c.values[key], next) {
			continue
		}
		c.values[key] = next
		changed = append(changed, key)
	}
	c.mu.Unlock()

	for _, key := range changed {
		c.notify(key)
	}
}

func (c *Config) notify(key string) {
	c.mu.Lock()
	meta := c.keys[key]
	watchers := make([]func(string, KeyMeta), len(c.watchers))
	copy(watchers, c.watchers)
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(key, meta)
	}
}
