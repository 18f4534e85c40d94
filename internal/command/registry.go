package command

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/slok/vgrid/internal/model"
)

// Registry maps command names and keystrokes to commands.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Command
	byKey  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]Command{},
		byKey:  map[string]string{},
	}
}

// Register adds commands to the registry, names and keys must be unique. The
// batch is validated as a whole, on error none of its commands are registered.
func (r *Registry) Register(cmds ...Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := map[string]bool{}
	keys := map[string]string{}
	valid := make([]Command, 0, len(cmds))
	for _, c := range cmds {
		if err := c.defaults(); err != nil {
			return fmt.Errorf("invalid command: %w", err)
		}
		if _, ok := r.byName[c.Name]; ok || names[c.Name] {
			return fmt.Errorf("command %q: %w", c.Name, model.ErrAlreadyExists)
		}
		for _, k := range c.Keys {
			other, ok := r.byKey[k]
			if !ok {
				other, ok = keys[k]
			}
			if ok {
				return fmt.Errorf("key %q of %q already bound to %q: %w", k, c.Name, other, model.ErrAlreadyExists)
			}
			keys[k] = c.Name
		}

		names[c.Name] = true
		c.Keys = slices.Clone(c.Keys)
		valid = append(valid, c)
	}

	for _, c := range valid {
		r.byName[c.Name] = c
		for _, k := range c.Keys {
			r.byKey[k] = c.Name
		}
	}

	return nil
}

// Bind binds a keystroke to a command, replacing any previous binding of the key.
func (r *Registry) Bind(key, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if key == "" {
		return fmt.Errorf("key is required: %w", model.ErrNotValid)
	}
	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("command %q: %w", name, model.ErrNotFound)
	}
	r.byKey[key] = name
	return nil
}

// Get returns a command by name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	return c, ok
}

// ByKey returns the command bound to a keystroke.
func (r *Registry) ByKey(key string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.byKey[key]
	if !ok {
		return Command{}, false
	}
	c, ok := r.byName[name]
	return c, ok
}

// IsPrefix returns true when the keys are the beginning of a longer binding.
func (r *Registry) IsPrefix(keys string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for k := range r.byKey {
		if len(k) > len(keys) && strings.HasPrefix(k, keys) {
			return true
		}
	}
	return false
}

// Bindings returns the keystroke to command name table.
func (r *Registry) Bindings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.byKey)
}

// KeysOf returns the keystrokes currently bound to a command, sorted.
func (r *Registry) KeysOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := []string{}
	for k, n := range r.byKey {
		if n == name {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Commands returns all the commands sorted by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := slices.Collect(maps.Values(r.byName))
	slices.SortFunc(cmds, func(a, b Command) int { return strings.Compare(a.Name, b.Name) })
	return cmds
}

// Suggest returns the registered name closest to name, empty when none is close enough.
func (r *Registry) Suggest(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	maxDist := max(2, len(name)/3)
	best, bestDist := "", maxDist+1
	for _, n := range slices.Sorted(maps.Keys(r.byName)) {
		if d := levenshtein.ComputeDistance(name, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}
