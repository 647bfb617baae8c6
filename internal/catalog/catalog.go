// Package catalog holds the named style modifiers a host advertises.
//
// A modifier's effect on synthesis comes only from its name (see
// synth.ApplyModifier). The catalog adds the metadata surfaced by the
// /models and /lora endpoints and tracks which modifiers have been used.
package catalog

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultRank  = 16
	defaultAlpha = 32
)

var defaultTargetModules = []string{"q_proj", "v_proj"}

// Modifier describes one style modifier adapter.
type Modifier struct {
	Name          string   `toml:"name"`
	Description   string   `toml:"description"`
	Rank          int      `toml:"rank"`
	Alpha         int      `toml:"alpha"`
	TargetModules []string `toml:"target_modules"`
}

type file struct {
	Modifiers []Modifier `toml:"modifier"`
}

// Catalog is a concurrency-safe set of modifiers.
type Catalog struct {
	mu        sync.RWMutex
	order     []string
	modifiers map[string]Modifier
	loaded    map[string]bool
}

// New builds a catalog from a list of modifiers. Later duplicates replace
// earlier ones; missing adapter settings get the defaults.
func New(mods []Modifier) *Catalog {
	c := &Catalog{
		modifiers: make(map[string]Modifier, len(mods)),
		loaded:    make(map[string]bool),
	}
	for _, m := range mods {
		if m.Rank == 0 {
			m.Rank = defaultRank
		}
		if m.Alpha == 0 {
			m.Alpha = defaultAlpha
		}
		if len(m.TargetModules) == 0 {
			m.TargetModules = slices.Clone(defaultTargetModules)
		}
		if m.Description == "" {
			m.Description = fmt.Sprintf("Style modifier %s", m.Name)
		}
		if _, dup := c.modifiers[m.Name]; !dup {
			c.order = append(c.order, m.Name)
		}
		c.modifiers[m.Name] = m
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New([]Modifier{
		{Name: "jazz-lora", Description: "Brighter, louder voicing tuned for jazz"},
		{Name: "electronic-lora", Description: "Darker, softer voicing tuned for electronic music"},
		{Name: "classical-lora", Description: "Fuller voicing tuned for classical music"},
		{Name: "rock-lora", Description: "Rock adapter; leaves pitch and level unchanged"},
	})
}

// Load reads a catalog from a TOML file of [[modifier]] tables. An empty
// path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	var doc file
	if err := toml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	for i, m := range doc.Modifiers {
		if m.Name == "" {
			return nil, fmt.Errorf("catalog %s: modifier %d has no name", path, i)
		}
	}
	return New(doc.Modifiers), nil
}

// Names returns modifier names in catalog order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Lookup returns a modifier by name.
func (c *Catalog) Lookup(name string) (Modifier, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modifiers[name]
	return m, ok
}

// MarkLoaded records that a modifier has been used. Unknown names are
// ignored.
func (c *Catalog) MarkLoaded(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.modifiers[name]; ok {
		c.loaded[name] = true
	}
}

// Loaded reports whether a modifier has been used.
func (c *Catalog) Loaded(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded[name]
}

// LoadedCount returns how many modifiers have been used.
func (c *Catalog) LoadedCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.loaded)
}
