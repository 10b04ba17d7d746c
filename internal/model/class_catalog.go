package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Generated classes are clamped to this range before they can enter a catalog.
const (
	GeneratedClassMin = 1
	GeneratedClassMax = 15
)

// GeneratedClass is a playable class proposed by the narrator.
type GeneratedClass struct {
	Name        string
	Stats       StatTriple
	Description string
}

// ClassCatalog maps class names to starting stats and remembers insertion order.
type ClassCatalog struct {
	Classes map[string]StatTriple
	order   []string
}

// NewClassCatalog returns an empty catalog.
func NewClassCatalog() ClassCatalog {
	return ClassCatalog{Classes: make(map[string]StatTriple)}
}

// DefaultClassCatalog returns the built-in classes.
func DefaultClassCatalog() ClassCatalog {
	c := NewClassCatalog()
	c.add("战士", StatTriple{Attack: 10, Defense: 8, Magic: 2})
	c.add("法师", StatTriple{Attack: 3, Defense: 4, Magic: 12})
	c.add("盗贼", StatTriple{Attack: 7, Defense: 5, Magic: 3})
	return c
}

func (c *ClassCatalog) add(name string, stats StatTriple) {
	if c.Classes == nil {
		c.Classes = make(map[string]StatTriple)
	}
	if _, exists := c.Classes[name]; !exists {
		c.order = append(c.order, name)
	}
	c.Classes[name] = stats
}

// Stats returns the starting stats of a class.
func (c ClassCatalog) Stats(name string) (StatTriple, bool) {
	s, ok := c.Classes[name]
	return s, ok
}

// Len returns the number of classes.
func (c ClassCatalog) Len() int {
	return len(c.Classes)
}

// Names returns class names in insertion order.
func (c ClassCatalog) Names() []string {
	names := make([]string, 0, len(c.Classes))
	for _, n := range c.order {
		if _, ok := c.Classes[n]; ok {
			names = append(names, n)
		}
	}
	// entries set directly on the map have no recorded order
	if len(names) < len(c.Classes) {
		var extra []string
		for n := range c.Classes {
			if !slices.Contains(names, n) {
				extra = append(extra, n)
			}
		}
		slices.Sort(extra)
		names = append(names, extra...)
	}
	return names
}

// Clone returns an independent copy.
func (c ClassCatalog) Clone() ClassCatalog {
	out := NewClassCatalog()
	for _, n := range c.Names() {
		out.add(n, c.Classes[n])
	}
	return out
}

// Merge validates generated classes and adds the new ones.
// Names are trimmed, empty or already known names are skipped and stats are clamped
// to [GeneratedClassMin, GeneratedClassMax]. It returns the number of classes added.
func (c *ClassCatalog) Merge(generated []GeneratedClass) int {
	added := 0
	for _, g := range generated {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}
		if _, exists := c.Classes[name]; exists {
			continue
		}
		c.add(name, g.Stats.ClampRange(GeneratedClassMin, GeneratedClassMax))
		added++
	}
	return added
}

// MarshalJSON writes the catalog as an object whose keys keep insertion order.
func (c ClassCatalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.Classes[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object and records key order.
func (c *ClassCatalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("class catalog: expected object, got %v", tok)
	}
	out := NewClassCatalog()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("class catalog: expected string key, got %v", tok)
		}
		var stats StatTriple
		if err := dec.Decode(&stats); err != nil {
			return fmt.Errorf("class catalog: class '%s': %w", name, err)
		}
		out.add(name, stats)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}
