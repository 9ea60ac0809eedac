// Package model defines the raw, uncompiled form of a rule table as it is
// supplied by repositories: a Parameter with ordered Levels and unordered
// Entries.
package model

import (
	"unicode/utf8"
)

// DefaultArraySeparator splits array level values when a parameter does not
// declare its own separator.
const DefaultArraySeparator = ','

// Level is one column of a rule table.
type Level struct {
	// Name is unique within a parameter. It may be empty for anonymous
	// levels, which are then addressable only by position.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Type is the type code used to parse and normalize values.
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	// Matcher is the default matcher code. Empty means exact equality.
	Matcher string `yaml:"matcher,omitempty" json:"matcher,omitempty"`

	// Array marks values holding a separator-delimited set of elements.
	Array bool `yaml:"array,omitempty" json:"array,omitempty"`

	// LevelCreator names the function that derives this level's value from
	// the query context when no explicit value is supplied.
	LevelCreator string `yaml:"levelCreator,omitempty" json:"levelCreator,omitempty"`
}

// Entry is one row of a rule table: one raw textual value per level, input
// levels first, output levels after. Input values may hold the wildcard "*".
type Entry struct {
	Levels []string `yaml:"levels" json:"levels"`
}

// NewEntry creates an entry from level values.
func NewEntry(values ...string) Entry {
	return Entry{Levels: values}
}

// Value returns the value at level position i, or "" when the entry is short.
func (e Entry) Value(i int) string {
	if i < 0 || i >= len(e.Levels) {
		return ""
	}
	return e.Levels[i]
}

// Parameter is a raw rule table.
type Parameter struct {
	Name string `yaml:"name" json:"name"`

	// Levels lists input levels followed by output levels.
	Levels []Level `yaml:"levels" json:"levels"`

	// InputLevels is the number of leading levels matched against query values.
	InputLevels int `yaml:"inputLevels" json:"inputLevels"`

	// Nullable parameters yield an empty result instead of an error when no
	// entry matches.
	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty"`

	// Cacheable parameters are compiled into an index.
	Cacheable bool `yaml:"cacheable" json:"cacheable"`

	// ArraySeparator is a single character; empty means DefaultArraySeparator.
	ArraySeparator string `yaml:"arraySeparator,omitempty" json:"arraySeparator,omitempty"`

	Entries []Entry `yaml:"entries,omitempty" json:"entries,omitempty"`
}

// Separator returns the array separator rune.
func (p *Parameter) Separator() rune {
	if p.ArraySeparator == "" {
		return DefaultArraySeparator
	}
	r, _ := utf8.DecodeRuneInString(p.ArraySeparator)
	return r
}

// OutputLevels returns the number of output columns.
func (p *Parameter) OutputLevels() int {
	return len(p.Levels) - p.InputLevels
}

// LevelNames returns level names in declaration order.
func (p *Parameter) LevelNames() []string {
	names := make([]string, len(p.Levels))
	for i, l := range p.Levels {
		names[i] = l.Name
	}
	return names
}

// Clone returns a deep copy of the parameter.
func (p *Parameter) Clone() *Parameter {
	c := *p
	c.Levels = append([]Level(nil), p.Levels...)
	c.Entries = make([]Entry, len(p.Entries))
	for i, e := range p.Entries {
		c.Entries[i] = Entry{Levels: append([]string(nil), e.Levels...)}
	}
	return &c
}

// Header returns the parameter without its entries.
func (p *Parameter) Header() *Parameter {
	c := *p
	c.Levels = append([]Level(nil), p.Levels...)
	c.Entries = nil
	return &c
}
