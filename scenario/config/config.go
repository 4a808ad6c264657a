// Package config models the module/param/parameterset configuration document.
package config

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

const doctype = `<!DOCTYPE config SYSTEM "http://www.matsim.org/files/dtd/config_v2.dtd">`

// Config is the root of a configuration file.
type Config struct {
	XMLName xml.Name  `xml:"config"`
	Modules []*Module `xml:"module"`

	// path of the file the config was read from; relative file params resolve against it
	path string
}

// Param is a single name/value entry.
type Param struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Group holds params and nested parameter sets. Modules and parameter sets share it.
type Group struct {
	Params []*Param        `xml:"param"`
	Sets   []*ParameterSet `xml:"parameterset"`
}

// Module is a top-level configuration group.
type Module struct {
	Name string `xml:"name,attr"`
	Group
}

// ParameterSet is a typed, repeatable group nested in a module or another set.
type ParameterSet struct {
	Type string `xml:"type,attr"`
	Group
}

// New returns an empty config.
func New() *Config { return &Config{} }

// Read loads a config file.
func Read(path string) (*Config, error) {
	var c Config
	if err := matsim.ReadXML(path, &c); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	c.path = path
	return &c, nil
}

// Write stores the config at path.
func Write(path string, c *Config) error {
	if err := matsim.WriteXML(path, doctype, c); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Path returns the file the config was read from, or "".
func (c *Config) Path() string { return c.path }

// ResolvePath resolves a file param value against the config's directory.
// Absolute paths and URLs are returned unchanged.
func (c *Config) ResolvePath(value string) string {
	if value == "" || filepath.IsAbs(value) || strings.Contains(value, "://") || c.path == "" {
		return value
	}
	return filepath.Join(filepath.Dir(c.path), value)
}

// HasModule reports whether a module with the given name exists.
func (c *Config) HasModule(name string) bool {
	_, ok := lo.Find(c.Modules, func(m *Module) bool { return m.Name == name })
	return ok
}

// Module returns the named module, adding an empty one when missing.
func (c *Config) Module(name string) *Module {
	if m, ok := lo.Find(c.Modules, func(m *Module) bool { return m.Name == name }); ok {
		return m
	}
	m := &Module{Name: name}
	c.Modules = append(c.Modules, m)
	return m
}

// Get returns a param value.
func (g *Group) Get(name string) (string, bool) {
	for _, p := range g.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// GetOr returns a param value or def when absent.
func (g *Group) GetOr(name, def string) string {
	if v, ok := g.Get(name); ok {
		return v
	}
	return def
}

// Set replaces or appends a param.
func (g *Group) Set(name, value string) {
	for _, p := range g.Params {
		if p.Name == name {
			p.Value = value
			return
		}
	}
	g.Params = append(g.Params, &Param{Name: name, Value: value})
}

// Float parses a numeric param.
func (g *Group) Float(name string) (float64, error) {
	v, ok := g.Get(name)
	if !ok {
		return 0, fmt.Errorf("param %s not set", name)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", name, err)
	}
	return f, nil
}

// FloatOr parses a numeric param, returning def when absent or malformed.
func (g *Group) FloatOr(name string, def float64) float64 {
	f, err := g.Float(name)
	if err != nil {
		return def
	}
	return f
}

// SetFloat stores a numeric param.
func (g *Group) SetFloat(name string, v float64) {
	g.Set(name, matsim.FormatFloat(v))
}

// SetBool stores a boolean param.
func (g *Group) SetBool(name string, v bool) {
	g.Set(name, strconv.FormatBool(v))
}

// Bool parses a boolean param, returning def when absent or malformed.
func (g *Group) Bool(name string, def bool) bool {
	v, ok := g.Get(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// List splits a comma separated param into trimmed, non-empty values.
func (g *Group) List(name string) []string {
	v, _ := g.Get(name)
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SetList joins values into a comma separated param, dropping duplicates.
func (g *Group) SetList(name string, values []string) {
	g.Set(name, strings.Join(lo.Uniq(values), ","))
}

// AddToList appends values to a comma separated param.
func (g *Group) AddToList(name string, values ...string) {
	g.SetList(name, append(g.List(name), values...))
}

// AddSet appends a new parameter set of the given type and returns it.
func (g *Group) AddSet(typ string) *ParameterSet {
	s := &ParameterSet{Type: typ}
	g.Sets = append(g.Sets, s)
	return s
}

// SetsOf returns the nested parameter sets of the given type.
func (g *Group) SetsOf(typ string) []*ParameterSet {
	return lo.Filter(g.Sets, func(s *ParameterSet, _ int) bool { return s.Type == typ })
}

// FindSet returns the first set of type typ whose param key equals value, or nil.
// An empty value also matches sets where key is absent.
func (g *Group) FindSet(typ, key, value string) *ParameterSet {
	for _, s := range g.SetsOf(typ) {
		v, ok := s.Get(key)
		if (ok && v == value) || (!ok && value == "") {
			return s
		}
	}
	return nil
}

// FindOrAddSet returns the matching set, adding one with key=value when missing.
func (g *Group) FindOrAddSet(typ, key, value string) *ParameterSet {
	if s := g.FindSet(typ, key, value); s != nil {
		return s
	}
	s := g.AddSet(typ)
	if value != "" {
		s.Set(key, value)
	}
	return s
}

// RemoveSets deletes sets of the given type for which match returns true and reports the count.
func (g *Group) RemoveSets(typ string, match func(*ParameterSet) bool) int {
	before := len(g.Sets)
	g.Sets = lo.Reject(g.Sets, func(s *ParameterSet, _ int) bool { return s.Type == typ && match(s) })
	return before - len(g.Sets)
}
