/* registry.go
 * Contains the workbook type registry: identifies which organization produced a workbook from its sheet names and
 * hands out that organization's profile. The built-in types are embedded, further types can be loaded from YAML
 * Authors: Zachary Bower
 */

package profile

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var builtinProfiles []byte

// WorkbookType identifies an organization's workbooks and carries its profile. A nil profile means the organization
// is recognised but not supported
type WorkbookType struct {
	Organization          string   `yaml:"organization"`
	MustContainSheetNames []string `yaml:"mustContainSheetNames"`
	SheetNamePatterns     []string `yaml:"sheetNamePatterns"`
	Profile               *Profile `yaml:"profile"`

	patterns []*regexp.Regexp
}

// Matches reports whether the sheet names identify this workbook type: any required sheet is present or any sheet
// name matches one of the patterns
func (w *WorkbookType) Matches(sheetNames []string) bool {
	for _, required := range w.MustContainSheetNames {
		if slices.Contains(sheetNames, required) {
			return true
		}
	}
	for _, name := range sheetNames {
		for _, re := range w.patterns {
			if re.MatchString(name) {
				return true
			}
		}
	}
	return false
}

func (w *WorkbookType) prepare() error {
	if strings.TrimSpace(w.Organization) == "" {
		return fmt.Errorf("workbook type without organization")
	}
	w.patterns = w.patterns[:0]
	for _, expr := range w.SheetNamePatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("%s: invalid sheet name pattern %q: %w", w.Organization, expr, err)
		}
		w.patterns = append(w.patterns, re)
	}
	if w.Profile != nil {
		if err := w.Profile.prepare(); err != nil {
			return fmt.Errorf("%s: %w", w.Organization, err)
		}
	}
	return nil
}

// Registry is an ordered set of workbook types. It is safe for concurrent use
type Registry struct {
	mu    sync.RWMutex
	types []*WorkbookType
}

// NewRegistry creates a registry from the given types, in order
func NewRegistry(types ...WorkbookType) (*Registry, error) {
	r := &Registry{}
	if err := r.Add(types...); err != nil {
		return nil, err
	}
	return r, nil
}

// Builtin returns a registry holding the embedded workbook types
func Builtin() (*Registry, error) {
	r := &Registry{}
	if err := r.LoadYAML(builtinProfiles); err != nil {
		return nil, fmt.Errorf("failed to load built-in profiles: %w", err)
	}
	return r, nil
}

// Add appends workbook types. A type whose organization is already registered replaces it in place
// Preconditions: Receives workbook types, each with an organization
// Postconditions: Returns an error and leaves the registry unchanged if any type is invalid
func (r *Registry) Add(types ...WorkbookType) error {
	prepared := make([]*WorkbookType, 0, len(types))
	for i := range types {
		t := types[i]
		if err := t.prepare(); err != nil {
			return err
		}
		prepared = append(prepared, &t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range prepared {
		idx := slices.IndexFunc(r.types, func(existing *WorkbookType) bool {
			return strings.EqualFold(existing.Organization, t.Organization)
		})
		if idx >= 0 {
			r.types[idx] = t
			continue
		}
		r.types = append(r.types, t)
	}
	return nil
}

// LoadYAML adds the workbook types of a YAML document (a sequence of workbook types)
func (r *Registry) LoadYAML(data []byte) error {
	var types []WorkbookType
	if err := yaml.Unmarshal(data, &types); err != nil {
		return fmt.Errorf("failed to decode profiles: %w", err)
	}
	return r.Add(types...)
}

// Load reads workbook types from a reader
func (r *Registry) Load(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read profiles: %w", err)
	}
	return r.LoadYAML(data)
}

// LoadFile reads workbook types from a YAML file
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open profiles file: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}

// Identify returns the workbook type of a workbook. Types are tried in registration order and the last match wins
func (r *Registry) Identify(sheetNames []string) (*WorkbookType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *WorkbookType
	for _, t := range r.types {
		if t.Matches(sheetNames) {
			found = t
		}
	}
	return found, found != nil
}

// Lookup returns the workbook type of an organization (case insensitive)
func (r *Registry) Lookup(organization string) (*WorkbookType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.types {
		if strings.EqualFold(t.Organization, organization) {
			return t, true
		}
	}
	return nil, false
}

// Organizations lists the registered organizations in registration order
func (r *Registry) Organizations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for _, t := range r.types {
		names = append(names, t.Organization)
	}
	return names
}

// Find returns the organizations matching a partial, possibly misspelt, query. An exact match is returned alone
func (r *Registry) Find(query string) []string {
	organizations := r.Organizations()
	lookup := make(map[string]string)
	var lower []string
	for _, name := range organizations {
		l := strings.ToLower(name)
		lookup[l] = name
		lower = append(lower, l)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if original, ok := lookup[q]; ok {
		return []string{original}
	}
	results := fuzzy.RankFind(q, lower)
	sort.Sort(results)
	var found []string
	for _, rank := range results {
		found = append(found, lookup[rank.Target])
	}
	return found
}
