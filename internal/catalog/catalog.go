// Package catalog holds the concept, pattern and practice catalog used to
// describe seeds to the generator and to look up perspective hints.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/josephgoksu/cascade/internal/prompts"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog string

// Kind classifies a catalog entry.
type Kind string

const (
	KindConcept  Kind = "concept"
	KindPattern  Kind = "pattern"
	KindPractice Kind = "practice"
)

// Hints are per-stage prompt fragments for an entry.
type Hints struct {
	FirstOrder string `yaml:"firstOrder"`
	Cascade    string `yaml:"cascade"`
	Synthesis  string `yaml:"synthesis"`
}

// Entry is one concept, pattern or practice.
type Entry struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Kind    Kind   `yaml:"kind"`
	Summary string `yaml:"summary"`
	Hints   Hints  `yaml:"hints"`
}

type file struct {
	Entries []Entry `yaml:"entries"`
}

// Catalog is an id-keyed set of entries.
type Catalog struct {
	entries []Entry
	byID    map[string]Entry
}

// Load parses a catalog from YAML.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]Entry, len(f.Entries))}
	for _, e := range f.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has no id", e.Name)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id: %s", e.ID)
		}
		c.byID[e.ID] = e
		c.entries = append(c.entries, e)
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(strings.NewReader(defaultCatalog))
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Get returns the entry for id.
func (c *Catalog) Get(id string) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Entries returns all entries in file order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Hints implements prompts.HintSource. Unknown ids and empty hints
// contribute nothing; matches are concatenated in id order.
func (c *Catalog) Hints(ids []string, stage prompts.HintStage) string {
	var sb strings.Builder
	for _, id := range ids {
		e, ok := c.byID[id]
		if !ok {
			continue
		}
		var hint string
		switch stage {
		case prompts.HintFirstOrder:
			hint = e.Hints.FirstOrder
		case prompts.HintCascade:
			hint = e.Hints.Cascade
		case prompts.HintSynthesis:
			hint = e.Hints.Synthesis
		}
		if hint == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("- [%s] %s\n", id, hint))
	}
	return sb.String()
}

// Summary renders the context digest for a session's seeds. Ids missing from
// the catalog are listed by id only.
func (c *Catalog) Summary(seeds session.Seeds) string {
	var sb strings.Builder
	section := func(title string, ids []string) {
		if len(ids) == 0 {
			return
		}
		sb.WriteString(title + ":\n")
		for _, id := range ids {
			if e, ok := c.byID[id]; ok {
				sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", e.Name, id, e.Summary))
			} else {
				sb.WriteString(fmt.Sprintf("- %s\n", id))
			}
		}
	}
	section("Concepts", seeds.Concepts)
	section("Patterns", seeds.Patterns)
	section("Practices", seeds.Practices)
	return strings.TrimRight(sb.String(), "\n")
}

// Merge returns a new catalog with overlay applied. Overlay entries replace
// entries with the same id in place; new ids are appended.
func (c *Catalog) Merge(overlay *Catalog) *Catalog {
	out := &Catalog{byID: make(map[string]Entry, len(c.entries)+len(overlay.entries))}
	for _, e := range c.entries {
		if o, ok := overlay.byID[e.ID]; ok {
			e = o
		}
		out.byID[e.ID] = e
		out.entries = append(out.entries, e)
	}
	for _, e := range overlay.entries {
		if _, ok := out.byID[e.ID]; ok {
			continue
		}
		out.byID[e.ID] = e
		out.entries = append(out.entries, e)
	}
	return out
}

// LoadFile returns the embedded catalog merged with the user catalog at
// path. A missing file is not an error.
func LoadFile(fs afero.Fs, path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	overlay, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Default().Merge(overlay), nil
}
