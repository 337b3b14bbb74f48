package policy

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// DefaultPoliciesDir is the policies directory name under the global config dir.
const DefaultPoliciesDir = "policies"

//go:embed rego/*.rego
var builtinPolicies embed.FS

// File is a loaded Rego module.
type File struct {
	// Path identifies the module in OPA error messages.
	Path    string `json:"path"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Loader reads .rego files from a directory tree.
type Loader struct {
	fs      afero.Fs
	baseDir string
}

// NewLoader creates a loader for baseDir. Use afero.NewOsFs() for real
// files and afero.NewMemMapFs() in tests.
func NewLoader(fsys afero.Fs, baseDir string) *Loader {
	return &Loader{fs: fsys, baseDir: baseDir}
}

// LoadAll loads every .rego file under the base directory, sorted by path.
// A missing directory yields no policies.
func (l *Loader) LoadAll() ([]*File, error) {
	exists, err := afero.DirExists(l.fs, l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("check policies directory: %w", err)
	}
	if !exists {
		return nil, nil
	}

	var files []*File
	err = afero.Walk(l.fs, l.baseDir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".rego") {
			return nil
		}
		content, err := afero.ReadFile(l.fs, p)
		if err != nil {
			return fmt.Errorf("load policy %s: %w", p, err)
		}
		files = append(files, &File{
			Path:    p,
			Name:    strings.TrimSuffix(filepath.Base(p), ".rego"),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk policies directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Builtin returns the policies shipped with cascade.
func Builtin() []*File {
	entries, err := builtinPolicies.ReadDir("rego")
	if err != nil {
		panic(fmt.Sprintf("policy: read embedded policies: %v", err))
	}
	files := make([]*File, 0, len(entries))
	for _, e := range entries {
		p := path.Join("rego", e.Name())
		content, err := builtinPolicies.ReadFile(p)
		if err != nil {
			panic(fmt.Sprintf("policy: read %s: %v", p, err))
		}
		files = append(files, &File{
			Path:    "builtin/" + e.Name(),
			Name:    strings.TrimSuffix(e.Name(), ".rego"),
			Content: string(content),
		})
	}
	return files
}
