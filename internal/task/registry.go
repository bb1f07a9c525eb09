package task

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lucasreid/stencil/internal/output"
)

//go:embed tasks/*.yaml
var builtinFS embed.FS

// Registry merges the built-in task set with caller-configured search
// directories. Built-in tasks come first; directories are scanned in the
// order given and never override earlier sources — the first template with
// a matching name wins on lookup.
//
// Malformed definition files found while scanning are skipped, not fatal:
// one broken file in a task directory must not take every other task down
// with it.
type Registry struct {
	dirs  []string
	cache map[string]*Template
}

// NewRegistry creates a registry searching the given extra directories.
func NewRegistry(dirs ...string) *Registry {
	return &Registry{
		dirs:  dirs,
		cache: make(map[string]*Template),
	}
}

// Builtin returns the embedded task set.
func (r *Registry) Builtin() []*Template {
	entries, err := fs.ReadDir(builtinFS, "tasks")
	if err != nil {
		return nil
	}

	var tasks []*Template
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("tasks/" + entry.Name())
		if err != nil {
			continue
		}
		tmpl, err := Load(data)
		if err != nil {
			// A broken built-in is a packaging bug, but the scan policy
			// is the same as for user directories: skip and continue.
			output.Verbose("skipping built-in task " + entry.Name() + ": " + err.Error())
			continue
		}
		tasks = append(tasks, tmpl)
	}
	return tasks
}

// List returns every available template, built-ins first, then each search
// directory in order. Duplicate names across sources are not deduplicated.
func (r *Registry) List() []*Template {
	tasks := r.Builtin()
	for _, dir := range r.dirs {
		tasks = append(tasks, r.loadDir(dir)...)
	}
	return tasks
}

// Get returns the first template whose name matches, caching the result
// for the process lifetime.
func (r *Registry) Get(name string) (*Template, bool) {
	if tmpl, ok := r.cache[name]; ok {
		return tmpl, true
	}
	for _, tmpl := range r.List() {
		if tmpl.Name == name {
			r.cache[name] = tmpl
			return tmpl, true
		}
	}
	return nil, false
}

func (r *Registry) loadDir(dir string) []*Template {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var tasks []*Template
	for _, name := range names {
		tmpl, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			output.Verbose("skipping task file " + name + ": " + err.Error())
			continue
		}
		tasks = append(tasks, tmpl)
	}
	return tasks
}
