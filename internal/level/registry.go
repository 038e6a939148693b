package level

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

//go:embed levels/*.spawner.yaml
var embeddedLevels embed.FS

const fileSuffix = ".spawner.yaml"

// DefaultLevel is the level every run starts on.
const DefaultLevel = "base"

// Registry holds every loaded level, keyed by name.
type Registry struct {
	levels map[string]Level
}

// LoadEmbedded loads the level files compiled into the binary.
func LoadEmbedded() (*Registry, error) {
	sub, err := fs.Sub(embeddedLevels, "levels")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads every *.spawner.yaml file from a directory on disk.
func LoadDir(dir string) (*Registry, error) {
	return Load(os.DirFS(dir))
}

// Load reads every *.spawner.yaml in fsys, validates each level, and
// resolves progression references. Any malformed file fails the whole
// load; the game must not start with invalid settings.
func Load(fsys fs.FS) (*Registry, error) {
	files, err := fs.Glob(fsys, "*"+fileSuffix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found", fileSuffix)
	}

	levels := make(map[string]Level, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("level file %s: %w", file, err)
		}
		name := strings.TrimSuffix(file, fileSuffix)
		lvl, err := Parse(name, data)
		if err != nil {
			return nil, fmt.Errorf("level file %s: %w", file, err)
		}
		levels[name] = lvl
	}

	if _, ok := levels[DefaultLevel]; !ok {
		return nil, fmt.Errorf("default level %q missing", DefaultLevel)
	}
	for name, lvl := range levels {
		if lvl.NextLevel == "" {
			continue
		}
		if _, ok := levels[lvl.NextLevel]; !ok {
			return nil, fmt.Errorf("level %q: next_level %q does not exist", name, lvl.NextLevel)
		}
	}

	return &Registry{levels: levels}, nil
}

// Get returns a level by name.
func (r *Registry) Get(name string) (Level, bool) {
	lvl, ok := r.levels[name]
	return lvl, ok
}

// Base returns the default starting level.
func (r *Registry) Base() Level {
	return r.levels[DefaultLevel]
}

// Names returns all level names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.levels))
	for name := range r.levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
