package schemafs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"actionspec-hq/sentinel/pkg/spec/schema"
	"actionspec-hq/sentinel/pkg/spec/specerr"
)

// SchemaFileSuffix is the suffix a file must carry to be treated as a
// definition artifact. Other files in the directory are ignored, so
// READMEs and editor droppings do not break loading.
const SchemaFileSuffix = ".schema.yaml"

// DirSource loads schema definitions from a directory of
// *.schema.yaml artifacts. It implements schema.Source, so a registry
// built over it serves the directory's definition set and re-reads the
// directory on every Reload.
type DirSource struct {
	dir string
}

// NewDirSource creates a source over the given directory. The directory
// is not touched until the first Load.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Dir returns the directory this source reads from.
func (s *DirSource) Dir() string {
	return s.dir
}

// Load reads every definition artifact in the directory and returns the
// set keyed by declared version. Any unreadable or malformed artifact
// fails the whole load; the registry keeps serving its previous set in
// that case.
func (s *DirSource) Load() (map[string]*schema.Definition, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading schema directory %q: %w", s.dir, err)
	}

	defs := make(map[string]*schema.Definition)
	for _, entry := range entries {
		if entry.IsDir() || !isSchemaFile(entry.Name()) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading schema artifact %q: %w", path, err)
		}

		var def schema.Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, &specerr.InternalSchemaError{
				Detail: fmt.Sprintf("parsing schema artifact %s", entry.Name()),
				Err:    err,
			}
		}
		if def.Version == "" {
			return nil, &specerr.InternalSchemaError{
				Detail: fmt.Sprintf("schema artifact %s declares no version", entry.Name()),
			}
		}
		if _, dup := defs[def.Version]; dup {
			return nil, &specerr.InternalSchemaError{
				Version: def.Version,
				Detail:  fmt.Sprintf("version declared by more than one artifact (%s)", entry.Name()),
			}
		}

		defs[def.Version] = &def
	}

	return defs, nil
}

func isSchemaFile(name string) bool {
	return strings.HasSuffix(name, SchemaFileSuffix) ||
		strings.HasSuffix(name, ".schema.yml")
}
