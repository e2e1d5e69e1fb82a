// Package formdef loads declarative form definitions from JSON or YAML
// files and turns them into the pieces a form engine needs: initial
// values and a constraint schema.
package formdef

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds the definitions discovered by LoadFS, keyed by form
// id.
type Registry struct {
	forms map[string]Definition
}

// LoadFS walks the provided filesystem and parses every JSON/YAML
// definition file. When fsys is nil or holds no definition files, the
// returned registry is empty.
func LoadFS(fsys fs.FS) (*Registry, error) {
	registry := &Registry{forms: make(map[string]Definition)}
	if fsys == nil {
		return registry, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("formdef: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for formID, def := range doc.Forms {
			id := strings.TrimSpace(formID)
			if id == "" {
				return fmt.Errorf("formdef: file %s defines an empty form id", path)
			}
			if _, exists := registry.forms[id]; exists {
				return fmt.Errorf("formdef: duplicate form %q (file %s)", id, path)
			}

			def.ID = id
			if err := checkDefinition(def, path); err != nil {
				return err
			}
			registry.forms[id] = def
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return registry, nil
}

// Form returns the definition registered under the supplied id.
func (r *Registry) Form(id string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.forms[id]
	return def, ok
}

// Empty reports whether the registry holds any definitions.
func (r *Registry) Empty() bool {
	return r == nil || len(r.forms) == 0
}

type documentFile struct {
	Forms map[string]Definition `json:"forms" yaml:"forms"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("formdef: file %s is empty", source)
	}

	if strings.HasSuffix(source, ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("formdef: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("formdef: parse %s: %w", source, err)
	}
	return doc, nil
}

func checkDefinition(def Definition, source string) error {
	seen := make(map[string]struct{}, len(def.Fields))
	for _, field := range def.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("formdef: form %s has a field without a name (file %s)", def.ID, source)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("formdef: form %s declares field %q twice (file %s)", def.ID, name, source)
		}
		seen[name] = struct{}{}
	}
	// compile patterns once so malformed files fail at load time
	if _, err := def.Schema(); err != nil {
		return err
	}
	return nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
