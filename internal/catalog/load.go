package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed courses/*.yaml
var builtin embed.FS

// ParseCourse decodes and validates a single YAML course document.
func ParseCourse(data []byte) (*Course, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	var c Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}
	if err := c.prepare(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFS reads every *.yaml / *.yml file at the root of fsys.
func LoadFS(fsys fs.FS, dir string) ([]*Course, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var courses []*Course
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		c, err := ParseCourse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

// Builtin returns the embedded course definitions.
func Builtin() ([]*Course, error) {
	return LoadFS(builtin, "courses")
}

// Load builds a registry from the embedded courses plus any definitions in
// extraDir. Extra courses override built-ins only with a higher version.
func Load(extraDir string) (*Registry, error) {
	courses, err := Builtin()
	if err != nil {
		return nil, fmt.Errorf("load builtin catalog: %w", err)
	}
	if extraDir != "" {
		if _, statErr := os.Stat(extraDir); statErr == nil {
			extra, err := LoadFS(os.DirFS(extraDir), ".")
			if err != nil {
				return nil, fmt.Errorf("load catalog %s: %w", extraDir, err)
			}
			courses = append(courses, extra...)
		}
	}
	return NewRegistry(courses...)
}
