package data

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEntry is the program entry when no manifest names one.
const DefaultEntry = "main.lua"

// Manifest lists the scripts of a game: files run once, in order, before the
// entry script.
type Manifest struct {
	Name    string   `yaml:"name"`
	Entry   string   `yaml:"entry"`
	Preload []string `yaml:"preload"`
}

// LoadManifest loads manifest.yaml. A missing file yields a manifest with only
// the default entry.
func LoadManifest(file string) (*Manifest, error) {
	m := &Manifest{Entry: DefaultEntry}
	raw, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Entry == "" {
		m.Entry = DefaultEntry
	}
	for _, p := range append([]string{m.Entry}, m.Preload...) {
		if err := checkScriptPath(p); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", file, err)
		}
	}
	return m, nil
}

// SetEntry replaces the entry script, e.g. from the config file.
func (m *Manifest) SetEntry(p string) error {
	if err := checkScriptPath(p); err != nil {
		return err
	}
	m.Entry = p
	return nil
}

// Files returns preload scripts followed by the entry.
func (m *Manifest) Files() []string {
	out := make([]string, 0, len(m.Preload)+1)
	out = append(out, m.Preload...)
	return append(out, m.Entry)
}

// Count returns the number of scripts the manifest names.
func (m *Manifest) Count() int {
	return len(m.Preload) + 1
}

// checkScriptPath keeps manifest entries inside the script directory.
func checkScriptPath(p string) error {
	if p == "" {
		return errors.New("empty script path")
	}
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("script path %q escapes the script directory", p)
	}
	return nil
}
