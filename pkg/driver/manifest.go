package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest models a story.yml file describing how to play a story: the
// entry script, the beat to start at, the default language, and whether
// undeclared state access should fail.
type Manifest struct {
	Path     string
	Name     string
	Author   string
	Version  string
	Script   string
	Beat     string
	Language string
	Strict   bool
}

// LoadManifest parses story.yml from disk. Unknown keys are rejected so a
// typo in a manifest fails loudly instead of being ignored.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw manifestDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}

	m := raw.toManifest()
	m.Path = abs
	if m.Script == "" {
		return nil, fmt.Errorf("manifest: %s missing script entry", abs)
	}
	return m, nil
}

// WriteManifest serialises the manifest back to disk.
func WriteManifest(m *Manifest, path string) error {
	if m == nil {
		return fmt.Errorf("manifest: nil manifest")
	}
	if path == "" {
		if m.Path == "" {
			return fmt.Errorf("manifest: missing path")
		}
		path = m.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.toDisk()); err != nil {
		return fmt.Errorf("manifest: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("manifest: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", abs, err)
	}
	m.Path = abs
	return nil
}

// ScriptPath resolves the manifest's entry script relative to the manifest
// file itself.
func (m *Manifest) ScriptPath() string {
	if filepath.IsAbs(m.Script) || m.Path == "" {
		return m.Script
	}
	return filepath.Join(filepath.Dir(m.Path), filepath.FromSlash(m.Script))
}

type manifestDisk struct {
	Name     string `yaml:"name,omitempty"`
	Author   string `yaml:"author,omitempty"`
	Version  string `yaml:"version,omitempty"`
	Script   string `yaml:"script"`
	Beat     string `yaml:"beat,omitempty"`
	Language string `yaml:"language,omitempty"`
	Strict   bool   `yaml:"strict,omitempty"`
}

func (d manifestDisk) toManifest() *Manifest {
	return &Manifest{
		Name:     strings.TrimSpace(d.Name),
		Author:   strings.TrimSpace(d.Author),
		Version:  strings.TrimSpace(d.Version),
		Script:   strings.TrimSpace(d.Script),
		Beat:     strings.TrimSpace(d.Beat),
		Language: strings.TrimSpace(d.Language),
		Strict:   d.Strict,
	}
}

func (m *Manifest) toDisk() manifestDisk {
	return manifestDisk{
		Name:     m.Name,
		Author:   m.Author,
		Version:  m.Version,
		Script:   m.Script,
		Beat:     m.Beat,
		Language: m.Language,
		Strict:   m.Strict,
	}
}
