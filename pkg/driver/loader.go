// Package driver connects the engine to the filesystem: loading a story
// script and its imports from disk, discovering translation siblings, and
// reading the optional story manifest.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/parser"
	"loreline/engine-go/pkg/translation"
)

// DiskLoader returns a file loader that reads script files under baseDir.
// Script-side paths use forward slashes on every platform; a missing file is
// reported to the parser as not found rather than as an I/O failure here.
func DiskLoader(baseDir string) parser.FileLoader {
	return func(path string, supply func(source *string)) {
		data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(path)))
		if err != nil {
			supply(nil)
			return
		}
		src := string(data)
		supply(&src)
	}
}

// LoadScript parses the script file at path, resolving its imports relative
// to the file's directory.
func LoadScript(path string) (*ast.Script, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("driver: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	return parser.Parse(string(data), filepath.Base(abs), DiskLoader(filepath.Dir(abs)))
}

// Story is a loaded script together with any translation overlays found next
// to it.
type Story struct {
	Path         string
	Script       *ast.Script
	Translations map[string]*translation.Table
}

// LoadStory loads the script at path and every translation sibling. For
// `dir/name.lor` a sibling `dir/name.XX.lor` provides the overlay for
// language code XX.
func LoadStory(path string) (*Story, error) {
	script, err := LoadScript(path)
	if err != nil {
		return nil, err
	}
	translations, err := FindTranslations(path)
	if err != nil {
		return nil, err
	}
	return &Story{Path: path, Script: script, Translations: translations}, nil
}

// FindTranslations locates and parses the translation siblings of the script
// at path, returning overlay tables keyed by language code. Siblings parse
// with the same grammar and the same import resolution as the script itself.
func FindTranslations(path string) (map[string]*translation.Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("driver: resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("driver: read dir %s: %w", dir, err)
	}
	tables := make(map[string]*translation.Table)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lang, ok := translationLang(entry.Name(), stem, filepath.Ext(base))
		if !ok {
			continue
		}
		script, err := LoadScript(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("driver: translation %s: %w", entry.Name(), err)
		}
		tables[lang] = translation.Extract(script)
	}
	return tables, nil
}

// translationLang matches `stem.XX.ext` and returns XX. The language segment
// must be non-empty and must not itself contain a dot.
func translationLang(name, stem, ext string) (string, bool) {
	if len(name) <= len(stem)+1+len(ext) {
		return "", false
	}
	if !strings.HasPrefix(name, stem+".") || !strings.HasSuffix(name, ext) {
		return "", false
	}
	lang := name[len(stem)+1 : len(name)-len(ext)]
	if lang == "" || strings.Contains(lang, ".") {
		return "", false
	}
	return lang, true
}
