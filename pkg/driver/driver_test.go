package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScriptResolvesImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "chars/em.lor", "character em\n  name: \"Emily\"\n")
	main := writeFile(t, dir, "story.lor", "import \"chars/em.lor\"\n\nbeat Intro\n  em: Hi\n")

	script, err := LoadScript(main)
	require.NoError(t, err)
	require.NotNil(t, script.Beat("Intro"))
	assert.NotEmpty(t, script.Fingerprint())
}

func TestLoadScriptMissingImport(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "story.lor", "import \"nope.lor\"\n\nbeat Intro\n  Hi\n")

	_, err := LoadScript(main)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.lor")
}

func TestFindTranslationsDiscoversSiblings(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "story.lor", "beat Intro\n  Hello\n")
	writeFile(t, dir, "story.fr.lor", "beat Intro\n  Bonjour\n")
	writeFile(t, dir, "story.de.lor", "beat Intro\n  Hallo\n")
	// Not translation siblings: the main file, a different stem, a nested
	// language segment.
	writeFile(t, dir, "other.fr.lor", "beat Intro\n  Salut\n")
	writeFile(t, dir, "story.fr.old.lor", "beat Intro\n  Vieux\n")

	tables, err := FindTranslations(main)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	require.Contains(t, tables, "fr")
	require.Contains(t, tables, "de")

	content, ok := tables["fr"].Lookup("Intro.0")
	require.True(t, ok)
	text, _, static := content.Static()
	require.True(t, static)
	assert.Equal(t, "Bonjour", text)
}

func TestLoadStory(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "story.lor", "beat Intro\n  Hello\n")
	writeFile(t, dir, "story.fr.lor", "beat Intro\n  Bonjour\n")

	story, err := LoadStory(main)
	require.NoError(t, err)
	assert.Equal(t, main, story.Path)
	require.NotNil(t, story.Script.Beat("Intro"))
	assert.Len(t, story.Translations, 1)
}

func TestTranslationLang(t *testing.T) {
	cases := []struct {
		name string
		lang string
		ok   bool
	}{
		{"story.fr.lor", "fr", true},
		{"story.pt-BR.lor", "pt-BR", true},
		{"story.lor", "", false},
		{"story..lor", "", false},
		{"story.fr.old.lor", "", false},
		{"other.fr.lor", "", false},
	}
	for _, c := range cases {
		lang, ok := translationLang(c.name, "story", ".lor")
		assert.Equal(t, c.ok, ok, c.name)
		assert.Equal(t, c.lang, lang, c.name)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "story.yml", `name: The Toll
author: Someone
script: scripts/story.lor
beat: Intro
language: fr
strict: true
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "The Toll", m.Name)
	assert.Equal(t, "scripts/story.lor", m.Script)
	assert.Equal(t, "Intro", m.Beat)
	assert.Equal(t, "fr", m.Language)
	assert.True(t, m.Strict)
	assert.Equal(t, filepath.Join(dir, "scripts", "story.lor"), m.ScriptPath())
}

func TestLoadManifestRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "story.yml", "script: a.lor\nscritp: typo.lor\n")

	_, err := LoadManifest(path)
	require.Error(t, err)
}

func TestLoadManifestRequiresScript(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "story.yml", "name: No Entry\n")

	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing script")
}

func TestWriteManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.yml")
	m := &Manifest{Name: "The Toll", Script: "story.lor", Strict: true}
	require.NoError(t, WriteManifest(m, path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.Name, loaded.Name)
	assert.Equal(t, m.Script, loaded.Script)
	assert.True(t, loaded.Strict)
}
