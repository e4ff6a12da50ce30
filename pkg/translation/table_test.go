package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/parser"
)

func parse(t *testing.T, src string) *ast.Script {
	t.Helper()
	script, err := parser.Parse(src, "test.lor", nil)
	require.NoError(t, err)
	return script
}

func staticText(t *testing.T, c *ast.TextContent) string {
	t.Helper()
	text, _, ok := c.Static()
	require.True(t, ok)
	return text
}

func TestExtractKeysFollowStructure(t *testing.T) {
	table := Extract(parse(t, `state
  ok: true
beat Intro
  Bonjour
  if ok
    Dedans
  else
    Dehors
  choice
    Premier choix
      Corps du choix
    Second choix
`))

	cases := map[string]string{
		"Intro.0":      "Bonjour",
		"Intro.1.t.0":  "Dedans",
		"Intro.1.e.0":  "Dehors",
		"Intro.2.o0":   "Premier choix",
		"Intro.2.o0.0": "Corps du choix",
		"Intro.2.o1":   "Second choix",
	}
	assert.Equal(t, len(cases), table.Len())
	for key, want := range cases {
		c, ok := table.Lookup(key)
		require.True(t, ok, "missing key %s", key)
		assert.Equal(t, want, staticText(t, c))
	}
}

func TestExtractSkipsNonTextStatements(t *testing.T) {
	table := Extract(parse(t, "beat B\n  gold = 1\n  -> .\n"))
	assert.Equal(t, 0, table.Len())
}

func TestLookupMissesArePartialNotFatal(t *testing.T) {
	table := Extract(parse(t, "beat Intro\n  Bonjour\n"))
	_, ok := table.Lookup("Intro.0")
	assert.True(t, ok)
	_, ok = table.Lookup("Intro.1")
	assert.False(t, ok)
	_, ok = table.Lookup("Other.0")
	assert.False(t, ok)
}

func TestNilTableLookup(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
	_, ok := table.Lookup("Intro.0")
	assert.False(t, ok)
}

func TestKeyDerivation(t *testing.T) {
	key := StatementKey("Intro", 4)
	assert.Equal(t, "Intro.4", key)
	assert.Equal(t, "Intro.4.t", ThenKey(key))
	assert.Equal(t, "Intro.4.e", ElseKey(key))
	assert.Equal(t, "Intro.4.o2", OptionKey(key, 2))
	assert.Equal(t, "Intro.4.o2.0", StatementKey(OptionKey(key, 2), 0))
}
