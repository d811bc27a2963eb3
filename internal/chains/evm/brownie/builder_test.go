package brownie

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/ethlift/internal/chains"
	"github.com/pendergraft/ethlift/internal/remapping"
)

func TestBuilder_Metadata(t *testing.T) {
	b := New()

	assert.Equal(t, "brownie", b.Name())
	assert.Equal(t, "Brownie", b.DisplayName())
	assert.Equal(t, "brownie-config.yml", b.ConfigFile())
}

func TestBuilder_Detect(t *testing.T) {
	b := New()

	dir := t.TempDir()
	detected, err := b.Detect(dir)
	require.NoError(t, err)
	assert.False(t, detected)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "brownie-config.yml"), []byte("{}"), 0644))
	detected, err = b.Detect(dir)
	require.NoError(t, err)
	assert.True(t, detected)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brownie-config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadRemappings(t *testing.T) {
	t.Run("sequence of strings", func(t *testing.T) {
		path := writeConfig(t, `
dependencies:
  - yearn/yearn-vaults@0.4.3
compiler:
  solc:
    version: 0.6.12
    remappings:
      - "@yearnvaults=yearn/yearn-vaults@0.4.3"
      - "@openzeppelin=OpenZeppelin/openzeppelin-contracts@3.1.0"
`)
		specs, err := ReadRemappings(path)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"@yearnvaults=yearn/yearn-vaults@0.4.3",
			"@openzeppelin=OpenZeppelin/openzeppelin-contracts@3.1.0",
		}, specs)
	})

	t.Run("single entry", func(t *testing.T) {
		path := writeConfig(t, "compiler:\n  solc:\n    remappings:\n      - \"@yearnvaults=yearn/yearn-vaults@0.4.3\"\n")
		specs, err := ReadRemappings(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"@yearnvaults=yearn/yearn-vaults@0.4.3"}, specs)
	})

	t.Run("empty list", func(t *testing.T) {
		specs, err := ReadRemappings(writeConfig(t, "compiler:\n  solc:\n    remappings: []\n"))
		require.NoError(t, err)
		assert.Empty(t, specs)
	})

	tests := []struct {
		name    string
		content string
	}{
		{"no compiler section", "dependencies: []\n"},
		{"no remappings key", "compiler:\n  solc:\n    version: 0.8.0\n"},
		{"null remappings", "compiler:\n  solc:\n    remappings:\n"},
		{"scalar remappings", "compiler:\n  solc:\n    remappings: \"@a=o/a@1.0.0\"\n"},
		{"non-string item", "compiler:\n  solc:\n    remappings:\n      - 42\n"},
		{"nested list item", "compiler:\n  solc:\n    remappings:\n      - [a, b]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRemappings(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrConfigKeyMissing)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadRemappings(filepath.Join(t.TempDir(), "brownie-config.yml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid YAML", func(t *testing.T) {
		_, err := ReadRemappings(writeConfig(t, "compiler: [unclosed\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing YAML")
	})
}

func TestBuilder_Remappings(t *testing.T) {
	b := New()
	home := t.TempDir()

	path := writeConfig(t, `
compiler:
  solc:
    remappings:
      - "@yearnvaults=yearn/yearn-vaults@0.4.3"
      - "@openzeppelin=OpenZeppelin/openzeppelin-contracts@3.1.0"
`)

	entries, err := b.Remappings(path, chains.ResolveOptions{Home: home})
	require.NoError(t, err)
	assert.Equal(t, []remapping.Entry{
		{Alias: "@yearnvaults", Path: filepath.Join(home, ".brownie", "packages", "yearn", "yearn-vaults@0.4.3")},
		{Alias: "@openzeppelin", Path: filepath.Join(home, ".brownie", "packages", "OpenZeppelin", "openzeppelin-contracts@3.1.0")},
	}, entries)

	t.Run("malformed entry fails the whole set", func(t *testing.T) {
		path := writeConfig(t, `
compiler:
  solc:
    remappings:
      - "@yearnvaults=yearn/yearn-vaults@0.4.3"
      - "@broken=no-slash@1.0.0"
`)
		entries, err := b.Remappings(path, chains.ResolveOptions{Home: home})
		assert.ErrorIs(t, err, remapping.ErrMalformedRemapping)
		assert.Nil(t, entries)
	})

	t.Run("no home directory", func(t *testing.T) {
		_, err := b.Remappings(path, chains.ResolveOptions{})
		assert.ErrorIs(t, err, remapping.ErrHomeDirectoryNotFound)
	})
}
