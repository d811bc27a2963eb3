package evm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/ethlift/internal/chains"
)

func TestChain_BuilderFor(t *testing.T) {
	c := NewChain()

	tests := []struct {
		path string
		want string
	}{
		{"brownie-config.yml", "brownie"},
		{"/work/vault/brownie-config.yaml", "brownie"},
		{"configs/brownie-config.prod.yml", "brownie"},
		{"foundry.toml", "foundry"},
		{"/work/vault/foundry.toml", "foundry"},
		{"", "foundry"},
		{"hardhat.config.ts", "foundry"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.BuilderFor(tt.path).Name())
		})
	}
}

func TestChain_BuilderByName(t *testing.T) {
	c := NewChain()

	b, err := c.BuilderByName("brownie")
	require.NoError(t, err)
	assert.Equal(t, "brownie", b.Name())

	b, err = c.BuilderByName("foundry")
	require.NoError(t, err)
	assert.Equal(t, "foundry", b.Name())

	_, err = c.BuilderByName("truffle")
	assert.Error(t, err)
}

func TestChain_DetectConfigPath(t *testing.T) {
	c := NewChain()

	t.Run("brownie first", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "brownie-config.yml"), []byte("{}"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "foundry.toml"), []byte(""), 0644))

		assert.Equal(t, filepath.Join(dir, "brownie-config.yml"), c.DetectConfigPath(dir))
	})

	t.Run("foundry when present", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "foundry.toml"), []byte(""), 0644))

		assert.Equal(t, filepath.Join(dir, "foundry.toml"), c.DetectConfigPath(dir))
	})

	t.Run("foundry by default", func(t *testing.T) {
		dir := t.TempDir()
		assert.Equal(t, filepath.Join(dir, "foundry.toml"), c.DetectConfigPath(dir))
	})
}

func TestChain_DetectBuilder(t *testing.T) {
	c := NewChain()

	dir := t.TempDir()
	_, err := c.DetectBuilder(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "foundry.toml"), []byte(""), 0644))
	b, err := c.DetectBuilder(dir)
	require.NoError(t, err)
	assert.Equal(t, "foundry", b.Name())
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	n, err := r.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", n.Name)

	_, err = r.Lookup(424242)
	assert.ErrorIs(t, err, chains.ErrInvalidChainID)

	list := r.List()
	require.Len(t, list, len(DefaultNetworks))
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ChainID, list[i].ChainID)
	}
}
