package evm

import (
	"github.com/pendergraft/ethlift/internal/chains"
	"github.com/pendergraft/ethlift/internal/chains/evm/brownie"
	"github.com/pendergraft/ethlift/internal/chains/evm/foundry"
)

// NewFoundryBuilder creates a new Foundry builder
func NewFoundryBuilder() chains.Builder {
	return foundry.New()
}

// NewBrownieBuilder creates a new Brownie builder
func NewBrownieBuilder() chains.Builder {
	return brownie.New()
}
